package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/store"
	"github.com/nhle/helpdesk-console/internal/timer"
)

// boardOrder is the order groups are printed in.
var boardOrder = []model.StatusKind{
	model.StatusTodo,
	model.StatusInProgress,
	model.StatusDone,
	model.StatusUnknown,
}

// taskOutput is the scripting shape of a cached task.
type taskOutput struct {
	ID        int              `json:"id" yaml:"id"`
	Title     string           `json:"title" yaml:"title"`
	Status    string           `json:"status" yaml:"status"`
	Kind      model.StatusKind `json:"kind" yaml:"kind"`
	Priority  string           `json:"priority,omitempty" yaml:"priority,omitempty"`
	Duration  string           `json:"duration" yaml:"duration"`
	Progress  int              `json:"progress" yaml:"progress"`
	Assignee  string           `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	ProjectID int              `json:"project_id,omitempty" yaml:"project_id,omitempty"`
}

func newTasksCmd(env *Env) *cobra.Command {
	var (
		status string
		all    bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Print the cached board grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := env.Config()
			if err != nil {
				return err
			}
			s, err := env.OpenStore()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			tasks, err := s.GetTasks(ctx, store.TaskFilter{SortBy: "id"})
			if err != nil {
				return err
			}
			statuses, err := s.GetStatuses(ctx)
			if err != nil {
				return err
			}

			if !all {
				tasks = cfg.User.VisibleTasks(tasks)
			}
			set := timer.NewStatusSet(statuses, cfg.Statuses)
			if status != "" {
				tasks = filterByStatus(tasks, set, status)
			}

			return writeTasks(cmd.OutOrStdout(), output, tasks, set)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only tasks whose status matches this name")
	cmd.Flags().BoolVar(&all, "all", false, "Ignore the role filter and print every cached task")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}

// filterByStatus keeps tasks whose status is name, matched exactly or by
// the same aliases the board uses.
func filterByStatus(tasks []model.Task, set timer.StatusSet, name string) []model.Task {
	kind := set.KindOfName(name)
	var out []model.Task
	for _, t := range tasks {
		if strings.EqualFold(set.Name(t.StatusID), name) ||
			(kind != model.StatusUnknown && set.KindOf(t.StatusID) == kind) {
			out = append(out, t)
		}
	}
	return out
}

func writeTasks(w io.Writer, format string, tasks []model.Task, set timer.StatusSet) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toOutput(tasks, set))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toOutput(tasks, set)); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		writeBoard(w, tasks, set)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func toOutput(tasks []model.Task, set timer.StatusSet) []taskOutput {
	out := make([]taskOutput, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskOutput{
			ID:        t.ID,
			Title:     t.Title,
			Status:    set.Name(t.StatusID),
			Kind:      set.KindOf(t.StatusID),
			Priority:  t.Priority,
			Duration:  t.Duration,
			Progress:  t.Progress,
			Assignee:  t.Assignee,
			ProjectID: t.ProjectID,
		})
	}
	return out
}

func writeBoard(w io.Writer, tasks []model.Task, set timer.StatusSet) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}

	groups := set.Group(tasks)
	for _, kind := range boardOrder {
		group := groups[kind]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", groupTitle(kind, set), len(group))
		for _, t := range group {
			duration := "--:--:--"
			if secs, err := timer.ParsePositiveHMS(t.Duration); err == nil {
				duration = timer.FormatHMS(secs)
			}
			fmt.Fprintf(w, "  #%-5d %s  %3d%%  %s\n", t.ID, duration, t.Progress, t.Title)
		}
	}
}

func groupTitle(kind model.StatusKind, set timer.StatusSet) string {
	if st, ok := set.Find(kind); ok && kind != model.StatusUnknown {
		return st.Name
	}
	return "Other"
}
