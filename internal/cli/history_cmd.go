package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/helpdesk-console/internal/model"
	"github.com/nhle/helpdesk-console/internal/timer"
)

func newHistoryCmd(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recorded timer sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := env.OpenStore()
			if err != nil {
				return err
			}
			defer s.Close()

			sessions, err := s.GetSessions(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No timer sessions recorded yet.")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), sessionTable(sessions))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to print (0 for all)")

	return cmd
}

func sessionTable(sessions []model.SessionRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ENDED", "TASK", "ALLOTTED", "EXTRA", "OUTCOME", "PROGRESS")

	for _, s := range sessions {
		extra := "-"
		if s.ExtraSeconds > 0 {
			extra = timer.FormatHMS(s.ExtraSeconds)
		}
		t.Row(
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("#%d %s", s.TaskID, s.TaskTitle),
			timer.FormatHMS(s.AllottedSeconds),
			extra,
			string(s.Outcome),
			strconv.Itoa(s.Progress)+"%",
		)
	}
	return t.String()
}
