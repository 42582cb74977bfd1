package timer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nhle/helpdesk-console/internal/model"
)

// StatusSet resolves the backend's free-form status names to lifecycle
// kinds by alias substring matching.
type StatusSet struct {
	statuses []model.Status
	aliases  model.StatusAliases
}

// NewStatusSet builds a resolver over statuses.
func NewStatusSet(statuses []model.Status, aliases model.StatusAliases) StatusSet {
	return StatusSet{statuses: statuses, aliases: aliases}
}

// Find returns the first status whose name matches kind.
func (s StatusSet) Find(kind model.StatusKind) (model.Status, bool) {
	for _, st := range s.statuses {
		if s.KindOfName(st.Name) == kind {
			return st, true
		}
	}
	return model.Status{}, false
}

// KindOf returns the kind of the status with the given id.
func (s StatusSet) KindOf(statusID int) model.StatusKind {
	for _, st := range s.statuses {
		if st.ID == statusID {
			return s.KindOfName(st.Name)
		}
	}
	return model.StatusUnknown
}

// Name returns the display name of a status id, or "" when unknown.
func (s StatusSet) Name(statusID int) string {
	for _, st := range s.statuses {
		if st.ID == statusID {
			return st.Name
		}
	}
	return ""
}

// KindOfName classifies a status name. When aliases overlap, done wins
// over in-progress, which wins over to-do.
func (s StatusSet) KindOfName(name string) model.StatusKind {
	folded := Fold(name)
	switch {
	case matchesAny(folded, s.aliases.Done):
		return model.StatusDone
	case matchesAny(folded, s.aliases.InProgress):
		return model.StatusInProgress
	case matchesAny(folded, s.aliases.Todo):
		return model.StatusTodo
	default:
		return model.StatusUnknown
	}
}

// Group buckets tasks by the kind of their status, keeping input order
// within each bucket.
func (s StatusSet) Group(tasks []model.Task) map[model.StatusKind][]model.Task {
	groups := make(map[model.StatusKind][]model.Task, 4)
	for _, t := range tasks {
		kind := s.KindOf(t.StatusID)
		groups[kind] = append(groups[kind], t)
	}
	return groups
}

// Statuses returns the underlying list.
func (s StatusSet) Statuses() []model.Status {
	return s.statuses
}

func matchesAny(folded string, aliases []string) bool {
	for _, a := range aliases {
		a = Fold(a)
		if a != "" && strings.Contains(folded, a) {
			return true
		}
	}
	return false
}

// Fold lowercases s and strips diacritics, so "À faire" and "a faire"
// compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
