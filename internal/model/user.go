package model

import "strings"

// Roles recognised by the console.
const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// User is the identity the console acts as.
type User struct {
	ID    string `mapstructure:"id" yaml:"id"`
	Email string `mapstructure:"email" yaml:"email"`
	Role  string `mapstructure:"role" yaml:"role"`
}

// CanSee reports whether the task is visible to the user on the status
// board. Agents see tasks assigned to them, admins see everything, and
// any other role sees nothing.
func (u User) CanSee(t Task) bool {
	switch strings.ToLower(u.Role) {
	case RoleAdmin:
		return true
	case RoleAgent:
		return u.ID != "" && t.Assignee == u.ID
	default:
		return false
	}
}

// VisibleTasks filters tasks down to those the user can see.
func (u User) VisibleTasks(tasks []Task) []Task {
	visible := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if u.CanSee(t) {
			visible = append(visible, t)
		}
	}
	return visible
}
