package model

import "time"

// Project groups tasks on the backend.
type Project struct {
	ID         int       `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	StatusName string    `json:"status_name" db:"status_name"`
	DateStart  string    `json:"date_start" db:"date_start"`
	DateEnd    string    `json:"date_end" db:"date_end"`
	Budget     float64   `json:"budget" db:"budget"`
	Archived   bool      `json:"archived" db:"archived"`
	TeamID     int       `json:"team_id" db:"team_id"`
	FetchedAt  time.Time `json:"fetched_at" db:"fetched_at"`
}

// Agent is a help-desk agent that tasks can be assigned to.
type Agent struct {
	ID        int    `json:"id"`
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

// DisplayName returns "First Last", falling back to the email.
func (a Agent) DisplayName() string {
	switch {
	case a.FirstName != "" && a.LastName != "":
		return a.FirstName + " " + a.LastName
	case a.LastName != "":
		return a.LastName
	case a.FirstName != "":
		return a.FirstName
	default:
		return a.Email
	}
}

// Team is a group of agents.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ManagerID int    `json:"manager_id,omitempty"`
}
