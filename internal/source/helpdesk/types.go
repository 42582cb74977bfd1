package helpdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Task is a task as served by GET /tasks and GET /tasks/{id}.
type Task struct {
	ID          int     `json:"id"`
	ProjectID   int     `json:"idProjet"`
	Title       string  `json:"titre"`
	Description string  `json:"descriptionTache"`
	StatusID    int     `json:"idStatutTache"`
	Priority    string  `json:"periorite"`
	Price       float64 `json:"prix"`
	Duration    string  `json:"dure"`
	DateStart   string  `json:"dateDebut"`
	DateEnd     string  `json:"dateFin"`
	Assignee    FlexID  `json:"assigne"`
	Progress    int     `json:"avancement"`
}

// TaskPayload is the full representation accepted by PUT /tasks/{id}.
// Optional fields are sent as null rather than empty strings.
type TaskPayload struct {
	ProjectID   int     `json:"idProjet"`
	Title       string  `json:"titre"`
	Description *string `json:"descriptionTache"`
	StatusID    int     `json:"idStatutTache"`
	Priority    string  `json:"periorite"`
	Price       float64 `json:"prix"`
	Duration    string  `json:"dure"`
	DateStart   *string `json:"dateDebut"`
	DateEnd     *string `json:"dateFin"`
	Assignee    any     `json:"assigne"`
	Progress    int     `json:"avancement"`
}

// Status is an entry of GET /statuts.
type Status struct {
	ID   int    `json:"id"`
	Name string `json:"nomStatut"`
}

// ProjectStatus is the nested status object of a project.
type ProjectStatus struct {
	Name string `json:"nom"`
}

// Project is an entry of GET /projects.
type Project struct {
	ID        int            `json:"id"`
	Name      string         `json:"nomProjet"`
	DateStart string         `json:"dateDebut"`
	DateEnd   string         `json:"dateFin"`
	Budget    float64        `json:"budget"`
	Archived  bool           `json:"archived"`
	Status    *ProjectStatus `json:"statutProjet"`
	TeamID    FlexID         `json:"equipe_id"`
}

// Agent is an entry of GET /agents.
type Agent struct {
	ID        int    `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email"`
}

// Team is an entry of GET /equipes.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"nom"`
	ManagerID FlexID `json:"manager_id"`
}

// Account is an entry of GET /utilisateurs.
type Account struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Password string `json:"motDePasseUtilisateur"`
	Role     string `json:"typeUtilisateur"`
}

// ErrorResponse is the error body the backend returns on failure.
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FlexID decodes an identifier the backend sends either as a JSON
// number or as a string. null decodes to "".
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding id %s: %w", data, err)
	}
	*f = FlexID(n.String())
	return nil
}

// Int returns the id as an integer, or 0 when it is not numeric.
func (f FlexID) Int() int {
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return 0
	}
	return n
}
