package ai

import "encoding/json"

// Project is a project as the analysis service expects it.
type Project struct {
	ID        int            `json:"id"`
	Name      string         `json:"nomProjet"`
	DateStart string         `json:"dateDebut,omitempty"`
	DateEnd   string         `json:"dateFin,omitempty"`
	Status    *ProjectStatus `json:"statutProjet,omitempty"`
	Budget    float64        `json:"budget"`
	Archived  bool           `json:"archived"`
	TeamID    *int           `json:"equipe_id,omitempty"`
}

// ProjectStatus is the nested project status.
type ProjectStatus struct {
	Name string `json:"nom"`
}

// Task is a task as the analysis service expects it.
type Task struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"idProjet"`
	DateStart string `json:"dateDebut,omitempty"`
	DateEnd   string `json:"dateFin,omitempty"`
	StatusID  int    `json:"idStatutTache"`
	Assignee  string `json:"assigne,omitempty"`
	Title     string `json:"titre"`
}

// Agent is an agent as the analysis service expects it.
type Agent struct {
	ID        int    `json:"id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	Email     string `json:"email"`
}

// Team is a team as the analysis service expects it.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"nom"`
	ManagerID int    `json:"responsable_id,omitempty"`
}

// Snapshot is the data set every request carries.
type Snapshot struct {
	Projects []Project `json:"projects"`
	Tasks    []Task    `json:"tasks"`
	Agents   []Agent   `json:"agents"`
	Teams    []Team    `json:"equipes"`
	Language string    `json:"language"`
}

// AnalysisRequest is the body of POST /analyze.
type AnalysisRequest struct {
	Query        string `json:"query"`
	FilterPeriod string `json:"filterPeriod"`
	Snapshot
}

// AnalysisResponse is the answer to an analysis query. StructuredData
// is kept raw; its shape depends on the question.
type AnalysisResponse struct {
	Response       string          `json:"response"`
	StructuredData json.RawMessage `json:"structured_data"`
}

// Kind returns structured_data.type, or "" when absent.
func (r AnalysisResponse) Kind() string {
	var sd struct {
		Type string `json:"type"`
	}
	if len(r.StructuredData) == 0 || json.Unmarshal(r.StructuredData, &sd) != nil {
		return ""
	}
	return sd.Type
}

type suggestResponse struct {
	Questions []string `json:"questions"`
}

type errorResponse struct {
	Detail any `json:"detail"`
}
