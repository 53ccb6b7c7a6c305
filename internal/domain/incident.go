package domain

// Incident is the normalized record submitted to the incident service.
type Incident struct {
	ID          string
	ClientID    string
	Name        string
	Channel     Channel
	ReportedBy  string
	CreatedBy   string
	AssignedTo  string
	Description string
}
