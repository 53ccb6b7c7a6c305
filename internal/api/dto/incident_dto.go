package dto

import "github.com/spec-kit/incident-service/internal/domain"

// IncidentResponse is the body returned after a successful registration.
type IncidentResponse struct {
	ID          string         `json:"id,omitempty"`
	ClientID    string         `json:"client_id"`
	Name        string         `json:"name"`
	Channel     domain.Channel `json:"channel"`
	ReportedBy  string         `json:"reported_by"`
	CreatedBy   string         `json:"created_by"`
	AssignedTo  string         `json:"assigned_to"`
	Description string         `json:"description"`
}

// SelfReportResponse is the body returned by the self-report endpoint.
type SelfReportResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Message string              `json:"message"`
	Code    int                 `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// NewIncidentResponse maps a submitted incident to its response body.
func NewIncidentResponse(incident *domain.Incident) IncidentResponse {
	return IncidentResponse{
		ID:          incident.ID,
		ClientID:    incident.ClientID,
		Name:        incident.Name,
		Channel:     incident.Channel,
		ReportedBy:  incident.ReportedBy,
		CreatedBy:   incident.CreatedBy,
		AssignedTo:  incident.AssignedTo,
		Description: incident.Description,
	}
}
