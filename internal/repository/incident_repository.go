package repository

import (
	"context"
	"net/http"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
)

// IncidentRepository submits incidents to the incident management service.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
}

type incidentCreateRequest struct {
	ClientID    *string `json:"clientId"`
	Name        string  `json:"name"`
	Channel     string  `json:"channel"`
	ReportedBy  string  `json:"reportedBy"`
	CreatedBy   string  `json:"createdBy"`
	AssignedTo  string  `json:"assignedTo"`
	Description string  `json:"description"`
}

type incidentCreateResponse struct {
	ID string `json:"id"`
}

type incidentRepository struct {
	rest restClient
}

// NewIncidentRepository returns a REST-backed implementation.
func NewIncidentRepository(baseURL string, client *http.Client, tokens auth.TokenProvider) IncidentRepository {
	return &incidentRepository{rest: newRESTClient("incident service", baseURL, client, tokens)}
}

// Create posts the incident; only 201 counts as success. A server-assigned id,
// when the response carries one, is written back to incident.ID.
func (r *incidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	const path = "/api/v1/incidents"

	req := incidentCreateRequest{
		Name:        incident.Name,
		Channel:     string(incident.Channel),
		ReportedBy:  incident.ReportedBy,
		CreatedBy:   incident.CreatedBy,
		AssignedTo:  incident.AssignedTo,
		Description: incident.Description,
	}
	if incident.ClientID != "" {
		clientID := incident.ClientID
		req.ClientID = &clientID
	}

	status, body, err := r.rest.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return err
	}
	if status != http.StatusCreated {
		return r.rest.unexpected(http.MethodPost, path, status)
	}

	var resp incidentCreateResponse
	if len(body) > 0 && r.rest.decode(body, &resp) == nil && resp.ID != "" {
		incident.ID = resp.ID
	}
	return nil
}
