package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
)

// EmployeeRepository looks up client employees in the employee service.
type EmployeeRepository interface {
	GetRandomAgent(ctx context.Context, clientID string) (*domain.Employee, error)
}

type employeeRecord struct {
	ID               string `json:"id"`
	ClientID         string `json:"clientId"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	InvitationStatus string `json:"invitationStatus"`
	InvitationDate   string `json:"invitationDate"`
}

type employeeRepository struct {
	rest restClient
}

// NewEmployeeRepository returns a REST-backed implementation.
func NewEmployeeRepository(baseURL string, client *http.Client, tokens auth.TokenProvider) EmployeeRepository {
	return &employeeRepository{rest: newRESTClient("employee service", baseURL, client, tokens)}
}

// GetRandomAgent asks the employee service to pick an active agent of the client.
func (r *employeeRepository) GetRandomAgent(ctx context.Context, clientID string) (*domain.Employee, error) {
	path := "/api/v1/employees/" + url.PathEscape(clientID) + "/agents/random"

	status, body, err := r.rest.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, r.rest.unexpected(http.MethodGet, path, status)
	}

	var rec employeeRecord
	if err := r.rest.decode(body, &rec); err != nil {
		return nil, err
	}
	return &domain.Employee{
		ID:               rec.ID,
		ClientID:         rec.ClientID,
		Name:             rec.Name,
		Email:            rec.Email,
		Role:             domain.Role(rec.Role),
		InvitationStatus: rec.InvitationStatus,
		InvitationDate:   rec.InvitationDate,
	}, nil
}
