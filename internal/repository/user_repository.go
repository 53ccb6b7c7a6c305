package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
)

// ErrNotFound is returned when a collaborator reports the entity does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository looks up reporting users in the user service.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRecord struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type userRepository struct {
	rest restClient
}

// NewUserRepository returns a REST-backed implementation.
func NewUserRepository(baseURL string, client *http.Client, tokens auth.TokenProvider) UserRepository {
	return &userRepository{rest: newRESTClient("user service", baseURL, client, tokens)}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	path := "/api/v1/users/by-email/" + url.PathEscape(email)

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

	var rec userRecord
	if err := r.rest.decode(body, &rec); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:       rec.ID,
		ClientID: rec.ClientID,
		Name:     rec.Name,
		Email:    rec.Email,
	}, nil
}
