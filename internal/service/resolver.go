package service

import (
	"context"
	"errors"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

const (
	msgUserNotFound    = "Invalid value for email: User does not exist."
	msgUserOtherClient = "Unauthorized: User does not belong to your client."
	msgNoAgents        = "No agents available to assign the incident."
)

// Resolver finds the user an incident is about, or the agent it is assigned to.
type Resolver struct {
	users     repository.UserRepository
	employees repository.EmployeeRepository
}

// NewResolver creates the resolver.
func NewResolver(users repository.UserRepository, employees repository.EmployeeRepository) *Resolver {
	return &Resolver{users: users, employees: employees}
}

// ResolveReporter looks a user up by email and checks it belongs to clientID.
func (r *Resolver) ResolveReporter(ctx context.Context, email, clientID string) (*domain.User, error) {
	user, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(msgUserNotFound)
		}
		return nil, apperrors.MapError(err)
	}
	if user.ClientID != clientID {
		return nil, apperrors.NewUnauthorized(msgUserOtherClient)
	}
	return user, nil
}

// ResolveAssignee picks a random active agent of the client.
func (r *Resolver) ResolveAssignee(ctx context.Context, clientID string) (*domain.Employee, error) {
	if clientID == "" {
		return nil, apperrors.NewNotFound(msgNoAgents)
	}
	agent, err := r.employees.GetRandomAgent(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(msgNoAgents)
		}
		return nil, apperrors.MapError(err)
	}
	return agent, nil
}
