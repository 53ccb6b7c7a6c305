package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/validation"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

// SelfReportIncidentID is the fixed id returned by the self-report endpoint.
const SelfReportIncidentID = "753f5554-c545-447d-8a4d-4eccda9e952a"

const (
	selfReportName        = "Test Incident"
	selfReportDescription = "This is a test incident"
)

// WebRegistration is the validated body of a web incident registration.
type WebRegistration struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MobileRegistration is the validated body of a mobile incident registration.
type MobileRegistration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// IncidentService runs the intake pipeline: authorize, validate, resolve, submit.
// Each stage returns a *DomainError on failure and the pipeline stops there.
type IncidentService struct {
	policy     *auth.Policy
	validator  *validation.Validator
	resolver   *Resolver
	incidents  repository.IncidentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IncidentDependencies bundles collaborators for the incident service.
type IncidentDependencies struct {
	Policy       *auth.Policy
	Validator    *validation.Validator
	UserRepo     repository.UserRepository
	EmployeeRepo repository.EmployeeRepository
	IncidentRepo repository.IncidentRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewIncidentService constructs the service.
func NewIncidentService(deps IncidentDependencies) *IncidentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{
		policy:     deps.Policy,
		validator:  deps.Validator,
		resolver:   NewResolver(deps.UserRepo, deps.EmployeeRepo),
		incidents:  deps.IncidentRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ReportSelf submits a placeholder incident on behalf of the caller. The body is
// ignored.
func (s *IncidentService) ReportSelf(ctx context.Context, token domain.Token) (*domain.Incident, error) {
	if err := s.policy.Authorize(token, auth.VariantSelfReport); err != nil {
		return nil, err
	}

	incident := &domain.Incident{
		ClientID:    token.Client(),
		Name:        selfReportName,
		Channel:     domain.ChannelMobile,
		ReportedBy:  token.Subject,
		CreatedBy:   token.Subject,
		AssignedTo:  token.Subject,
		Description: selfReportDescription,
	}
	if err := s.submit(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// RegisterWeb registers an incident reported through the web console on behalf of a user.
func (s *IncidentService) RegisterWeb(ctx context.Context, token domain.Token, body []byte) (*domain.Incident, error) {
	if err := s.policy.Authorize(token, auth.VariantWeb); err != nil {
		return nil, err
	}

	var input WebRegistration
	if err := s.validator.Decode(validation.SchemaIncidentWeb, body, &input); err != nil {
		return nil, err
	}

	user, err := s.resolver.ResolveReporter(ctx, input.Email, token.Client())
	if err != nil {
		return nil, err
	}

	incident := &domain.Incident{
		ClientID:    token.Client(),
		Name:        input.Name,
		Channel:     domain.ChannelWeb,
		ReportedBy:  user.ID,
		CreatedBy:   token.Subject,
		AssignedTo:  token.Subject,
		Description: input.Description,
	}
	if err := s.submit(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

// RegisterMobile registers an incident reported by a user from the mobile app and
// assigns it to a random agent of the user's client.
func (s *IncidentService) RegisterMobile(ctx context.Context, token domain.Token, body []byte) (*domain.Incident, error) {
	if err := s.policy.Authorize(token, auth.VariantMobile); err != nil {
		return nil, err
	}

	var input MobileRegistration
	if err := s.validator.Decode(validation.SchemaIncidentMobile, body, &input); err != nil {
		return nil, err
	}

	agent, err := s.resolver.ResolveAssignee(ctx, token.Client())
	if err != nil {
		return nil, err
	}

	incident := &domain.Incident{
		ClientID:    token.Client(),
		Name:        input.Name,
		Channel:     domain.ChannelMobile,
		ReportedBy:  token.Subject,
		CreatedBy:   token.Subject,
		AssignedTo:  agent.ID,
		Description: input.Description,
	}
	if err := s.submit(ctx, incident); err != nil {
		return nil, err
	}
	return incident, nil
}

func (s *IncidentService) submit(ctx context.Context, incident *domain.Incident) error {
	if err := s.incidents.Create(ctx, incident); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("incident submitted",
		zap.String("incident_id", incident.ID),
		zap.String("client_id", incident.ClientID),
		zap.String("channel", string(incident.Channel)),
		zap.String("created_by", incident.CreatedBy))
	s.publishEvent(ctx, incident)
	return nil
}

func (s *IncidentService) publishEvent(ctx context.Context, incident *domain.Incident) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventIncidentCreated,
		IncidentID: incident.ID,
		ActorID:    incident.CreatedBy,
		Timestamp:  time.Now(),
		Payload: events.IncidentCreatedPayload{
			ClientID:   incident.ClientID,
			Name:       incident.Name,
			Channel:    incident.Channel,
			ReportedBy: incident.ReportedBy,
			CreatedBy:  incident.CreatedBy,
			AssignedTo: incident.AssignedTo,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("incident event handlers failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}
