package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/events"
	"github.com/spec-kit/incident-service/internal/repository"
	"github.com/spec-kit/incident-service/internal/validation"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

type fakeUsers struct {
	users map[string]*domain.User
	err   error
	calls []string
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	f.calls = append(f.calls, email)
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

type fakeEmployees struct {
	agents map[string]*domain.Employee
	calls  []string
}

func (f *fakeEmployees) GetRandomAgent(_ context.Context, clientID string) (*domain.Employee, error) {
	f.calls = append(f.calls, clientID)
	agent, ok := f.agents[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return agent, nil
}

type fakeIncidents struct {
	mu      sync.Mutex
	created []domain.Incident
	err     error
}

func (f *fakeIncidents) Create(_ context.Context, incident *domain.Incident) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, *incident)
	return nil
}

type fixture struct {
	svc       *IncidentService
	users     *fakeUsers
	employees *fakeEmployees
	incidents *fakeIncidents
	events    []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	policy, err := auth.NewPolicy()
	require.NoError(t, err)
	validator, err := validation.NewValidator(validation.IncidentSchemas(config.DefaultValidation())...)
	require.NoError(t, err)

	f := &fixture{
		users:     &fakeUsers{users: map[string]*domain.User{}},
		employees: &fakeEmployees{agents: map[string]*domain.Employee{}},
		incidents: &fakeIncidents{},
	}
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.EventIncidentCreated, func(_ context.Context, e events.Event) error {
		f.events = append(f.events, e)
		return nil
	})
	f.svc = NewIncidentService(IncidentDependencies{
		Policy:       policy,
		Validator:    validator,
		UserRepo:     f.users,
		EmployeeRepo: f.employees,
		IncidentRepo: f.incidents,
		Dispatcher:   dispatcher,
	})
	return f
}

func token(sub string, cid *string, role domain.Role) domain.Token {
	return domain.Token{Subject: sub, ClientID: cid, Role: role, Audience: "a"}
}

func ptr(s string) *string { return &s }

func assertDomainError(t *testing.T, err error, status int, message string) {
	t.Helper()
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, status, domainErr.HTTPStatus)
	if message != "" {
		assert.Equal(t, message, domainErr.Message)
	}
}

func TestReportSelf(t *testing.T) {
	f := newFixture(t)

	incident, err := f.svc.ReportSelf(context.Background(), token("u1", ptr("c1"), domain.RoleUser))
	require.NoError(t, err)

	want := domain.Incident{
		ClientID:    "c1",
		Name:        "Test Incident",
		Channel:     domain.ChannelMobile,
		ReportedBy:  "u1",
		CreatedBy:   "u1",
		AssignedTo:  "u1",
		Description: "This is a test incident",
	}
	assert.Equal(t, want, *incident)
	assert.Equal(t, []domain.Incident{want}, f.incidents.created)
	require.Len(t, f.events, 1)
	assert.Equal(t, events.EventIncidentCreated, f.events[0].Type)
}

func TestReportSelfAnyRole(t *testing.T) {
	f := newFixture(t)
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleAnalyst} {
		_, err := f.svc.ReportSelf(context.Background(), token("u1", nil, role))
		assert.NoError(t, err)
	}
	assert.Len(t, f.incidents.created, 3)
}

func TestReportSelfSubmissionFailure(t *testing.T) {
	f := newFixture(t)
	f.incidents.err = apperrors.NewUnexpectedError(errors.New("status 500"))

	_, err := f.svc.ReportSelf(context.Background(), token("u1", ptr("c1"), domain.RoleUser))
	assertDomainError(t, err, 500, "")
	assert.Empty(t, f.events)
}

func TestRegisterWebSuccess(t *testing.T) {
	f := newFixture(t)
	f.users.users["a@b.com"] = &domain.User{ID: "user1", ClientID: "c1", Email: "a@b.com"}

	incident, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleAdmin),
		[]byte(`{"email":"a@b.com","name":"Fire","description":"smoke"}`))
	require.NoError(t, err)

	assert.Equal(t, "Fire", incident.Name)
	assert.Equal(t, domain.ChannelWeb, incident.Channel)
	assert.Equal(t, "user1", incident.ReportedBy)
	assert.Equal(t, "u1", incident.CreatedBy)
	assert.Equal(t, "u1", incident.AssignedTo)
	assert.Equal(t, "c1", incident.ClientID)
	assert.Equal(t, "smoke", incident.Description)
	assert.Len(t, f.incidents.created, 1)
}

func TestRegisterWebForbiddenRoles(t *testing.T) {
	f := newFixture(t)
	for _, role := range []domain.Role{domain.RoleUser, domain.RoleAnalyst} {
		_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), role), []byte(`{}`))
		assertDomainError(t, err, 403, "Forbidden: You do not have access to this resource.")
	}
	_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleUser), nil)
	assertDomainError(t, err, 403, "")
	assert.Empty(t, f.users.calls)
}

func TestRegisterWebNoClientBeforeBodyValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterWeb(context.Background(), token("u1", nil, domain.RoleAdmin), []byte(`not json`))
	assertDomainError(t, err, 401, "Unauthorized: You do not belong to any client.")
}

func TestRegisterWebInvalidBodySkipsLookup(t *testing.T) {
	f := newFixture(t)

	bodies := []string{
		`{"name":"test"}`,
		`{"email":"nope","name":"Fire","description":"smoke"}`,
		`{"email":"a@b","name":"Fire","description":"smoke"}`,
		`{"email":"a@[127.0.0.1]","name":"Fire","description":"smoke"}`,
		``,
		`[]`,
	}
	for _, body := range bodies {
		_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleAgent), []byte(body))
		assertDomainError(t, err, 400, "")
	}
	assert.Empty(t, f.users.calls)
	assert.Empty(t, f.incidents.created)
}

func TestRegisterWebUserNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleAdmin),
		[]byte(`{"email":"ghost@b.com","name":"Fire","description":"smoke"}`))
	assertDomainError(t, err, 404, "Invalid value for email: User does not exist.")
	assert.Empty(t, f.incidents.created)
}

func TestRegisterWebUserOfOtherClient(t *testing.T) {
	f := newFixture(t)
	f.users.users["a@b.com"] = &domain.User{ID: "user1", ClientID: "c9", Email: "a@b.com"}

	_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleAdmin),
		[]byte(`{"email":"a@b.com","name":"Fire","description":"smoke"}`))
	assertDomainError(t, err, 401, "Unauthorized: User does not belong to your client.")
	assert.Empty(t, f.incidents.created)
}

func TestRegisterWebLookupUnavailable(t *testing.T) {
	f := newFixture(t)
	f.users.err = apperrors.NewUpstreamUnavailable(context.DeadlineExceeded)

	_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleAdmin),
		[]byte(`{"email":"a@b.com","name":"Fire","description":"smoke"}`))
	assertDomainError(t, err, 503, "Upstream service unavailable.")
}

func TestRegisterMobileSuccess(t *testing.T) {
	f := newFixture(t)
	f.employees.agents["c2"] = &domain.Employee{ID: "agent7", ClientID: "c2", Role: domain.RoleAgent}

	incident, err := f.svc.RegisterMobile(context.Background(), token("u2", ptr("c2"), domain.RoleUser),
		[]byte(`{"name":"Flood","description":"water everywhere"}`))
	require.NoError(t, err)

	assert.Equal(t, domain.ChannelMobile, incident.Channel)
	assert.Equal(t, "u2", incident.ReportedBy)
	assert.Equal(t, "u2", incident.CreatedBy)
	assert.Equal(t, "agent7", incident.AssignedTo)
	assert.Equal(t, []string{"c2"}, f.employees.calls)
}

func TestRegisterMobileNoAgent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterMobile(context.Background(), token("u2", ptr("c2"), domain.RoleUser),
		[]byte(`{"name":"Flood","description":"water"}`))
	assertDomainError(t, err, 404, "No agents available to assign the incident.")
	assert.Empty(t, f.incidents.created)
}

func TestRegisterMobileWithoutClientSkipsLookup(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterMobile(context.Background(), token("u2", nil, domain.RoleUser),
		[]byte(`{"name":"Flood","description":"water"}`))
	assertDomainError(t, err, 404, "No agents available to assign the incident.")
	assert.Empty(t, f.employees.calls)
}

func TestRegisterMobileForbidden(t *testing.T) {
	f := newFixture(t)
	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleAgent, domain.RoleAnalyst} {
		_, err := f.svc.RegisterMobile(context.Background(), token("u2", ptr("c2"), role),
			[]byte(`{"name":"Flood","description":"water"}`))
		assertDomainError(t, err, 403, "Forbidden: You do not have access to this resource.")
	}
}

func TestRegisterMobileInvalidBody(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterMobile(context.Background(), token("u2", ptr("c2"), domain.RoleUser),
		[]byte(`{"name":"Flood"}`))
	assertDomainError(t, err, 400, "")
	assert.Empty(t, f.employees.calls)
}

func TestRegisterWebIsNotIdempotent(t *testing.T) {
	f := newFixture(t)
	f.users.users["a@b.com"] = &domain.User{ID: "user1", ClientID: "c1"}
	body := []byte(`{"email":"a@b.com","name":"Fire","description":"smoke"}`)

	for i := 0; i < 2; i++ {
		_, err := f.svc.RegisterWeb(context.Background(), token("u1", ptr("c1"), domain.RoleAdmin), body)
		require.NoError(t, err)
	}
	assert.Len(t, f.incidents.created, 2)
	require.Len(t, f.events, 2)
	assert.NotEqual(t, f.events[0].ID, f.events[1].ID)
}
