package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/incident-service/internal/auth"
	"github.com/spec-kit/incident-service/internal/domain"
	apperrors "github.com/spec-kit/incident-service/pkg/util/errorutil"
)

type capturedRequest struct {
	Method        string
	Path          string
	Authorization string
	Body          map[string]any
}

func newServer(t *testing.T, status int, response string, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := capturedRequest{
			Method:        r.Method,
			Path:          r.URL.EscapedPath(),
			Authorization: r.Header.Get("Authorization"),
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &req.Body)
		}
		if captured != nil {
			*captured = append(*captured, req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	var calls []capturedRequest
	srv := newServer(t, http.StatusOK, `{"id":"user1","clientId":"c1","name":"Ann","email":"a@b.com"}`, &calls)
	repo := NewUserRepository(srv.URL+"/", nil, nil)

	user, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, &domain.User{ID: "user1", ClientID: "c1", Name: "Ann", Email: "a@b.com"}, user)

	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "/api/v1/users/by-email/a@b.com", calls[0].Path)
	assert.Empty(t, calls[0].Authorization)
}

func TestUserRepositoryNotFound(t *testing.T) {
	srv := newServer(t, http.StatusNotFound, `{}`, nil)
	repo := NewUserRepository(srv.URL, nil, nil)

	user, err := repo.FindByEmail(context.Background(), "ghost@b.com")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryUnexpectedStatus(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusCreated, http.StatusBadRequest} {
		srv := newServer(t, status, `{}`, nil)
		repo := NewUserRepository(srv.URL, nil, nil)

		_, err := repo.FindByEmail(context.Background(), "a@b.com")
		assert.True(t, apperrors.IsKind(err, apperrors.CodeUnexpected), "status %d", status)
	}
}

func TestUserRepositorySendsBearerToken(t *testing.T) {
	var calls []capturedRequest
	srv := newServer(t, http.StatusOK, `{"id":"user1","clientId":"c1"}`, &calls)
	repo := NewUserRepository(srv.URL, nil, auth.StaticTokenProvider("svc-token"))

	_, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "Bearer svc-token", calls[0].Authorization)
}

func TestEmployeeRepositoryGetRandomAgent(t *testing.T) {
	var calls []capturedRequest
	srv := newServer(t, http.StatusOK, `{"id":"agent7","clientId":"c2","name":"Bo","email":"bo@c2.com","role":"agent","invitationStatus":"accepted","invitationDate":"2024-01-01"}`, &calls)
	repo := NewEmployeeRepository(srv.URL, nil, nil)

	agent, err := repo.GetRandomAgent(context.Background(), "c2")
	require.NoError(t, err)
	assert.Equal(t, "agent7", agent.ID)
	assert.Equal(t, domain.RoleAgent, agent.Role)
	require.Len(t, calls, 1)
	assert.Equal(t, "/api/v1/employees/c2/agents/random", calls[0].Path)
}

func TestEmployeeRepositoryNoAgent(t *testing.T) {
	srv := newServer(t, http.StatusNotFound, ``, nil)
	repo := NewEmployeeRepository(srv.URL, nil, nil)

	_, err := repo.GetRandomAgent(context.Background(), "c2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncidentRepositoryCreate(t *testing.T) {
	var calls []capturedRequest
	srv := newServer(t, http.StatusCreated, ``, &calls)
	repo := NewIncidentRepository(srv.URL, nil, nil)

	incident := &domain.Incident{
		ClientID:    "c1",
		Name:        "Fire",
		Channel:     domain.ChannelWeb,
		ReportedBy:  "user1",
		CreatedBy:   "u1",
		AssignedTo:  "u1",
		Description: "smoke",
	}
	require.NoError(t, repo.Create(context.Background(), incident))
	assert.Empty(t, incident.ID)

	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, "/api/v1/incidents", calls[0].Path)
	assert.Equal(t, map[string]any{
		"clientId":    "c1",
		"name":        "Fire",
		"channel":     "web",
		"reportedBy":  "user1",
		"createdBy":   "u1",
		"assignedTo":  "u1",
		"description": "smoke",
	}, calls[0].Body)
}

func TestIncidentRepositoryCreateReadsAssignedID(t *testing.T) {
	srv := newServer(t, http.StatusCreated, `{"id":"inc-42"}`, nil)
	repo := NewIncidentRepository(srv.URL, nil, nil)

	incident := &domain.Incident{Name: "Fire", Channel: domain.ChannelMobile}
	require.NoError(t, repo.Create(context.Background(), incident))
	assert.Equal(t, "inc-42", incident.ID)
}

func TestIncidentRepositoryCreateNullClient(t *testing.T) {
	var calls []capturedRequest
	srv := newServer(t, http.StatusCreated, ``, &calls)
	repo := NewIncidentRepository(srv.URL, nil, nil)

	require.NoError(t, repo.Create(context.Background(), &domain.Incident{Name: "Test Incident"}))
	require.Len(t, calls, 1)
	value, present := calls[0].Body["clientId"]
	assert.True(t, present)
	assert.Nil(t, value)
}

func TestIncidentRepositoryCreateUnexpectedError(t *testing.T) {
	srv := newServer(t, http.StatusInternalServerError, `{}`, nil)
	repo := NewIncidentRepository(srv.URL, nil, nil)

	err := repo.Create(context.Background(), &domain.Incident{Name: "Fire"})
	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeUnexpected, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestRESTClientTimeoutIsUpstreamUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	repo := NewIncidentRepository(srv.URL, &http.Client{Timeout: 20 * time.Millisecond}, nil)
	err := repo.Create(context.Background(), &domain.Incident{Name: "Fire"})

	domainErr := apperrors.ToDomainError(err)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeUpstreamUnavailable, domainErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, domainErr.HTTPStatus)
}

func TestRESTClientConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	repo := NewUserRepository(url, nil, nil)
	_, err := repo.FindByEmail(context.Background(), "a@b.com")
	assert.True(t, apperrors.IsKind(err, apperrors.CodeUpstreamUnavailable))
}
