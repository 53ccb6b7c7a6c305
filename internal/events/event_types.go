package events

import (
	"time"

	"github.com/spec-kit/incident-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIncidentCreated EventType = "incident_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	IncidentID string      `json:"incident_id,omitempty"`
	ActorID    string      `json:"actor_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// IncidentCreatedPayload payload.
type IncidentCreatedPayload struct {
	ClientID   string         `json:"client_id"`
	Name       string         `json:"name"`
	Channel    domain.Channel `json:"channel"`
	ReportedBy string         `json:"reported_by"`
	CreatedBy  string         `json:"created_by"`
	AssignedTo string         `json:"assigned_to"`
}
