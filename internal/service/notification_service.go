package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/events"
)

// Publisher sends serialized events to an external channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService fans incident events out to subscribers outside the process.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher Publisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIncidentCreated, n.handleIncidentCreated)
}

func (n *NotificationService) handleIncidentCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("IncidentCreated", zap.String("event_id", event.ID), zap.String("incident_id", event.IncidentID), zap.Any("payload", event.Payload))
	if n.publisher == nil || n.cfg.Channel == "" {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}
	if err := n.publisher.Publish(ctx, n.cfg.Channel, data); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	n.logger.Debug("incident event published", zap.String("channel", n.cfg.Channel), zap.String("event_id", event.ID))
	return nil
}
