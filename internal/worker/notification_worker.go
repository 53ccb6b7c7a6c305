package worker

import (
	"github.com/spec-kit/incident-service/internal/service"
)

// StartNotificationWorker registers incident event subscribers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
