package worker

import (
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/service"
)

// StartNotificationWorker subscribes the notification service to domain events.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	if logger != nil {
		logger.Info("notification handlers registered")
	}
}
