package worker

import (
	"github.com/campus-mts/mts/internal/service"
)

// StartNotificationWorker starts the pool backing the event dispatcher and registers notification handlers.
func StartNotificationWorker(pool *Pool, notificationService *service.NotificationService) {
	if pool != nil {
		pool.Start()
	}
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
