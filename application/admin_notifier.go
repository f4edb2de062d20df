package application

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// AdminNotifier delivers operational alerts to administrators
type AdminNotifier interface {
	NotifyAdmins(ctx context.Context, message string) error
}

// LogAdminNotifier writes alerts to the log for deployments with no chat transport
type LogAdminNotifier struct {
	adminIDs []int64
}

// NewLogAdminNotifier creates a notifier addressed to the given administrators
func NewLogAdminNotifier(adminIDs []int64) *LogAdminNotifier {
	return &LogAdminNotifier{adminIDs: adminIDs}
}

func (n *LogAdminNotifier) NotifyAdmins(ctx context.Context, message string) error {
	log.WithField("admins", n.adminIDs).Warn(message)
	return nil
}
