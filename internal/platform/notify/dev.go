package notify

import (
	"context"

	"github.com/craftlink/marketplace-api/pkg/logger"
)

type DevNotifier struct{}

func NewDevNotifier() *DevNotifier {
	return &DevNotifier{}
}

func (d *DevNotifier) BanNotice(_ context.Context, email, name, kind, reason, expiresAt string) error {
	logger.Info("📧 [DEV MAIL] Ban Notice",
		"to", email,
		"name", name,
		"kind", kind,
		"reason", reason,
		"expires_at", expiresAt,
	)
	return nil
}
