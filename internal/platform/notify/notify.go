package notify

import "context"

// Notifier delivers best-effort account notices. Failures are logged by
// callers and never block the operation that triggered the notice.
type Notifier interface {
	BanNotice(ctx context.Context, email, name, kind, reason string, expiresAt string) error
}
