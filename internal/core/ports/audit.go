package ports

import (
	"context"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

// AuditRepository persists audit events.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder accepts audit events for asynchronous persistence.
// Recording never blocks a request and never fails it.
type AuditRecorder interface {
	Record(event domain.AuditEvent)
}
