package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sign-identity/identity-api/internal/core/domain"
)

type collectingAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *collectingAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	return nil
}

func (r *collectingAuditRepo) snapshot() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuditEvent(nil), r.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	repo := &collectingAuditRepo{}
	d := NewDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AuditEvent{Action: domain.AuditLogin, SubjectID: "acc-1", Timestamp: time.Now()})
	d.Record(domain.AuditEvent{Action: domain.AuditLogout, SubjectID: "acc-2", Timestamp: time.Now()})

	waitFor(t, func() bool { return len(repo.snapshot()) == 2 })
}

func TestDispatcher_PerSubjectOrdering(t *testing.T) {
	repo := &collectingAuditRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	actions := []domain.AuditAction{domain.AuditRegister, domain.AuditLogin, domain.AuditUpdate, domain.AuditSoftDelete}
	for _, a := range actions {
		d.Record(domain.AuditEvent{Action: a, SubjectID: "acc-1", Timestamp: time.Now()})
	}

	waitFor(t, func() bool { return len(repo.snapshot()) == len(actions) })

	got := repo.snapshot()
	for i, a := range actions {
		if got[i].Action != a {
			t.Fatalf("events for one subject out of order: %v", got)
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, &collectingAuditRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
