package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/metrics"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

// Auditor is satisfied by *audit.Dispatcher.
type Auditor interface {
	Dispatch(ev audit.Event)
}

// lookup turns a missing record into a NotFound business error.
func lookup(err error, code string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return httperr.ErrNotFound(code)
	}
	return err
}

// callerBarberID returns the caller's barber profile id, or nil when the
// caller is not a barber or has no profile.
func callerBarberID(ctx context.Context, repo domain.Repository, p domain.Principal) (*uint, error) {
	if p.Role != models.RoleBarber {
		return nil, nil
	}
	b, err := repo.GetBarberByUserID(ctx, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b.ID, nil
}

// ensureFree fails with Conflict when another active appointment holds s.
func ensureFree(ctx context.Context, repo domain.Repository, s domain.Slot, excludeID uint) error {
	taken, err := repo.SlotTaken(ctx, s, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrSlotTaken
	}
	return nil
}

// conflict reports a slot collision on the metrics counter and the audit
// trail, and returns the caller-facing error.
func conflict(a Auditor, op string, userID *uint, s domain.Slot) error {
	metrics.ObserveConflict(op)
	a.Dispatch(audit.Event{
		UserID: userID,
		Action: "appointment_conflict",
		Entity: "appointment",
		Metadata: map[string]any{
			"operation": op,
			"barber_id": s.BarberID,
			"date":      s.Date,
			"time":      s.Time,
		},
	})
	return httperr.ErrConflict("time_conflict")
}
