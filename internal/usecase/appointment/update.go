package appointment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

// ======================================================
// INPUT
// ======================================================

// Patch carries only the fields present in the request. Fields the caller
// may not set are ignored.
type Patch struct {
	Status        *string
	FinalValue    *decimal.Decimal
	PaymentMethod *string
	Date          *string
	Time          *string
}

func (p Patch) reschedules() bool {
	return p.Date != nil || p.Time != nil
}

// ======================================================
// USE CASE
// ======================================================

type UpdateAppointment struct {
	repo  domain.Repository
	audit Auditor
}

func NewUpdateAppointment(repo domain.Repository, audit Auditor) *UpdateAppointment {
	return &UpdateAppointment{repo: repo, audit: audit}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	caller domain.Principal,
	appointmentID uint,
	patch Patch,
) (*models.Appointment, error) {

	var res patchResult

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		ap, err := repo.GetAppointment(ctx, appointmentID)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}

		barberID, err := callerBarberID(ctx, repo, caller)
		if err != nil {
			return err
		}

		caps := domain.ResolveCapabilities(caller, ap, barberID)
		if !caps.Any() {
			return httperr.ErrForbidden("forbidden")
		}

		res, err = applyPatch(ctx, repo, ap, caps, patch)
		return err
	})

	if errors.Is(err, domain.ErrSlotTaken) {
		return nil, conflict(uc.audit, "update", &caller.UserID, res.slot)
	}
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &caller.UserID,
		Action:   "appointment_updated",
		Entity:   "appointment",
		EntityID: &res.ap.ID,
		Metadata: res.metadata(),
	})

	return res.ap, nil
}

// ======================================================
// PATCH APPLICATION
// ======================================================

type patchResult struct {
	ap          *models.Appointment
	slot        domain.Slot
	oldStatus   string
	rescheduled bool
}

func (r patchResult) metadata() map[string]any {
	return map[string]any{
		"old_status":  r.oldStatus,
		"new_status":  r.ap.Status,
		"rescheduled": r.rescheduled,
	}
}

// applyPatch validates every permitted field before writing anything, so
// one bad field aborts the whole patch. Moving an appointment, or bringing
// a completed/cancelled one back to an active status, re-checks its slot.
func applyPatch(
	ctx context.Context,
	repo domain.Repository,
	ap *models.Appointment,
	caps domain.Capabilities,
	patch Patch,
) (patchResult, error) {

	res := patchResult{ap: ap, oldStatus: ap.Status}
	stored := domain.Status(ap.Status)

	status := stored
	if caps.CanSetStatus && patch.Status != nil {
		status = domain.Status(*patch.Status)
		if !status.IsValid() {
			return res, httperr.ErrBusiness("invalid_status")
		}
	}

	// Finished appointments keep their slot no matter who asks.
	if patch.reschedules() && !stored.CanReschedule() {
		return res, httperr.ErrBusiness("reschedule_not_allowed")
	}

	date, clock := ap.Date, ap.Time
	if caps.CanReschedule && patch.reschedules() {
		var err error
		if patch.Date != nil {
			if date, err = domain.ParseDate(*patch.Date); err != nil {
				return res, err
			}
		}
		if patch.Time != nil {
			if clock, err = domain.ParseTime(*patch.Time); err != nil {
				return res, err
			}
		}
	}
	res.rescheduled = date != ap.Date || clock != ap.Time

	res.slot = domain.Slot{BarberID: ap.BarberID, Date: date, Time: clock}
	reactivated := !stored.IsActive() && status.IsActive()
	if res.rescheduled || reactivated {
		if err := ensureFree(ctx, repo, res.slot, ap.ID); err != nil {
			return res, err
		}
	}

	ap.Status = string(status)
	ap.Date, ap.Time = date, clock
	if caps.CanSetValue {
		if patch.FinalValue != nil {
			v := *patch.FinalValue
			ap.FinalValue = &v
		}
		if patch.PaymentMethod != nil {
			ap.PaymentMethod = *patch.PaymentMethod
		}
	}

	if err := repo.UpdateAppointment(ctx, ap); err != nil {
		return res, err
	}

	updated, err := repo.GetAppointment(ctx, ap.ID)
	if err != nil {
		return res, err
	}
	res.ap = updated
	return res, nil
}
