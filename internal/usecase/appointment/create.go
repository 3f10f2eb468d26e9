package appointment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BarberID  uint
	ServiceID uint
	Date      string
	Time      string

	// FinalValue overrides the service price when set.
	FinalValue    *decimal.Decimal
	PaymentMethod string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo  domain.Repository
	audit Auditor
}

func NewCreateAppointment(repo domain.Repository, audit Auditor) *CreateAppointment {
	return &CreateAppointment{repo: repo, audit: audit}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	caller domain.Principal,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	var (
		created *models.Appointment
		slot    domain.Slot
	)

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		barber, err := repo.GetBarber(ctx, in.BarberID)
		if err != nil {
			return lookup(err, "barber_not_found")
		}

		service, err := repo.GetService(ctx, in.ServiceID)
		if err != nil {
			return lookup(err, "service_not_found")
		}

		date, clock, err := domain.ParseDateTime(in.Date, in.Time)
		if err != nil {
			return err
		}

		slot = domain.Slot{BarberID: barber.ID, Date: date, Time: clock}
		if err := ensureFree(ctx, repo, slot, 0); err != nil {
			return err
		}

		value := service.Price
		if in.FinalValue != nil {
			value = *in.FinalValue
		}

		ap := &models.Appointment{
			ClientID:      caller.UserID,
			BarberID:      barber.ID,
			ServiceID:     service.ID,
			Date:          date,
			Time:          clock,
			Status:        string(domain.InitialStatus()),
			FinalValue:    &value,
			PaymentMethod: in.PaymentMethod,
		}
		if err := repo.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		created, err = repo.GetAppointment(ctx, ap.ID)
		return err
	})

	if errors.Is(err, domain.ErrSlotTaken) {
		return nil, conflict(uc.audit, "create", &caller.UserID, slot)
	}
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &caller.UserID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &created.ID,
	})

	return created, nil
}
