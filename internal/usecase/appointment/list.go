package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/dto"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
)

// ListAppointments applies the role visibility policy: managers see every
// appointment, barbers with a profile their own agenda, everybody else
// the appointments they booked. Newest slot first.
type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	caller domain.Principal,
) ([]dto.AppointmentDTO, error) {

	var f domain.ListFilter

	if !caller.IsManager() {
		barberID, err := callerBarberID(ctx, uc.repo, caller)
		if err != nil {
			return nil, err
		}
		if barberID != nil {
			f.BarberID = barberID
		} else {
			f.ClientID = &caller.UserID
		}
	}

	apps, err := uc.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(apps), nil
}

type ListClientAppointments struct {
	repo domain.Repository
}

func NewListClientAppointments(repo domain.Repository) *ListClientAppointments {
	return &ListClientAppointments{repo: repo}
}

func (uc *ListClientAppointments) Execute(
	ctx context.Context,
	caller domain.Principal,
	clientID uint,
) ([]dto.AppointmentDTO, error) {

	if !caller.IsManager() && caller.UserID != clientID {
		return nil, httperr.ErrForbidden("forbidden")
	}

	apps, err := uc.repo.ListAppointments(ctx, domain.ListFilter{ClientID: &clientID})
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(apps), nil
}
