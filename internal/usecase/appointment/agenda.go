package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/dto"
	"github.com/BruksfildServices01/barberflow/internal/timezone"
)

// BarberAgenda lists one barber's appointments in chronological order,
// either for a single day or from today onwards.
type BarberAgenda struct {
	repo  domain.Repository
	clock timezone.Clock
}

func NewBarberAgenda(repo domain.Repository, clock timezone.Clock) *BarberAgenda {
	return &BarberAgenda{repo: repo, clock: clock}
}

func (uc *BarberAgenda) Execute(
	ctx context.Context,
	barberID uint,
	date string,
) ([]dto.AppointmentDTO, error) {

	if _, err := uc.repo.GetBarber(ctx, barberID); err != nil {
		return nil, lookup(err, "barber_not_found")
	}

	f := domain.ListFilter{BarberID: &barberID, Ascending: true}
	if date != "" {
		d, err := domain.ParseDate(date)
		if err != nil {
			return nil, err
		}
		f.Date = d
	} else {
		f.FromDate = uc.clock.Today()
	}

	apps, err := uc.repo.ListAppointments(ctx, f)
	if err != nil {
		return nil, err
	}
	return dto.FromAppointments(apps), nil
}
