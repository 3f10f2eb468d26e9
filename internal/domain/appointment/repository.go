package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/barberflow/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrSlotTaken = errors.New("slot already taken")
)

// ListFilter narrows ListAppointments. Zero fields are ignored.
type ListFilter struct {
	ClientID *uint
	BarberID *uint
	Date     string
	FromDate string

	// Ascending orders by date, time asc. Default is date, time desc.
	Ascending bool
}

type Repository interface {
	// Transaction runs fn against a repository bound to one database
	// transaction. Any error rolls everything back.
	Transaction(ctx context.Context, fn func(Repository) error) error

	// -------- Users --------
	GetUser(ctx context.Context, id uint) (*models.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error

	// -------- Barbers --------
	GetBarber(ctx context.Context, id uint) (*models.Barber, error)
	GetBarberByUserID(ctx context.Context, userID uint) (*models.Barber, error)
	FindBarberByName(ctx context.Context, name string) (*models.Barber, error)

	// -------- Services --------
	GetService(ctx context.Context, id uint) (*models.Service, error)
	FindServiceByName(ctx context.Context, name string) (*models.Service, error)

	// -------- Appointments --------
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f ListFilter) ([]models.Appointment, error)

	// SlotTaken reports whether an active appointment other than excludeID
	// occupies s.
	SlotTaken(ctx context.Context, s Slot, excludeID uint) (bool, error)

	// CreateAppointment and UpdateAppointment return ErrSlotTaken when the
	// store rejects a second active appointment for the same slot.
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
}
