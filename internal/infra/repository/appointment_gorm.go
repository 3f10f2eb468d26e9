package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *AppointmentGormRepository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *AppointmentGormRepository) FindUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		Order("id ASC").
		First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *AppointmentGormRepository) CreateUser(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// --------------------------------------------------
// Barbers
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarber(ctx context.Context, id uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).Preload("User").First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *AppointmentGormRepository) GetBarberByUserID(ctx context.Context, userID uint) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// FindBarberByName matches a case-insensitive substring of the owning
// user's name, among barber-role users that have a profile.
func (r *AppointmentGormRepository) FindBarberByName(ctx context.Context, name string) (*models.Barber, error) {
	var b models.Barber
	if err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN users ON users.id = barbers.user_id").
		Where("users.role = ? AND LOWER(users.name) LIKE ?", models.RoleBarber, likePattern(name)).
		Order("barbers.id ASC").
		First(&b).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// --------------------------------------------------
// Services
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *AppointmentGormRepository) FindServiceByName(ctx context.Context, name string) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", likePattern(name)).
		Order("id ASC").
		First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *AppointmentGormRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Client").
		Preload("Barber.User").
		Preload("Service")
}

func (r *AppointmentGormRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.withRelations(ctx).First(&ap, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, error) {

	q := r.withRelations(ctx)

	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.BarberID != nil {
		q = q.Where("barber_id = ?", *f.BarberID)
	}
	if f.Date != "" {
		q = q.Where("slot_date = ?", f.Date)
	}
	if f.FromDate != "" {
		q = q.Where("slot_date >= ?", f.FromDate)
	}

	if f.Ascending {
		q = q.Order("slot_date ASC").Order("slot_time ASC").Order("id ASC")
	} else {
		q = q.Order("slot_date DESC").Order("slot_time DESC").Order("id DESC")
	}

	var apps []models.Appointment
	if err := q.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// SlotTaken locks competing active rows on PostgreSQL. SQLite has no row
// locks and serializes writers on its own.
func (r *AppointmentGormRepository) SlotTaken(
	ctx context.Context,
	s domain.Slot,
	excludeID uint,
) (bool, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("id").
		Where(
			"barber_id = ? AND slot_date = ? AND slot_time = ? AND status IN ?",
			s.BarberID, s.Date, s.Time, domain.ActiveStatuses,
		)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ids []uint
	if err := q.Limit(1).Find(&ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func (r *AppointmentGormRepository) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(ap).Error
	if httperr.IsUniqueViolation(err) {
		return domain.ErrSlotTaken
	}
	return err
}

func (r *AppointmentGormRepository) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	err := r.db.WithContext(ctx).
		Model(ap).
		Omit(clause.Associations).
		Select("slot_date", "slot_time", "status", "final_value", "payment_method", "updated_at").
		Updates(ap).Error
	if httperr.IsUniqueViolation(err) {
		return domain.ErrSlotTaken
	}
	return err
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
