package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	dbpkg "github.com/BruksfildServices01/barberflow/internal/db"
	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/infra/repository"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

type recorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorder) Dispatch(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) count(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Action == action {
			n++
		}
	}
	return n
}

type fixture struct {
	db    *gorm.DB
	repo  *repository.AppointmentGormRepository
	audit *recorder

	client  models.User
	client2 models.User
	manager models.User

	barberUser  models.User
	barberUser2 models.User
	barber      models.Barber
	barber2     models.Barber

	service models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := dbpkg.NewSQLiteMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		db:    db,
		repo:  repository.NewAppointmentGormRepository(db),
		audit: &recorder{},
	}

	f.client = f.user(t, "Carla Cliente", models.RoleClient, "5511900000001")
	f.client2 = f.user(t, "Diego Cliente", models.RoleClient, "5511900000002")
	f.manager = f.user(t, "Marta Gerente", models.RoleManager, "")
	f.barberUser = f.user(t, "Bruno Barbeiro", models.RoleBarber, "")
	f.barberUser2 = f.user(t, "Rafael Tesoura", models.RoleBarber, "")

	f.barber = models.Barber{UserID: f.barberUser.ID, Specialties: "degradê"}
	f.barber2 = models.Barber{UserID: f.barberUser2.ID}
	for _, b := range []*models.Barber{&f.barber, &f.barber2} {
		if err := db.Create(b).Error; err != nil {
			t.Fatalf("create barber: %v", err)
		}
	}

	f.service = models.Service{Name: "Corte Masculino", Price: decimal.RequireFromString("25.00"), DurationMin: 30}
	if err := db.Create(&f.service).Error; err != nil {
		t.Fatalf("create service: %v", err)
	}

	return f
}

func (f *fixture) user(t *testing.T, name, role, phone string) models.User {
	t.Helper()
	u := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Phone:        phone,
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) as(u models.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role}
}

func (f *fixture) book(t *testing.T, who models.User, barber models.Barber, date, hm string) *models.Appointment {
	t.Helper()
	ap, err := NewCreateAppointment(f.repo, f.audit).Execute(context.Background(), f.as(who), CreateAppointmentInput{
		BarberID:  barber.ID,
		ServiceID: f.service.ID,
		Date:      date,
		Time:      hm,
	})
	if err != nil {
		t.Fatalf("book %s %s: %v", date, hm, err)
	}
	return ap
}

func (f *fixture) update(who models.User, id uint, p Patch) (*models.Appointment, error) {
	return NewUpdateAppointment(f.repo, f.audit).Execute(context.Background(), f.as(who), id, p)
}

func (f *fixture) reload(t *testing.T, id uint) *models.Appointment {
	t.Helper()
	var ap models.Appointment
	if err := f.db.First(&ap, id).Error; err != nil {
		t.Fatalf("reload %d: %v", id, err)
	}
	return &ap
}

func (f *fixture) activeCount(t *testing.T, barberID uint, date, hm string) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.Appointment{}).
		Where("barber_id = ? AND slot_date = ? AND slot_time = ? AND status IN ?", barberID, date, hm, domain.ActiveStatuses).
		Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func ptr[T any](v T) *T { return &v }

func wantKind(t *testing.T, err error, kind httperr.Kind, code string) {
	t.Helper()
	got, ok := httperr.KindOf(err)
	if !ok || got != kind || !httperr.IsBusiness(err, code) {
		t.Fatalf("err = %v, want kind %d code %q", err, kind, code)
	}
}

func fixedClock(date string) func() time.Time {
	return func() time.Time {
		d, _ := time.Parse(domain.DateLayout, date)
		return d.Add(10 * time.Hour)
	}
}
