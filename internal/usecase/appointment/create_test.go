package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
)

func TestCreate_BookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ap := f.book(t, f.client, f.barber, "2025-06-01", "14:00")
	if ap.Status != string(domain.StatusPending) {
		t.Fatalf("status = %q, want pending", ap.Status)
	}
	if ap.FinalValue == nil || !ap.FinalValue.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("final value = %v, want 25.00", ap.FinalValue)
	}
	if ap.ClientID != f.client.ID {
		t.Fatalf("client = %d, want %d", ap.ClientID, f.client.ID)
	}

	_, err := NewCreateAppointment(f.repo, f.audit).Execute(ctx, f.as(f.client2), CreateAppointmentInput{
		BarberID: f.barber.ID, ServiceID: f.service.ID, Date: "2025-06-01", Time: "14:00",
	})
	wantKind(t, err, httperr.KindConflict, "time_conflict")

	if _, err := f.update(f.manager, ap.ID, Patch{Status: ptr("confirmed")}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	moved, err := f.update(f.manager, ap.ID, Patch{Time: ptr("15:00")})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Time != "15:00" || moved.Date != "2025-06-01" {
		t.Fatalf("slot = %s %s", moved.Date, moved.Time)
	}

	if _, err := f.update(f.manager, ap.ID, Patch{Status: ptr("completed")}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	_, err = f.update(f.client, ap.ID, Patch{Date: ptr("2025-06-02")})
	wantKind(t, err, httperr.KindValidation, "reschedule_not_allowed")

	if f.audit.count("appointment_created") != 1 || f.audit.count("appointment_conflict") != 1 {
		t.Fatalf("unexpected audit trail: %+v", f.audit.events)
	}
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   CreateAppointmentInput
		kind httperr.Kind
		code string
	}{
		{
			name: "unknown barber",
			in:   CreateAppointmentInput{BarberID: 999, ServiceID: f.service.ID, Date: "2025-06-01", Time: "10:00"},
			kind: httperr.KindNotFound, code: "barber_not_found",
		},
		{
			name: "unknown service",
			in:   CreateAppointmentInput{BarberID: f.barber.ID, ServiceID: 999, Date: "2025-06-01", Time: "10:00"},
			kind: httperr.KindNotFound, code: "service_not_found",
		},
		{
			name: "lookup wins over parsing",
			in:   CreateAppointmentInput{BarberID: 999, ServiceID: f.service.ID, Date: "junk", Time: "10:00"},
			kind: httperr.KindNotFound, code: "barber_not_found",
		},
		{
			name: "bad date",
			in:   CreateAppointmentInput{BarberID: f.barber.ID, ServiceID: f.service.ID, Date: "01/06/2025", Time: "10:00"},
			kind: httperr.KindValidation, code: "invalid_date_or_time",
		},
		{
			name: "bad time",
			in:   CreateAppointmentInput{BarberID: f.barber.ID, ServiceID: f.service.ID, Date: "2025-06-01", Time: "10h"},
			kind: httperr.KindValidation, code: "invalid_date_or_time",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCreateAppointment(f.repo, f.audit).Execute(context.Background(), f.as(f.client), tt.in)
			wantKind(t, err, tt.kind, tt.code)
		})
	}
}

func TestCreate_FinalValueOverrideAndCanonicalTime(t *testing.T) {
	f := newFixture(t)

	v := decimal.RequireFromString("40.50")
	ap, err := NewCreateAppointment(f.repo, f.audit).Execute(context.Background(), f.as(f.client), CreateAppointmentInput{
		BarberID: f.barber.ID, ServiceID: f.service.ID, Date: "2025-06-01", Time: "9:00",
		FinalValue: &v, PaymentMethod: "pix",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ap.FinalValue.Equal(v) || ap.PaymentMethod != "pix" {
		t.Fatalf("got value %v method %q", ap.FinalValue, ap.PaymentMethod)
	}
	if ap.Time != "09:00" {
		t.Fatalf("time = %q, want 09:00", ap.Time)
	}

	// "9:00" and "09:00" are the same slot.
	_, err = NewCreateAppointment(f.repo, f.audit).Execute(context.Background(), f.as(f.client2), CreateAppointmentInput{
		BarberID: f.barber.ID, ServiceID: f.service.ID, Date: "2025-06-01", Time: "09:00",
	})
	wantKind(t, err, httperr.KindConflict, "time_conflict")
}

func TestCreate_FreedSlotCanBeRebooked(t *testing.T) {
	f := newFixture(t)

	ap := f.book(t, f.client, f.barber, "2025-06-01", "14:00")
	if _, err := f.update(f.client, ap.ID, Patch{Status: ptr("cancelled")}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	f.book(t, f.client2, f.barber, "2025-06-01", "14:00")

	// Same slot for another barber is independent.
	f.book(t, f.client2, f.barber2, "2025-06-01", "14:00")
}

func TestCreate_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)
	uc := NewCreateAppointment(f.repo, f.audit)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
		other     []error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), f.as(f.client), CreateAppointmentInput{
				BarberID: f.barber.ID, ServiceID: f.service.ID, Date: "2025-06-01", Time: "14:00",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case httperr.IsBusiness(err, "time_conflict"):
				conflicts++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	if len(other) > 0 {
		t.Fatalf("unexpected errors: %v", other)
	}
	if ok != 1 || conflicts != n-1 {
		t.Fatalf("ok=%d conflicts=%d, want 1 and %d", ok, conflicts, n-1)
	}
	if got := f.activeCount(t, f.barber.ID, "2025-06-01", "14:00"); got != 1 {
		t.Fatalf("active rows = %d, want 1", got)
	}
}
