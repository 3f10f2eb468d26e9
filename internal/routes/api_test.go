package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	"github.com/BruksfildServices01/barberflow/internal/auth"
	"github.com/BruksfildServices01/barberflow/internal/config"
	dbpkg "github.com/BruksfildServices01/barberflow/internal/db"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

const webhookSecret = "n8n-secret"

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

type testAPI struct {
	t     *testing.T
	r     *gin.Engine
	db    *gorm.DB
	audit *recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := dbpkg.NewSQLiteMemory()
	if err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	r := gin.New()
	RegisterRoutes(r, Deps{
		DB: db,
		Config: &config.Config{
			Timezone:     "America/Sao_Paulo",
			WebhookToken: webhookSecret,
			WebhookRPS:   100,
			WebhookBurst: 100,
		},
		Tokens: auth.NewTokens("test-secret"),
		Audit:  rec,
	})

	return &testAPI{t: t, r: r, db: db, audit: rec}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testAPI) expect(w *httptest.ResponseRecorder, status int) {
	a.t.Helper()
	if w.Code != status {
		a.t.Fatalf("status = %d, want %d: %s", w.Code, status, w.Body.String())
	}
}

func (a *testAPI) expectError(w *httptest.ResponseRecorder, status int, code string) {
	a.t.Helper()
	a.expect(w, status)
	var body struct {
		Code string `json:"error_code"`
	}
	decode(a.t, w, &body)
	if body.Code != code {
		a.t.Fatalf("error_code = %q, want %q", body.Code, code)
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

type account struct {
	ID    uint
	Token string
}

func (a *testAPI) register(name, email, role, phone string) account {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"role":     role,
		"phone":    phone,
	})
	a.expect(w, http.StatusCreated)

	var body struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(a.t, w, &body)
	return account{ID: body.User.ID, Token: body.Token}
}

type shop struct {
	manager  account
	barber   account
	barberID uint
	client   account
	client2  account
	service  uint
}

func (a *testAPI) seed() shop {
	a.t.Helper()
	s := shop{
		manager: a.register("Gerente", "gerente@example.com", "manager", ""),
		barber:  a.register("Carlos Silva", "carlos@example.com", "barber", ""),
		client:  a.register("Ana", "ana@example.com", "client", "5511900000001"),
		client2: a.register("Bruno", "bruno@example.com", "client", "5511900000002"),
	}

	w := a.do(http.MethodPost, "/api/servicos", s.manager.Token, map[string]any{
		"name":         "Corte Masculino",
		"price":        "25.00",
		"duration_min": 30,
	})
	a.expect(w, http.StatusCreated)
	var svc struct {
		Service models.Service `json:"service"`
	}
	decode(a.t, w, &svc)
	s.service = svc.Service.ID

	w = a.do(http.MethodPost, "/api/barbeiros", s.manager.Token, map[string]any{
		"user_id":     s.barber.ID,
		"specialties": "degradê",
		"working_hours": map[string]any{
			"monday": []map[string]string{{"start": "09:00", "end": "18:00"}},
		},
		"service_ids": []uint{s.service},
	})
	a.expect(w, http.StatusCreated)
	var b struct {
		Barber struct {
			ID   uint   `json:"id"`
			Name string `json:"name"`
		} `json:"barber"`
	}
	decode(a.t, w, &b)
	if b.Barber.Name != "Carlos Silva" {
		a.t.Fatalf("barber name = %q", b.Barber.Name)
	}
	s.barberID = b.Barber.ID
	return s
}

type appointmentBody struct {
	ID         uint             `json:"id"`
	ClientID   uint             `json:"client_id"`
	BarberName string           `json:"barber_name"`
	Date       string           `json:"date"`
	Time       string           `json:"time"`
	Status     string           `json:"status"`
	FinalValue *decimal.Decimal `json:"final_value"`
}

func (a *testAPI) book(token string, s shop, date, clock string) *httptest.ResponseRecorder {
	return a.do(http.MethodPost, "/api/agendamentos", token, map[string]any{
		"barber_id":  s.barberID,
		"service_id": s.service,
		"date":       date,
		"time":       clock,
	})
}

// ======================================================
// ACCOUNTS
// ======================================================

func TestAuthFlow(t *testing.T) {
	a := newTestAPI(t)
	mgr := a.register("Gerente", "gerente@example.com", "manager", "")

	a.expectError(a.do(http.MethodPost, "/api/register", "", map[string]any{
		"name": "Outro", "email": "outro@example.com", "password": "secret123", "role": "manager",
	}), http.StatusForbidden, "manager_already_exists")

	a.expectError(a.do(http.MethodPost, "/api/register", "", map[string]any{
		"name": "Dup", "email": "GERENTE@example.com", "password": "secret123",
	}), http.StatusConflict, "email_already_exists")

	a.expectError(a.do(http.MethodPost, "/api/register", "", map[string]any{
		"name": "Bad", "email": "bad@example.com", "password": "secret123", "role": "owner",
	}), http.StatusBadRequest, "invalid_role")

	a.expectError(a.do(http.MethodPost, "/api/login", "", map[string]any{
		"email": "gerente@example.com", "password": "wrong-pass",
	}), http.StatusUnauthorized, "invalid_credentials")

	w := a.do(http.MethodPost, "/api/login", "", map[string]any{
		"email": "gerente@example.com", "password": "secret123",
	})
	a.expect(w, http.StatusOK)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, w, &login)

	w = a.do(http.MethodGet, "/api/me", login.Token, nil)
	a.expect(w, http.StatusOK)
	var me struct {
		User models.User `json:"user"`
	}
	decode(t, w, &me)
	if me.User.ID != mgr.ID || me.User.Role != models.RoleManager {
		t.Fatalf("me = %+v", me.User)
	}

	a.expectError(a.do(http.MethodGet, "/api/me", "", nil), http.StatusUnauthorized, "missing_authorization_header")
	a.expectError(a.do(http.MethodGet, "/api/me", "garbage", nil), http.StatusUnauthorized, "invalid_token")
}

func TestUsers_AccessAndDelete(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	a.expectError(a.do(http.MethodGet, "/api/users", s.client.Token, nil), http.StatusForbidden, "forbidden")
	a.expectError(a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", s.client2.ID), s.client.Token, nil),
		http.StatusForbidden, "forbidden")
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", s.client.ID), s.client.Token, nil), http.StatusOK)

	// A client cannot promote themselves.
	w := a.do(http.MethodPut, fmt.Sprintf("/api/users/%d", s.client.ID), s.client.Token, map[string]any{
		"name": "Ana Paula", "role": "manager",
	})
	a.expect(w, http.StatusOK)
	var upd struct {
		User models.User `json:"user"`
	}
	decode(t, w, &upd)
	if upd.User.Role != models.RoleClient || upd.User.Name != "Ana Paula" {
		t.Fatalf("user = %+v", upd.User)
	}

	// Barber with an appointment stays.
	a.expect(a.book(s.client.Token, s, "2030-06-03", "10:00"), http.StatusCreated)
	a.expectError(a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", s.barber.ID), s.manager.Token, nil),
		http.StatusConflict, "user_has_appointments")

	// A barber without appointments goes with their profile.
	other := a.register("Diego", "diego@example.com", "barber", "")
	w = a.do(http.MethodPost, "/api/barbeiros", s.manager.Token, map[string]any{
		"user_id": other.ID, "service_ids": []uint{s.service},
	})
	a.expect(w, http.StatusCreated)

	a.expect(a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", other.ID), s.manager.Token, nil), http.StatusOK)

	var profiles int64
	a.db.Model(&models.Barber{}).Where("user_id = ?", other.ID).Count(&profiles)
	if profiles != 0 {
		t.Fatalf("barber profile survived user delete")
	}
	a.expectError(a.do(http.MethodGet, fmt.Sprintf("/api/users/%d", other.ID), s.manager.Token, nil),
		http.StatusNotFound, "user_not_found")
}

// ======================================================
// BARBERS & SERVICES
// ======================================================

func TestBarbers_CreateRules(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	a.expectError(a.do(http.MethodPost, "/api/barbeiros", s.manager.Token, map[string]any{"user_id": s.barber.ID}),
		http.StatusConflict, "barber_already_exists")
	a.expectError(a.do(http.MethodPost, "/api/barbeiros", s.manager.Token, map[string]any{"user_id": s.client.ID}),
		http.StatusBadRequest, "user_not_barber")
	a.expectError(a.do(http.MethodPost, "/api/barbeiros", s.manager.Token, map[string]any{"user_id": 999}),
		http.StatusNotFound, "user_not_found")
	a.expectError(a.do(http.MethodPost, "/api/barbeiros", s.barber.Token, map[string]any{"user_id": s.barber.ID}),
		http.StatusForbidden, "forbidden")

	path := fmt.Sprintf("/api/barbeiros/%d", s.barberID)
	a.expectError(a.do(http.MethodPut, path, s.client.Token, map[string]any{"specialties": "x"}),
		http.StatusForbidden, "forbidden")
	a.expectError(a.do(http.MethodPut, path, s.barber.Token, map[string]any{"days_off": []string{"31/12/2030"}}),
		http.StatusBadRequest, "invalid_schedule")

	w := a.do(http.MethodPut, path, s.barber.Token, map[string]any{
		"specialties": "barba",
		"days_off":    []string{"2030-12-25"},
		"service_ids": []uint{},
	})
	a.expect(w, http.StatusOK)

	var got models.Barber
	if err := a.db.Preload("Services").First(&got, s.barberID).Error; err != nil {
		t.Fatal(err)
	}
	if got.Specialties != "barba" || len(got.DaysOff) != 1 || len(got.Services) != 0 {
		t.Fatalf("barber = %+v", got)
	}
	if len(got.WorkingHours.Data()["monday"]) != 1 {
		t.Fatalf("working hours lost: %+v", got.WorkingHours.Data())
	}

	w = a.do(http.MethodGet, "/api/barbeiros", "", nil)
	a.expect(w, http.StatusOK)
	var list []map[string]any
	decode(t, w, &list)
	if len(list) != 1 || list[0]["name"] != "Carlos Silva" {
		t.Fatalf("list = %v", list)
	}
}

func TestServices_ManageAndDelete(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	a.expectError(a.do(http.MethodPost, "/api/servicos", s.client.Token, map[string]any{
		"name": "Barba", "price": 15, "duration_min": 20,
	}), http.StatusForbidden, "forbidden")
	a.expectError(a.do(http.MethodPost, "/api/servicos", s.manager.Token, map[string]any{
		"name": "Barba", "price": 0, "duration_min": 20,
	}), http.StatusBadRequest, "invalid_amount")

	w := a.do(http.MethodPost, "/api/servicos", s.manager.Token, map[string]any{
		"name": "Barba", "price": 15, "duration_min": 20,
	})
	a.expect(w, http.StatusCreated)
	var created struct {
		Service models.Service `json:"service"`
	}
	decode(t, w, &created)

	w = a.do(http.MethodGet, "/api/servicos", "", nil)
	a.expect(w, http.StatusOK)
	var list []models.Service
	decode(t, w, &list)
	if len(list) != 2 {
		t.Fatalf("services = %d, want 2", len(list))
	}

	a.expect(a.book(s.client.Token, s, "2030-06-03", "10:00"), http.StatusCreated)
	a.expectError(a.do(http.MethodDelete, fmt.Sprintf("/api/servicos/%d", s.service), s.manager.Token, nil),
		http.StatusConflict, "service_has_appointments")

	a.expect(a.do(http.MethodDelete, fmt.Sprintf("/api/servicos/%d", created.Service.ID), s.manager.Token, nil),
		http.StatusOK)
	a.expectError(a.do(http.MethodGet, fmt.Sprintf("/api/servicos/%d", created.Service.ID), "", nil),
		http.StatusNotFound, "service_not_found")
}

// ======================================================
// APPOINTMENTS
// ======================================================

func TestAppointments_EndToEnd(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	w := a.book(s.client.Token, s, "2030-06-01", "14:00")
	a.expect(w, http.StatusCreated)
	var created struct {
		Appointment appointmentBody `json:"appointment"`
	}
	decode(t, w, &created)
	ap := created.Appointment
	if ap.Status != "pending" || ap.FinalValue == nil || !ap.FinalValue.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("created = %+v", ap)
	}
	if ap.BarberName != "Carlos Silva" || ap.ClientID != s.client.ID {
		t.Fatalf("created = %+v", ap)
	}

	a.expectError(a.book(s.client2.Token, s, "2030-06-01", "14:00"), http.StatusConflict, "time_conflict")
	if a.audit.count("appointment_conflict") != 1 {
		t.Fatal("conflict not audited")
	}
	a.expectError(a.book(s.client2.Token, s, "2030-06-01", "2pm"), http.StatusBadRequest, "invalid_date_or_time")
	a.expectError(a.do(http.MethodPost, "/api/agendamentos", s.client.Token, map[string]any{"barber_id": s.barberID}),
		http.StatusBadRequest, "invalid_request")

	path := fmt.Sprintf("/api/agendamentos/%d", ap.ID)

	// Strangers cannot touch it.
	a.expectError(a.do(http.MethodPatch, path, s.client2.Token, map[string]any{"status": "cancelled"}),
		http.StatusForbidden, "forbidden")

	a.expect(a.do(http.MethodPatch, path, s.manager.Token, map[string]any{"status": "confirmed"}), http.StatusOK)
	a.expect(a.do(http.MethodPatch, path, s.manager.Token, map[string]any{"time": "15:00"}), http.StatusOK)

	// The client's final_value is ignored, not rejected.
	w = a.do(http.MethodPatch, path, s.client.Token, map[string]any{"final_value": "1.00"})
	a.expect(w, http.StatusOK)
	var upd struct {
		Appointment appointmentBody `json:"appointment"`
	}
	decode(t, w, &upd)
	if upd.Appointment.Time != "15:00" || !upd.Appointment.FinalValue.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("after client patch = %+v", upd.Appointment)
	}

	// The freed 14:00 slot is bookable again.
	a.expect(a.book(s.client2.Token, s, "2030-06-01", "14:00"), http.StatusCreated)

	a.expect(a.do(http.MethodPatch, path, s.barber.Token, map[string]any{
		"status": "completed", "final_value": "30.00", "payment_method": "pix",
	}), http.StatusOK)
	a.expectError(a.do(http.MethodPatch, path, s.client.Token, map[string]any{"date": "2030-06-02"}),
		http.StatusBadRequest, "reschedule_not_allowed")
	a.expectError(a.do(http.MethodPatch, path, s.manager.Token, map[string]any{"status": "done"}),
		http.StatusBadRequest, "invalid_status")

	// Visibility.
	var mine []appointmentBody
	w = a.do(http.MethodGet, "/api/agendamentos", s.client.Token, nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &mine)
	if len(mine) != 1 || mine[0].Status != "completed" || !mine[0].FinalValue.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("client list = %+v", mine)
	}

	var all []appointmentBody
	w = a.do(http.MethodGet, "/api/agendamentos", s.barber.Token, nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &all)
	if len(all) != 2 {
		t.Fatalf("barber sees %d, want 2", len(all))
	}

	a.expectError(a.do(http.MethodGet, fmt.Sprintf("/api/agendamentos/cliente/%d", s.client.ID), s.client2.Token, nil),
		http.StatusForbidden, "forbidden")
	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/agendamentos/cliente/%d", s.client.ID), s.manager.Token, nil),
		http.StatusOK)

	// Public agenda for the day, ascending.
	var agenda []appointmentBody
	w = a.do(http.MethodGet, fmt.Sprintf("/api/barbeiros/%d/agenda?date=2030-06-01", s.barberID), "", nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &agenda)
	if len(agenda) != 2 || agenda[0].Time != "14:00" || agenda[1].Time != "15:00" {
		t.Fatalf("agenda = %+v", agenda)
	}
	a.expectError(a.do(http.MethodGet, "/api/barbeiros/999/agenda", "", nil), http.StatusNotFound, "barber_not_found")
}

// ======================================================
// PRODUCTS & FINANCE
// ======================================================

func (a *testAPI) product(token, kind string, qty int) uint {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/produtos", token, map[string]any{
		"name": "Pomada " + kind, "kind": kind, "quantity": qty, "unit": "un",
		"unit_cost": "4.00", "sale_price": "10.00",
	})
	a.expect(w, http.StatusCreated)
	var body struct {
		Product models.Product `json:"product"`
	}
	decode(a.t, w, &body)
	return body.Product.ID
}

func TestProducts_SaleStock(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	forSale := a.product(s.manager.Token, models.ProductKindSale, 3)
	internal := a.product(s.manager.Token, models.ProductKindInternal, 5)

	a.expectError(a.do(http.MethodPost, "/api/produtos", s.manager.Token, map[string]any{"name": "X", "kind": "gift"}),
		http.StatusBadRequest, "invalid_kind")

	sell := func(token string, id uint, qty int) *httptest.ResponseRecorder {
		return a.do(http.MethodPost, "/api/produtos/vendas", token, map[string]any{
			"product_id": id, "quantity": qty, "client_id": s.client.ID, "payment_method": "pix",
		})
	}

	w := sell(s.barber.Token, forSale, 2)
	a.expect(w, http.StatusCreated)
	var sale struct {
		Sale models.ProductSale `json:"sale"`
	}
	decode(t, w, &sale)
	if !sale.Sale.TotalValue.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("total = %s", sale.Sale.TotalValue)
	}

	a.expectError(sell(s.barber.Token, forSale, 2), http.StatusBadRequest, "insufficient_stock")
	a.expectError(sell(s.manager.Token, internal, 1), http.StatusBadRequest, "product_not_for_sale")
	a.expectError(sell(s.client.Token, forSale, 1), http.StatusForbidden, "forbidden")
	a.expectError(sell(s.barber.Token, 999, 1), http.StatusNotFound, "product_not_found")

	var p models.Product
	a.db.First(&p, forSale)
	if p.Quantity != 1 {
		t.Fatalf("stock = %d, want 1", p.Quantity)
	}

	var sales []models.ProductSale
	w = a.do(http.MethodGet, "/api/produtos/vendas", s.manager.Token, nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &sales)
	if len(sales) != 1 {
		t.Fatalf("sales = %d", len(sales))
	}

	// A buyer with no appointments is still referenced by the sale.
	a.expectError(a.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", s.client.ID), s.manager.Token, nil),
		http.StatusConflict, "user_has_appointments")

	var products []models.Product
	w = a.do(http.MethodGet, "/api/produtos?tipo=internal", s.barber.Token, nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &products)
	if len(products) != 1 || products[0].ID != internal {
		t.Fatalf("filtered products = %+v", products)
	}

	// The sale shows up in the cash flow as income.
	var flow struct {
		Entries []models.LedgerEntry `json:"entries"`
		Summary struct {
			Income decimal.Decimal `json:"total_income"`
		} `json:"summary"`
	}
	w = a.do(http.MethodGet, "/api/financeiro/fluxo", s.manager.Token, nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &flow)
	if len(flow.Entries) != 1 || flow.Entries[0].AssociatedWith != "sale" || !flow.Summary.Income.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("flow = %+v", flow)
	}
}

func TestFinance_CashFlowTotals(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	for _, e := range []map[string]any{
		{"kind": "income", "description": "Cortes", "amount": "100.00", "date": "2030-06-01"},
		{"kind": "expense", "description": "Aluguel", "amount": "30.50", "date": "2030-06-30"},
		{"kind": "income", "description": "Cortes", "amount": "50.00", "date": "2030-07-01"},
	} {
		a.expect(a.do(http.MethodPost, "/api/financeiro/movimentacoes", s.manager.Token, e), http.StatusCreated)
	}
	a.expectError(a.do(http.MethodPost, "/api/financeiro/movimentacoes", s.manager.Token, map[string]any{
		"kind": "transfer", "description": "x", "amount": "1",
	}), http.StatusBadRequest, "invalid_kind")
	a.expectError(a.do(http.MethodGet, "/api/financeiro/fluxo", s.barber.Token, nil), http.StatusForbidden, "forbidden")
	a.expectError(a.do(http.MethodGet, "/api/financeiro/fluxo?data_inicio=01/06/2030", s.manager.Token, nil),
		http.StatusBadRequest, "invalid_date")

	w := a.do(http.MethodGet, "/api/financeiro/fluxo?data_inicio=2030-06-01&data_fim=2030-06-30", s.manager.Token, nil)
	a.expect(w, http.StatusOK)

	var flow struct {
		Entries []models.LedgerEntry `json:"entries"`
		Summary struct {
			Income  decimal.Decimal `json:"total_income"`
			Expense decimal.Decimal `json:"total_expense"`
			Balance decimal.Decimal `json:"balance"`
		} `json:"summary"`
	}
	decode(t, w, &flow)

	if len(flow.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(flow.Entries))
	}
	if flow.Entries[0].Kind != models.LedgerExpense {
		t.Fatalf("newest first: got %s", flow.Entries[0].Kind)
	}
	if !flow.Summary.Income.Equal(decimal.NewFromInt(100)) ||
		!flow.Summary.Expense.Equal(decimal.RequireFromString("30.5")) ||
		!flow.Summary.Balance.Equal(decimal.RequireFromString("69.5")) {
		t.Fatalf("summary = %+v", flow.Summary)
	}
}

func TestFinance_Payouts(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	create := func(token, period string) *httptest.ResponseRecorder {
		return a.do(http.MethodPost, "/api/financeiro/repasses", token, map[string]any{
			"barber_id": s.barberID, "period": period, "amount": "500.00",
		})
	}

	w := create(s.manager.Token, "2030-06")
	a.expect(w, http.StatusCreated)
	var created struct {
		Payout models.Payout `json:"payout"`
	}
	decode(t, w, &created)
	if created.Payout.Status != models.PayoutUnpaid {
		t.Fatalf("status = %q", created.Payout.Status)
	}

	a.expectError(create(s.manager.Token, "2030-06"), http.StatusConflict, "payout_already_exists")
	a.expectError(create(s.manager.Token, "06/2030"), http.StatusBadRequest, "invalid_period")
	a.expectError(create(s.barber.Token, "2030-07"), http.StatusForbidden, "forbidden")
	a.expectError(a.do(http.MethodPost, "/api/financeiro/repasses", s.manager.Token, map[string]any{
		"barber_id": 999, "period": "2030-07", "amount": "1",
	}), http.StatusNotFound, "barber_not_found")

	var own []models.Payout
	w = a.do(http.MethodGet, "/api/financeiro/repasses", s.barber.Token, nil)
	a.expect(w, http.StatusOK)
	decode(t, w, &own)
	if len(own) != 1 {
		t.Fatalf("barber payouts = %d", len(own))
	}
	a.expectError(a.do(http.MethodGet, "/api/financeiro/repasses", s.client.Token, nil), http.StatusForbidden, "forbidden")

	a.expect(a.do(http.MethodGet, fmt.Sprintf("/api/financeiro/repasses/%d", s.barberID), s.barber.Token, nil), http.StatusOK)
	a.expectError(a.do(http.MethodGet, fmt.Sprintf("/api/financeiro/repasses/%d", s.barberID), s.client.Token, nil),
		http.StatusForbidden, "forbidden")
	a.expectError(a.do(http.MethodGet, "/api/financeiro/repasses/999", s.manager.Token, nil),
		http.StatusNotFound, "barber_not_found")

	path := fmt.Sprintf("/api/financeiro/repasses/%d", created.Payout.ID)
	a.expectError(a.do(http.MethodPatch, path, s.manager.Token, map[string]any{"status": "pago"}),
		http.StatusBadRequest, "invalid_status")

	w = a.do(http.MethodPatch, path, s.manager.Token, map[string]any{"status": "paid", "notes": "pix 05/07"})
	a.expect(w, http.StatusOK)
	var stored models.Payout
	a.db.First(&stored, created.Payout.ID)
	if stored.Status != models.PayoutPaid || stored.Notes != "pix 05/07" || !stored.Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("payout = %+v", stored)
	}
}

func TestFinance_Dashboard(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	a.expect(a.book(s.client.Token, s, "2030-06-01", "10:00"), http.StatusCreated)
	a.expect(a.do(http.MethodPost, "/api/financeiro/movimentacoes", s.manager.Token, map[string]any{
		"kind": "income", "description": "Corte", "amount": "40",
	}), http.StatusCreated)

	a.expectError(a.do(http.MethodGet, "/api/financeiro/dashboard", s.client.Token, nil), http.StatusForbidden, "forbidden")

	w := a.do(http.MethodGet, "/api/financeiro/dashboard", s.manager.Token, nil)
	a.expect(w, http.StatusOK)
	var d struct {
		MonthIncome decimal.Decimal  `json:"month_income"`
		TodayIncome decimal.Decimal  `json:"today_income"`
		ByStatus    map[string]int64 `json:"appointments_by_status"`
		Clients     int64            `json:"total_clients"`
		Barbers     int64            `json:"total_barbers"`
	}
	decode(t, w, &d)

	if !d.MonthIncome.Equal(decimal.NewFromInt(40)) || !d.TodayIncome.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("income = %s / %s", d.MonthIncome, d.TodayIncome)
	}
	if d.ByStatus["pending"] != 1 || d.Clients != 2 || d.Barbers != 1 {
		t.Fatalf("dashboard = %+v", d)
	}
}

// ======================================================
// WEBHOOKS
// ======================================================

func (a *testAPI) hook(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.WebhookTokenHeader, token)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func TestWebhooks_ProvisionOncePerPhone(t *testing.T) {
	a := newTestAPI(t)
	a.seed()

	payload := func(clock string) map[string]any {
		return map[string]any{
			"phone_number":  "+55 11 98888 7777",
			"barbeiro_nome": "carlos",
			"servico_nome":  "corte",
			"data":          "2030-06-01",
			"hora":          clock,
			"cliente_nome":  "Marcos",
		}
	}

	a.expectError(a.hook(http.MethodPost, "/webhooks/n8n/agendamento", "", payload("09:00")),
		http.StatusUnauthorized, "invalid_webhook_token")

	var first, second struct {
		ClientCreated bool            `json:"client_created"`
		Message       string          `json:"response_message"`
		Appointment   appointmentBody `json:"agendamento"`
	}
	w := a.hook(http.MethodPost, "/webhooks/n8n/agendamento", webhookSecret, payload("09:00"))
	a.expect(w, http.StatusCreated)
	decode(t, w, &first)

	w = a.hook(http.MethodPost, "/webhooks/n8n/agendamento", webhookSecret, payload("10:00"))
	a.expect(w, http.StatusCreated)
	decode(t, w, &second)

	if !first.ClientCreated || second.ClientCreated {
		t.Fatalf("client_created = %v then %v", first.ClientCreated, second.ClientCreated)
	}
	if first.Appointment.ClientID != second.Appointment.ClientID || first.Message == "" {
		t.Fatalf("first = %+v, second = %+v", first, second)
	}

	var users int64
	a.db.Model(&models.User{}).Where("phone = ?", "5511988887777").Count(&users)
	if users != 1 {
		t.Fatalf("users for phone = %d, want 1", users)
	}

	a.expectError(a.hook(http.MethodPost, "/webhooks/n8n/agendamento", webhookSecret, payload("10:00")),
		http.StatusConflict, "time_conflict")

	w = a.hook(http.MethodPatch, fmt.Sprintf("/webhooks/n8n/status/%d", first.Appointment.ID), webhookSecret,
		map[string]any{"status": "confirmed"})
	a.expect(w, http.StatusOK)
	var status struct {
		OldStatus string `json:"old_status"`
		NewStatus string `json:"new_status"`
		Phone     string `json:"phone_number"`
		Message   string `json:"response_message"`
	}
	decode(t, w, &status)
	if status.OldStatus != "pending" || status.NewStatus != "confirmed" || status.Phone != "5511988887777" {
		t.Fatalf("status = %+v", status)
	}
	if !strings.Contains(status.Message, "AGENDAMENTO CONFIRMADO") {
		t.Fatalf("status = %+v", status)
	}

	a.expectError(a.hook(http.MethodPatch, "/webhooks/n8n/status/999", webhookSecret, map[string]any{"status": "confirmed"}),
		http.StatusNotFound, "appointment_not_found")
}

func TestAuditLogs_ManagerOnly(t *testing.T) {
	a := newTestAPI(t)
	s := a.seed()

	a.db.Create(&models.AuditLog{Action: "appointment_created", Entity: "appointment"})
	a.db.Create(&models.AuditLog{Action: "product_sold", Entity: "product_sale"})

	a.expectError(a.do(http.MethodGet, "/api/audit-logs", s.barber.Token, nil), http.StatusForbidden, "forbidden")

	w := a.do(http.MethodGet, "/api/audit-logs?action=product_sold", s.manager.Token, nil)
	a.expect(w, http.StatusOK)
	var page struct {
		Total int64             `json:"total"`
		Logs  []models.AuditLog `json:"logs"`
	}
	decode(t, w, &page)
	if page.Total != 1 || len(page.Logs) != 1 || page.Logs[0].Action != "product_sold" {
		t.Fatalf("page = %+v", page)
	}
}
