package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/models"
	"github.com/BruksfildServices01/barberflow/internal/timezone"
	"github.com/BruksfildServices01/barberflow/internal/validators"
)

type FinanceHandler struct {
	db    *gorm.DB
	clock timezone.Clock
}

func NewFinanceHandler(db *gorm.DB, clock timezone.Clock) *FinanceHandler {
	return &FinanceHandler{db: db, clock: clock}
}

// --------- Requests ---------

type CreateEntryRequest struct {
	Kind           string           `json:"kind" binding:"required"`
	Description    string           `json:"description" binding:"required"`
	Amount         *decimal.Decimal `json:"amount" binding:"required"`
	Date           string           `json:"date"`
	PaymentMethod  string           `json:"payment_method"`
	AssociatedWith string           `json:"associated_with"`
}

type CreatePayoutRequest struct {
	BarberID uint             `json:"barber_id" binding:"required"`
	Period   string           `json:"period" binding:"required"`
	Amount   *decimal.Decimal `json:"amount" binding:"required"`
	Notes    string           `json:"notes"`
}

type UpdatePayoutRequest struct {
	Status *string          `json:"status"`
	Amount *decimal.Decimal `json:"amount"`
	Notes  *string          `json:"notes"`
}

type CashFlowSummary struct {
	Income  decimal.Decimal `json:"total_income"`
	Expense decimal.Decimal `json:"total_expense"`
	Balance decimal.Decimal `json:"balance"`
}

// --------- Helpers ---------

// dayStart is midnight of a YYYY-MM-DD date in the service timezone, in UTC.
func (h *FinanceHandler) dayStart(date string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, h.clock().Location())
	if err != nil {
		return time.Time{}, httperr.ErrBusiness("invalid_date")
	}
	return d.UTC(), nil
}

func summarize(entries []models.LedgerEntry) CashFlowSummary {
	s := CashFlowSummary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range entries {
		switch e.Kind {
		case models.LedgerIncome:
			s.Income = s.Income.Add(e.Amount)
		case models.LedgerExpense:
			s.Expense = s.Expense.Add(e.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// callerBarber returns the caller's barber profile, or nil.
func callerBarber(tx *gorm.DB, userID uint) (*models.Barber, error) {
	var b models.Barber
	err := tx.Where("user_id = ?", userID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// --------- Ledger ---------

// CashFlow lists entries newest first; data_fim includes the whole day.
func (h *FinanceHandler) CashFlow(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	q := h.db.WithContext(c.Request.Context()).Model(&models.LedgerEntry{})

	if from := strings.TrimSpace(c.Query("data_inicio")); from != "" {
		start, err := h.dayStart(from)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		q = q.Where("occurred_at >= ?", start)
	}
	if to := strings.TrimSpace(c.Query("data_fim")); to != "" {
		end, err := h.dayStart(to)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		q = q.Where("occurred_at < ?", end.AddDate(0, 0, 1))
	}

	var entries []models.LedgerEntry
	if err := q.Order("occurred_at DESC, id DESC").Find(&entries).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"entries": entries,
		"summary": summarize(entries),
	})
}

func (h *FinanceHandler) CreateEntry(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req CreateEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Kind != models.LedgerIncome && req.Kind != models.LedgerExpense {
		httperr.Respond(c, httperr.ErrBusiness("invalid_kind"))
		return
	}
	if !req.Amount.IsPositive() {
		httperr.Respond(c, httperr.ErrBusiness("invalid_amount"))
		return
	}

	occurred := time.Now().UTC()
	if req.Date != "" {
		d, err := h.dayStart(req.Date)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		occurred = d
	}

	entry := models.LedgerEntry{
		Kind:           req.Kind,
		Description:    strings.TrimSpace(req.Description),
		Amount:         *req.Amount,
		OccurredAt:     occurred,
		PaymentMethod:  req.PaymentMethod,
		AssociatedWith: req.AssociatedWith,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Movimentação criada com sucesso", "entry", entry)
}

// --------- Payouts ---------

// ListPayouts shows managers every payout and barbers their own.
func (h *FinanceHandler) ListPayouts(c *gin.Context) {
	p := middleware.Principal(c)
	db := h.db.WithContext(c.Request.Context())

	q := db.Order("period DESC, id DESC")
	if !p.IsManager() {
		var barber *models.Barber
		var err error
		if p.Role == models.RoleBarber {
			barber, err = callerBarber(db, p.UserID)
			if err != nil {
				httperr.Respond(c, err)
				return
			}
		}
		if barber == nil {
			httperr.Respond(c, httperr.ErrForbidden("forbidden"))
			return
		}
		q = q.Where("barber_id = ?", barber.ID)
	}

	var payouts []models.Payout
	if err := q.Find(&payouts).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, payouts)
}

func (h *FinanceHandler) ListBarberPayouts(c *gin.Context) {
	barberID, ok := pathID(c, "barber_id")
	if !ok {
		return
	}

	p := middleware.Principal(c)
	db := h.db.WithContext(c.Request.Context())

	if !p.IsManager() {
		own, err := callerBarber(db, p.UserID)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		if p.Role != models.RoleBarber || own == nil || own.ID != barberID {
			httperr.Respond(c, httperr.ErrForbidden("forbidden"))
			return
		}
	}

	var n int64
	if err := db.Model(&models.Barber{}).Where("id = ?", barberID).Count(&n).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	if n == 0 {
		httperr.Respond(c, httperr.ErrNotFound("barber_not_found"))
		return
	}

	var payouts []models.Payout
	if err := db.Where("barber_id = ?", barberID).
		Order("period DESC, id DESC").
		Find(&payouts).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, payouts)
}

func (h *FinanceHandler) CreatePayout(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req CreatePayoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if !validators.IsValidPeriod(req.Period) {
		httperr.Respond(c, httperr.ErrBusiness("invalid_period"))
		return
	}
	if req.Amount.IsNegative() {
		httperr.Respond(c, httperr.ErrBusiness("invalid_amount"))
		return
	}

	payout := models.Payout{
		BarberID: req.BarberID,
		Period:   req.Period,
		Amount:   *req.Amount,
		Status:   models.PayoutUnpaid,
		Notes:    req.Notes,
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Barber{}).Where("id = ?", req.BarberID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return httperr.ErrNotFound("barber_not_found")
		}

		if err := tx.Model(&models.Payout{}).
			Where("barber_id = ? AND period = ?", req.BarberID, req.Period).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return httperr.ErrConflict("payout_already_exists")
		}

		if err := tx.Omit("Barber").Create(&payout).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrConflict("payout_already_exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Repasse criado com sucesso", "payout", payout)
}

func (h *FinanceHandler) UpdatePayout(c *gin.Context) {
	if !requireManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdatePayoutRequest
	if !bindJSON(c, &req) {
		return
	}

	var payout models.Payout
	if err := h.db.WithContext(c.Request.Context()).First(&payout, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = httperr.ErrNotFound("payout_not_found")
		}
		httperr.Respond(c, err)
		return
	}

	if req.Status != nil {
		if *req.Status != models.PayoutPaid && *req.Status != models.PayoutUnpaid {
			httperr.Respond(c, httperr.ErrBusiness("invalid_status"))
			return
		}
		payout.Status = *req.Status
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			httperr.Respond(c, httperr.ErrBusiness("invalid_amount"))
			return
		}
		payout.Amount = *req.Amount
	}
	if req.Notes != nil {
		payout.Notes = *req.Notes
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(&payout).
		Select("status", "amount", "notes", "updated_at").
		Updates(&payout).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Updated(c, "Repasse atualizado com sucesso", "payout", payout)
}

// --------- Dashboard ---------

type statusCount struct {
	Status string
	Total  int64
}

// Dashboard summarizes the current month and day in the service timezone.
func (h *FinanceHandler) Dashboard(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	db := h.db.WithContext(c.Request.Context())
	now := h.clock()
	loc := now.Location()

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var month []models.LedgerEntry
	if err := db.
		Where("occurred_at >= ? AND occurred_at < ?", monthStart.UTC(), monthStart.AddDate(0, 1, 0).UTC()).
		Find(&month).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	var today []models.LedgerEntry
	for _, e := range month {
		if !e.OccurredAt.Before(dayStart) && e.OccurredAt.Before(dayStart.AddDate(0, 0, 1)) {
			today = append(today, e)
		}
	}

	var counts []statusCount
	if err := db.Model(&models.Appointment{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&counts).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	byStatus := make(map[string]int64, len(counts))
	for _, sc := range counts {
		byStatus[sc.Status] = sc.Total
	}

	var clients, barbers int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleClient).Count(&clients).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleBarber).Count(&barbers).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	m := summarize(month)
	httpresp.OK(c, gin.H{
		"month_income":           m.Income,
		"month_expense":          m.Expense,
		"month_profit":           m.Balance,
		"today_income":           summarize(today).Income,
		"appointments_by_status": byStatus,
		"total_clients":          clients,
		"total_barbers":          barbers,
	})
}
