package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/models"
	ucAppointment "github.com/BruksfildServices01/barberflow/internal/usecase/appointment"
)

type ProductHandler struct {
	db    *gorm.DB
	audit ucAppointment.Auditor
}

func NewProductHandler(db *gorm.DB, auditor ucAppointment.Auditor) *ProductHandler {
	return &ProductHandler{db: db, audit: auditor}
}

// --------- Requests ---------

type CreateProductRequest struct {
	Name      string           `json:"name" binding:"required"`
	Kind      string           `json:"kind" binding:"required"`
	Quantity  int              `json:"quantity"`
	Unit      string           `json:"unit"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	SalePrice *decimal.Decimal `json:"sale_price"`
}

type UpdateProductRequest struct {
	Name      *string          `json:"name"`
	Kind      *string          `json:"kind"`
	Quantity  *int             `json:"quantity"`
	Unit      *string          `json:"unit"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	SalePrice *decimal.Decimal `json:"sale_price"`
}

type CreateSaleRequest struct {
	ProductID uint  `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required"`
	ClientID  *uint `json:"client_id"`

	// TotalValue defaults to sale price times quantity.
	TotalValue    *decimal.Decimal `json:"total_value"`
	PaymentMethod string           `json:"payment_method"`
}

func validProduct(p *models.Product) error {
	if !models.IsValidProductKind(p.Kind) {
		return httperr.ErrBusiness("invalid_kind")
	}
	if p.Quantity < 0 {
		return httperr.ErrBusiness("invalid_quantity")
	}
	if (p.UnitCost != nil && p.UnitCost.IsNegative()) ||
		(p.SalePrice != nil && p.SalePrice.IsNegative()) {
		return httperr.ErrBusiness("invalid_amount")
	}
	return nil
}

// --------- Handlers ---------

func (h *ProductHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Order("name ASC")
	if kind := strings.TrimSpace(c.Query("tipo")); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var p models.Product
	if err := h.db.WithContext(c.Request.Context()).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = httperr.ErrNotFound("product_not_found")
		}
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, p)
}

func (h *ProductHandler) Create(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	p := models.Product{
		Name:      strings.TrimSpace(req.Name),
		Kind:      req.Kind,
		Quantity:  req.Quantity,
		Unit:      req.Unit,
		UnitCost:  req.UnitCost,
		SalePrice: req.SalePrice,
	}
	if err := validProduct(&p); err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Produto criado com sucesso", "product", p)
}

func (h *ProductHandler) Update(c *gin.Context) {
	if !requireManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	var p models.Product
	if err := h.db.WithContext(c.Request.Context()).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = httperr.ErrNotFound("product_not_found")
		}
		httperr.Respond(c, err)
		return
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Kind != nil {
		p.Kind = *req.Kind
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.UnitCost != nil {
		p.UnitCost = req.UnitCost
	}
	if req.SalePrice != nil {
		p.SalePrice = req.SalePrice
	}
	if err := validProduct(&p); err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&p).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Updated(c, "Produto atualizado com sucesso", "product", p)
}

// CreateSale decrements stock, records the sale and books the income in
// one transaction. The conditional UPDATE keeps stock from going negative
// under concurrent sales.
func (h *ProductHandler) CreateSale(c *gin.Context) {
	caller := middleware.Principal(c)
	if caller.Role != models.RoleBarber && !caller.IsManager() {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"))
		return
	}

	var req CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity <= 0 {
		httperr.Respond(c, httperr.ErrBusiness("invalid_quantity"))
		return
	}
	if req.TotalValue != nil && req.TotalValue.IsNegative() {
		httperr.Respond(c, httperr.ErrBusiness("invalid_amount"))
		return
	}

	var sale models.ProductSale

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("product_not_found")
			}
			return err
		}
		if p.Kind != models.ProductKindSale {
			return httperr.ErrBusiness("product_not_for_sale")
		}

		if req.ClientID != nil {
			var n int64
			if err := tx.Model(&models.User{}).Where("id = ?", *req.ClientID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return httperr.ErrNotFound("user_not_found")
			}
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", p.ID, req.Quantity).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity - ?", req.Quantity),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return httperr.ErrBusiness("insufficient_stock")
		}

		total := decimal.Zero
		if p.SalePrice != nil {
			total = p.SalePrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
		}
		if req.TotalValue != nil {
			total = *req.TotalValue
		}

		now := time.Now().UTC()
		sale = models.ProductSale{
			ProductID:  p.ID,
			ClientID:   req.ClientID,
			Quantity:   req.Quantity,
			TotalValue: total,
			SoldAt:     now,
		}
		if err := tx.Omit("Product", "Client").Create(&sale).Error; err != nil {
			return err
		}

		return tx.Create(&models.LedgerEntry{
			Kind:           models.LedgerIncome,
			Description:    "Venda: " + p.Name,
			Amount:         total,
			OccurredAt:     now,
			PaymentMethod:  req.PaymentMethod,
			AssociatedWith: "sale",
		}).Error
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		UserID:   &caller.UserID,
		Action:   "product_sold",
		Entity:   "product_sale",
		EntityID: &sale.ID,
		Metadata: map[string]any{
			"product_id": sale.ProductID,
			"quantity":   sale.Quantity,
			"total":      sale.TotalValue.StringFixed(2),
		},
	})

	httpresp.Created(c, "Venda registrada com sucesso", "sale", sale)
}

func (h *ProductHandler) ListSales(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var sales []models.ProductSale
	if err := h.db.WithContext(c.Request.Context()).
		Order("sold_at DESC, id DESC").
		Find(&sales).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, sales)
}
