package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/cache"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

// CatalogKey is the cache key of the public service listing.
const CatalogKey = "catalog:services"

type ServiceHandler struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewServiceHandler(db *gorm.DB, c *cache.Cache) *ServiceHandler {
	return &ServiceHandler{db: db, cache: c}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	DurationMin int              `json:"duration_min" binding:"required"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	DurationMin *int             `json:"duration_min"`
}

func validService(price decimal.Decimal, duration int) error {
	if !price.IsPositive() {
		return httperr.ErrBusiness("invalid_amount")
	}
	if duration <= 0 {
		return httperr.ErrBusiness("invalid_duration")
	}
	return nil
}

func (h *ServiceHandler) find(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := h.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("service_not_found")
		}
		return nil, err
	}
	return &s, nil
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	services, err := cache.GetOrLoadJSON(c.Request.Context(), h.cache, CatalogKey,
		func(ctx context.Context) ([]models.Service, error) {
			var out []models.Service
			err := h.db.WithContext(ctx).Order("name ASC").Find(&out).Error
			return out, err
		})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, services)
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.find(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, s)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validService(*req.Price, req.DurationMin); err != nil {
		httperr.Respond(c, err)
		return
	}

	s := models.Service{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		DurationMin: req.DurationMin,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&s).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), CatalogKey)

	httpresp.Created(c, "Serviço criado com sucesso", "service", s)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	if !requireManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.find(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if req.Name != nil {
		s.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		s.Description = *req.Description
	}
	if req.Price != nil {
		s.Price = *req.Price
	}
	if req.DurationMin != nil {
		s.DurationMin = *req.DurationMin
	}
	if err := validService(s.Price, s.DurationMin); err != nil {
		httperr.Respond(c, err)
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Save(s).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), CatalogKey)

	httpresp.Updated(c, "Serviço atualizado com sucesso", "service", s)
}

// Delete unlinks the service from every barber first. Services that
// appointments still point at are kept.
func (h *ServiceHandler) Delete(c *gin.Context) {
	if !requireManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var s models.Service
		if err := tx.First(&s, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("service_not_found")
			}
			return err
		}

		var refs int64
		if err := tx.Model(&models.Appointment{}).Where("service_id = ?", s.ID).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return httperr.ErrConflict("service_has_appointments")
		}

		if err := tx.Exec("DELETE FROM barber_services WHERE service_id = ?", s.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&s).Error
	})

	if httperr.IsForeignKeyViolation(err) {
		err = httperr.ErrConflict("service_has_appointments")
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	h.cache.Invalidate(c.Request.Context(), CatalogKey)

	httpresp.Message(c, "Serviço removido com sucesso")
}
