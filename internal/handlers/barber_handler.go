package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/models"
	ucAppointment "github.com/BruksfildServices01/barberflow/internal/usecase/appointment"
)

type BarberHandler struct {
	db     *gorm.DB
	agenda *ucAppointment.BarberAgenda
}

func NewBarberHandler(db *gorm.DB, agenda *ucAppointment.BarberAgenda) *BarberHandler {
	return &BarberHandler{db: db, agenda: agenda}
}

// --------- Requests ---------

type CreateBarberRequest struct {
	UserID       uint                `json:"user_id" binding:"required"`
	Specialties  string              `json:"specialties"`
	WorkingHours models.WorkingHours `json:"working_hours"`
	DaysOff      []string            `json:"days_off"`
	ServiceIDs   []uint              `json:"service_ids"`
}

type UpdateBarberRequest struct {
	Specialties  *string              `json:"specialties"`
	WorkingHours *models.WorkingHours `json:"working_hours"`
	DaysOff      *[]string            `json:"days_off"`
	ServiceIDs   *[]uint              `json:"service_ids"`
}

// barberView flattens the owning user's public fields into the profile.
type barberView struct {
	models.Barber
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Photo string `json:"photo"`
}

func viewOf(b models.Barber) barberView {
	return barberView{
		Barber: b,
		Name:   b.User.Name,
		Email:  b.User.Email,
		Phone:  b.User.Phone,
		Photo:  b.User.Photo,
	}
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

func validSchedule(wh models.WorkingHours, daysOff []string) bool {
	for day, periods := range wh {
		if !weekdays[day] {
			return false
		}
		for _, p := range periods {
			start, err1 := time.Parse("15:04", p.Start)
			end, err2 := time.Parse("15:04", p.End)
			if err1 != nil || err2 != nil || !start.Before(end) {
				return false
			}
		}
	}
	for _, d := range daysOff {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return false
		}
	}
	return true
}

func (h *BarberHandler) services(tx *gorm.DB, ids []uint) ([]models.Service, error) {
	if len(ids) == 0 {
		return []models.Service{}, nil
	}
	var services []models.Service
	if err := tx.Where("id IN ?", ids).Find(&services).Error; err != nil {
		return nil, err
	}
	if len(services) != len(uniq(ids)) {
		return nil, httperr.ErrNotFound("service_not_found")
	}
	return services, nil
}

func uniq(ids []uint) map[uint]struct{} {
	m := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func (h *BarberHandler) find(tx *gorm.DB, id uint) (*models.Barber, error) {
	var b models.Barber
	if err := tx.Preload("User").Preload("Services").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrNotFound("barber_not_found")
		}
		return nil, err
	}
	return &b, nil
}

// --------- Handlers ---------

func (h *BarberHandler) List(c *gin.Context) {
	var barbers []models.Barber
	if err := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Services").
		Order("id ASC").
		Find(&barbers).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	out := make([]barberView, 0, len(barbers))
	for _, b := range barbers {
		out = append(out, viewOf(b))
	}
	httpresp.OK(c, out)
}

func (h *BarberHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.find(h.db.WithContext(c.Request.Context()), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, viewOf(*b))
}

func (h *BarberHandler) Create(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	var req CreateBarberRequest
	if !bindJSON(c, &req) {
		return
	}
	if !validSchedule(req.WorkingHours, req.DaysOff) {
		httperr.Respond(c, httperr.ErrBusiness("invalid_schedule"))
		return
	}

	var created *models.Barber
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, req.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("user_not_found")
			}
			return err
		}
		if user.Role != models.RoleBarber {
			return httperr.ErrBusiness("user_not_barber")
		}

		var existing int64
		if err := tx.Model(&models.Barber{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return httperr.ErrConflict("barber_already_exists")
		}

		services, err := h.services(tx, req.ServiceIDs)
		if err != nil {
			return err
		}

		daysOff := req.DaysOff
		if daysOff == nil {
			daysOff = []string{}
		}
		b := models.Barber{
			UserID:       user.ID,
			Specialties:  req.Specialties,
			WorkingHours: datatypes.NewJSONType(req.WorkingHours),
			DaysOff:      datatypes.NewJSONSlice(daysOff),
			Services:     services,
		}
		if err := tx.Omit("User").Create(&b).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrConflict("barber_already_exists")
			}
			return err
		}

		created, err = h.find(tx, b.ID)
		return err
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Barbeiro criado com sucesso", "barber", viewOf(*created))
}

func (h *BarberHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateBarberRequest
	if !bindJSON(c, &req) {
		return
	}

	p := middleware.Principal(c)
	var updated *models.Barber

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		b, err := h.find(tx, id)
		if err != nil {
			return err
		}
		if !p.IsManager() && p.UserID != b.UserID {
			return httperr.ErrForbidden("forbidden")
		}

		wh := b.WorkingHours.Data()
		daysOff := []string(b.DaysOff)
		if req.WorkingHours != nil {
			wh = *req.WorkingHours
		}
		if req.DaysOff != nil {
			daysOff = *req.DaysOff
		}
		if !validSchedule(wh, daysOff) {
			return httperr.ErrBusiness("invalid_schedule")
		}

		if req.Specialties != nil {
			b.Specialties = *req.Specialties
		}
		b.WorkingHours = datatypes.NewJSONType(wh)
		b.DaysOff = datatypes.NewJSONSlice(daysOff)

		if err := tx.Model(b).
			Select("specialties", "working_hours", "days_off", "updated_at").
			Updates(b).Error; err != nil {
			return err
		}

		if req.ServiceIDs != nil {
			services, err := h.services(tx, *req.ServiceIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(b).Association("Services").Replace(services); err != nil {
				return err
			}
		}

		updated, err = h.find(tx, id)
		return err
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Updated(c, "Barbeiro atualizado com sucesso", "barber", viewOf(*updated))
}

// Agenda is public: ?date=YYYY-MM-DD for one day, otherwise from today on.
func (h *BarberHandler) Agenda(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.agenda.Execute(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}
