package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barberflow/internal/auth"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	"github.com/BruksfildServices01/barberflow/internal/models"
	"github.com/BruksfildServices01/barberflow/internal/validators"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	Phone    *string `json:"phone"`
	Photo    *string `json:"photo"`
}

func (h *UserHandler) List(c *gin.Context) {
	if !requireManager(c) {
		return
	}

	q := h.db.WithContext(c.Request.Context()).Order("id ASC")
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		q = q.Where("role = ?", role)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, users)
}

// load fetches the target user when the caller is a manager or the user.
func (h *UserHandler) load(c *gin.Context) (*models.User, bool) {
	id, ok := pathID(c, "id")
	if !ok {
		return nil, false
	}

	p := middleware.Principal(c)
	if !p.IsManager() && p.UserID != id {
		httperr.Respond(c, httperr.ErrForbidden("forbidden"))
		return nil, false
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = httperr.ErrNotFound("user_not_found")
		}
		httperr.Respond(c, err)
		return nil, false
	}
	return &user, true
}

func (h *UserHandler) Get(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, user)
}

func (h *UserHandler) Update(c *gin.Context) {
	user, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := validators.NormalizeEmail(*req.Email)
		if !validators.IsEmailValid(email) {
			httperr.BadRequest(c, "invalid_email", "Email inválido.")
			return
		}
		user.Email = email
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Photo != nil {
		user.Photo = *req.Photo
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			httperr.BadRequest(c, "invalid_request", "Senha deve ter ao menos 6 caracteres.")
			return
		}
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			httperr.Respond(c, err)
			return
		}
		user.PasswordHash = hashed
	}
	// Role changes are a manager decision.
	if req.Role != nil && middleware.Principal(c).IsManager() {
		if !models.IsValidRole(*req.Role) {
			httperr.Respond(c, httperr.ErrBusiness("invalid_role"))
			return
		}
		user.Role = *req.Role
	}

	if err := h.db.WithContext(c.Request.Context()).Save(user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			err = httperr.ErrConflict("email_already_exists")
		}
		httperr.Respond(c, err)
		return
	}

	httpresp.Updated(c, "Usuário atualizado com sucesso", "user", user)
}

// Delete removes the user together with their barber profile and its
// service links. Users still referenced by appointments or sales stay.
func (h *UserHandler) Delete(c *gin.Context) {
	if !requireManager(c) {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("user_not_found")
			}
			return err
		}

		var barber models.Barber
		err := tx.Where("user_id = ?", id).First(&barber).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var refs int64
		q := tx.Model(&models.Appointment{}).Where("client_id = ?", id)
		if barber.ID != 0 {
			q = q.Or("barber_id = ?", barber.ID)
		}
		if err := q.Count(&refs).Error; err != nil {
			return err
		}
		if refs == 0 {
			if err := tx.Model(&models.ProductSale{}).Where("client_id = ?", id).Count(&refs).Error; err != nil {
				return err
			}
		}
		if refs > 0 {
			return httperr.ErrConflict("user_has_appointments")
		}

		if barber.ID != 0 {
			if err := tx.Model(&barber).Association("Services").Clear(); err != nil {
				return err
			}
			if err := tx.Delete(&barber).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&user).Error
	})

	if httperr.IsForeignKeyViolation(err) {
		err = httperr.ErrConflict("user_has_appointments")
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Usuário removido com sucesso")
}
