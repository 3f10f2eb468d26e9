package handlers

import (
	"errors"
	"net/http"
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

type AuthHandler struct {
	db     *gorm.DB
	tokens *auth.Tokens
}

func NewAuthHandler(db *gorm.DB, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{db: db, tokens: tokens}
}

// --------- Requests ---------

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Photo    string `json:"photo"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	email := validators.NormalizeEmail(req.Email)
	if !validators.IsEmailValid(email) {
		httperr.BadRequest(c, "invalid_email", "Email inválido.")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}
	if !models.IsValidRole(role) {
		httperr.Respond(c, httperr.ErrBusiness("invalid_role"))
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Phone:        strings.TrimSpace(req.Phone),
		Photo:        req.Photo,
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		// Only the first manager may sign up on their own.
		if role == models.RoleManager {
			var managers int64
			if err := tx.Model(&models.User{}).Where("role = ?", models.RoleManager).Count(&managers).Error; err != nil {
				return err
			}
			if managers > 0 {
				return httperr.ErrForbidden("manager_already_exists")
			}
		}

		var taken int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return httperr.ErrConflict("email_already_exists")
		}

		if err := tx.Create(&user).Error; err != nil {
			if httperr.IsUniqueViolation(err) {
				return httperr.ErrConflict("email_already_exists")
			}
			return err
		}
		return nil
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Usuário criado com sucesso",
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("email = ?", validators.NormalizeEmail(req.Email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciais inválidas.")
		return
	}
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		httperr.Unauthorized(c, "invalid_credentials", "Credenciais inválidas.")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Me returns the caller and, for barbers, their profile.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.Principal(c)

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).First(&user, p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Respond(c, httperr.ErrNotFound("user_not_found"))
			return
		}
		httperr.Respond(c, err)
		return
	}

	resp := gin.H{"user": user}
	if user.Role == models.RoleBarber {
		var barber models.Barber
		err := h.db.WithContext(c.Request.Context()).
			Preload("Services").
			Where("user_id = ?", user.ID).
			First(&barber).Error
		if err == nil {
			resp["barber"] = barber
		}
	}

	httpresp.OK(c, resp)
}
