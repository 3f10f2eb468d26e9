package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barberflow/internal/dto"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	ucAppointment "github.com/BruksfildServices01/barberflow/internal/usecase/appointment"
)

// WebhookHandler serves the n8n automation that books over WhatsApp.
type WebhookHandler struct {
	create    *ucAppointment.WebhookCreateAppointment
	setStatus *ucAppointment.WebhookSetStatus
}

func NewWebhookHandler(
	create *ucAppointment.WebhookCreateAppointment,
	setStatus *ucAppointment.WebhookSetStatus,
) *WebhookHandler {
	return &WebhookHandler{create: create, setStatus: setStatus}
}

// WebhookAppointmentRequest keeps the Portuguese keys the n8n workflow sends.
type WebhookAppointmentRequest struct {
	Phone       string `json:"phone_number" binding:"required"`
	BarberName  string `json:"barbeiro_nome" binding:"required"`
	ServiceName string `json:"servico_nome" binding:"required"`
	Date        string `json:"data" binding:"required"`
	Time        string `json:"hora" binding:"required"`
	ClientName  string `json:"cliente_nome"`
}

type WebhookStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *WebhookHandler) CreateAppointment(c *gin.Context) {
	var req WebhookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.create.Execute(c.Request.Context(), ucAppointment.WebhookCreateInput{
		Phone:       req.Phone,
		BarberName:  req.BarberName,
		ServiceName: req.ServiceName,
		Date:        req.Date,
		Time:        req.Time,
		ClientName:  req.ClientName,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"message":          "Agendamento criado com sucesso",
		"client_created":   res.ClientCreated,
		"agendamento":      dto.FromAppointment(res.Appointment),
		"response_message": res.Message,
	})
}

func (h *WebhookHandler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req WebhookStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.setStatus.Execute(c.Request.Context(), id, req.Status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"success":          true,
		"message":          "Status atualizado com sucesso",
		"old_status":       res.OldStatus,
		"new_status":       res.NewStatus,
		"response_message": res.Message,
		"phone_number":     res.Phone,
		"agendamento":      dto.FromAppointment(res.Appointment),
	})
}
