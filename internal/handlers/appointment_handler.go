package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barberflow/internal/dto"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/httpresp"
	"github.com/BruksfildServices01/barberflow/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/barberflow/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create     *ucAppointment.CreateAppointment
	list       *ucAppointment.ListAppointments
	listClient *ucAppointment.ListClientAppointments
	update     *ucAppointment.UpdateAppointment
}

func NewAppointmentHandler(
	create *ucAppointment.CreateAppointment,
	list *ucAppointment.ListAppointments,
	listClient *ucAppointment.ListClientAppointments,
	update *ucAppointment.UpdateAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:     create,
		list:       list,
		listClient: listClient,
		update:     update,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	BarberID      uint             `json:"barber_id" binding:"required"`
	ServiceID     uint             `json:"service_id" binding:"required"`
	Date          string           `json:"date" binding:"required"`
	Time          string           `json:"time" binding:"required"`
	FinalValue    *decimal.Decimal `json:"final_value"`
	PaymentMethod string           `json:"payment_method"`
}

type UpdateAppointmentRequest struct {
	Status        *string          `json:"status"`
	FinalValue    *decimal.Decimal `json:"final_value"`
	PaymentMethod *string          `json:"payment_method"`
	Date          *string          `json:"date"`
	Time          *string          `json:"time"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.create.Execute(
		c.Request.Context(),
		middleware.Principal(c),
		ucAppointment.CreateAppointmentInput{
			BarberID:      req.BarberID,
			ServiceID:     req.ServiceID,
			Date:          req.Date,
			Time:          req.Time,
			FinalValue:    req.FinalValue,
			PaymentMethod: req.PaymentMethod,
		},
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, "Agendamento criado com sucesso", "appointment", dto.FromAppointment(ap))
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	out, err := h.list.Execute(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}

func (h *AppointmentHandler) ListForClient(c *gin.Context) {
	clientID, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.listClient.Execute(c.Request.Context(), middleware.Principal(c), clientID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, out)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.update.Execute(
		c.Request.Context(),
		middleware.Principal(c),
		id,
		ucAppointment.Patch{
			Status:        req.Status,
			FinalValue:    req.FinalValue,
			PaymentMethod: req.PaymentMethod,
			Date:          req.Date,
			Time:          req.Time,
		},
	)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Updated(c, "Agendamento atualizado com sucesso", "appointment", dto.FromAppointment(ap))
}
