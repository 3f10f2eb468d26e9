package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barberflow/internal/models"
)

type AppointmentDTO struct {
	ID uint `json:"id"`

	ClientID   uint   `json:"client_id"`
	ClientName string `json:"client_name"`

	BarberID   uint   `json:"barber_id"`
	BarberName string `json:"barber_name"`

	ServiceID   uint   `json:"service_id"`
	ServiceName string `json:"service_name"`

	Date   string `json:"date"`
	Time   string `json:"time"`
	Status string `json:"status"`

	FinalValue    *decimal.Decimal `json:"final_value"`
	PaymentMethod string           `json:"payment_method"`
}

// FromAppointment expects Client, Barber.User and Service to be loaded.
func FromAppointment(ap *models.Appointment) AppointmentDTO {
	return AppointmentDTO{
		ID:            ap.ID,
		ClientID:      ap.ClientID,
		ClientName:    ap.Client.Name,
		BarberID:      ap.BarberID,
		BarberName:    ap.Barber.User.Name,
		ServiceID:     ap.ServiceID,
		ServiceName:   ap.Service.Name,
		Date:          ap.Date,
		Time:          ap.Time,
		Status:        ap.Status,
		FinalValue:    ap.FinalValue,
		PaymentMethod: ap.PaymentMethod,
	}
}

func FromAppointments(apps []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(apps))
	for i := range apps {
		out = append(out, FromAppointment(&apps[i]))
	}
	return out
}
