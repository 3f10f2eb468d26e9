package appointment

import "github.com/BruksfildServices01/barberflow/internal/models"

// Principal is the authenticated caller.
type Principal struct {
	UserID uint
	Role   string
}

func (p Principal) IsManager() bool { return p.Role == models.RoleManager }

// Capabilities is what a caller may change on one appointment.
type Capabilities struct {
	IsOwner   bool
	IsBarber  bool
	IsManager bool

	CanSetStatus  bool
	CanSetValue   bool
	CanReschedule bool
}

func (c Capabilities) Any() bool {
	return c.IsOwner || c.IsBarber || c.IsManager
}

// ResolveCapabilities evaluates the caller's rights once per request.
// callerBarberID is the caller's barber profile id, or nil when there is none.
func ResolveCapabilities(p Principal, ap *models.Appointment, callerBarberID *uint) Capabilities {
	c := Capabilities{
		IsOwner:   p.UserID == ap.ClientID,
		IsBarber:  p.Role == models.RoleBarber && callerBarberID != nil && *callerBarberID == ap.BarberID,
		IsManager: p.IsManager(),
	}

	c.CanSetStatus = c.Any()
	c.CanSetValue = c.IsBarber || c.IsManager
	c.CanReschedule = c.IsOwner || c.IsManager
	return c
}

// StatusOnly is the capability set used by the n8n status webhook.
func StatusOnly() Capabilities {
	return Capabilities{CanSetStatus: true}
}
