package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/barberflow/internal/audit"
	"github.com/BruksfildServices01/barberflow/internal/auth"
	domain "github.com/BruksfildServices01/barberflow/internal/domain/appointment"
	"github.com/BruksfildServices01/barberflow/internal/httperr"
	"github.com/BruksfildServices01/barberflow/internal/models"
)

const defaultWebhookClientName = "Cliente WhatsApp"

// errClientRace means another request provisioned the same phone between
// our lookup and insert.
var errClientRace = errors.New("client provisioned concurrently")

// NormalizePhone strips the formatting WhatsApp adds to numbers.
func NormalizePhone(phone string) string {
	return strings.NewReplacer("+", "", " ", "").Replace(strings.TrimSpace(phone))
}

// PlaceholderEmail is the unique email given to users created from a phone.
func PlaceholderEmail(phone string) string {
	return fmt.Sprintf("whatsapp_%s@temp.com", phone)
}

// ======================================================
// CREATE BY PHONE
// ======================================================

type WebhookCreateInput struct {
	Phone       string
	BarberName  string
	ServiceName string
	Date        string
	Time        string
	ClientName  string
}

type WebhookCreateResult struct {
	Appointment   *models.Appointment
	ClientCreated bool
	Message       string
}

// WebhookCreateAppointment books on behalf of a phone number, provisioning
// a client user for unknown numbers inside the same transaction.
type WebhookCreateAppointment struct {
	repo  domain.Repository
	audit Auditor
}

func NewWebhookCreateAppointment(repo domain.Repository, audit Auditor) *WebhookCreateAppointment {
	return &WebhookCreateAppointment{repo: repo, audit: audit}
}

func (uc *WebhookCreateAppointment) Execute(
	ctx context.Context,
	in WebhookCreateInput,
) (*WebhookCreateResult, error) {

	phone := NormalizePhone(in.Phone)
	if phone == "" {
		return nil, httperr.ErrBusiness("invalid_request")
	}

	// The aborted transaction is discarded. The second run finds the
	// winner's user by phone.
	res, err := uc.execute(ctx, phone, in)
	if errors.Is(err, errClientRace) {
		res, err = uc.execute(ctx, phone, in)
	}
	if errors.Is(err, errClientRace) {
		return nil, httperr.ErrConflict("email_already_exists")
	}
	return res, err
}

func (uc *WebhookCreateAppointment) execute(
	ctx context.Context,
	phone string,
	in WebhookCreateInput,
) (*WebhookCreateResult, error) {

	var (
		res  WebhookCreateResult
		slot domain.Slot
	)

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		client, created, err := findOrProvisionClient(ctx, repo, phone, in.ClientName)
		if err != nil {
			return err
		}
		res.ClientCreated = created

		barber, err := repo.FindBarberByName(ctx, in.BarberName)
		if err != nil {
			return lookup(err, "barber_not_found")
		}

		service, err := repo.FindServiceByName(ctx, in.ServiceName)
		if err != nil {
			return lookup(err, "service_not_found")
		}

		date, clock, err := domain.ParseDateTime(in.Date, in.Time)
		if err != nil {
			return err
		}

		slot = domain.Slot{BarberID: barber.ID, Date: date, Time: clock}
		if err := ensureFree(ctx, repo, slot, 0); err != nil {
			return err
		}

		price := service.Price
		ap := &models.Appointment{
			ClientID:   client.ID,
			BarberID:   barber.ID,
			ServiceID:  service.ID,
			Date:       date,
			Time:       clock,
			Status:     string(domain.InitialStatus()),
			FinalValue: &price,
		}
		if err := repo.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		res.Appointment, err = repo.GetAppointment(ctx, ap.ID)
		return err
	})

	if errors.Is(err, domain.ErrSlotTaken) {
		return nil, conflict(uc.audit, "webhook", nil, slot)
	}
	if err != nil {
		return nil, err
	}

	res.Message = createdMessage(res.Appointment)

	uc.audit.Dispatch(audit.Event{
		UserID:   &res.Appointment.ClientID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &res.Appointment.ID,
		Metadata: map[string]any{
			"source":         "webhook",
			"client_created": res.ClientCreated,
		},
	})

	return &res, nil
}

func findOrProvisionClient(
	ctx context.Context,
	repo domain.Repository,
	phone string,
	name string,
) (*models.User, bool, error) {

	u, err := repo.FindUserByPhone(ctx, phone)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	hash, err := auth.HashPassword(auth.TemporaryPassword())
	if err != nil {
		return nil, false, err
	}

	if strings.TrimSpace(name) == "" {
		name = defaultWebhookClientName
	}

	u = &models.User{
		Name:         name,
		Email:        PlaceholderEmail(phone),
		PasswordHash: hash,
		Role:         models.RoleClient,
		Phone:        phone,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, false, errClientRace
		}
		return nil, false, err
	}
	return u, true, nil
}

// ======================================================
// STATUS UPDATE
// ======================================================

type WebhookStatusResult struct {
	Appointment *models.Appointment
	OldStatus   string
	NewStatus   string
	Phone       string
	Message     string
}

// WebhookSetStatus changes only the status. The status webhook carries no
// caller identity.
type WebhookSetStatus struct {
	repo  domain.Repository
	audit Auditor
}

func NewWebhookSetStatus(repo domain.Repository, audit Auditor) *WebhookSetStatus {
	return &WebhookSetStatus{repo: repo, audit: audit}
}

func (uc *WebhookSetStatus) Execute(
	ctx context.Context,
	appointmentID uint,
	status string,
) (*WebhookStatusResult, error) {

	var res patchResult

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		ap, err := repo.GetAppointment(ctx, appointmentID)
		if err != nil {
			return lookup(err, "appointment_not_found")
		}

		res, err = applyPatch(ctx, repo, ap, domain.StatusOnly(), Patch{Status: &status})
		return err
	})

	if errors.Is(err, domain.ErrSlotTaken) {
		return nil, conflict(uc.audit, "webhook", nil, res.slot)
	}
	if err != nil {
		return nil, err
	}

	meta := res.metadata()
	meta["source"] = "webhook"
	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_updated",
		Entity:   "appointment",
		EntityID: &res.ap.ID,
		Metadata: meta,
	})

	return &WebhookStatusResult{
		Appointment: res.ap,
		OldStatus:   res.oldStatus,
		NewStatus:   res.ap.Status,
		Phone:       res.ap.Client.Phone,
		Message:     statusMessage(res.ap),
	}, nil
}

// ======================================================
// MESSAGES
// ======================================================

func displayDate(d string) string {
	t, err := time.Parse(domain.DateLayout, d)
	if err != nil {
		return d
	}
	return t.Format("02/01/2006")
}

func money(ap *models.Appointment) string {
	if ap.FinalValue == nil {
		return ap.Service.Price.StringFixed(2)
	}
	return ap.FinalValue.StringFixed(2)
}

func createdMessage(ap *models.Appointment) string {
	return fmt.Sprintf(`✅ *AGENDAMENTO CRIADO*

📅 Data: %s
🕐 Horário: %s
💈 Serviço: %s
👨‍💼 Barbeiro: %s
💰 Valor: R$ %s

⏳ Status: Pendente de confirmação

Entraremos em contato para confirmar seu agendamento!`,
		displayDate(ap.Date), ap.Time, ap.Service.Name, ap.Barber.User.Name, money(ap))
}

func statusMessage(ap *models.Appointment) string {
	switch domain.Status(ap.Status) {
	case domain.StatusConfirmed:
		return fmt.Sprintf(`✅ *AGENDAMENTO CONFIRMADO*

Olá %s!

Seu agendamento foi confirmado:

📅 Data: %s
🕐 Horário: %s
💈 Serviço: %s
👨‍💼 Barbeiro: %s
💰 Valor: R$ %s

Aguardamos você! 💈`,
			ap.Client.Name, displayDate(ap.Date), ap.Time, ap.Service.Name, ap.Barber.User.Name, money(ap))
	case domain.StatusCancelled:
		return fmt.Sprintf(`❌ *AGENDAMENTO CANCELADO*

Olá %s!

Seu agendamento foi cancelado:

📅 Data: %s
🕐 Horário: %s
💈 Serviço: %s

Para reagendar, digite *AGENDAR*`,
			ap.Client.Name, displayDate(ap.Date), ap.Time, ap.Service.Name)
	case domain.StatusCompleted:
		return fmt.Sprintf(`✅ *ATENDIMENTO CONCLUÍDO*

Obrigado %s!

Seu atendimento foi concluído:

📅 Data: %s
💈 Serviço: %s
👨‍💼 Barbeiro: %s

Esperamos você novamente! 💈`,
			ap.Client.Name, displayDate(ap.Date), ap.Service.Name, ap.Barber.User.Name)
	}
	return "Status atualizado com sucesso."
}
