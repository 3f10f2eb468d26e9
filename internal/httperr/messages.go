package httperr

var messages = map[string]string{
	"invalid_request":          "Dados inválidos.",
	"invalid_date_or_time":     "Formato de data/hora inválido.",
	"invalid_date":             "Formato de data inválido. Use YYYY-MM-DD.",
	"invalid_time":             "Formato de hora inválido. Use HH:MM.",
	"invalid_status":           "Status inválido.",
	"invalid_role":             "Tipo de usuário inválido.",
	"invalid_kind":             "Tipo inválido.",
	"invalid_period":           "Período inválido. Use YYYY-MM.",
	"invalid_amount":           "Valor inválido.",
	"invalid_quantity":         "Quantidade inválida.",
	"invalid_duration":         "Duração inválida.",
	"invalid_id":               "Identificador inválido.",
	"invalid_schedule":         "Horário de trabalho ou folgas inválidos.",
	"invalid_email":            "Email inválido.",
	"reschedule_not_allowed":   "Não é possível reagendar agendamento realizado ou cancelado.",
	"barber_not_found":         "Barbeiro não encontrado.",
	"service_not_found":        "Serviço não encontrado.",
	"user_not_found":           "Usuário não encontrado.",
	"product_not_found":        "Produto não encontrado.",
	"payout_not_found":         "Repasse não encontrado.",
	"appointment_not_found":    "Agendamento não encontrado.",
	"forbidden":                "Acesso negado.",
	"time_conflict":            "Horário já ocupado para este barbeiro.",
	"email_already_exists":     "Email já cadastrado.",
	"barber_already_exists":    "Barbeiro já cadastrado para este usuário.",
	"user_not_barber":          "Usuário deve ser do tipo barbeiro.",
	"payout_already_exists":    "Repasse já existe para este período.",
	"product_not_for_sale":     "Produto não é para venda.",
	"insufficient_stock":       "Estoque insuficiente.",
	"user_has_appointments":    "Usuário possui agendamentos vinculados.",
	"service_has_appointments": "Serviço possui agendamentos vinculados.",
	"manager_already_exists":   "Já existe um gerente cadastrado.",
	"invalid_credentials":      "Credenciais inválidas.",
	"internal_error":           "Erro interno.",
}

func messageFor(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return code
}
