package domain

// Header is the canonical first row of every area sheet. Ticket numbers
// are derived from row positions below it: ticket = row index - 1.
var Header = []string{
	"Senha",
	"Nome",
	"Telefone",
	"Bairro",
	"Data e Hora de Registro",
	"Data e Hora de Atendimento",
}

// ConfirmedTicket is a registration whose row append was confirmed by
// the store, carrying the ticket number the store's row position
// assigned to it.
type ConfirmedTicket struct {
	Area         Area
	Number       int
	Name         string
	Phone        string
	Neighborhood string
	// RegisteredAt is the formatted timestamp written to the sheet
	// (dd/mm/yyyy hh:mm:ss in the service timezone).
	RegisteredAt string
}

// Row assembles the sheet row for a registration about to be appended.
// The Senha cell is left empty: the number is only known once the store
// confirms the row position, and is backfilled afterwards. The
// atendimento cell stays empty until an out-of-band fulfillment step.
func Row(name, phone, neighborhood, registeredAt string) []string {
	return []string{"", name, phone, neighborhood, registeredAt, ""}
}
