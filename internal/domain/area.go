package domain

// Area is a service line with its own independent ticket sequence.
// Identity is SheetName: the tab of the shared spreadsheet that holds
// the area's registrations.
type Area struct {
	DisplayName string
	SheetName   string
	Active      bool
	// MaxTickets caps how many tickets should be printed for the area.
	// Zero means unlimited. The cap is advisory: a registration past the
	// cap is still persisted, only the printable ticket is withheld.
	MaxTickets int
}
