package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ArielAmzalak/SenhasGF4/internal/clock"
	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

const (
	defaultTimezone = "America/Manaus"
	timestampLayout = "02/01/2006 15:04:05"
)

// AreaLoader resolves the active areas from the directory.
type AreaLoader interface {
	LoadActiveAreas(ctx context.Context) ([]domain.Area, error)
}

// TicketAllocator appends a registration row and reports the confirmed
// ticket number.
type TicketAllocator interface {
	AllocateAndAppend(ctx context.Context, sheetName string, row []string) (int, error)
}

// RegistrationService validates a submission, assembles one row per
// selected area and drives the allocator. Allocator failure kinds pass
// through unchanged so the caller can tell "safe to retry" from "must
// check the sheet manually".
type RegistrationService struct {
	areas  AreaLoader
	alloc  TicketAllocator
	clock  clock.Clock
	logger *zap.Logger
	loc    *time.Location
}

type RegistrationOption func(*RegistrationService)

// WithTimezone sets the timezone used for registration timestamps.
// Unknown names fall back to the default.
func WithTimezone(name string) RegistrationOption {
	return func(s *RegistrationService) {
		if name == "" {
			return
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			s.logger.Warn("unknown timezone, keeping default", zap.String("tz", name), zap.Error(err))
			return
		}
		s.loc = loc
	}
}

func NewRegistrationService(areas AreaLoader, alloc TicketAllocator, clk clock.Clock, logger *zap.Logger, opts ...RegistrationOption) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.UTC
	}
	s := &RegistrationService{
		areas:  areas,
		alloc:  alloc,
		clock:  clk,
		logger: logger,
		loc:    loc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitInput is one registrant asking for tickets in one or more areas.
type SubmitInput struct {
	Areas        []string
	Name         string
	Phone        string
	Neighborhood string
}

// LimitNotice reports an area whose configured ticket cap was passed.
type LimitNotice struct {
	Area   string
	Limit  int
	Number int
}

// SubmitResult carries every ticket confirmed during the submission.
// When Submit also returns an error, Tickets holds the allocations that
// completed before the failure: those rows exist in the store and must
// not be re-submitted.
type SubmitResult struct {
	Tickets  []domain.ConfirmedTicket
	Exceeded []LimitNotice
}

// Submit issues one ticket per selected area. Registered rows carry the
// formatted name/phone, the neighborhood and the submission timestamp;
// the atendimento column is left empty.
func (s *RegistrationService) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	var result SubmitResult

	if len(in.Areas) == 0 {
		return result, domain.ErrNoAreaSelected
	}
	name := FormatName(in.Name)
	if name == "" {
		return result, domain.ErrNameRequired
	}
	phone, err := FormatPhone(in.Phone)
	if err != nil {
		return result, err
	}
	neighborhood := strings.TrimSpace(in.Neighborhood)

	active, err := s.areas.LoadActiveAreas(ctx)
	if err != nil {
		return result, err
	}
	byName := make(map[string]domain.Area, len(active))
	for _, a := range active {
		byName[a.DisplayName] = a
	}

	// Resolve every requested area before writing anything, so a typo in
	// the second area does not leave a half-submitted first one.
	selected := make([]domain.Area, 0, len(in.Areas))
	for _, want := range in.Areas {
		area, ok := byName[want]
		if !ok {
			return result, fmt.Errorf("%w: %q", domain.ErrAreaNotFound, want)
		}
		selected = append(selected, area)
	}

	registeredAt := s.clock.Now().In(s.loc).Format(timestampLayout)

	for _, area := range selected {
		row := domain.Row(name, phone, neighborhood, registeredAt)
		number, err := s.alloc.AllocateAndAppend(ctx, area.SheetName, row)
		if err != nil {
			// Earlier areas are already persisted; hand them back next to
			// the failure so the caller can report what was issued.
			return result, err
		}

		result.Tickets = append(result.Tickets, domain.ConfirmedTicket{
			Area:         area,
			Number:       number,
			Name:         name,
			Phone:        phone,
			Neighborhood: neighborhood,
			RegisteredAt: registeredAt,
		})
		if area.MaxTickets > 0 && number > area.MaxTickets {
			result.Exceeded = append(result.Exceeded, LimitNotice{
				Area:   area.DisplayName,
				Limit:  area.MaxTickets,
				Number: number,
			})
		}
	}

	return result, nil
}
