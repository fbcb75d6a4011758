package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ArielAmzalak/SenhasGF4/internal/clock"
	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
	"github.com/ArielAmzalak/SenhasGF4/internal/testutil"
)

func newSubmitFixture(t *testing.T, directory [][]string) (*RegistrationService, *testutil.FakeStore) {
	t.Helper()
	store := testutil.NewFakeStore()
	store.Seed("Nomes", directory)
	reg := NewRegistry(store, nil)
	alloc := NewAllocator(store, nil)
	now := time.Date(2025, 6, 14, 13, 45, 30, 0, time.UTC)
	svc := NewRegistrationService(reg, alloc, clock.NewFixed(now), nil)
	return svc, store
}

func TestRegistrationService_Submit(t *testing.T) {
	t.Parallel()

	directory := [][]string{
		{"Área", "Aba", "Ativa", "Limite"},
		{"Alimentação", "", "Sim", ""},
		{"Bazar", "Bazar2024", "Sim", "2"},
		{"Saúde", "", "Não", ""},
	}

	t.Run("first submission on an empty sheet is ticket 1", func(t *testing.T) {
		svc, store := newSubmitFixture(t, directory)

		res, err := svc.Submit(context.Background(), SubmitInput{
			Areas:        []string{"Alimentação"},
			Name:         "fulano de tal",
			Phone:        "92981231234",
			Neighborhood: "Centro",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tickets) != 1 {
			t.Fatalf("expected 1 ticket, got %d", len(res.Tickets))
		}
		tk := res.Tickets[0]
		if tk.Number != 1 {
			t.Fatalf("expected ticket 1, got %d", tk.Number)
		}
		if tk.Area.SheetName != "Alimentação" {
			t.Fatalf("expected sheet Alimentação, got %q", tk.Area.SheetName)
		}
		if tk.Name != "FULANO DE TAL" {
			t.Fatalf("name not upper-cased: %q", tk.Name)
		}
		if tk.Phone != "(92) 98123-1234" {
			t.Fatalf("phone not normalized: %q", tk.Phone)
		}

		rows := store.Rows("Alimentação")
		if len(rows) != 2 {
			t.Fatalf("expected header plus data row, got %d rows", len(rows))
		}
		data := rows[1]
		// Senha backfilled, atendimento still empty.
		if data[0] != "1" {
			t.Fatalf("Senha cell: got %q, want \"1\"", data[0])
		}
		if data[5] != "" {
			t.Fatalf("atendimento cell should be empty, got %q", data[5])
		}
		if data[4] == "" {
			t.Fatalf("registro timestamp missing")
		}
	})

	t.Run("timestamp uses configured timezone and layout", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.Seed("Nomes", directory)
		reg := NewRegistry(store, nil)
		alloc := NewAllocator(store, nil)
		now := time.Date(2025, 6, 14, 13, 45, 30, 0, time.UTC)
		svc := NewRegistrationService(reg, alloc, clock.NewFixed(now), nil, WithTimezone("America/Manaus"))

		res, err := svc.Submit(context.Background(), SubmitInput{
			Areas: []string{"Alimentação"},
			Name:  "Ana",
			Phone: "92981231234",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// Manaus is UTC-4 year round.
		if got := res.Tickets[0].RegisteredAt; got != "14/06/2025 09:45:30" {
			t.Fatalf("unexpected timestamp %q", got)
		}
	})

	t.Run("multiple areas get independent sequences", func(t *testing.T) {
		svc, _ := newSubmitFixture(t, directory)

		res, err := svc.Submit(context.Background(), SubmitInput{
			Areas: []string{"Alimentação", "Bazar"},
			Name:  "Ana",
			Phone: "92981231234",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(res.Tickets) != 2 {
			t.Fatalf("expected 2 tickets, got %d", len(res.Tickets))
		}
		if res.Tickets[0].Number != 1 || res.Tickets[1].Number != 1 {
			t.Fatalf("each area should start at 1, got %d and %d", res.Tickets[0].Number, res.Tickets[1].Number)
		}
		if res.Tickets[1].Area.SheetName != "Bazar2024" {
			t.Fatalf("Bazar should target Bazar2024, got %q", res.Tickets[1].Area.SheetName)
		}
	})

	t.Run("exceeding the area cap is reported, not refused", func(t *testing.T) {
		svc, _ := newSubmitFixture(t, directory)

		var last SubmitResult
		for i := 0; i < 3; i++ {
			var err error
			last, err = svc.Submit(context.Background(), SubmitInput{
				Areas: []string{"Bazar"},
				Name:  "Ana",
				Phone: "92981231234",
			})
			if err != nil {
				t.Fatalf("submission %d: %v", i, err)
			}
		}
		if len(last.Exceeded) != 1 {
			t.Fatalf("expected a limit notice, got %+v", last.Exceeded)
		}
		notice := last.Exceeded[0]
		if notice.Area != "Bazar" || notice.Limit != 2 || notice.Number != 3 {
			t.Fatalf("unexpected notice %+v", notice)
		}
		// The ticket itself is still issued.
		if len(last.Tickets) != 1 || last.Tickets[0].Number != 3 {
			t.Fatalf("ticket past the cap must still be issued: %+v", last.Tickets)
		}
	})

	t.Run("validation failures", func(t *testing.T) {
		svc, _ := newSubmitFixture(t, directory)

		cases := []struct {
			name string
			in   SubmitInput
			want error
		}{
			{"no areas", SubmitInput{Name: "Ana", Phone: "92981231234"}, domain.ErrNoAreaSelected},
			{"blank name", SubmitInput{Areas: []string{"Alimentação"}, Name: "  ", Phone: "92981231234"}, domain.ErrNameRequired},
			{"short phone", SubmitInput{Areas: []string{"Alimentação"}, Name: "Ana", Phone: "1234"}, domain.ErrInvalidPhone},
			{"unknown area", SubmitInput{Areas: []string{"Jardim"}, Name: "Ana", Phone: "92981231234"}, domain.ErrAreaNotFound},
			{"inactive area", SubmitInput{Areas: []string{"Saúde"}, Name: "Ana", Phone: "92981231234"}, domain.ErrAreaNotFound},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Submit(context.Background(), tc.in)
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("allocator failure kinds pass through unchanged", func(t *testing.T) {
		for _, sentinel := range []error{domain.ErrAppendFailed, domain.ErrConfirmationLost, domain.ErrSheetCreationConflict} {
			svc, store := newSubmitFixture(t, directory)
			switch sentinel {
			case domain.ErrSheetCreationConflict:
				store.EnsureErr = fmt.Errorf("%w: race", sentinel)
			default:
				store.AppendErr = fmt.Errorf("%w: transport", sentinel)
			}

			_, err := svc.Submit(context.Background(), SubmitInput{
				Areas: []string{"Alimentação"},
				Name:  "Ana",
				Phone: "92981231234",
			})
			if !errors.Is(err, sentinel) {
				t.Fatalf("expected %v to pass through, got %v", sentinel, err)
			}
		}
	})

	t.Run("directory failure propagates", func(t *testing.T) {
		svc, store := newSubmitFixture(t, directory)
		store.ReadErr = errors.New("offline")

		_, err := svc.Submit(context.Background(), SubmitInput{
			Areas: []string{"Alimentação"},
			Name:  "Ana",
			Phone: "92981231234",
		})
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			t.Fatalf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("tickets confirmed before a failure are handed back", func(t *testing.T) {
		store := testutil.NewFakeStore()
		store.Seed("Nomes", directory)
		reg := NewRegistry(store, nil)
		alloc := &flakyAllocator{inner: NewAllocator(store, nil), failFrom: 2}
		svc := NewRegistrationService(reg, alloc, clock.NewFixed(time.Now()), nil)

		res, err := svc.Submit(context.Background(), SubmitInput{
			Areas: []string{"Alimentação", "Bazar"},
			Name:  "Ana",
			Phone: "92981231234",
		})
		if !errors.Is(err, domain.ErrConfirmationLost) {
			t.Fatalf("expected ErrConfirmationLost, got %v", err)
		}
		if len(res.Tickets) != 1 || res.Tickets[0].Area.DisplayName != "Alimentação" {
			t.Fatalf("expected the first ticket alongside the error, got %+v", res.Tickets)
		}
	})
}

// flakyAllocator fails every call from failFrom onwards.
type flakyAllocator struct {
	inner    *Allocator
	calls    int
	failFrom int
}

func (f *flakyAllocator) AllocateAndAppend(ctx context.Context, sheetName string, row []string) (int, error) {
	f.calls++
	if f.calls >= f.failFrom {
		return 0, fmt.Errorf("%w: simulated", domain.ErrConfirmationLost)
	}
	return f.inner.AllocateAndAppend(ctx, sheetName, row)
}
