package app

import (
	"errors"
	"testing"

	"github.com/ArielAmzalak/SenhasGF4/internal/domain"
)

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	valid := []struct {
		in   string
		want string
	}{
		{"92981231234", "(92) 98123-1234"},
		{"(92) 98123-1234", "(92) 98123-1234"},
		{"+55 92 98123 1234", "(92) 98123-1234"},
		{"5592981231234", "(92) 98123-1234"},
	}
	for _, tc := range valid {
		got, err := FormatPhone(tc.in)
		if err != nil {
			t.Fatalf("FormatPhone(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("FormatPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	invalid := []string{"", "   ", "abc", "9812-1234", "981231234", "929812312345"}
	for _, in := range invalid {
		if _, err := FormatPhone(in); !errors.Is(err, domain.ErrInvalidPhone) {
			t.Fatalf("FormatPhone(%q): expected ErrInvalidPhone, got %v", in, err)
		}
	}
}

func TestFormatName(t *testing.T) {
	t.Parallel()

	if got := FormatName("  fulano de tal "); got != "FULANO DE TAL" {
		t.Fatalf("got %q", got)
	}
	if got := FormatName("josé"); got != "JOSÉ" {
		t.Fatalf("got %q", got)
	}
}

func TestParseTruthy(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"Sim", "SIM", "s", "true", "True", "1", "y", "yes", "Ativo", "ATIVA", "on", "ok"} {
		if !parseTruthy(v) {
			t.Fatalf("parseTruthy(%q) should be true", v)
		}
	}
	for _, v := range []string{"", "Não", "nao", "false", "0", "inativo", "off"} {
		if parseTruthy(v) {
			t.Fatalf("parseTruthy(%q) should be false", v)
		}
	}
}

func TestFoldKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Área":    "area",
		" ÁREA ":  "area",
		"Ativa":   "ativa",
		"não":     "nao",
		"Destino": "destino",
	}
	for in, want := range cases {
		if got := foldKey(in); got != want {
			t.Fatalf("foldKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"120":        120,
		"120 senhas": 120,
		"sem limite": 0,
		"":           0,
		"0":          0,
		"-5":         5,
	}
	for in, want := range cases {
		if got := parsePositiveInt(in); got != want {
			t.Fatalf("parsePositiveInt(%q) = %d, want %d", in, got, want)
		}
	}
}
