package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		amount string
		kind   Kind
		want   string
	}{
		{"100", Credit, "100"},
		{"100", Debit, "-100"},
		{"0", Debit, "0"},
		{"12.34", Debit, "-12.34"},
		{"0.01", Credit, "0.01"},
		// negative magnitudes are passed through untouched
		{"-5", Credit, "-5"},
		{"-5", Debit, "5"},
	}
	for _, tc := range cases {
		got := Normalize(decimal.RequireFromString(tc.amount), tc.kind)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("Normalize(%s, %s) = %s, want %s", tc.amount, tc.kind, got, tc.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"credit", "debit"} {
		if _, err := ParseKind(in); err != nil {
			t.Fatalf("ParseKind(%q) unexpected error: %v", in, err)
		}
	}
	for _, in := range []string{"", "CREDIT", "refund", " debit "} {
		_, err := ParseKind(in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("ParseKind(%q) expected invalid input, got %v", in, err)
		}
	}
}

func TestNewTransaction(t *testing.T) {
	tx, err := NewTransaction("  Salary ", decimal.NewFromInt(100), Debit, "sess-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if tx.Title != "  Salary " {
		t.Fatalf("title must be stored as given, got %q", tx.Title)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("expected -100, got %s", tx.Amount)
	}
	if tx.SessionID != "sess-1" {
		t.Fatalf("unexpected session %q", tx.SessionID)
	}
	if err := tx.Validate(); err != nil {
		t.Fatalf("built transaction should validate: %v", err)
	}

	other, _ := NewTransaction("Salary", decimal.NewFromInt(1), Credit, "sess-1")
	if other.ID == tx.ID {
		t.Fatalf("ids must be unique")
	}
}

func TestValidateTitleCountsCharacters(t *testing.T) {
	ok := strings.Repeat("é", MaxTitleLength)
	if len(ok) <= MaxTitleLength {
		t.Fatalf("test title must be longer in bytes than in characters")
	}
	if err := ValidateTitle(ok); err != nil {
		t.Fatalf("ValidateTitle(%d characters) = %v", MaxTitleLength, err)
	}
	if err := ValidateTitle(ok + "é"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input over the limit, got %v", err)
	}
}

func TestNewTransactionRejects(t *testing.T) {
	bads := []struct {
		name    string
		title   string
		kind    Kind
		session string
		want    error
	}{
		{"empty title", "", Credit, "s", ErrInvalidInput},
		{"blank title", "   ", Credit, "s", ErrInvalidInput},
		{"long title", strings.Repeat("x", MaxTitleLength+1), Credit, "s", ErrInvalidInput},
		{"long multibyte title", strings.Repeat("é", MaxTitleLength+1), Credit, "s", ErrInvalidInput},
		{"bad kind", "ok", Kind("refund"), "s", ErrInvalidInput},
		{"no session", "ok", Credit, "", ErrUnauthenticated},
	}
	for _, tc := range bads {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTransaction(tc.title, decimal.NewFromInt(1), tc.kind, tc.session)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{`100`, "100", true},
		{`-3.5`, "-3.5", true},
		{`0.1`, "0.1", true},
		{`1e2`, "100", true},
		{`"100"`, "", false},
		{`true`, "", false},
		{`null`, "", false},
		{`{}`, "", false},
		{``, "", false},
		{`-x`, "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(json.RawMessage(tc.raw))
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("%s expected %s, got %s (err=%v)", tc.raw, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s expected validation error, got %v", tc.raw, err)
		}
	}
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID(id.String())
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (err=%v)", id, got, err)
	}
	if _, err := ParseID("not-a-uuid"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFields(t *testing.T) {
	one := &ValidationError{Field: "title", Message: "x"}
	if f := Fields(one); len(f) != 1 || f[0].Field != "title" {
		t.Fatalf("unexpected fields: %v", f)
	}
	many := ValidationErrors{one, {Field: "type", Message: "y"}}
	if f := Fields(many); len(f) != 2 {
		t.Fatalf("unexpected fields: %v", f)
	}
	if !errors.Is(many, ErrInvalidInput) {
		t.Fatalf("ValidationErrors should match ErrInvalidInput")
	}
	if Fields(errors.New("boom")) != nil {
		t.Fatalf("plain errors carry no fields")
	}
}
