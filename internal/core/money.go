// Package core holds the ledger data model and the pure rules applied to it:
// sign normalization, session identity and validation.
package core

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Normalize turns a magnitude and a direction into the signed amount that is
// stored. Credits keep their sign, debits are negated. Negative magnitudes
// are not rejected here.
func Normalize(amount decimal.Decimal, kind Kind) decimal.Decimal {
	if kind == Debit {
		return amount.Neg()
	}
	return amount
}

// ParseAmount reads a JSON number token into a decimal. Strings, booleans,
// null and objects are rejected so that "100" and 100 are not confused.
func ParseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "is required"}
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "must be a number"}
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "must be a number"}
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Message: "must be a finite number"}
	}
	return d, nil
}

// JSONNumber renders an amount as a bare JSON number.
func JSONNumber(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
