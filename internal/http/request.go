package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"saldo/internal/core"
	"saldo/internal/ledger"
)

const maxBodyBytes = 1 << 20

var errUnsupportedMediaType = errors.New("unsupported media type")

// createTransactionRequest is the wire form of a create call. Amount is kept
// raw so that only JSON numbers are accepted.
type createTransactionRequest struct {
	Title  string          `json:"title" validate:"required,max=200"`
	Amount json.RawMessage `json:"amount" validate:"required"`
	Type   string          `json:"type" validate:"required,oneof=credit debit"`
}

// issues are reported in this order regardless of how they were found
var fieldOrder = []string{"body", "title", "amount", "type"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeCreateRequest reads and validates a create body. Every problem is
// reported at once as core.ValidationErrors.
func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (ledger.CreateInput, error) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != "application/json" {
			return ledger.CreateInput{}, errUnsupportedMediaType
		}
	}

	var req createTransactionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return ledger.CreateInput{}, decodeError(err)
	}

	var issues core.ValidationErrors
	var verrs validator.ValidationErrors
	if err := validate.Struct(req); errors.As(err, &verrs) {
		for _, fe := range verrs {
			issues = append(issues, &core.ValidationError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	} else if err != nil {
		return ledger.CreateInput{}, err
	}

	var in ledger.CreateInput
	if len(req.Amount) > 0 {
		amount, err := core.ParseAmount(req.Amount)
		if err != nil {
			issues = append(issues, core.Fields(err)...)
		}
		in.Amount = amount
	}
	if len(issues) > 0 {
		slices.SortStableFunc(issues, func(a, b *core.ValidationError) int {
			return slices.Index(fieldOrder, a.Field) - slices.Index(fieldOrder, b.Field)
		})
		return ledger.CreateInput{}, issues
	}

	kind, err := core.ParseKind(req.Type)
	if err != nil {
		return ledger.CreateInput{}, err
	}
	in.Title = req.Title
	in.Kind = kind
	return in, nil
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &core.ValidationError{Field: typeErr.Field, Message: "must be a " + jsonKind(typeErr.Type)}
	}
	if errors.Is(err, io.EOF) {
		return &core.ValidationError{Field: "body", Message: "is required"}
	}
	return &core.ValidationError{Field: "body", Message: "must be a valid JSON object"}
}

func jsonKind(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Struct, reflect.Map:
		return "object"
	default:
		return t.Kind().String()
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max":
		return fmt.Sprintf("too long (max %s characters)", fe.Param())
	default:
		return "is invalid"
	}
}
