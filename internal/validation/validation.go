package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/request"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/model"
)

// tickerPattern accepts exchange suffixes (BRK.B, VOD.L), indices (^GSPC),
// futures and currencies (CL=F, EURUSD=X).
var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.\-^=]{1,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Compare decimals as numbers
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	//nolint:errcheck // tag names are constant and valid
	v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return IsValidTicker(fl.Field().String())
	})
	//nolint:errcheck // tag names are constant and valid
	v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return model.ValidPeriods[model.Period(strings.ToLower(fl.Field().String()))]
	})

	return v
}

// IsValidTicker reports whether symbol, once trimmed, looks like a ticker.
func IsValidTicker(symbol string) bool {
	return tickerPattern.MatchString(strings.TrimSpace(symbol))
}

// ValidateTicker checks a ticker taken from a URL path.
func ValidateTicker(symbol string) error {
	if !IsValidTicker(symbol) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidTicker, symbol)
	}
	return nil
}

// ValidatePortfolioRisk validates a portfolio scoring request.
//
// Required fields:
//   - entries: 1 to 100 rows
//   - entries[i].ticker: a ticker symbol
//
// Optional fields (validated if provided):
//   - period: one of 1mo, 3mo, 6mo, 1y, 2y
//   - entries[i].amount: zero or positive
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidatePortfolioRisk(req request.PortfolioRiskRequest) error {
	return toFieldError(validate.Struct(req))
}

func toFieldError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fieldPath(fe)] = message(fe)
	}
	return &Error{Fields: fields}
}

// fieldPath drops the root struct name from the namespace: entries[0].ticker.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s cannot be negative", field)
	case "ticker":
		return fmt.Sprintf("%s is not a valid ticker symbol", field)
	case "period":
		return fmt.Sprintf("%s must be one of: 1mo, 3mo, 6mo, 1y, 2y", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
