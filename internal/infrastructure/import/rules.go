package csvimport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldRule describes the checks applied to one column
type FieldRule struct {
	Column    string
	required  bool
	decimal   bool
	maxLength int
	min       *decimal.Decimal
	unique    bool
}

// Field starts a rule for column
func Field(column string) *FieldRule {
	return &FieldRule{Column: column}
}

// Required rejects blank cells
func (r *FieldRule) Required() *FieldRule {
	r.required = true
	return r
}

// Decimal requires a number when the cell is not blank
func (r *FieldRule) Decimal() *FieldRule {
	r.decimal = true
	return r
}

// MaxLength caps the cell length in characters
func (r *FieldRule) MaxLength(n int) *FieldRule {
	r.maxLength = n
	return r
}

// Min sets the lowest accepted number. It implies Decimal.
func (r *FieldRule) Min(v decimal.Decimal) *FieldRule {
	r.decimal = true
	r.min = &v
	return r
}

// Unique rejects a value already seen earlier in the file. Comparison
// ignores case.
func (r *FieldRule) Unique() *FieldRule {
	r.unique = true
	return r
}

// RowValidator applies field rules to rows and tracks uniqueness across the file
type RowValidator struct {
	rules []*FieldRule
	seen  map[string]map[string]int
}

// NewRowValidator creates a validator for rules
func NewRowValidator(rules ...*FieldRule) *RowValidator {
	seen := make(map[string]map[string]int)
	for _, rule := range rules {
		if rule.unique {
			seen[rule.Column] = make(map[string]int)
		}
	}
	return &RowValidator{rules: rules, seen: seen}
}

// RequiredColumns returns the columns with a Required rule
func (v *RowValidator) RequiredColumns() []string {
	var cols []string
	for _, rule := range v.rules {
		if rule.required {
			cols = append(cols, rule.Column)
		}
	}
	return cols
}

// Validate returns every rule violation in row
func (v *RowValidator) Validate(row *Row) []RowError {
	var errs []RowError
	for _, rule := range v.rules {
		if err := v.check(rule, row); err != nil {
			errs = append(errs, *err)
		}
	}
	return errs
}

func (v *RowValidator) check(rule *FieldRule, row *Row) *RowError {
	value := row.Get(rule.Column)
	fail := func(code, format string, args ...any) *RowError {
		return &RowError{
			Row:     row.Line,
			Column:  rule.Column,
			Code:    code,
			Message: fmt.Sprintf(format, args...),
			Value:   value,
		}
	}

	if value == "" {
		if rule.required {
			return fail(ErrCodeRequired, "%s is required", rule.Column)
		}
		return nil
	}

	if rule.maxLength > 0 && utf8.RuneCountInString(value) > rule.maxLength {
		return fail(ErrCodeTooLong, "%s must be at most %d characters", rule.Column, rule.maxLength)
	}

	if rule.decimal {
		d, err := decimal.NewFromString(value)
		if err != nil {
			return fail(ErrCodeInvalidNumber, "%s must be a number", rule.Column)
		}
		if rule.min != nil && d.LessThan(*rule.min) {
			return fail(ErrCodeOutOfRange, "%s must be at least %s", rule.Column, rule.min.String())
		}
	}

	if rule.unique {
		key := strings.ToLower(value)
		if first, ok := v.seen[rule.Column][key]; ok {
			return fail(ErrCodeDuplicate, "%s duplicates row %d", rule.Column, first)
		}
		v.seen[rule.Column][key] = row.Line
	}
	return nil
}
