package csvimport

import (
	"errors"
	"io"

	"github.com/shopspring/decimal"
	inventoryapp "github.com/tablekit/backoffice/internal/application/inventory"
)

// Stock sheet columns
const (
	ColumnName         = "name"
	ColumnUnit         = "unit"
	ColumnQuantity     = "quantity"
	ColumnMinimumStock = "minimum_stock"
	ColumnUnitCost     = "unit_cost"
	ColumnDescription  = "description"
)

// Limits for a single stock sheet
const (
	DefaultMaxRows   = 1000
	DefaultMaxErrors = 100
)

// StockSheetOptions bounds a stock sheet read
type StockSheetOptions struct {
	MaxRows   int
	MaxErrors int
	Delimiter rune
}

// StockSheet is the outcome of reading a stock sheet. Items is only
// meaningful when Errors is empty.
type StockSheet struct {
	Items      []inventoryapp.CreateItemRequest
	Errors     []RowError
	TotalRows  int
	ErrorCount int
	Truncated  bool
}

// HasErrors reports whether any row was rejected
func (s *StockSheet) HasErrors() bool {
	return s.ErrorCount > 0
}

func stockSheetValidator() *RowValidator {
	zero := decimal.Zero
	return NewRowValidator(
		Field(ColumnName).Required().MaxLength(200).Unique(),
		Field(ColumnUnit).Required().MaxLength(20),
		Field(ColumnQuantity).Min(zero),
		Field(ColumnMinimumStock).Min(zero),
		Field(ColumnUnitCost).Min(zero),
		Field(ColumnDescription).MaxLength(2000),
	)
}

// ParseStockSheet reads items with opening quantities from r. File-level
// problems are returned as errors; per-row problems are collected in the
// result so the caller can report all of them at once.
func ParseStockSheet(r io.Reader, opts StockSheetOptions) (*StockSheet, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = DefaultMaxErrors
	}

	var parserOpts []ParserOption
	if opts.Delimiter != 0 {
		parserOpts = append(parserOpts, WithDelimiter(opts.Delimiter))
	}
	parser, err := NewParser(r, parserOpts...)
	if err != nil {
		return nil, err
	}

	validator := stockSheetValidator()
	if missing := parser.MissingHeaders(validator.RequiredColumns()); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	errs := NewErrorCollection(opts.MaxErrors)
	sheet := &StockSheet{}
	for {
		row, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr RowError
		if errors.As(err, &rowErr) {
			sheet.TotalRows++
			errs.Add(rowErr)
			continue
		}
		if err != nil {
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}

		sheet.TotalRows++
		if sheet.TotalRows > opts.MaxRows {
			return nil, ErrTooManyRows
		}

		if rowErrs := validator.Validate(row); len(rowErrs) > 0 {
			for _, e := range rowErrs {
				errs.Add(e)
			}
			continue
		}
		sheet.Items = append(sheet.Items, toCreateItemRequest(row))
	}

	if sheet.TotalRows == 0 {
		return nil, ErrNoDataRows
	}

	sheet.Errors = errs.Errors()
	sheet.ErrorCount = errs.TotalCount()
	sheet.Truncated = errs.IsTruncated()
	return sheet, nil
}

// toCreateItemRequest maps a validated row; blank numbers become zero
func toCreateItemRequest(row *Row) inventoryapp.CreateItemRequest {
	return inventoryapp.CreateItemRequest{
		Name:         row.Get(ColumnName),
		Description:  row.Get(ColumnDescription),
		Unit:         row.Get(ColumnUnit),
		Quantity:     decimalOrZero(row.Get(ColumnQuantity)),
		MinimumStock: decimalOrZero(row.Get(ColumnMinimumStock)),
		UnitCost:     decimalOrZero(row.Get(ColumnUnitCost)),
	}
}

func decimalOrZero(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
