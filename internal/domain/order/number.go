package order

import (
	"fmt"
	"time"
)

// NumberPrefix starts every order number
const NumberPrefix = "ORD"

// NumberTimeLayout is the compact timestamp embedded in order numbers
const NumberTimeLayout = "20060102150405"

// FormatNumber builds an order number from its timestamp and per-second sequence,
// e.g. ORD20260314194502-0007.
func FormatNumber(at time.Time, seq int64) string {
	return fmt.Sprintf("%s%s-%04d", NumberPrefix, at.Format(NumberTimeLayout), seq)
}
