package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultTimeZone = "America/Mexico_City"

	// Reconciliation Job Configuration Constants
	DefaultReconciliationSchedule = "0 2 * * *" // nightly, after close of business
	ReconciliationBatchSize       = 500
)

// CurrentFiscalYear returns the fiscal year requisitions default to. The
// FISCAL_YEAR env var overrides the calendar year for year-end transition
// windows where requisitions still book against the closing year.
func CurrentFiscalYear() int {
	if raw := os.Getenv("FISCAL_YEAR"); raw != "" {
		if y, err := strconv.Atoi(raw); err == nil && y > 2000 {
			return y
		}
	}
	return time.Now().Year()
}
