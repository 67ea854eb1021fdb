/*
Package certify implements the Certification Engine: the state
machine that turns a month's Uncertified overtime logs into an Active
Credit Batch plus a Ledger Credit entry plus a certificate record,
atomically.
*/
package certify

import (
	"time"

	"github.com/shopspring/decimal"
)

// Certificate is the period-lock record persisted once a (employee,
// month, year) has been certified. Its existence is what makes that
// period immutable to further writes (§4.3 step 4).
type Certificate struct {
	ID             string
	EmployeeID     string
	MonthName      string
	Month          int
	Year           int
	DateOfIssuance time.Time
	ValidUntil     time.Time
	BatchID        string
	TotalHours     decimal.Decimal
	CorrelationID  string
}
