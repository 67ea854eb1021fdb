/*
dto.go - Data Transfer Objects for API requests and responses

Decouples the internal domain model from the wire contract, the same
separation the teacher drew in its own dto.go. Decimal fields are
shopspring/decimal.Decimal throughout rather than float64 — they carry
their own JSON encoding (a quoted decimal string, the library's
default), and this is the same type the domain
packages compute in, so no precision is lost crossing this boundary.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/certify"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/config"
	"github.com/yowbhergie2/COCCTO2025/query"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// OVERTIME LOGS
// =============================================================================

// EntryRequest is one raw punch row in a batch submission.
type EntryRequest struct {
	DateWorked string `json:"dateWorked"` // "2006-01-02"
	AMIn       string `json:"amIn"`
	AMOut      string `json:"amOut"`
	PMIn       string `json:"pmIn"`
	PMOut      string `json:"pmOut"`
}

// SubmitLogsRequest is the POST /api/overtime-logs body.
type SubmitLogsRequest struct {
	EmployeeID string         `json:"employeeId"`
	Month      int            `json:"month"`
	Year       int            `json:"year"`
	MonthName  string         `json:"monthName"`
	LoggedBy   string         `json:"loggedBy"`
	Entries    []EntryRequest `json:"entries"`
}

// LogDTO is an Overtime Log in API responses.
type LogDTO struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employeeId"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	MonthName  string          `json:"monthName"`
	DateWorked string          `json:"dateWorked"`
	DayType    string          `json:"dayType"`
	AMIn       string          `json:"amIn"`
	AMOut      string          `json:"amOut"`
	PMIn       string          `json:"pmIn"`
	PMOut      string          `json:"pmOut"`
	CocEarned  decimal.Decimal `json:"cocEarned"`
	Status     string          `json:"status"`
	ValidUntil *string         `json:"validUntil,omitempty"`
}

// SkippedDateDTO names a date the batch write skipped as a duplicate.
type SkippedDateDTO struct {
	DateWorked string `json:"dateWorked"`
}

// SubmitLogsResponse is the POST /api/overtime-logs result.
type SubmitLogsResponse struct {
	LogsPersisted     []LogDTO         `json:"logsPersisted"`
	TotalCreditHours  decimal.Decimal  `json:"totalCreditHours"`
	SkippedDuplicates []SkippedDateDTO `json:"skippedDuplicates"`
}

func toLogDTO(l coclog.Log) LogDTO {
	dto := LogDTO{
		ID: l.ID, EmployeeID: l.EmployeeID, Month: l.Month, Year: l.Year, MonthName: l.MonthName,
		DateWorked: l.DateWorked.Format("2006-01-02"), DayType: string(l.DayType),
		AMIn: l.AMIn, AMOut: l.AMOut, PMIn: l.PMIn, PMOut: l.PMOut,
		CocEarned: l.CocEarned, Status: string(l.Status),
	}
	if l.ValidUntil != nil {
		v := l.ValidUntil.Format("2006-01-02")
		dto.ValidUntil = &v
	}
	return dto
}

// =============================================================================
// LEDGER & PROGRESS
// =============================================================================

// LedgerRowDTO is one row of an employee's detailed ledger view.
type LedgerRowDTO struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	Date           string          `json:"date"`
	DayType        string          `json:"dayType,omitempty"`
	Punches        string          `json:"punches,omitempty"`
	Earned         decimal.Decimal `json:"earned"`
	Used           decimal.Decimal `json:"used"`
	Remaining      decimal.Decimal `json:"remaining"`
	ValidUntil     *string         `json:"validUntil,omitempty"`
	Status         string          `json:"status"`
	IsHistorical   bool            `json:"isHistorical"`
}

// EmployeeLedgerDTO is the GET /api/employees/{id}/ledger response.
type EmployeeLedgerDTO struct {
	ActiveBalance      decimal.Decimal `json:"activeBalance"`
	UncertifiedBalance decimal.Decimal `json:"uncertifiedBalance"`
	TotalEarned        decimal.Decimal `json:"totalEarned"`
	UsedCredits        decimal.Decimal `json:"usedCredits"`
	Rows               []LedgerRowDTO  `json:"rows"`
}

func toEmployeeLedgerDTO(v *query.EmployeeLedgerView) EmployeeLedgerDTO {
	rows := make([]LedgerRowDTO, 0, len(v.Rows))
	for _, r := range v.Rows {
		row := LedgerRowDTO{
			Month: r.Month, Year: r.Year, Date: r.Date.Format("2006-01-02"),
			DayType: r.DayType, Punches: r.Punches, Earned: r.Earned, Used: r.Used,
			Remaining: r.Remaining, Status: r.Status, IsHistorical: r.IsHistorical,
		}
		if r.ValidUntil != nil {
			s := r.ValidUntil.Format("2006-01-02")
			row.ValidUntil = &s
		}
		rows = append(rows, row)
	}
	return EmployeeLedgerDTO{
		ActiveBalance: v.ActiveBalance, UncertifiedBalance: v.UncertifiedBalance,
		TotalEarned: v.TotalEarned, UsedCredits: v.UsedCredits, Rows: rows,
	}
}

// ProgressDTO is the GET /api/employees/{id}/progress response.
type ProgressDTO struct {
	MonthlyTotal          decimal.Decimal `json:"monthlyTotal"`
	MonthlyCap            decimal.Decimal `json:"monthlyCap"`
	MonthlyRemaining      decimal.Decimal `json:"monthlyRemaining"`
	ActivePlusUncertified decimal.Decimal `json:"activePlusUncertified"`
	TotalCap              decimal.Decimal `json:"totalCap"`
	TotalRemaining        decimal.Decimal `json:"totalRemaining"`
}

func toProgressDTO(p *query.Progress) ProgressDTO {
	return ProgressDTO{
		MonthlyTotal: p.MonthlyTotal, MonthlyCap: p.MonthlyCap, MonthlyRemaining: p.MonthlyRemaining,
		ActivePlusUncertified: p.ActivePlusUncertified, TotalCap: p.TotalCap, TotalRemaining: p.TotalRemaining,
	}
}

// =============================================================================
// CERTIFICATIONS
// =============================================================================

// CertifyRequest is the POST /api/certifications body.
type CertifyRequest struct {
	EmployeeID     string `json:"employeeId"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	MonthName      string `json:"monthName"`
	DateOfIssuance string `json:"dateOfIssuance"` // "2006-01-02"
}

// CertifyResponse is the POST /api/certifications result.
type CertifyResponse struct {
	CertificateID string          `json:"certificateId"`
	BatchID       string          `json:"batchId"`
	TotalHours    decimal.Decimal `json:"totalHours"`
	ValidUntil    string          `json:"validUntil"`
	LogsUpdated   []string        `json:"logsUpdated"`
}

// CertificateDTO is one entry of GET /api/certifications.
type CertificateDTO struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employeeId"`
	MonthName      string          `json:"monthName"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	DateOfIssuance string          `json:"dateOfIssuance"`
	ValidUntil     string          `json:"validUntil"`
	BatchID        string          `json:"batchId"`
	TotalHours     decimal.Decimal `json:"totalHours"`
}

func toCertificateDTO(c certify.Certificate) CertificateDTO {
	return CertificateDTO{
		ID: c.ID, EmployeeID: c.EmployeeID, MonthName: c.MonthName, Month: c.Month, Year: c.Year,
		DateOfIssuance: c.DateOfIssuance.Format("2006-01-02"), ValidUntil: c.ValidUntil.Format("2006-01-02"),
		BatchID: c.BatchID, TotalHours: c.TotalHours,
	}
}

// =============================================================================
// ADMIN
// =============================================================================

// ExpireSweepResponse is the POST /api/admin/expire-sweep result.
type ExpireSweepResponse struct {
	ExpiredEntryCount int             `json:"expiredEntryCount"`
	HoursForfeited    decimal.Decimal `json:"hoursForfeited"`
}

// AdjustmentRequest is the POST /api/admin/adjustments body. Hours is
// signed: positive raises the employee's balance, negative lowers it.
type AdjustmentRequest struct {
	EmployeeID  string          `json:"employeeId"`
	Hours       decimal.Decimal `json:"hours"`
	Reason      string          `json:"reason"`
	PerformedBy string          `json:"performedBy"`
}

// AdjustmentResponse is the POST /api/admin/adjustments result.
type AdjustmentResponse struct {
	EntryID string          `json:"entryId"`
	Hours   decimal.Decimal `json:"hours"`
}

// UncertifiedLogDTO pairs a log with its employee's display name.
type UncertifiedLogDTO struct {
	Log             LogDTO `json:"log"`
	EmployeeName    string `json:"employeeName,omitempty"`
	EmployeeUnknown bool   `json:"employeeUnknown"`
}

// UncertifiedStatsResponse is the GET /api/admin/uncertified-stats result.
type UncertifiedStatsResponse struct {
	TotalHours      decimal.Decimal     `json:"totalHours"`
	UniqueEmployees int                 `json:"uniqueEmployees"`
	OldestDate      string              `json:"oldestDate,omitempty"`
	Logs            []UncertifiedLogDTO `json:"logs"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO is a Holiday in API responses.
type HolidayDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Year int    `json:"year"`
	Type string `json:"type"`
}

// CreateHolidayRequest is the POST /api/holidays body.
type CreateHolidayRequest struct {
	Name string `json:"name"`
	Date string `json:"date"` // "2006-01-02"
	Type string `json:"type"`
}

func toHolidayDTO(h calendar.HolidayRecord) HolidayDTO {
	return HolidayDTO{ID: h.ID, Name: h.Name, Date: h.Date.Format("2006-01-02"), Year: h.Year, Type: h.Type}
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// ConfigurationDTO is the GET /api/configuration response.
type ConfigurationDTO struct {
	WeekendDays               []int           `json:"weekendDays"` // 0=Sunday..6=Saturday
	MonthlyCap                decimal.Decimal `json:"monthlyCap"`
	TotalCap                  decimal.Decimal `json:"totalCap"`
	CertificateValidityMonths int             `json:"certificateValidityMonths"`
	TimeZone                  string          `json:"timeZone"`
}

func toConfigurationDTO(c config.Config) ConfigurationDTO {
	days := make([]int, 0, len(c.WeekendDays))
	for _, d := range calendar.SortedWeekendDays(c.WeekendDays) {
		days = append(days, int(d))
	}
	return ConfigurationDTO{
		WeekendDays: days, MonthlyCap: c.MonthlyCap, TotalCap: c.TotalCap,
		CertificateValidityMonths: c.CertificateValidityMonths, TimeZone: c.TimeZone,
	}
}

// SetConfigurationRequest is the PUT /api/configuration/{key} body.
type SetConfigurationRequest struct {
	Value string `json:"value"`
}

// =============================================================================
// LIBRARY LISTS
// =============================================================================

// LibraryDTO is one category's lookup list.
type LibraryDTO struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// SetLibraryRequest is the PUT /api/libraries/{category} body.
type SetLibraryRequest struct {
	Items []string `json:"items"`
}
