/*
handlers.go - HTTP handlers

Each handler decodes its DTO, calls the domain-package operations it
needs, and maps the result (or error) back to JSON — the same
thin-handler shape the teacher's handlers.go used, now over the COC
domain packages instead of timeoff/generic.
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/yowbhergie2/COCCTO2025/calendar"
	"github.com/yowbhergie2/COCCTO2025/certify"
	"github.com/yowbhergie2/COCCTO2025/cocerr"
	"github.com/yowbhergie2/COCCTO2025/coclog"
	"github.com/yowbhergie2/COCCTO2025/config"
	"github.com/yowbhergie2/COCCTO2025/employees"
	"github.com/yowbhergie2/COCCTO2025/holidays"
	"github.com/yowbhergie2/COCCTO2025/ledger"
	"github.com/yowbhergie2/COCCTO2025/libraries"
	"github.com/yowbhergie2/COCCTO2025/query"
)

// Handler wires the domain packages into HTTP handlers.
type Handler struct {
	Employees  *employees.Store
	Logs       *coclog.Store
	Validator  *coclog.Validator
	Ledger     *ledger.Service
	Certify    *certify.Engine
	Holidays   *holidays.Store
	Config     *config.Store
	Query      *query.Service
	Libraries  *libraries.Store
	Log        *slog.Logger
}

func NewHandler(emps *employees.Store, logs *coclog.Store, validator *coclog.Validator,
	ledgerSvc *ledger.Service, certEngine *certify.Engine, holidayStore *holidays.Store,
	cfgStore *config.Store, q *query.Service, libStore *libraries.Store, logger *slog.Logger) *Handler {
	return &Handler{
		Employees: emps, Logs: logs, Validator: validator, Ledger: ledgerSvc,
		Certify: certEngine, Holidays: holidayStore, Config: cfgStore, Query: q,
		Libraries: libStore, Log: logger,
	}
}

// =============================================================================
// OVERTIME LOGS
// =============================================================================

// SubmitLogs runs the validation cascade over a batch of entries.
// POST /api/overtime-logs
func (h *Handler) SubmitLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req SubmitLogsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}

	entries := make([]coclog.Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		d, err := time.Parse("2006-01-02", e.DateWorked)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unparseable dateWorked", err)
			return
		}
		entries = append(entries, coclog.Entry{DateWorked: d, AMIn: e.AMIn, AMOut: e.AMOut, PMIn: e.PMIn, PMOut: e.PMOut})
	}
	batch := coclog.Batch{
		EmployeeID: req.EmployeeID, Month: req.Month, Year: req.Year,
		MonthName: req.MonthName, LoggedBy: req.LoggedBy, Entries: entries,
	}

	cfg, err := h.Config.Load(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load configuration", err)
		return
	}
	holidaySet, err := h.Holidays.LoadSet(ctx, req.Year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load holidays", err)
		return
	}
	limits := coclog.Limits{WeekendDays: cfg.WeekendDays, MonthlyCap: cfg.MonthlyCap, TotalCap: cfg.TotalCap}

	result, err := h.Validator.Validate(ctx, batch, limits, holidaySet)
	if err != nil {
		h.writeDomainError(w, "batch rejected", err)
		return
	}

	dtos := make([]LogDTO, 0, len(result.LogsPersisted))
	for _, l := range result.LogsPersisted {
		dtos = append(dtos, toLogDTO(l))
	}
	skipped := make([]SkippedDateDTO, 0, len(result.SkippedDuplicates))
	for _, s := range result.SkippedDuplicates {
		skipped = append(skipped, SkippedDateDTO{DateWorked: s.DateWorked.Format("2006-01-02")})
	}

	writeJSON(w, http.StatusCreated, SubmitLogsResponse{
		LogsPersisted: dtos, TotalCreditHours: result.TotalCreditHours, SkippedDuplicates: skipped,
	})
}

// ListLogs returns an employee's logs, optionally scoped to a period.
// GET /api/overtime-logs?employeeId=&month=&year=
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employeeId is required", nil)
		return
	}
	monthStr, yearStr := r.URL.Query().Get("month"), r.URL.Query().Get("year")

	var logs []coclog.Log
	var err error
	if monthStr != "" && yearStr != "" {
		month, yErr := strconv.Atoi(monthStr)
		year, yErr2 := strconv.Atoi(yearStr)
		if yErr != nil || yErr2 != nil {
			writeError(w, http.StatusBadRequest, "month and year must be integers", nil)
			return
		}
		logs, err = h.Logs.QueryByPeriod(ctx, employeeID, month, year)
	} else {
		logs, err = h.Logs.QueryByEmployee(ctx, employeeID)
	}
	if err != nil {
		h.writeDomainError(w, "failed to list logs", err)
		return
	}

	dtos := make([]LogDTO, 0, len(logs))
	for _, l := range logs {
		dtos = append(dtos, toLogDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// LEDGER & PROGRESS
// =============================================================================

// EmployeeLedger returns the detailed ledger view for one employee.
// GET /api/employees/{id}/ledger
func (h *Handler) EmployeeLedger(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.Query.EmployeeLedger(r.Context(), id, time.Now().UTC())
	if err != nil {
		h.writeDomainError(w, "failed to build ledger", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeLedgerDTO(view))
}

// EmployeeProgress returns cap headroom for one employee's period.
// GET /api/employees/{id}/progress?month=&year=
func (h *Handler) EmployeeProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must be an integer", err)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer", err)
		return
	}

	cfg, err := h.Config.Load(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load configuration", err)
		return
	}

	progress, err := h.Query.Progress(ctx, id, month, year, query.Limits{MonthlyCap: cfg.MonthlyCap, TotalCap: cfg.TotalCap})
	if err != nil {
		h.writeDomainError(w, "failed to compute progress", err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressDTO(progress))
}

// =============================================================================
// CERTIFICATIONS
// =============================================================================

// CertifyPeriod runs the certification engine for one (employee, month, year).
// POST /api/certifications
func (h *Handler) CertifyPeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CertifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}
	dateOfIssuance, err := time.Parse("2006-01-02", req.DateOfIssuance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unparseable dateOfIssuance", err)
		return
	}

	cfg, err := h.Config.Load(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load configuration", err)
		return
	}

	now := time.Now().UTC()
	result, err := h.Certify.Certify(ctx, req.EmployeeID, req.Month, req.Year, req.MonthName, dateOfIssuance, now, cfg.CertificateValidityMonths)
	if err != nil {
		h.writeDomainError(w, "certification failed", err)
		return
	}

	h.Log.Info("period certified", "employeeId", req.EmployeeID, "month", req.Month, "year", req.Year,
		"certificateId", result.Certificate.ID, "totalHours", result.Certificate.TotalHours.String())

	writeJSON(w, http.StatusCreated, CertifyResponse{
		CertificateID: result.Certificate.ID, BatchID: result.Batch.ID, TotalHours: result.Certificate.TotalHours,
		ValidUntil: result.Certificate.ValidUntil.Format("2006-01-02"), LogsUpdated: result.LogsUpdated,
	})
}

// ListCertifications returns the certified months for an employee's year.
// GET /api/certifications?employeeId=&year=
func (h *Handler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employeeId")
	if employeeID == "" {
		writeError(w, http.StatusBadRequest, "employeeId is required", nil)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer", err)
		return
	}

	certs, err := h.Query.CertifiedMonths(r.Context(), employeeID, year)
	if err != nil {
		h.writeDomainError(w, "failed to list certifications", err)
		return
	}
	dtos := make([]CertificateDTO, 0, len(certs))
	for _, c := range certs {
		dtos = append(dtos, toCertificateDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN
// =============================================================================

// ExpireSweep transitions every batch past its valid-until date to Expired.
// POST /api/admin/expire-sweep
func (h *Handler) ExpireSweep(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	entries, err := h.Ledger.ExpireSweep(r.Context(), now)
	if err != nil {
		h.writeDomainError(w, "expire sweep failed", err)
		return
	}

	forfeited := decimal.Zero
	for _, e := range entries {
		forfeited = forfeited.Add(e.Hours.Neg())
	}
	if len(entries) > 0 {
		h.Log.Info("expire sweep completed", "expiredEntries", len(entries), "hoursForfeited", forfeited.String())
	}
	writeJSON(w, http.StatusOK, ExpireSweepResponse{ExpiredEntryCount: len(entries), HoursForfeited: forfeited})
}

// Adjust appends a manual Adjustment ledger entry for an employee —
// the administrative correction path outside the normal log/certify
// flow (e.g. a manual balance correction after an audit).
// POST /api/admin/adjustments
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}
	entry, err := h.Ledger.Adjust(r.Context(), req.EmployeeID, req.Hours, req.Reason, req.PerformedBy)
	if err != nil {
		h.writeDomainError(w, "adjustment failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, AdjustmentResponse{EntryID: entry.ID, Hours: entry.Hours})
}

// UncertifiedStats returns the global admin dashboard aggregate.
// GET /api/admin/uncertified-stats
func (h *Handler) UncertifiedStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.Query.UncertifiedStats(ctx)
	if err != nil {
		h.writeDomainError(w, "failed to compute uncertified stats", err)
		return
	}
	named, err := h.Query.UncertifiedLogsWithNames(ctx)
	if err != nil {
		h.writeDomainError(w, "failed to list uncertified logs", err)
		return
	}

	logs := make([]UncertifiedLogDTO, 0, len(named))
	for _, n := range named {
		logs = append(logs, UncertifiedLogDTO{Log: toLogDTO(n.Log), EmployeeName: n.EmployeeName, EmployeeUnknown: n.EmployeeUnknown})
	}

	resp := UncertifiedStatsResponse{TotalHours: stats.TotalHours, UniqueEmployees: stats.UniqueEmployees, Logs: logs}
	if !stats.OldestDate.IsZero() {
		resp.OldestDate = stats.OldestDate.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// ListHolidays returns the holiday registry for one year.
// GET /api/holidays?year=
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "year must be an integer", err)
		return
	}
	list, err := h.Holidays.QueryByYear(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, "failed to list holidays", err)
		return
	}
	dtos := make([]HolidayDTO, 0, len(list))
	for _, hol := range list {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateHoliday adds a holiday to the registry.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unparseable date", err)
		return
	}

	created, err := h.Holidays.Create(r.Context(), calendar.HolidayRecord{Name: req.Name, Date: date, Type: req.Type})
	if err != nil {
		h.writeDomainError(w, "failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(created))
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// GetConfiguration returns the resolved configuration.
// GET /api/configuration
func (h *Handler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Config.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "failed to load configuration", err)
		return
	}
	writeJSON(w, http.StatusOK, toConfigurationDTO(cfg))
}

// SetConfiguration sets one configuration key.
// PUT /api/configuration/{key}
func (h *Handler) SetConfiguration(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req SetConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}
	if err := h.Config.Set(r.Context(), config.Key(key), req.Value); err != nil {
		writeError(w, http.StatusBadRequest, "rejected configuration value", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// LIBRARY LISTS
// =============================================================================

// GetLibrary returns one category's lookup list.
// GET /api/libraries/{category}
func (h *Handler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	items, err := h.Libraries.Get(r.Context(), category)
	if err != nil {
		h.writeDomainError(w, "failed to load library list", err)
		return
	}
	writeJSON(w, http.StatusOK, LibraryDTO{Category: category, Items: items})
}

// SetLibrary replaces one category's lookup list wholesale.
// PUT /api/libraries/{category}
func (h *Handler) SetLibrary(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	var req SetLibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body", err)
		return
	}
	if err := h.Libraries.Set(r.Context(), category, req.Items); err != nil {
		h.writeDomainError(w, "failed to save library list", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a cocerr-flavored error to an HTTP status
// rather than defaulting every failure to 500 — the mapping §7
// documents as the api package's job.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func statusFor(err error) int {
	if cocerr.IsNotFound(err) {
		return http.StatusNotFound
	}
	var ve *cocerr.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}
	var ce *cocerr.CapExceededError
	if errors.As(err, &ce) {
		return http.StatusConflict
	}
	var pe *cocerr.PeriodLockedError
	if errors.As(err, &pe) {
		return http.StatusConflict
	}
	switch {
	case errors.Is(err, cocerr.ErrAlreadyExists),
		errors.Is(err, cocerr.ErrAlreadyCertified):
		return http.StatusConflict
	case errors.Is(err, cocerr.ErrPreconditionFailed):
		return http.StatusPreconditionFailed
	case errors.Is(err, cocerr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
