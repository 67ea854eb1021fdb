/*
schema.go - Collection schema registry

PURPOSE:
  This is the one place in the whole system where the logical field
  names used throughout the domain packages (employeeId, dateWorked,
  cocEarned, ...) are mapped onto SQLite table/column names. No other
  package is allowed to know a SQL column name.
*/
package sqlite

import "github.com/yowbhergie2/COCCTO2025/cocerr"

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindDecimal // exact decimal, stored as TEXT
	kindBool
	kindTime
	kindJSON
)

type fieldSpec struct {
	logical string
	column  string
	kind    fieldKind
}

type collectionSchema struct {
	table   string
	idField string // logical name of the document's id field
	fields  []fieldSpec
}

var schemas = map[string]collectionSchema{
	"employees": {
		table: "employees", idField: "employeeId",
		fields: []fieldSpec{
			{"firstName", "first_name", kindString},
			{"middleName", "middle_name", kindString},
			{"lastName", "last_name", kindString},
			{"status", "status", kindString},
			{"position", "position", kindString},
			{"office", "office", kindString},
			{"email", "email", kindString},
		},
	},
	"overtimeLogs": {
		table: "overtime_logs", idField: "logId",
		fields: []fieldSpec{
			{"employeeId", "employee_id", kindString},
			{"monthName", "month_name", kindString},
			{"month", "month", kindInt},
			{"year", "year", kindInt},
			{"dateWorked", "date_worked", kindTime},
			{"dayType", "day_type", kindString},
			{"amIn", "am_in", kindString},
			{"amOut", "am_out", kindString},
			{"pmIn", "pm_in", kindString},
			{"pmOut", "pm_out", kindString},
			{"cocEarned", "coc_earned", kindDecimal},
			{"status", "status", kindString},
			{"loggedBy", "logged_by", kindString},
			{"loggedAt", "logged_at", kindTime},
			{"validUntil", "valid_until", kindTime},
		},
	},
	"certificates": {
		table: "certificates", idField: "certificateId",
		fields: []fieldSpec{
			{"employeeId", "employee_id", kindString},
			{"monthName", "month_name", kindString},
			{"month", "month", kindInt},
			{"year", "year", kindInt},
			{"dateOfIssuance", "date_of_issuance", kindTime},
			{"validUntil", "valid_until", kindTime},
			{"batchId", "batch_id", kindString},
			{"totalHours", "total_hours", kindDecimal},
			{"correlationId", "correlation_id", kindString},
		},
	},
	"creditBatches": {
		table: "credit_batches", idField: "batchId",
		fields: []fieldSpec{
			{"employeeId", "employee_id", kindString},
			{"earnedMonth", "earned_month", kindInt},
			{"earnedYear", "earned_year", kindInt},
			{"originalHours", "original_hours", kindDecimal},
			{"remainingHours", "remaining_hours", kindDecimal},
			{"usedHours", "used_hours", kindDecimal},
			{"status", "status", kindString},
			{"dateOfIssuance", "date_of_issuance", kindTime},
			{"validUntil", "valid_until", kindTime},
			{"sourceType", "source_type", kindString},
			{"sourceCertificateId", "source_certificate_id", kindString},
			{"notes", "notes", kindString},
		},
	},
	"ledger": {
		table: "ledger", idField: "transactionId",
		fields: []fieldSpec{
			{"employeeId", "employee_id", kindString},
			{"transactionType", "transaction_type", kindString},
			{"hours", "hours", kindDecimal},
			{"batchId", "batch_id", kindString},
			{"referenceId", "reference_id", kindString},
			{"notes", "notes", kindString},
			{"transactionDate", "transaction_date", kindTime},
			{"performedBy", "performed_by", kindString},
			{"sequence", "sequence", kindInt},
			{"correlationId", "correlation_id", kindString},
		},
	},
	"holidays": {
		table: "holidays", idField: "holidayId",
		fields: []fieldSpec{
			{"name", "name", kindString},
			{"date", "date", kindTime},
			{"year", "year", kindInt},
			{"type", "type", kindString},
		},
	},
	"configuration": {
		table: "configuration", idField: "key",
		fields: []fieldSpec{
			{"value", "value", kindString},
		},
	},
	"libraries": {
		table: "libraries", idField: "category",
		fields: []fieldSpec{
			{"items", "items", kindJSON},
		},
	},
}

func schemaFor(collection string) (collectionSchema, error) {
	s, ok := schemas[collection]
	if !ok {
		return collectionSchema{}, &cocerr.NotFoundError{Collection: collection, ID: "<schema>"}
	}
	return s, nil
}

func (s collectionSchema) fieldSpec(logical string) (fieldSpec, bool) {
	for _, f := range s.fields {
		if f.logical == logical {
			return f, true
		}
	}
	return fieldSpec{}, false
}
