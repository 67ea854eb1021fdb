/*
Package employees implements the Employee directory: stable
identifiers referenced (never dangling) by overtime logs, credit
batches, and ledger entries.
*/
package employees

// Status is the Employee lifecycle state. Soft-delete sets Inactive;
// a record is never removed once created.
type Status string

const (
	Active   Status = "Active"
	Inactive Status = "Inactive"
)

// Employee is a directory record.
type Employee struct {
	ID        string
	FirstName string
	LastName  string
	Status    Status
	Position  string
	Office    string
	Email     string
}
