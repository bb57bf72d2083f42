package domain

import "strconv"

// RosterRecord is one row of the employee contact roster. A blank Email means
// the address is absent; Lookup still succeeds and callers report the
// missing-email condition separately from a failed match.
type RosterRecord struct {
	EmployeeID int
	Name       string
	Email      string
}

// Roster holds the contact records for one batch, in source row order.
// It is loaded once per run and read-only afterwards.
type Roster struct {
	records []RosterRecord
}

func NewRoster(records []RosterRecord) *Roster {
	return &Roster{records: records}
}

func (r *Roster) Len() int {
	return len(r.records)
}

// Lookup resolves an extracted identifier against the roster. The identifier
// is parsed as an integer; a non-numeric identifier cannot match. When several
// rows share an employee ID the first row in source order wins.
func (r *Roster) Lookup(identifier string) (RosterRecord, bool) {
	id, err := strconv.Atoi(identifier)
	if err != nil {
		return RosterRecord{}, false
	}
	for _, record := range r.records {
		if record.EmployeeID == id {
			return record, true
		}
	}
	return RosterRecord{}, false
}
