package domain

import "testing"

func TestLookupExactMatch(t *testing.T) {
	roster := NewRoster([]RosterRecord{
		{EmployeeID: 7, Name: "Ali Raza", Email: "a@x.com"},
		{EmployeeID: 9, Name: "Sana Tariq", Email: "s@x.com"},
	})

	record, found := roster.Lookup("7")
	if !found {
		t.Fatal("expected match for identifier 7")
	}
	if record.Name != "Ali Raza" || record.Email != "a@x.com" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestLookupNotFound(t *testing.T) {
	roster := NewRoster([]RosterRecord{{EmployeeID: 7}})
	if _, found := roster.Lookup("9"); found {
		t.Fatal("expected no match for identifier 9")
	}
}

func TestLookupNonNumericIdentifierCannotMatch(t *testing.T) {
	roster := NewRoster([]RosterRecord{{EmployeeID: 7}})
	if _, found := roster.Lookup("7a"); found {
		t.Fatal("expected non-numeric identifier to never match")
	}
}

func TestLookupDuplicateIDFirstRowWins(t *testing.T) {
	roster := NewRoster([]RosterRecord{
		{EmployeeID: 7, Name: "First", Email: "first@x.com"},
		{EmployeeID: 7, Name: "Second", Email: "second@x.com"},
	})

	record, found := roster.Lookup("7")
	if !found {
		t.Fatal("expected match")
	}
	if record.Name != "First" {
		t.Fatalf("expected first row to win, got %q", record.Name)
	}
}

func TestLookupBlankEmailStillMatches(t *testing.T) {
	roster := NewRoster([]RosterRecord{{EmployeeID: 7, Name: "Ali Raza", Email: ""}})

	record, found := roster.Lookup("7")
	if !found {
		t.Fatal("blank email must not turn a match into not-found")
	}
	if record.Email != "" {
		t.Fatalf("expected blank email, got %q", record.Email)
	}
}
