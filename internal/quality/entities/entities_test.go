package entities

import (
	"reflect"
	"testing"
)

func TestOwnersRejectsPlaceholders(t *testing.T) {
	text := "Owner: Jane Smith\nOwner: TBD\nPrepared by: Jane Smith\nAuthored by: N/A\nCreated by: Version 2"
	got := Owners(text)
	want := []string{"Jane Smith"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestOwnersAllLabels(t *testing.T) {
	text := `Document Owner: Alice Brown
Prepared by: Bob O. Chen, Operations
Authored by: Carole King; reviewed later
Responsible: Dmitri Ivanov
Accountable: Eve Mary-Jones
Created by: Frank Li
Maintained by: Grace Hopper.`
	got := Owners(text)
	want := []string{"Alice Brown", "Bob O. Chen", "Carole King", "Dmitri Ivanov", "Eve Mary-Jones", "Frank Li", "Grace Hopper"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIsValidOwnerName(t *testing.T) {
	cases := map[string]bool{
		"Jane Smith":           true,
		"Carole Baker":         true,
		"Carole King":          true,
		"Signature pending":    false,
		"J":                    false,
		"TBD":                  false,
		"tbd":                  false,
		"Name":                 false,
		"Jane Smith (Owner)":   false,
		"To Be Confirmed":      false,
		"see above":            false,
		"Department Head":      false,
		"12/03/2024":           false,
		"March 2024":           false,
		"Version 3":            false,
		"Table of Contents":    false,
		"Page 4":               false,
		"12345":                false,
		"---":                  false,
		"ops-team@example.com": false,
		"Smith2 Jones":         false,
		"Dr. Ada Lovelace":     true,
		"María José Núñez":     true,
		"A B":                  true,
		"Jane Smith, Manager":  false,
		"":                     false,
	}
	for input, want := range cases {
		if got := IsValidOwnerName(input); got != want {
			t.Errorf("IsValidOwnerName(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestDates(t *testing.T) {
	text := `Approval date: 15/03/2024
Next review: 2025-03-15
Effective 1st April 2024
Signed off on March 5th, 2024
Legacy reference 01/01/1985 and 31/02/2024 and 12/13/2030`
	got := Dates(text)
	want := []string{"15/03/2024", "2025-03-15", "1st April 2024", "March 5th, 2024", "12/13/2030"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestIsValidDate(t *testing.T) {
	cases := map[string]bool{
		"15/03/2024":      true,
		"03/15/2024":      true,
		"2024/03/15":      true,
		"2024.3.5":        true,
		"31/02/2024":      false,
		"13/13/2024":      false,
		"01/01/1990":      false,
		"01/01/1991":      true,
		"01/01/2039":      true,
		"01/01/2040":      false,
		"5 Sept 2023":     true,
		"5 Sep. 2023":     true,
		"December 1 2020": true,
		"Smarch 1 2020":   false,
		"not a date":      false,
	}
	for input, want := range cases {
		if got := IsValidDate(input); got != want {
			t.Errorf("IsValidDate(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestDepartments(t *testing.T) {
	text := "Department: Finance Operations\nDivision: IT\nTeam: Platform Reliability; on-call\nUnit: Finance Operations"
	got := Departments(text)
	want := []string{"Finance Operations", "Platform Reliability"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRoles(t *testing.T) {
	text := "The Operations Manager and the IT Director approve. A manager may delegate to an analyst. Managers and leadership are not roles."
	got := Roles(text)
	want := []string{"manager", "director", "analyst"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractEmptyText(t *testing.T) {
	res := Extract("")
	if res.Owners == nil || res.Dates == nil || res.Departments == nil || res.Roles == nil {
		t.Fatal("expected empty, non-nil slices")
	}
	if len(res.Owners)+len(res.Dates)+len(res.Departments)+len(res.Roles) != 0 {
		t.Fatalf("expected no entities, got %+v", res)
	}
}

func TestExtractDeterministic(t *testing.T) {
	text := "Owner: Jane Smith\nOwner: John Doe\nReview date: 01/02/2025\nDepartment: Legal\nOfficer"
	first := Extract(text)
	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(first, Extract(text)) {
			t.Fatal("expected deterministic extraction")
		}
	}
}
