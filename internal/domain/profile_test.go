package domain_test

import (
	"errors"
	"testing"

	"wellmatch/internal/domain"
)

var testRef = domain.ReferenceData{
	Professions: []domain.Profession{{ID: 1, Name: "Psychologist"}, {ID: 2, Name: "Social worker"}},
	Specialties: []domain.Specialty{
		{ID: 10, Name: "CBT", ProfessionID: 1},
		{ID: 11, Name: "Trauma", ProfessionID: 1},
		{ID: 20, Name: "Family", ProfessionID: 2},
	},
	Regions: []domain.Region{{Key: "center", Name: "Center"}, {Key: "north", Name: "North"}},
}

func TestSetProfessionClearsSpecialties(t *testing.T) {
	for _, next := range []int64{1, 2, 99} {
		d := domain.ProfileDraft{ProfessionID: 1}
		if err := d.ToggleSpecialty(10, testRef); err != nil {
			t.Fatal(err)
		}
		if err := d.ToggleSpecialty(11, testRef); err != nil {
			t.Fatal(err)
		}
		d.SetProfession(next)
		if len(d.SpecialtyIDs) != 0 {
			t.Errorf("SetProfession(%d): specialties = %v, want empty", next, d.SpecialtyIDs)
		}
		if d.ProfessionID != next {
			t.Errorf("ProfessionID = %d, want %d", d.ProfessionID, next)
		}
	}
}

func TestToggleSpecialty(t *testing.T) {
	d := domain.ProfileDraft{ProfessionID: 1}

	if err := d.ToggleSpecialty(20, testRef); err == nil {
		t.Error("expected error for specialty of another profession")
	}
	if err := d.ToggleSpecialty(10, testRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.SpecialtyIDs) != 1 || d.SpecialtyIDs[0] != 10 {
		t.Fatalf("specialties = %v, want [10]", d.SpecialtyIDs)
	}
	if err := d.ToggleSpecialty(10, testRef); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.SpecialtyIDs) != 0 {
		t.Errorf("specialties = %v, want empty after second toggle", d.SpecialtyIDs)
	}
}

func TestLocations(t *testing.T) {
	d := domain.ProfileDraft{}
	if err := d.AddLocation(domain.Location{City: " ", Region: "center"}, testRef); err == nil {
		t.Error("expected error for blank city")
	}
	if err := d.AddLocation(domain.Location{City: "Haifa", Region: "south-pole"}, testRef); err == nil {
		t.Error("expected error for unknown region")
	}
	for _, c := range []string{"Tel Aviv", "Haifa", "Jerusalem"} {
		if err := d.AddLocation(domain.Location{City: c, Region: "center"}, testRef); err != nil {
			t.Fatalf("AddLocation(%s): %v", c, err)
		}
	}
	d.RemoveLocation(1)
	d.RemoveLocation(17)
	if len(d.Locations) != 2 || d.Locations[0].City != "Tel Aviv" || d.Locations[1].City != "Jerusalem" {
		t.Errorf("locations = %+v", d.Locations)
	}
}

func TestAvailabilityToggle(t *testing.T) {
	a := domain.Availability{}
	if err := a.Toggle("sunday", "morning", testRef); err != nil {
		t.Fatal(err)
	}
	if err := a.Toggle("sunday", "evening", testRef); err != nil {
		t.Fatal(err)
	}
	if err := a.Toggle("sunday", "afternoon", testRef); err != nil {
		t.Fatal(err)
	}
	if got := a["sunday"]; len(got) != 3 || got[0] != "afternoon" {
		t.Errorf("sunday = %v, want sorted three slots", got)
	}
	for _, s := range []string{"morning", "evening", "afternoon"} {
		if err := a.Toggle("sunday", s, testRef); err != nil {
			t.Fatal(err)
		}
	}
	if _, ok := a["sunday"]; ok {
		t.Error("empty day should be removed")
	}

	var ve *domain.ValidationError
	if err := a.Toggle("funday", "morning", testRef); !errors.As(err, &ve) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestUpdateExcludesImageAndAvailability(t *testing.T) {
	d := domain.ProfileDraft{
		FullName:        "Dana",
		ProfileImageURL: "https://img/1.jpg",
		Availability:    domain.Availability{"monday": {"morning"}},
	}
	u := d.Update()
	if u.FullName != "Dana" {
		t.Errorf("FullName = %q", u.FullName)
	}
	if u.SpecialtyIDs == nil || u.Locations == nil || u.AgeRanges == nil {
		t.Error("collections should be sent as empty arrays, not null")
	}
}

func TestAgeRanges(t *testing.T) {
	var a domain.AgeRanges
	var err error
	for _, r := range []domain.AgeRange{{30, 40}, {6, 12}, {18, 25}, {6, 12}} {
		if a, err = a.Add(r); err != nil {
			t.Fatalf("Add(%v): %v", r, err)
		}
	}
	want := domain.AgeRanges{{6, 12}, {18, 25}, {30, 40}}
	if len(a) != len(want) {
		t.Fatalf("ranges = %v, want %v", a, want)
	}
	for i := range want {
		if a[i] != want[i] {
			t.Errorf("ranges[%d] = %v, want %v", i, a[i], want[i])
		}
	}
	if _, err := a.Add(domain.AgeRange{50, 40}); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := a.Add(domain.AgeRange{10, 130}); err == nil {
		t.Error("expected error for out-of-bounds range")
	}
	a = a.Remove(0)
	if len(a) != 2 || a[0] != (domain.AgeRange{18, 25}) {
		t.Errorf("after remove = %v", a)
	}
}
