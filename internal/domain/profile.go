package domain

import (
	"context"
	"io"
	"slices"
	"strings"
)

// Location is one clinic location.
type Location struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

// Availability maps a day key to the set of time slots offered that day.
// Slot lists are kept sorted and free of duplicates.
type Availability map[string][]string

// Has reports whether slot is offered on day.
func (a Availability) Has(day, slot string) bool {
	return slices.Contains(a[day], slot)
}

// Toggle adds or removes slot on day after checking both against ref.
func (a Availability) Toggle(day, slot string, ref ReferenceData) error {
	ref = ref.WithDefaults()
	if !slices.Contains(ref.Days, day) || !slices.Contains(ref.TimeSlots, slot) {
		return &ValidationError{Field: "availability", Code: CodeInvalidSlot}
	}
	slots := a[day]
	if i := slices.Index(slots, slot); i >= 0 {
		slots = slices.Delete(slots, i, i+1)
	} else {
		slots = append(slots, slot)
		slices.Sort(slots)
	}
	if len(slots) == 0 {
		delete(a, day)
		return nil
	}
	a[day] = slots
	return nil
}

// ProfileDraft is the professional's editable profile.
type ProfileDraft struct {
	ID              int64        `json:"id"`
	FullName        string       `json:"full_name"`
	Bio             string       `json:"bio"`
	PhoneNumber     string       `json:"phone_number"`
	ProfessionID    int64        `json:"profession_id"`
	YearsOfPractice int          `json:"years_of_practice"`
	ProfileImageURL string       `json:"profile_image_url"`
	SpecialtyIDs    []int64      `json:"specialty_ids"`
	Locations       []Location   `json:"locations"`
	Availability    Availability `json:"availability"`
	AgeRanges       AgeRanges    `json:"age_ranges"`
}

// SetProfession switches the profession. Specialty ids are scoped to a
// profession, so the selection is always cleared.
func (d *ProfileDraft) SetProfession(id int64) {
	d.ProfessionID = id
	d.SpecialtyIDs = nil
}

// ToggleSpecialty selects or deselects a specialty of the current profession.
func (d *ProfileDraft) ToggleSpecialty(id int64, ref ReferenceData) error {
	if i := slices.Index(d.SpecialtyIDs, id); i >= 0 {
		d.SpecialtyIDs = slices.Delete(d.SpecialtyIDs, i, i+1)
		return nil
	}
	if !ref.ValidSpecialty(d.ProfessionID, id) {
		return &ValidationError{Field: "specialty_ids", Code: CodeInvalidSpecialty}
	}
	d.SpecialtyIDs = append(d.SpecialtyIDs, id)
	return nil
}

// RemoveSpecialty drops id from the selection if present.
func (d *ProfileDraft) RemoveSpecialty(id int64) {
	d.SpecialtyIDs = slices.DeleteFunc(d.SpecialtyIDs, func(s int64) bool { return s == id })
}

// AddLocation appends a location. There is no cap on the number of locations.
func (d *ProfileDraft) AddLocation(loc Location, ref ReferenceData) error {
	loc.City = strings.TrimSpace(loc.City)
	if loc.City == "" {
		return &ValidationError{Field: "city", Code: CodeCityRequired}
	}
	if !ref.ValidRegion(loc.Region) {
		return &ValidationError{Field: "region", Code: CodeInvalidRegion}
	}
	d.Locations = append(d.Locations, loc)
	return nil
}

// RemoveLocation removes the location at index i; out-of-range is a no-op.
func (d *ProfileDraft) RemoveLocation(i int) {
	if i < 0 || i >= len(d.Locations) {
		return
	}
	d.Locations = slices.Delete(d.Locations, i, i+1)
}

// ProfileUpdate is the PUT /api/professionals/me payload. Image URL and
// availability are managed by their own endpoints.
type ProfileUpdate struct {
	FullName        string     `json:"full_name"`
	Bio             string     `json:"bio"`
	PhoneNumber     string     `json:"phone_number"`
	ProfessionID    int64      `json:"profession_id"`
	YearsOfPractice int        `json:"years_of_practice"`
	SpecialtyIDs    []int64    `json:"specialty_ids"`
	Locations       []Location `json:"locations"`
	AgeRanges       AgeRanges  `json:"age_ranges"`
}

// Update builds the profile payload from the draft.
func (d ProfileDraft) Update() ProfileUpdate {
	return ProfileUpdate{
		FullName:        d.FullName,
		Bio:             d.Bio,
		PhoneNumber:     d.PhoneNumber,
		ProfessionID:    d.ProfessionID,
		YearsOfPractice: d.YearsOfPractice,
		SpecialtyIDs:    nonNil(d.SpecialtyIDs),
		Locations:       nonNil(d.Locations),
		AgeRanges:       nonNil(d.AgeRanges),
	}
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}

// ProfileAPI is the port for the professional's own resources.
type ProfileAPI interface {
	FetchProfile(ctx context.Context) (ProfileDraft, error)
	FetchReference(ctx context.Context) (ReferenceData, error)
	SaveProfile(ctx context.Context, update ProfileUpdate) error
	SaveAvailability(ctx context.Context, availability Availability) error
	// UploadImage sends the image bytes and returns the canonical URL.
	UploadImage(ctx context.Context, filename string, image io.Reader) (string, error)
	// LogContact reports a client's anonymous id and returns the server's
	// confirmation message.
	LogContact(ctx context.Context, clientAnonymousID string) (string, error)
}
