package domain

import "slices"

// Profession is one selectable profession.
type Profession struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Specialty belongs to exactly one profession.
type Specialty struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProfessionID int64  `json:"profession_id"`
}

// Region is an enumerated geographic bucket for a location.
type Region struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// ReferenceData holds the backend-authoritative option lists the profile
// form is rendered from.
type ReferenceData struct {
	Professions []Profession `json:"professions"`
	Specialties []Specialty  `json:"specialties"`
	Regions     []Region     `json:"regions"`
	Days        []string     `json:"days"`
	TimeSlots   []string     `json:"time_slots"`
}

// Fallback day and slot lists for backends that do not publish them.
var (
	DefaultDays      = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	DefaultTimeSlots = []string{"morning", "afternoon", "evening"}
)

// WithDefaults fills missing day/slot enumerations with the built-in lists.
func (r ReferenceData) WithDefaults() ReferenceData {
	if len(r.Days) == 0 {
		r.Days = DefaultDays
	}
	if len(r.TimeSlots) == 0 {
		r.TimeSlots = DefaultTimeSlots
	}
	return r
}

// SpecialtiesFor lists the specialties valid for professionID.
func (r ReferenceData) SpecialtiesFor(professionID int64) []Specialty {
	var out []Specialty
	for _, s := range r.Specialties {
		if s.ProfessionID == professionID {
			out = append(out, s)
		}
	}
	return out
}

// ValidSpecialty reports whether id is a specialty of professionID.
func (r ReferenceData) ValidSpecialty(professionID, id int64) bool {
	return slices.ContainsFunc(r.Specialties, func(s Specialty) bool {
		return s.ID == id && s.ProfessionID == professionID
	})
}

// ValidRegion reports whether key is a known region. When the backend
// published no regions any non-empty key is accepted.
func (r ReferenceData) ValidRegion(key string) bool {
	if key == "" {
		return false
	}
	if len(r.Regions) == 0 {
		return true
	}
	return slices.ContainsFunc(r.Regions, func(reg Region) bool { return reg.Key == key })
}
