package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// Action keys of the profile editor.
const (
	ActionProfileLoad  = "profile:load"
	ActionProfileSave  = "profile:save"
	ActionAvailability = "profile:availability"
	ActionImageUpload  = "profile:image"
)

// Preview is a locally prepared image shown before the upload is
// confirmed. Release discards it.
type Preview interface {
	Name() string
	Open() (io.ReadCloser, error)
	URL() string
	Release() error
}

// ProfileEditor drives the fetch, edit and submit cycle of the
// professional's profile.
type ProfileEditor struct {
	*desk
	api domain.ProfileAPI

	loaded bool
	draft  domain.ProfileDraft
	ref    domain.ReferenceData
}

// NewProfileEditor creates an editor backed by api.
func NewProfileEditor(auth Authorizer, api domain.ProfileAPI, msgs Messages, log *zap.Logger) *ProfileEditor {
	return &ProfileEditor{desk: newDesk(auth, msgs, log, "profile"), api: api}
}

// Load fetches the profile and its reference data. Backends without the
// options endpoint fall back to the built-in day and slot lists.
func (e *ProfileEditor) Load(ctx context.Context) error {
	return e.run(ctx, ActionProfileLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		p, err := e.api.FetchProfile(ctx)
		if err != nil {
			return nil, err
		}
		ref, err := e.api.FetchReference(ctx)
		if errors.Is(err, domain.ErrNotFound) {
			e.log.Info("reference data unavailable, using defaults")
			ref, err = domain.ReferenceData{}, nil
		}
		if err != nil {
			return nil, err
		}
		return func() {
			if p.Availability == nil {
				p.Availability = domain.Availability{}
			}
			e.draft = p
			e.ref = ref.WithDefaults()
			e.loaded = true
		}, nil
	})
}

// Loaded reports whether a profile has been fetched.
func (e *ProfileEditor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Draft returns a copy of the working draft.
func (e *ProfileEditor) Draft() domain.ProfileDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneDraft(e.draft)
}

// Reference returns the reference data in use.
func (e *ProfileEditor) Reference() domain.ReferenceData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ref
}

// errNotLoaded refuses edits and submits before the profile was fetched, so
// an empty draft never overwrites the stored profile.
var errNotLoaded = &domain.ValidationError{Field: "profile", Code: domain.CodeProfileNotLoaded}

// Edit applies fn to a copy of the draft and keeps the result only when fn
// succeeds. Edits are local until Save.
func (e *ProfileEditor) Edit(fn func(d *domain.ProfileDraft, ref domain.ReferenceData) error) error {
	e.mu.Lock()
	var err error
	if !e.loaded {
		err = errNotLoaded
	} else {
		cp := cloneDraft(e.draft)
		if err = fn(&cp, e.ref); err == nil {
			e.draft = cp
		}
	}
	e.mu.Unlock()
	if err != nil {
		return e.fail(err, MsgGeneric)
	}
	return nil
}

// SetField sets a scalar field by its wire name.
func (e *ProfileEditor) SetField(name, value string) error {
	return e.Edit(func(d *domain.ProfileDraft, _ domain.ReferenceData) error {
		switch name {
		case "full_name":
			d.FullName = value
		case "bio":
			d.Bio = value
		case "phone_number":
			d.PhoneNumber = value
		case "years_of_practice":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 0 {
				return &domain.ValidationError{Field: name, Code: "invalid"}
			}
			d.YearsOfPractice = n
		default:
			return &domain.ValidationError{Field: name, Code: "unknown_field"}
		}
		return nil
	})
}

// SetProfession switches the profession and clears the specialties.
func (e *ProfileEditor) SetProfession(id int64) error {
	return e.Edit(func(d *domain.ProfileDraft, _ domain.ReferenceData) error {
		d.SetProfession(id)
		return nil
	})
}

// ToggleSpecialty selects or deselects a specialty.
func (e *ProfileEditor) ToggleSpecialty(id int64) error {
	return e.Edit(func(d *domain.ProfileDraft, ref domain.ReferenceData) error {
		return d.ToggleSpecialty(id, ref)
	})
}

// AddLocation appends a clinic location.
func (e *ProfileEditor) AddLocation(loc domain.Location) error {
	return e.Edit(func(d *domain.ProfileDraft, ref domain.ReferenceData) error {
		return d.AddLocation(loc, ref)
	})
}

// RemoveLocation drops the location at index i.
func (e *ProfileEditor) RemoveLocation(i int) error {
	return e.Edit(func(d *domain.ProfileDraft, _ domain.ReferenceData) error {
		d.RemoveLocation(i)
		return nil
	})
}

// ToggleSlot flips one availability cell.
func (e *ProfileEditor) ToggleSlot(day, slot string) error {
	return e.Edit(func(d *domain.ProfileDraft, ref domain.ReferenceData) error {
		if d.Availability == nil {
			d.Availability = domain.Availability{}
		}
		return d.Availability.Toggle(day, slot, ref)
	})
}

// AddAgeRange adds a treated age range.
func (e *ProfileEditor) AddAgeRange(r domain.AgeRange) error {
	return e.Edit(func(d *domain.ProfileDraft, _ domain.ReferenceData) error {
		ranges, err := d.AgeRanges.Add(r)
		if err != nil {
			return err
		}
		d.AgeRanges = ranges
		return nil
	})
}

// RemoveAgeRange drops the age range at index i.
func (e *ProfileEditor) RemoveAgeRange(i int) error {
	return e.Edit(func(d *domain.ProfileDraft, _ domain.ReferenceData) error {
		d.AgeRanges = d.AgeRanges.Remove(i)
		return nil
	})
}

// Save submits the draft without its image URL and availability.
func (e *ProfileEditor) Save(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.loaded
	update := e.draft.Update()
	e.mu.Unlock()
	if !loaded {
		return e.fail(errNotLoaded, MsgProfileSaveFailed)
	}

	return e.run(ctx, ActionProfileSave, MsgProfileSaveFailed, func(ctx context.Context) (func(), error) {
		if err := e.api.SaveProfile(ctx, update); err != nil {
			return nil, err
		}
		return func() { e.succeed(MsgProfileSaved) }, nil
	})
}

// SaveAvailability submits the availability grid on its own.
func (e *ProfileEditor) SaveAvailability(ctx context.Context) error {
	e.mu.Lock()
	loaded := e.loaded
	avail := maps.Clone(e.draft.Availability)
	e.mu.Unlock()
	if !loaded {
		return e.fail(errNotLoaded, MsgGeneric)
	}
	if avail == nil {
		avail = domain.Availability{}
	}

	return e.run(ctx, ActionAvailability, MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := e.api.SaveAvailability(ctx, avail); err != nil {
			return nil, err
		}
		return func() { e.succeed(MsgAvailabilitySaved) }, nil
	})
}

// UploadImage shows p as the profile image, uploads it, and replaces the
// preview URL with the canonical one. The preview is always released; a
// failed upload restores the previous image URL.
func (e *ProfileEditor) UploadImage(ctx context.Context, p Preview) error {
	defer func() {
		if err := p.Release(); err != nil {
			e.log.Warn("release preview", zap.Error(err))
		}
	}()

	// The gate covers the preview swap too, so a second upload cannot
	// replace or restore the URL of the one in flight.
	done, err := e.gate.Begin(ActionImageUpload)
	if err != nil {
		return err
	}
	defer done()

	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		return e.fail(errNotLoaded, MsgGeneric)
	}
	prev := e.draft.ProfileImageURL
	e.draft.ProfileImageURL = p.URL()
	e.mu.Unlock()

	err = e.exec(ctx, ActionImageUpload, MsgGeneric, func(ctx context.Context) (func(), error) {
		rc, err := p.Open()
		if err != nil {
			return nil, fmt.Errorf("open preview: %w", err)
		}
		defer rc.Close()
		url, err := e.api.UploadImage(ctx, p.Name(), rc)
		if err != nil {
			return nil, err
		}
		return func() {
			e.draft.ProfileImageURL = url
			e.log.Info("profile image uploaded", zap.String("url", url))
			e.succeed(MsgImageUploaded)
		}, nil
	})
	if err != nil {
		e.mu.Lock()
		if e.draft.ProfileImageURL == p.URL() {
			e.draft.ProfileImageURL = prev
		}
		e.mu.Unlock()
	}
	return err
}

// Reset forgets the loaded profile.
func (e *ProfileEditor) Reset() {
	e.reset(func() {
		e.loaded = false
		e.draft = domain.ProfileDraft{}
		e.ref = domain.ReferenceData{}
	})
}

func cloneDraft(d domain.ProfileDraft) domain.ProfileDraft {
	d.SpecialtyIDs = slices.Clone(d.SpecialtyIDs)
	d.Locations = slices.Clone(d.Locations)
	d.AgeRanges = slices.Clone(d.AgeRanges)
	if d.Availability != nil {
		avail := make(domain.Availability, len(d.Availability))
		for day, slots := range d.Availability {
			avail[day] = slices.Clone(slots)
		}
		d.Availability = avail
	}
	return d
}
