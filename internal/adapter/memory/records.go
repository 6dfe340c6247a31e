package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"wellmatch/internal/devapi"
	"wellmatch/internal/domain"
)

// --- Profile ---

// Reference returns the option data.
func (db *DB) Reference(ctx context.Context) (domain.ReferenceData, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.reference, nil
}

// Profile returns a copy of the professional's profile.
func (db *DB) Profile(ctx context.Context, professionalID int64) (domain.ProfileDraft, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return domain.ProfileDraft{}, domain.ErrNotFound
	}
	return cloneProfile(p.profile), nil
}

// UpdateProfile replaces the editable fields after checking them against the
// reference data.
func (db *DB) UpdateProfile(ctx context.Context, professionalID int64, u domain.ProfileUpdate) (domain.ProfileDraft, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return domain.ProfileDraft{}, domain.ErrNotFound
	}
	if u.ProfessionID != 0 && !slices.ContainsFunc(db.reference.Professions, func(pr domain.Profession) bool {
		return pr.ID == u.ProfessionID
	}) {
		return domain.ProfileDraft{}, fmt.Errorf("%w: unknown profession %d", devapi.ErrInvalidInput, u.ProfessionID)
	}
	for _, id := range u.SpecialtyIDs {
		if !db.reference.ValidSpecialty(u.ProfessionID, id) {
			return domain.ProfileDraft{}, fmt.Errorf("%w: specialty %d does not belong to profession %d", devapi.ErrInvalidInput, id, u.ProfessionID)
		}
	}
	for _, loc := range u.Locations {
		if loc.City == "" || !db.reference.ValidRegion(loc.Region) {
			return domain.ProfileDraft{}, fmt.Errorf("%w: location %q/%q", devapi.ErrInvalidInput, loc.City, loc.Region)
		}
	}
	for _, r := range u.AgeRanges {
		if !r.Valid() {
			return domain.ProfileDraft{}, fmt.Errorf("%w: age range %v", devapi.ErrInvalidInput, r)
		}
	}
	if u.YearsOfPractice < 0 {
		return domain.ProfileDraft{}, fmt.Errorf("%w: years of practice", devapi.ErrInvalidInput)
	}

	d := &p.profile
	d.FullName = u.FullName
	d.Bio = u.Bio
	d.PhoneNumber = u.PhoneNumber
	d.ProfessionID = u.ProfessionID
	d.YearsOfPractice = u.YearsOfPractice
	d.SpecialtyIDs = slices.Clone(u.SpecialtyIDs)
	d.Locations = slices.Clone(u.Locations)
	d.AgeRanges = slices.Clone(u.AgeRanges)

	if acct := db.account(p.userID); acct != nil {
		acct.FullName = u.FullName
	}
	return cloneProfile(*d), nil
}

// SetAvailability replaces the weekly availability.
func (db *DB) SetAvailability(ctx context.Context, professionalID int64, a domain.Availability) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return domain.ErrNotFound
	}
	ref := db.reference.WithDefaults()
	out := make(domain.Availability, len(a))
	for day, slots := range a {
		if !slices.Contains(ref.Days, day) {
			return fmt.Errorf("%w: day %q", devapi.ErrInvalidInput, day)
		}
		for _, s := range slots {
			if !slices.Contains(ref.TimeSlots, s) {
				return fmt.Errorf("%w: slot %q", devapi.ErrInvalidInput, s)
			}
		}
		if len(slots) > 0 {
			sorted := slices.Clone(slots)
			slices.Sort(sorted)
			out[day] = slices.Compact(sorted)
		}
	}
	p.profile.Availability = out
	return nil
}

// SetImage records the professional's profile image URL.
func (db *DB) SetImage(ctx context.Context, professionalID int64, url string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return domain.ErrNotFound
	}
	p.profile.ProfileImageURL = url
	return nil
}

// LogContact records that a client contacted the professional. The client is
// identified by its anonymous id.
func (db *DB) LogContact(ctx context.Context, professionalID int64, clientAnonymousID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.professionals[professionalID]; !ok {
		return domain.ErrNotFound
	}
	if !slices.ContainsFunc(db.accounts, func(a *devapi.Account) bool {
		return a.Role == domain.RoleClient && a.AnonymousID == clientAnonymousID
	}) {
		return fmt.Errorf("client %q: %w", clientAnonymousID, domain.ErrNotFound)
	}
	db.contacts = append(db.contacts, contact{
		professionalID: professionalID,
		clientRef:      clientAnonymousID,
		at:             db.now().UTC(),
	})
	return nil
}

// Contacts returns how many contacts were logged for the professional.
func (db *DB) Contacts(professionalID int64) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, c := range db.contacts {
		if c.professionalID == professionalID {
			n++
		}
	}
	return n
}

// --- Reviews ---

// ReviewsFor lists the professional's reviews in status, newest first.
func (db *DB) ReviewsFor(ctx context.Context, professionalID int64, status domain.ReviewStatus) ([]domain.Review, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.Review{}
	for _, r := range db.reviews {
		if r.ProfessionalID == professionalID && r.Status == status {
			out = append(out, db.namedReview(r))
		}
	}
	newestReviewsFirst(out)
	return out, nil
}

// Reviews lists every review in status, newest first.
func (db *DB) Reviews(ctx context.Context, status domain.ReviewStatus) ([]domain.Review, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.Review{}
	for _, r := range db.reviews {
		if r.Status == status {
			out = append(out, db.namedReview(r))
		}
	}
	newestReviewsFirst(out)
	return out, nil
}

// ActOnReview applies a professional's disposition to one of their pending
// reviews.
func (db *DB) ActOnReview(ctx context.Context, professionalID, reviewID int64, to domain.ReviewStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	r := db.review(reviewID)
	if r == nil || r.ProfessionalID != professionalID {
		return domain.ErrNotFound
	}
	if err := professionalTransition(r.Status, to); err != nil {
		return err
	}
	r.Status = to
	return nil
}

// SetReviewStatus moves a review from one status to another. The review must
// currently be in from.
func (db *DB) SetReviewStatus(ctx context.Context, reviewID int64, from, to domain.ReviewStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	r := db.review(reviewID)
	if r == nil {
		return domain.ErrNotFound
	}
	if r.Status != from {
		return fmt.Errorf("%w: review %d is %s", domain.ErrInvalidTransition, reviewID, r.Status)
	}
	r.Status = to
	return nil
}

func (db *DB) review(id int64) *domain.Review {
	for i := range db.reviews {
		if db.reviews[i].ID == id {
			return &db.reviews[i]
		}
	}
	return nil
}

func (db *DB) namedReview(r domain.Review) domain.Review {
	if p, ok := db.professionals[r.ProfessionalID]; ok {
		r.ProfessionalName = p.profile.FullName
	}
	return r
}

func professionalTransition(from, to domain.ReviewStatus) error {
	if from != domain.StatusPending || (to != domain.StatusPublished && to != domain.StatusDisputed) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	return nil
}

// --- Questionnaire responses ---

// ResponsesFor lists the professional's responses in status, newest first.
func (db *DB) ResponsesFor(ctx context.Context, professionalID int64, status domain.ReviewStatus) ([]domain.QuestionnaireResponse, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.QuestionnaireResponse{}
	for _, r := range db.responses {
		if r.ProfessionalID == professionalID && r.Status == status {
			out = append(out, db.namedResponse(r))
		}
	}
	newestResponsesFirst(out)
	return out, nil
}

// Responses lists every response in status, newest first.
func (db *DB) Responses(ctx context.Context, status domain.ReviewStatus) ([]domain.QuestionnaireResponse, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := []domain.QuestionnaireResponse{}
	for _, r := range db.responses {
		if r.Status == status {
			out = append(out, db.namedResponse(r))
		}
	}
	newestResponsesFirst(out)
	return out, nil
}

// ActOnResponse publishes or disputes one of the professional's pending
// responses, storing the optional public reply.
func (db *DB) ActOnResponse(ctx context.Context, professionalID, responseID int64, to domain.ReviewStatus, reply string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	r := db.response(responseID)
	if r == nil || r.ProfessionalID != professionalID {
		return domain.ErrNotFound
	}
	if err := professionalTransition(r.Status, to); err != nil {
		return err
	}
	r.Status = to
	r.TherapistResponse = reply
	return nil
}

// ResolveResponse settles a disputed response. professionalID must match the
// response's professional.
func (db *DB) ResolveResponse(ctx context.Context, responseID, professionalID int64, to domain.ReviewStatus) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	r := db.response(responseID)
	if r == nil || r.ProfessionalID != professionalID {
		return domain.ErrNotFound
	}
	if r.Status != domain.StatusDisputed {
		return fmt.Errorf("%w: response %d is %s", domain.ErrInvalidTransition, responseID, r.Status)
	}
	if err := domain.CheckResolution(to); err != nil {
		return err
	}
	r.Status = to
	return nil
}

func (db *DB) response(id int64) *domain.QuestionnaireResponse {
	for i := range db.responses {
		if db.responses[i].ID == id {
			return &db.responses[i]
		}
	}
	return nil
}

func (db *DB) namedResponse(r domain.QuestionnaireResponse) domain.QuestionnaireResponse {
	if p, ok := db.professionals[r.ProfessionalID]; ok {
		r.ProfessionalName = p.profile.FullName
	}
	r.Questions = slices.Clone(r.Questions)
	r.Answers = maps.Clone(r.Answers)
	return r
}

// --- Admin ---

// Stats counts the records shown on the admin dashboard.
func (db *DB) Stats(ctx context.Context) (domain.Stats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s := domain.Stats{
		TotalUsers:         len(db.accounts),
		TotalProfessionals: len(db.professionals),
	}
	for _, r := range db.reviews {
		switch r.Status {
		case domain.StatusPending:
			s.TotalPendingReviews++
		case domain.StatusDisputed:
			s.TotalDisputedReviews++
		}
	}
	for _, r := range db.responses {
		if r.Status == domain.StatusDisputed {
			s.TotalDisputedQuestionnaires++
		}
	}
	return s, nil
}

// Registrations counts new accounts per day for the last days days, oldest
// first. Days without registrations are included with a zero count.
func (db *DB) Registrations(ctx context.Context, days int) ([]domain.RegistrationPoint, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if days <= 0 {
		return []domain.RegistrationPoint{}, nil
	}
	today := db.now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(days - 1))

	counts := make(map[string]int)
	for _, a := range db.accounts {
		day := a.CreatedAt.UTC().Truncate(24 * time.Hour)
		if day.Before(first) || day.After(today) {
			continue
		}
		counts[day.Format(time.DateOnly)]++
	}

	out := make([]domain.RegistrationPoint, 0, days)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(time.DateOnly)
		out = append(out, domain.RegistrationPoint{Date: key, Count: counts[key]})
	}
	return out, nil
}

// Professionals lists every professional ordered by id.
func (db *DB) Professionals(ctx context.Context) ([]domain.ProfessionalSummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.ProfessionalSummary, 0, len(db.professionals))
	for id, p := range db.professionals {
		out = append(out, domain.ProfessionalSummary{
			ID:           id,
			FullName:     p.profile.FullName,
			Profession:   db.professionName(p.profile.ProfessionID),
			Views:        p.views,
			ActiveStatus: p.status,
			IsVerified:   p.verified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SetProfessionalStatus activates or deactivates a professional.
func (db *DB) SetProfessionalStatus(ctx context.Context, professionalID int64, status string) error {
	if status != domain.ProfessionalActive && status != domain.ProfessionalInactive {
		return fmt.Errorf("%w: status %q", devapi.ErrInvalidInput, status)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return domain.ErrNotFound
	}
	p.status = status
	return nil
}

// ProfessionalStatus returns the active status of a professional.
func (db *DB) ProfessionalStatus(ctx context.Context, professionalID int64) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p.status, nil
}

// VerifyProfessional sets the verified badge.
func (db *DB) VerifyProfessional(ctx context.Context, professionalID int64, verified bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.professionals[professionalID]
	if !ok {
		return domain.ErrNotFound
	}
	p.verified = verified
	return nil
}

// Users lists every account ordered by id.
func (db *DB) Users(ctx context.Context) ([]domain.UserSummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.UserSummary, 0, len(db.accounts))
	for _, a := range db.accounts {
		out = append(out, domain.UserSummary{
			ID:          a.ID,
			Email:       a.Email,
			UserType:    a.Role,
			AnonymousID: a.AnonymousID,
			CreatedAt:   a.CreatedAt,
		})
	}
	return out, nil
}

func (db *DB) professionName(id int64) string {
	for _, p := range db.reference.Professions {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}

// Settings returns the automation settings.
func (db *DB) Settings(ctx context.Context) (domain.AutomationSettings, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.settings, nil
}

// SaveSettings replaces the automation settings.
func (db *DB) SaveSettings(ctx context.Context, s domain.AutomationSettings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", devapi.ErrInvalidInput, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.settings = s
	return nil
}

// --- Questionnaire templates ---

// Templates lists the templates ordered by id.
func (db *DB) Templates(ctx context.Context) ([]domain.Template, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Template, 0, len(db.templates))
	for _, t := range db.templates {
		t.Questions = slices.Clone(t.Questions)
		out = append(out, t)
	}
	return out, nil
}

// CreateTemplate stores a new template and returns it with its id.
func (db *DB) CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error) {
	if err := t.Validate(); err != nil {
		return domain.Template{}, fmt.Errorf("%w: %v", devapi.ErrInvalidInput, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	db.templateIDCounter++
	t.ID = db.templateIDCounter
	t.CreatedAt = db.now().UTC()
	t.Questions = slices.Clone(t.Questions)
	db.templates = append(db.templates, t)
	return t, nil
}

// UpdateTemplate replaces the name, description and questions of a template.
func (db *DB) UpdateTemplate(ctx context.Context, t domain.Template) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", devapi.ErrInvalidInput, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.templates {
		if db.templates[i].ID == t.ID {
			db.templates[i].Name = t.Name
			db.templates[i].Description = t.Description
			db.templates[i].Questions = slices.Clone(t.Questions)
			return nil
		}
	}
	return domain.ErrNotFound
}

// Sent lists sent questionnaires, newest first.
func (db *DB) Sent(ctx context.Context) ([]domain.SentQuestionnaire, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := slices.Clone(db.sent)
	if out == nil {
		out = []domain.SentQuestionnaire{}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return out, nil
}

// Send records a template sent to a client about a professional.
func (db *DB) Send(ctx context.Context, req domain.SendRequest) (domain.SentQuestionnaire, error) {
	if err := req.Validate(); err != nil {
		return domain.SentQuestionnaire{}, fmt.Errorf("%w: %v", devapi.ErrInvalidInput, err)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	client := db.account(req.ClientUserID)
	if client == nil || client.Role != domain.RoleClient {
		return domain.SentQuestionnaire{}, fmt.Errorf("client %d: %w", req.ClientUserID, domain.ErrNotFound)
	}
	p, ok := db.professionals[req.ProfessionalID]
	if !ok {
		return domain.SentQuestionnaire{}, fmt.Errorf("professional %d: %w", req.ProfessionalID, domain.ErrNotFound)
	}
	idx := slices.IndexFunc(db.templates, func(t domain.Template) bool { return t.ID == req.QuestionnaireID })
	if idx < 0 {
		return domain.SentQuestionnaire{}, fmt.Errorf("questionnaire %d: %w", req.QuestionnaireID, domain.ErrNotFound)
	}

	db.sentIDCounter++
	s := domain.SentQuestionnaire{
		ID:               db.sentIDCounter,
		TemplateName:     db.templates[idx].Name,
		ClientRef:        client.AnonymousID,
		ProfessionalName: p.profile.FullName,
		Status:           domain.StatusPending,
		SentAt:           db.now().UTC(),
	}
	db.sent = append(db.sent, s)
	return s, nil
}

func cloneProfile(d domain.ProfileDraft) domain.ProfileDraft {
	d.SpecialtyIDs = slices.Clone(d.SpecialtyIDs)
	d.Locations = slices.Clone(d.Locations)
	d.AgeRanges = slices.Clone(d.AgeRanges)
	if d.Availability != nil {
		a := make(domain.Availability, len(d.Availability))
		for day, slots := range d.Availability {
			a[day] = slices.Clone(slots)
		}
		d.Availability = a
	}
	return d
}
