// Package memory implements in-memory storage for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"wellmatch/internal/devapi"
	"wellmatch/internal/domain"
)

// professional is the backend-side record behind a professional account.
type professional struct {
	userID   int64
	profile  domain.ProfileDraft
	status   string
	verified bool
	views    int
}

type contact struct {
	professionalID int64
	clientRef      string
	at             time.Time
}

// DB implements an in-memory marketplace database.
type DB struct {
	mu            sync.Mutex
	accounts      []*devapi.Account
	professionals map[int64]*professional
	reviews       []domain.Review
	responses     []domain.QuestionnaireResponse
	templates     []domain.Template
	sent          []domain.SentQuestionnaire
	contacts      []contact
	settings      domain.AutomationSettings
	revoked       map[string]time.Time
	uploads       map[string]devapi.Upload
	reference     domain.ReferenceData

	accountIDCounter      int64
	professionalIDCounter int64
	reviewIDCounter       int64
	responseIDCounter     int64
	templateIDCounter     int64
	sentIDCounter         int64

	now func() time.Time
}

// New creates a new in-memory database holding the default reference data
// and automation settings.
func New() *DB {
	return &DB{
		professionals: make(map[int64]*professional),
		revoked:       make(map[string]time.Time),
		uploads:       make(map[string]devapi.Upload),
		reference:     DefaultReference(),
		settings: domain.AutomationSettings{
			AutoSendQuestionnaires: true,
			QuestionnaireDelayDays: 14,
			ReminderEnabled:        true,
		},
		now: time.Now,
	}
}

// Ensure interfaces are met.
var _ devapi.AccountRepository = (*DB)(nil)
var _ devapi.Store = (*DB)(nil)
var _ devapi.UploadRepository = (*DB)(nil)
var _ devapi.Seeder = (*DB)(nil)
var _ devapi.RevocationRepository = (*RevocationRepo)(nil)

// DefaultReference is the option data the development backend publishes.
func DefaultReference() domain.ReferenceData {
	return domain.ReferenceData{
		Professions: []domain.Profession{
			{ID: 1, Name: "Psychologist"},
			{ID: 2, Name: "Social Worker"},
			{ID: 3, Name: "Art Therapist"},
		},
		Specialties: []domain.Specialty{
			{ID: 11, Name: "Anxiety", ProfessionID: 1},
			{ID: 12, Name: "Depression", ProfessionID: 1},
			{ID: 13, Name: "Trauma", ProfessionID: 1},
			{ID: 21, Name: "Family", ProfessionID: 2},
			{ID: 22, Name: "Couples", ProfessionID: 2},
			{ID: 31, Name: "Children", ProfessionID: 3},
			{ID: 32, Name: "Drama", ProfessionID: 3},
		},
		Regions: []domain.Region{
			{Key: "north", Name: "North"},
			{Key: "haifa", Name: "Haifa"},
			{Key: "center", Name: "Center"},
			{Key: "tel_aviv", Name: "Tel Aviv"},
			{Key: "jerusalem", Name: "Jerusalem"},
			{Key: "south", Name: "South"},
		},
		Days:      domain.DefaultDays,
		TimeSlots: domain.DefaultTimeSlots,
	}
}

// --- AccountRepository ---

// GetByEmail retrieves an account by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*devapi.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, a := range db.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// GetByID retrieves an account by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*devapi.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a := db.account(id); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

// Create stores a new account. Professionals get an empty profile.
func (db *DB) Create(ctx context.Context, a devapi.Account, active bool) (*devapi.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.accounts {
		if u.Email == a.Email {
			return nil, devapi.ErrEmailTaken
		}
	}

	db.accountIDCounter++
	a.ID = db.accountIDCounter
	if a.CreatedAt.IsZero() {
		a.CreatedAt = db.now().UTC()
	}

	if a.Role == domain.RoleProfessional {
		db.professionalIDCounter++
		pid := db.professionalIDCounter
		status := domain.ProfessionalActive
		if !active {
			status = domain.ProfessionalInactive
		}
		db.professionals[pid] = &professional{
			userID: a.ID,
			status: status,
			profile: domain.ProfileDraft{
				ID:           pid,
				FullName:     a.FullName,
				Availability: domain.Availability{},
			},
		}
		a.ProfessionalID = &pid
	}

	stored := a
	db.accounts = append(db.accounts, &stored)
	return &a, nil
}

// Count returns the total number of accounts.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.accounts), nil
}

func (db *DB) account(id int64) *devapi.Account {
	for _, a := range db.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

// --- RevocationRepository ---

// RevocationRepo remembers logged-out token ids.
type RevocationRepo struct {
	db *DB
}

// NewRevocationRepo creates a revocation repository backed by db.
func (db *DB) NewRevocationRepo() *RevocationRepo {
	return &RevocationRepo{db: db}
}

// Revoke marks a token id as logged out until expiresAt.
func (r *RevocationRepo) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token has no id")
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked reports whether tokenID was logged out and has not expired yet.
func (r *RevocationRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	exp, ok := r.db.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if r.db.now().After(exp) {
		delete(r.db.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

// DeleteExpired forgets revocations whose tokens have expired anyway.
func (r *RevocationRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, exp := range r.db.revoked {
		if now.After(exp) {
			delete(r.db.revoked, k)
		}
	}
	return nil
}

// --- UploadRepository ---

// SaveUpload stores an uploaded image under its name.
func (db *DB) SaveUpload(ctx context.Context, u devapi.Upload) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.uploads[u.Name] = u
	return nil
}

// GetUpload returns the upload stored under name.
func (db *DB) GetUpload(ctx context.Context, name string) (*devapi.Upload, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.uploads[name]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// --- Seeder ---

// AddReview stores a client review. Zero status means pending.
func (db *DB) AddReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.professionals[r.ProfessionalID]; !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	db.reviewIDCounter++
	r.ID = db.reviewIDCounter
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = db.now().UTC()
	}
	db.reviews = append(db.reviews, r)
	return r, nil
}

// AddResponse stores a completed questionnaire. Zero status means pending.
func (db *DB) AddResponse(ctx context.Context, r domain.QuestionnaireResponse) (domain.QuestionnaireResponse, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.professionals[r.ProfessionalID]; !ok {
		return domain.QuestionnaireResponse{}, domain.ErrNotFound
	}
	db.responseIDCounter++
	r.ID = db.responseIDCounter
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	if r.SubmittedAt.IsZero() {
		r.SubmittedAt = db.now().UTC()
	}
	db.responses = append(db.responses, r)
	return r, nil
}

func newestReviewsFirst(rs []domain.Review) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}

func newestResponsesFirst(rs []domain.QuestionnaireResponse) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].SubmittedAt.After(rs[j].SubmittedAt)
	})
}
