// Package devapi holds the services of the development backend: the
// in-process implementation of the marketplace REST contract used for local
// runs and end-to-end tests.
package devapi

import (
	"context"
	"errors"
	"time"

	"wellmatch/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates that an account already uses the email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrTokenRevoked indicates that the token was logged out.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrInvalidToken indicates a token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidInput rejects a request body the store cannot accept.
	ErrInvalidInput = errors.New("invalid input")
)

// Account is a backend user account.
type Account struct {
	ID             int64
	Email          string
	PasswordHash   string
	FullName       string
	Role           domain.Role
	ProfessionalID *int64
	AnonymousID    string
	CreatedAt      time.Time
}

// Identity returns the portal identity of the account.
func (a *Account) Identity() domain.Identity {
	return domain.Identity{UserID: a.ID, Role: a.Role, ProfessionalID: a.ProfessionalID}
}

// AccountRepository stores accounts. Get methods return nil, nil when the
// account does not exist.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id int64) (*Account, error)
	// Create stores a new account. A professional account gets a fresh
	// professional profile whose id is set on the returned account.
	Create(ctx context.Context, a Account, active bool) (*Account, error)
	Count(ctx context.Context) (int, error)
}

// RevocationRepository remembers logged-out token ids until they expire.
type RevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpired(ctx context.Context) error
}

// Store holds every marketplace record the REST contract exposes.
// Mutations return domain.ErrNotFound for unknown ids and
// domain.ErrInvalidTransition for status changes the item cannot make.
type Store interface {
	Reference(ctx context.Context) (domain.ReferenceData, error)

	Profile(ctx context.Context, professionalID int64) (domain.ProfileDraft, error)
	UpdateProfile(ctx context.Context, professionalID int64, u domain.ProfileUpdate) (domain.ProfileDraft, error)
	SetAvailability(ctx context.Context, professionalID int64, a domain.Availability) error
	SetImage(ctx context.Context, professionalID int64, url string) error
	LogContact(ctx context.Context, professionalID int64, clientAnonymousID string) error

	ReviewsFor(ctx context.Context, professionalID int64, status domain.ReviewStatus) ([]domain.Review, error)
	Reviews(ctx context.Context, status domain.ReviewStatus) ([]domain.Review, error)
	ActOnReview(ctx context.Context, professionalID, reviewID int64, to domain.ReviewStatus) error
	SetReviewStatus(ctx context.Context, reviewID int64, from, to domain.ReviewStatus) error

	ResponsesFor(ctx context.Context, professionalID int64, status domain.ReviewStatus) ([]domain.QuestionnaireResponse, error)
	Responses(ctx context.Context, status domain.ReviewStatus) ([]domain.QuestionnaireResponse, error)
	ActOnResponse(ctx context.Context, professionalID, responseID int64, to domain.ReviewStatus, reply string) error
	ResolveResponse(ctx context.Context, responseID, professionalID int64, to domain.ReviewStatus) error

	Stats(ctx context.Context) (domain.Stats, error)
	Registrations(ctx context.Context, days int) ([]domain.RegistrationPoint, error)
	Professionals(ctx context.Context) ([]domain.ProfessionalSummary, error)
	SetProfessionalStatus(ctx context.Context, professionalID int64, status string) error
	ProfessionalStatus(ctx context.Context, professionalID int64) (string, error)
	VerifyProfessional(ctx context.Context, professionalID int64, verified bool) error
	Users(ctx context.Context) ([]domain.UserSummary, error)

	Settings(ctx context.Context) (domain.AutomationSettings, error)
	SaveSettings(ctx context.Context, s domain.AutomationSettings) error

	Templates(ctx context.Context) ([]domain.Template, error)
	CreateTemplate(ctx context.Context, t domain.Template) (domain.Template, error)
	UpdateTemplate(ctx context.Context, t domain.Template) error
	Sent(ctx context.Context) ([]domain.SentQuestionnaire, error)
	Send(ctx context.Context, req domain.SendRequest) (domain.SentQuestionnaire, error)
}

// Upload is a stored profile image.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadRepository keeps uploaded profile images so the backend can serve
// the URLs it hands out.
type UploadRepository interface {
	SaveUpload(ctx context.Context, u Upload) error
	// GetUpload returns nil, nil for an unknown name.
	GetUpload(ctx context.Context, name string) (*Upload, error)
}

// Seeder adds client-originated records the portal itself never creates.
type Seeder interface {
	AddReview(ctx context.Context, r domain.Review) (domain.Review, error)
	AddResponse(ctx context.Context, r domain.QuestionnaireResponse) (domain.QuestionnaireResponse, error)
}
