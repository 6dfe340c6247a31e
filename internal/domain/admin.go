package domain

import (
	"context"
	"time"
)

// Stats are the admin dashboard counters.
type Stats struct {
	TotalUsers                  int `json:"totalUsers"`
	TotalProfessionals          int `json:"totalProfessionals"`
	TotalPendingReviews         int `json:"totalPendingReviews"`
	TotalDisputedReviews        int `json:"totalDisputedReviews"`
	TotalDisputedQuestionnaires int `json:"totalDisputedQuestionnaires"`
}

// Professional activity states.
const (
	ProfessionalActive   = "active"
	ProfessionalInactive = "inactive"
)

// ProfessionalSummary is a row of the admin professionals list.
type ProfessionalSummary struct {
	ID           int64  `json:"id"`
	FullName     string `json:"full_name"`
	Profession   string `json:"profession"`
	Views        int    `json:"views"`
	ActiveStatus string `json:"active_status"`
	IsVerified   bool   `json:"is_verified"`
}

// ToggledStatus is the status the admin toggle moves the professional to.
func (p ProfessionalSummary) ToggledStatus() string {
	if p.ActiveStatus == ProfessionalActive {
		return ProfessionalInactive
	}
	return ProfessionalActive
}

// UserSummary is a row of the admin all-users list.
type UserSummary struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	UserType    Role      `json:"user_type"`
	AnonymousID string    `json:"anonymous_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// RegistrationPoint is one day of the registrations chart.
type RegistrationPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Bounds for the follow-up questionnaire delay.
const (
	MinDelayDays = 1
	MaxDelayDays = 365
)

// AutomationSettings control backend-side scheduled behavior.
type AutomationSettings struct {
	AutoSendQuestionnaires bool `json:"auto_send_questionnaires"`
	QuestionnaireDelayDays int  `json:"questionnaire_delay_days"`
	ReminderEnabled        bool `json:"reminder_enabled"`
}

// Validate checks the delay range.
func (s AutomationSettings) Validate() error {
	if s.QuestionnaireDelayDays < MinDelayDays || s.QuestionnaireDelayDays > MaxDelayDays {
		return &ValidationError{Field: "questionnaire_delay_days", Code: CodeDelayDays}
	}
	return nil
}

// AdminAPI is the port for admin moderation and management endpoints.
type AdminAPI interface {
	Stats(ctx context.Context) (Stats, error)
	RegistrationsChart(ctx context.Context) ([]RegistrationPoint, error)

	PendingAdminReviews(ctx context.Context) ([]Review, error)
	SetReviewStatus(ctx context.Context, id int64, status ReviewStatus) error
	DisputedReviews(ctx context.Context) ([]Review, error)
	ResolveReviewDispute(ctx context.Context, id int64, status ReviewStatus) error
	DisputedQuestionnaires(ctx context.Context) ([]QuestionnaireResponse, error)
	ResolveQuestionnaireDispute(ctx context.Context, id, professionalID int64, status ReviewStatus) error

	Professionals(ctx context.Context) ([]ProfessionalSummary, error)
	SetProfessionalStatus(ctx context.Context, id int64, status string) error
	VerifyProfessional(ctx context.Context, id int64, verified bool) error
	Users(ctx context.Context) ([]UserSummary, error)

	Settings(ctx context.Context) (AutomationSettings, error)
	SaveSettings(ctx context.Context, s AutomationSettings) error
}
