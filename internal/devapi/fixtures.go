package devapi

import (
	"context"
	"fmt"
	"time"

	"wellmatch/internal/domain"
)

// Demo account passwords. The development backend is never exposed beyond
// localhost.
const (
	DemoAdminEmail        = "admin@wellmatch.dev"
	DemoProfessionalEmail = "dana@wellmatch.dev"
	DemoClientEmail       = "client@wellmatch.dev"
	DemoPassword          = "wellmatch123"
)

// Demo identifies the records SeedDemo created.
type Demo struct {
	Admin        *Account
	Professional *Account
	Client       *Account

	PendingReview    domain.Review
	DisputedReview   domain.Review
	PendingResponse  domain.QuestionnaireResponse
	DisputedResponse domain.QuestionnaireResponse
}

// SeedDemo creates one account of each role plus a review and a
// questionnaire response in each actionable state.
func SeedDemo(ctx context.Context, auth *AuthService, seed Seeder) (*Demo, error) {
	d := &Demo{}
	var err error

	if d.Admin, err = auth.Seed(ctx, Account{Email: DemoAdminEmail, FullName: "Admin", Role: domain.RoleAdmin}, DemoPassword); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if d.Professional, err = auth.Seed(ctx, Account{Email: DemoProfessionalEmail, FullName: "Dana Levi", Role: domain.RoleProfessional}, DemoPassword); err != nil {
		return nil, fmt.Errorf("seed professional: %w", err)
	}
	if d.Client, err = auth.Seed(ctx, Account{Email: DemoClientEmail, FullName: "Client", Role: domain.RoleClient}, DemoPassword); err != nil {
		return nil, fmt.Errorf("seed client: %w", err)
	}

	pid := *d.Professional.ProfessionalID
	ref := d.Client.AnonymousID
	now := time.Now().UTC()

	if d.PendingReview, err = seed.AddReview(ctx, domain.Review{
		ProfessionalID: pid, ClientRef: ref, Rating: 5,
		Text: "Very attentive and professional.", CreatedAt: now.Add(-2 * time.Hour),
	}); err != nil {
		return nil, fmt.Errorf("seed review: %w", err)
	}
	if d.DisputedReview, err = seed.AddReview(ctx, domain.Review{
		ProfessionalID: pid, ClientRef: ref, Rating: 1, Status: domain.StatusDisputed,
		Text: "Never showed up.", CreatedAt: now.Add(-48 * time.Hour),
	}); err != nil {
		return nil, fmt.Errorf("seed review: %w", err)
	}

	questions := []domain.Question{
		{ID: "q_1", Text: "How satisfied were you with the first session?", Type: domain.QuestionRating},
		{ID: "q_2", Text: "Would you recommend this therapist?", Type: domain.QuestionText},
		{ID: "q_3", Text: "Anything else?", Type: domain.QuestionTextarea},
	}
	if d.PendingResponse, err = seed.AddResponse(ctx, domain.QuestionnaireResponse{
		ProfessionalID: pid, ClientRef: ref, TemplateName: "Follow-up",
		Questions: questions, Answers: domain.Answers{"q_1": "4", "q_2": "Yes"},
		SubmittedAt: now.Add(-time.Hour),
	}); err != nil {
		return nil, fmt.Errorf("seed response: %w", err)
	}
	if d.DisputedResponse, err = seed.AddResponse(ctx, domain.QuestionnaireResponse{
		ProfessionalID: pid, ClientRef: ref, TemplateName: "Follow-up",
		Questions: questions, Answers: domain.Answers{"q_1": "1"},
		Status: domain.StatusDisputed, TherapistResponse: "Not my client.",
		SubmittedAt: now.Add(-72 * time.Hour),
	}); err != nil {
		return nil, fmt.Errorf("seed response: %w", err)
	}
	return d, nil
}
