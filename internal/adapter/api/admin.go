package api

import (
	"context"
	"encoding/json"
	"fmt"

	"wellmatch/internal/domain"
)

var (
	_ domain.AdminAPI         = (*Client)(nil)
	_ domain.QuestionnaireAPI = (*Client)(nil)
)

const adminPath = "/api/admin"

func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	if err := c.getJSON(ctx, adminPath+"/stats", &s); err != nil {
		return domain.Stats{}, err
	}
	return s, nil
}

func (c *Client) RegistrationsChart(ctx context.Context) ([]domain.RegistrationPoint, error) {
	var out []domain.RegistrationPoint
	if err := c.getJSON(ctx, adminPath+"/stats/registrations-chart", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PendingAdminReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	if err := c.getJSON(ctx, adminPath+"/reviews/pending-admin", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetReviewStatus(ctx context.Context, id int64, status domain.ReviewStatus) error {
	in := map[string]string{"newStatus": string(status)}
	return c.putJSON(ctx, fmt.Sprintf("%s/reviews/%d/status", adminPath, id), in, nil)
}

func (c *Client) DisputedReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	if err := c.getJSON(ctx, adminPath+"/reviews/disputed", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolveReviewDispute(ctx context.Context, id int64, status domain.ReviewStatus) error {
	in := map[string]string{"newStatus": string(status)}
	return c.putJSON(ctx, fmt.Sprintf("%s/reviews/%d/resolve-dispute", adminPath, id), in, nil)
}

func (c *Client) DisputedQuestionnaires(ctx context.Context) ([]domain.QuestionnaireResponse, error) {
	var ws []responseWire
	if err := c.getJSON(ctx, adminPath+"/questionnaires/disputed", &ws); err != nil {
		return nil, err
	}
	return decodeResponses(ws)
}

func (c *Client) ResolveQuestionnaireDispute(ctx context.Context, id, professionalID int64, status domain.ReviewStatus) error {
	in := map[string]any{"newStatus": status, "professionalId": professionalID}
	return c.putJSON(ctx, fmt.Sprintf("%s/questionnaires/%d/resolve-dispute", adminPath, id), in, nil)
}

func (c *Client) Professionals(ctx context.Context) ([]domain.ProfessionalSummary, error) {
	var out []domain.ProfessionalSummary
	if err := c.getJSON(ctx, adminPath+"/users/professionals", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SetProfessionalStatus(ctx context.Context, id int64, status string) error {
	in := map[string]string{"active_status": status}
	return c.putJSON(ctx, fmt.Sprintf("%s/professionals/%d/status", adminPath, id), in, nil)
}

func (c *Client) VerifyProfessional(ctx context.Context, id int64, verified bool) error {
	in := map[string]bool{"is_verified": verified}
	return c.putJSON(ctx, fmt.Sprintf("%s/professionals/%d/verify", adminPath, id), in, nil)
}

func (c *Client) Users(ctx context.Context) ([]domain.UserSummary, error) {
	var out []domain.UserSummary
	if err := c.getJSON(ctx, adminPath+"/users/all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Settings(ctx context.Context) (domain.AutomationSettings, error) {
	var s domain.AutomationSettings
	if err := c.getJSON(ctx, adminPath+"/settings", &s); err != nil {
		return domain.AutomationSettings{}, err
	}
	return s, nil
}

func (c *Client) SaveSettings(ctx context.Context, s domain.AutomationSettings) error {
	return c.putJSON(ctx, adminPath+"/settings", s, nil)
}

// templateWire is a template as the backend stores it, with questions as a
// JSON string.
type templateWire struct {
	domain.Template
	QuestionsJSON json.RawMessage `json:"questions_json"`
}

type templateBody struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionsJSON string `json:"questions_json"`
}

func newTemplateBody(t domain.Template) (templateBody, error) {
	qs := t.Questions
	if qs == nil {
		qs = []domain.Question{}
	}
	b, err := json.Marshal(qs)
	if err != nil {
		return templateBody{}, fmt.Errorf("encode questions: %w", err)
	}
	return templateBody{Name: t.Name, Description: t.Description, QuestionsJSON: string(b)}, nil
}

func (c *Client) Templates(ctx context.Context) ([]domain.Template, error) {
	var ws []templateWire
	if err := c.getJSON(ctx, adminPath+"/questionnaires?full=true", &ws); err != nil {
		return nil, err
	}
	out := make([]domain.Template, 0, len(ws))
	for _, w := range ws {
		t := w.Template
		if err := decodeEmbedded(w.QuestionsJSON, &t.Questions); err != nil {
			return nil, &domain.TransportError{Op: "decode template", Err: err}
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, t domain.Template) error {
	body, err := newTemplateBody(t)
	if err != nil {
		return err
	}
	return c.postJSON(ctx, adminPath+"/questionnaires", body, nil)
}

func (c *Client) UpdateTemplate(ctx context.Context, t domain.Template) error {
	body, err := newTemplateBody(t)
	if err != nil {
		return err
	}
	return c.putJSON(ctx, fmt.Sprintf("%s/questionnaires/%d", adminPath, t.ID), body, nil)
}

func (c *Client) SentQuestionnaires(ctx context.Context) ([]domain.SentQuestionnaire, error) {
	var out []domain.SentQuestionnaire
	if err := c.getJSON(ctx, adminPath+"/questionnaires/sent", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendQuestionnaire(ctx context.Context, req domain.SendRequest) error {
	return c.postJSON(ctx, adminPath+"/questionnaires/send", req, nil)
}
