package api

import (
	"context"
	"encoding/json"
	"fmt"

	"wellmatch/internal/domain"
)

var _ domain.ReviewAPI = (*Client)(nil)

// responseWire accepts questions and answers either inline or as JSON
// encoded strings.
type responseWire struct {
	domain.QuestionnaireResponse
	Questions json.RawMessage `json:"questions"`
	Answers   json.RawMessage `json:"answers"`
}

func (w responseWire) decode() (domain.QuestionnaireResponse, error) {
	r := w.QuestionnaireResponse
	if err := decodeEmbedded(w.Questions, &r.Questions); err != nil {
		return r, fmt.Errorf("questions of %d: %w", r.ID, err)
	}
	if err := decodeEmbedded(w.Answers, &r.Answers); err != nil {
		return r, fmt.Errorf("answers of %d: %w", r.ID, err)
	}
	return r, nil
}

func decodeResponses(ws []responseWire) ([]domain.QuestionnaireResponse, error) {
	out := make([]domain.QuestionnaireResponse, 0, len(ws))
	for _, w := range ws {
		r, err := w.decode()
		if err != nil {
			return nil, &domain.TransportError{Op: "decode questionnaire", Err: err}
		}
		out = append(out, r)
	}
	return out, nil
}

// decodeEmbedded decodes raw into dst whether raw is the value itself or a
// JSON string holding it. Null and empty are left as zero.
func decodeEmbedded(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s == "" {
			return nil
		}
		raw = json.RawMessage(s)
	}
	return json.Unmarshal(raw, dst)
}

func (c *Client) PendingReviews(ctx context.Context) ([]domain.Review, error) {
	var out []domain.Review
	if err := c.getJSON(ctx, professionalsPath+"/me/pending-reviews", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ActOnReview(ctx context.Context, id int64, action domain.ReviewAction) error {
	in := map[string]string{"action": string(action)}
	return c.putJSON(ctx, fmt.Sprintf("%s/me/reviews/%d", professionalsPath, id), in, nil)
}

func (c *Client) Questionnaires(ctx context.Context) ([]domain.QuestionnaireResponse, error) {
	var ws []responseWire
	if err := c.getJSON(ctx, professionalsPath+"/me/questionnaires", &ws); err != nil {
		return nil, err
	}
	return decodeResponses(ws)
}

func (c *Client) ActOnQuestionnaire(ctx context.Context, id int64, action domain.ReviewAction, response string) (string, error) {
	in := map[string]string{"action": string(action), "response": response}
	var out struct {
		Message string `json:"message"`
	}
	if err := c.putJSON(ctx, fmt.Sprintf("%s/me/questionnaires/%d/status", professionalsPath, id), in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
