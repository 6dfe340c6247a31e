package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ReviewStatus is the lifecycle state of a review or questionnaire response.
type ReviewStatus string

const (
	StatusPending   ReviewStatus = "pending"
	StatusPublished ReviewStatus = "published"
	StatusDisputed  ReviewStatus = "disputed"
	StatusRejected  ReviewStatus = "rejected"
)

// ReviewAction is a professional's disposition of a pending item.
type ReviewAction string

const (
	ActionPublish ReviewAction = "publish"
	ActionDispute ReviewAction = "dispute"
)

// Target returns the status the action moves a pending item to.
func (a ReviewAction) Target() (ReviewStatus, error) {
	switch a {
	case ActionPublish:
		return StatusPublished, nil
	case ActionDispute:
		return StatusDisputed, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
}

// ParseReviewAction validates a user-typed action.
func ParseReviewAction(s string) (ReviewAction, error) {
	a := ReviewAction(s)
	if _, err := a.Target(); err != nil {
		return "", err
	}
	return a, nil
}

// CheckResolution validates an admin decision on a disputed item.
func CheckResolution(to ReviewStatus) error {
	return checkTransition(StatusDisputed, to)
}

// CheckModeration validates an admin decision on a review still pending
// admin approval.
func CheckModeration(to ReviewStatus) error {
	if to != StatusPublished && to != StatusRejected {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, StatusPending, to)
	}
	return nil
}

// checkTransition encodes the one-way item lifecycle:
// pending -> published|disputed, disputed -> published|rejected.
func checkTransition(from, to ReviewStatus) error {
	ok := false
	switch from {
	case StatusPending:
		ok = to == StatusPublished || to == StatusDisputed
	case StatusDisputed:
		ok = to == StatusPublished || to == StatusRejected
	}
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// Review is a client-submitted review awaiting disposition.
type Review struct {
	ID               int64        `json:"id"`
	ProfessionalID   int64        `json:"professional_id"`
	ProfessionalName string       `json:"professional_name,omitempty"`
	ClientRef        string       `json:"client_anonymous_id"`
	Rating           int          `json:"rating"`
	Text             string       `json:"text"`
	VerificationCode string       `json:"verification_code_used,omitempty"`
	Status           ReviewStatus `json:"status"`
	CreatedAt        time.Time    `json:"created_at"`
}

// QuestionType is the kind of answer a question expects.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextarea QuestionType = "textarea"
	QuestionRadio    QuestionType = "radio"
	QuestionRating   QuestionType = "rating"
)

// Question is one question of a questionnaire template.
type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// Answers maps question id to the answer as text. Ratings arrive as
// numbers and are kept in their decimal form.
type Answers map[string]string

// UnmarshalJSON accepts string, number and boolean answer values.
func (a *Answers) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Answers, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	*a = out
	return nil
}

// QuestionnaireResponse is a completed questionnaire about a professional.
type QuestionnaireResponse struct {
	ID                int64        `json:"id"`
	ProfessionalID    int64        `json:"professional_id"`
	ProfessionalName  string       `json:"professional_name,omitempty"`
	ClientRef         string       `json:"client_anonymous_id"`
	TemplateName      string       `json:"questionnaire_name"`
	Questions         []Question   `json:"questions"`
	Answers           Answers      `json:"answers"`
	Status            ReviewStatus `json:"status"`
	TherapistResponse string       `json:"therapist_response,omitempty"`
	SubmittedAt       time.Time    `json:"submitted_at"`
}

// QAPair is one question joined with its answer for display.
type QAPair struct {
	Question string
	Type     QuestionType
	Answer   string
	Answered bool
}

// Pairs joins questions with answers in question order.
func (r QuestionnaireResponse) Pairs() []QAPair {
	out := make([]QAPair, 0, len(r.Questions))
	for _, q := range r.Questions {
		typ := q.Type
		if typ == "" {
			typ = QuestionText
		}
		ans, ok := r.Answers[q.ID]
		out = append(out, QAPair{Question: q.Text, Type: typ, Answer: ans, Answered: ok && ans != ""})
	}
	return out
}

// ReviewAPI is the port for the professional's review endpoints.
type ReviewAPI interface {
	PendingReviews(ctx context.Context) ([]Review, error)
	ActOnReview(ctx context.Context, id int64, action ReviewAction) error
	Questionnaires(ctx context.Context) ([]QuestionnaireResponse, error)
	// ActOnQuestionnaire returns the server's confirmation message.
	ActOnQuestionnaire(ctx context.Context, id int64, action ReviewAction, response string) (string, error)
}
