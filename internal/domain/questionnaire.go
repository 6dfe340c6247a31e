package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Template is an authorable questionnaire.
type Template struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate applies the editor's save rules.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return &ValidationError{Field: "name", Code: CodeTemplateName}
	}
	if len(t.Questions) == 0 {
		return &ValidationError{Field: "questions", Code: CodeTemplateQuestions}
	}
	return nil
}

// AddQuestion appends a question with a fresh q_<n> id.
func (t *Template) AddQuestion(typ QuestionType, text string, options ...string) Question {
	n := len(t.Questions) + 1
	for t.hasQuestion(fmt.Sprintf("q_%d", n)) {
		n++
	}
	if typ == "" {
		typ = QuestionText
	}
	q := Question{ID: fmt.Sprintf("q_%d", n), Text: text, Type: typ, Options: options}
	t.Questions = append(t.Questions, q)
	return q
}

// RemoveQuestion deletes the question with id.
func (t *Template) RemoveQuestion(id string) {
	t.Questions = slices.DeleteFunc(t.Questions, func(q Question) bool { return q.ID == id })
}

func (t *Template) hasQuestion(id string) bool {
	return slices.ContainsFunc(t.Questions, func(q Question) bool { return q.ID == id })
}

// SentQuestionnaire tracks one questionnaire sent to a client.
type SentQuestionnaire struct {
	ID               int64        `json:"id"`
	TemplateName     string       `json:"questionnaire_name"`
	ClientRef        string       `json:"client_anonymous_id"`
	ProfessionalName string       `json:"professional_name"`
	Status           ReviewStatus `json:"status"`
	SentAt           time.Time    `json:"sent_at"`
}

// SendRequest asks the backend to send a template to a client about a
// professional.
type SendRequest struct {
	ClientUserID    int64 `json:"client_user_id"`
	ProfessionalID  int64 `json:"professional_id"`
	QuestionnaireID int64 `json:"questionnaire_id"`
}

// Validate requires all three selections.
func (r SendRequest) Validate() error {
	if r.ClientUserID <= 0 || r.ProfessionalID <= 0 || r.QuestionnaireID <= 0 {
		return &ValidationError{Field: "send", Code: CodeSendSelection}
	}
	return nil
}

// QuestionnaireAPI is the port for admin questionnaire authoring.
type QuestionnaireAPI interface {
	Templates(ctx context.Context) ([]Template, error)
	CreateTemplate(ctx context.Context, t Template) error
	UpdateTemplate(ctx context.Context, t Template) error
	SentQuestionnaires(ctx context.Context) ([]SentQuestionnaire, error)
	SendQuestionnaire(ctx context.Context, req SendRequest) error
}
