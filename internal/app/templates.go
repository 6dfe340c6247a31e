package app

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// TemplateDesk authors questionnaire templates and sends them to clients.
type TemplateDesk struct {
	*desk
	api domain.QuestionnaireAPI

	templates []domain.Template
	sent      []domain.SentQuestionnaire
	draft     *domain.Template
}

// NewTemplateDesk creates the questionnaire authoring panel.
func NewTemplateDesk(auth Authorizer, api domain.QuestionnaireAPI, msgs Messages, log *zap.Logger) *TemplateDesk {
	return &TemplateDesk{desk: newDesk(auth, msgs, log, "templates"), api: api}
}

// Load fetches all templates with their questions.
func (t *TemplateDesk) Load(ctx context.Context) error {
	return t.run(ctx, ActionTemplatesLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := t.api.Templates(ctx)
		if err != nil {
			return nil, err
		}
		return func() { t.templates = list }, nil
	})
}

// LoadSent fetches the sent questionnaires.
func (t *TemplateDesk) LoadSent(ctx context.Context) error {
	return t.run(ctx, ActionSentLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := t.api.SentQuestionnaires(ctx)
		if err != nil {
			return nil, err
		}
		return func() { t.sent = list }, nil
	})
}

// Templates returns the loaded templates.
func (t *TemplateDesk) Templates() []domain.Template {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.templates)
}

// Sent returns the loaded sent questionnaires.
func (t *TemplateDesk) Sent() []domain.SentQuestionnaire {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.sent)
}

// NewDraft starts editing a new template.
func (t *TemplateDesk) NewDraft(name, description string) {
	t.mu.Lock()
	t.draft = &domain.Template{Name: strings.TrimSpace(name), Description: strings.TrimSpace(description)}
	t.mu.Unlock()
}

// EditTemplate starts editing a copy of template id.
func (t *TemplateDesk) EditTemplate(id int64) error {
	t.mu.Lock()
	i := slices.IndexFunc(t.templates, func(x domain.Template) bool { return x.ID == id })
	if i >= 0 {
		cp := t.templates[i]
		cp.Questions = slices.Clone(cp.Questions)
		t.draft = &cp
	}
	t.mu.Unlock()
	if i < 0 {
		return t.fail(domain.ErrNotFound, MsgNotFound)
	}
	return nil
}

// Draft returns a copy of the template being edited.
func (t *TemplateDesk) Draft() (domain.Template, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draft == nil {
		return domain.Template{}, false
	}
	cp := *t.draft
	cp.Questions = slices.Clone(cp.Questions)
	return cp, true
}

// AddQuestion appends a question to the draft.
func (t *TemplateDesk) AddQuestion(typ domain.QuestionType, text string, options ...string) (domain.Question, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.draft == nil {
		return domain.Question{}, domain.ErrNotFound
	}
	return t.draft.AddQuestion(typ, strings.TrimSpace(text), options...), nil
}

// RemoveQuestion drops a question from the draft.
func (t *TemplateDesk) RemoveQuestion(id string) {
	t.mu.Lock()
	if t.draft != nil {
		t.draft.RemoveQuestion(id)
	}
	t.mu.Unlock()
}

// SaveDraft creates or updates the template being edited and reloads the
// list.
func (t *TemplateDesk) SaveDraft(ctx context.Context) error {
	d, ok := t.Draft()
	if !ok {
		return t.fail(domain.ErrNotFound, MsgNotFound)
	}
	if err := d.Validate(); err != nil {
		return t.fail(err, MsgGeneric)
	}

	return t.run(ctx, ActionTemplateSave, MsgGeneric, func(ctx context.Context) (func(), error) {
		var err error
		if d.ID == 0 {
			err = t.api.CreateTemplate(ctx, d)
		} else {
			err = t.api.UpdateTemplate(ctx, d)
		}
		if err != nil {
			return nil, err
		}
		list, err := t.api.Templates(ctx)
		if err != nil {
			t.log.Warn("reload templates", zap.Error(err))
			return func() {
				t.draft = nil
				t.succeed(MsgTemplateSaved)
			}, nil
		}
		return func() {
			t.draft = nil
			t.templates = list
			t.succeed(MsgTemplateSaved)
		}, nil
	})
}

// Send sends a template to a client about a professional.
func (t *TemplateDesk) Send(ctx context.Context, req domain.SendRequest) error {
	if err := req.Validate(); err != nil {
		return t.fail(err, MsgGeneric)
	}
	return t.run(ctx, ActionSendQuestionnaire, MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := t.api.SendQuestionnaire(ctx, req); err != nil {
			return nil, err
		}
		return func() { t.succeed(MsgQuestionnaireSent) }, nil
	})
}

// Reset forgets templates, sent list and draft.
func (t *TemplateDesk) Reset() {
	t.reset(func() {
		t.templates = nil
		t.sent = nil
		t.draft = nil
	})
}
