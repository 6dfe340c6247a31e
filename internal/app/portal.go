package app

import (
	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// Backend groups the ports a portal talks to.
type Backend interface {
	domain.AuthAPI
	domain.ProfileAPI
	domain.ReviewAPI
	domain.AdminAPI
	domain.QuestionnaireAPI
}

// Portal is the assembled application: one router and one desk per
// dashboard panel, all bound to the same session store.
type Portal struct {
	Sessions *SessionStore
	Router   *Router
	Messages Messages

	Profile        *ProfileEditor
	Contacts       *ContactLog
	Reviews        *ReviewDesk
	Questionnaires *QuestionnaireDesk

	Moderation *ModerationDesk
	Directory  *DirectoryDesk
	Settings   *SettingsDesk
	Templates  *TemplateDesk
}

// NewPortal wires the application around backend and strategy. Every desk
// is reset when the session ends.
func NewPortal(backend Backend, strategy Strategy, msgs Messages, log *zap.Logger) *Portal {
	sessions := NewSessionStore(backend, strategy, log)
	p := &Portal{
		Sessions:       sessions,
		Router:         NewRouter(sessions, msgs, log),
		Messages:       msgs,
		Profile:        NewProfileEditor(sessions, backend, msgs, log),
		Contacts:       NewContactLog(sessions, backend, msgs, log),
		Reviews:        NewReviewDesk(sessions, backend, msgs, log),
		Questionnaires: NewQuestionnaireDesk(sessions, backend, msgs, log),
		Moderation:     NewModerationDesk(sessions, backend, msgs, log),
		Directory:      NewDirectoryDesk(sessions, backend, msgs, log),
		Settings:       NewSettingsDesk(sessions, backend, msgs, log),
		Templates:      NewTemplateDesk(sessions, backend, msgs, log),
	}
	sessions.Subscribe(func(c SessionChange) {
		if c.Session != nil {
			return
		}
		p.Profile.Reset()
		p.Contacts.Reset()
		p.Reviews.Reset()
		p.Questionnaires.Reset()
		p.Moderation.Reset()
		p.Directory.Reset()
		p.Settings.Reset()
		p.Templates.Reset()
	})
	return p
}
