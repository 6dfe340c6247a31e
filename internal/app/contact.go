package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// ActionLogContact is the action key of the contact log form.
const ActionLogContact = "contact:log"

// ContactLog reports that a professional was in contact with a client so
// the backend can schedule a follow-up questionnaire.
type ContactLog struct {
	*desk
	api domain.ProfileAPI
}

// NewContactLog creates the contact log form.
func NewContactLog(auth Authorizer, api domain.ProfileAPI, msgs Messages, log *zap.Logger) *ContactLog {
	return &ContactLog{desk: newDesk(auth, msgs, log, "contact"), api: api}
}

// Submit reports the client's anonymous id.
func (c *ContactLog) Submit(ctx context.Context, clientAnonymousID string) error {
	code := strings.TrimSpace(clientAnonymousID)
	if code == "" {
		return c.fail(&domain.ValidationError{Field: "client_anonymous_id", Code: domain.CodeContactCode}, MsgGeneric)
	}

	return c.run(ctx, ActionLogContact, MsgGeneric, func(ctx context.Context) (func(), error) {
		msg, err := c.api.LogContact(ctx, code)
		if err != nil {
			return nil, err
		}
		return func() { c.succeedWith(msg, MsgContactLogged) }, nil
	})
}

// Reset clears the form.
func (c *ContactLog) Reset() { c.reset(func() {}) }
