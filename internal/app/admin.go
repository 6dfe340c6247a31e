package app

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// Action keys of the admin dashboard.
const (
	ActionStatsLoad         = "admin:stats"
	ActionChartLoad         = "admin:chart"
	ActionPendingAdminLoad  = "admin:pending"
	ActionDisputedLoad      = "admin:disputed"
	ActionQDisputedLoad     = "admin:qdisputed"
	ActionProfessionalsLoad = "admin:professionals"
	ActionUsersLoad         = "admin:users"
	ActionSettingsLoad      = "admin:settings"
	ActionSettingsSave      = "admin:settings:save"
	ActionTemplatesLoad     = "admin:templates"
	ActionTemplateSave      = "admin:template:save"
	ActionSentLoad          = "admin:sent"
	ActionSendQuestionnaire = "admin:send"
)

// ModerateKey is the per-item key of a pending-admin review.
func ModerateKey(id int64) string { return fmt.Sprintf("moderate:%d", id) }

// DisputeKey is the per-item key of a disputed review.
func DisputeKey(id int64) string { return fmt.Sprintf("dispute:%d", id) }

// QDisputeKey is the per-item key of a disputed questionnaire.
func QDisputeKey(id int64) string { return fmt.Sprintf("qdispute:%d", id) }

// ProfessionalKey is the per-row key of the professionals list.
func ProfessionalKey(id int64) string { return fmt.Sprintf("professional:%d", id) }

// ModerationDesk holds the admin counters and the three moderation queues.
// Resolved items leave their queue locally, the matching counter drops at
// once, and the counters are then refetched.
type ModerationDesk struct {
	*desk
	api domain.AdminAPI

	stats        domain.Stats
	chart        []domain.RegistrationPoint
	pendingAdmin []domain.Review
	disputed     []domain.Review
	qDisputed    []domain.QuestionnaireResponse
}

// NewModerationDesk creates the moderation panel.
func NewModerationDesk(auth Authorizer, api domain.AdminAPI, msgs Messages, log *zap.Logger) *ModerationDesk {
	return &ModerationDesk{desk: newDesk(auth, msgs, log, "moderation"), api: api}
}

// LoadStats fetches the dashboard counters.
func (m *ModerationDesk) LoadStats(ctx context.Context) error {
	return m.run(ctx, ActionStatsLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		s, err := m.api.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return func() { m.stats = s }, nil
	})
}

// LoadChart fetches the registrations series.
func (m *ModerationDesk) LoadChart(ctx context.Context) error {
	return m.run(ctx, ActionChartLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		pts, err := m.api.RegistrationsChart(ctx)
		if err != nil {
			return nil, err
		}
		return func() { m.chart = pts }, nil
	})
}

// LoadPendingAdmin fetches reviews awaiting admin approval.
func (m *ModerationDesk) LoadPendingAdmin(ctx context.Context) error {
	return m.run(ctx, ActionPendingAdminLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := m.api.PendingAdminReviews(ctx)
		if err != nil {
			return nil, err
		}
		return func() { m.pendingAdmin = list }, nil
	})
}

// LoadDisputed fetches disputed reviews.
func (m *ModerationDesk) LoadDisputed(ctx context.Context) error {
	return m.run(ctx, ActionDisputedLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := m.api.DisputedReviews(ctx)
		if err != nil {
			return nil, err
		}
		return func() { m.disputed = list }, nil
	})
}

// LoadQuestionnaireDisputes fetches disputed questionnaires.
func (m *ModerationDesk) LoadQuestionnaireDisputes(ctx context.Context) error {
	return m.run(ctx, ActionQDisputedLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := m.api.DisputedQuestionnaires(ctx)
		if err != nil {
			return nil, err
		}
		return func() { m.qDisputed = list }, nil
	})
}

// Stats returns the dashboard counters.
func (m *ModerationDesk) Stats() domain.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Chart returns the registrations series.
func (m *ModerationDesk) Chart() []domain.RegistrationPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.chart)
}

// PendingAdmin returns the reviews awaiting admin approval.
func (m *ModerationDesk) PendingAdmin() []domain.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.pendingAdmin)
}

// Disputed returns the disputed reviews.
func (m *ModerationDesk) Disputed() []domain.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.disputed)
}

// QuestionnaireDisputes returns the disputed questionnaire responses.
func (m *ModerationDesk) QuestionnaireDisputes() []domain.QuestionnaireResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.qDisputed)
}

// Moderate publishes or rejects a review pending admin approval.
func (m *ModerationDesk) Moderate(ctx context.Context, id int64, status domain.ReviewStatus) error {
	if err := domain.CheckModeration(status); err != nil {
		return m.fail(err, MsgGeneric)
	}
	gen := m.generation()
	err := m.run(ctx, ModerateKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := m.api.SetReviewStatus(ctx, id, status); err != nil {
			return nil, err
		}
		return func() {
			m.pendingAdmin = dropReview(m.pendingAdmin, id)
			m.stats.TotalPendingReviews = max(m.stats.TotalPendingReviews-1, 0)
			m.succeed(MsgStatusUpdated)
		}, nil
	})
	return m.settle(ctx, gen, err)
}

// ResolveDispute settles a disputed review: published rejects the dispute,
// rejected upholds it.
func (m *ModerationDesk) ResolveDispute(ctx context.Context, id int64, status domain.ReviewStatus) error {
	if err := domain.CheckResolution(status); err != nil {
		return m.fail(err, MsgGeneric)
	}
	gen := m.generation()
	err := m.run(ctx, DisputeKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := m.api.ResolveReviewDispute(ctx, id, status); err != nil {
			return nil, err
		}
		return func() {
			m.disputed = dropReview(m.disputed, id)
			m.stats.TotalDisputedReviews = max(m.stats.TotalDisputedReviews-1, 0)
			m.succeed(MsgStatusUpdated)
		}, nil
	})
	return m.settle(ctx, gen, err)
}

// ResolveQuestionnaireDispute settles a disputed questionnaire.
func (m *ModerationDesk) ResolveQuestionnaireDispute(ctx context.Context, id int64, status domain.ReviewStatus) error {
	if err := domain.CheckResolution(status); err != nil {
		return m.fail(err, MsgGeneric)
	}
	m.mu.Lock()
	i := slices.IndexFunc(m.qDisputed, func(q domain.QuestionnaireResponse) bool { return q.ID == id })
	var profID int64
	if i >= 0 {
		profID = m.qDisputed[i].ProfessionalID
	}
	m.mu.Unlock()
	if i < 0 {
		return m.fail(domain.ErrNotFound, MsgNotFound)
	}

	gen := m.generation()
	err := m.run(ctx, QDisputeKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := m.api.ResolveQuestionnaireDispute(ctx, id, profID, status); err != nil {
			return nil, err
		}
		return func() {
			m.qDisputed = slices.DeleteFunc(m.qDisputed, func(q domain.QuestionnaireResponse) bool { return q.ID == id })
			m.stats.TotalDisputedQuestionnaires = max(m.stats.TotalDisputedQuestionnaires-1, 0)
			m.succeed(MsgStatusUpdated)
		}, nil
	})
	return m.settle(ctx, gen, err)
}

// settle refreshes the counters after a moderation action started in
// epoch gen. A failed refresh keeps the locally adjusted counters, and a
// reset since gen skips the refresh.
func (m *ModerationDesk) settle(ctx context.Context, gen uint64, err error) error {
	if err != nil || m.generation() != gen {
		return err
	}

	var s domain.Stats
	rerr := m.auth.Authorized(ctx, func(ctx context.Context) error {
		var err error
		s, err = m.api.Stats(ctx)
		return err
	})
	if rerr != nil {
		m.log.Warn("stats refresh failed", zap.Error(rerr))
		return nil
	}
	m.mu.Lock()
	if m.epoch == gen {
		m.stats = s
	}
	m.mu.Unlock()
	return nil
}

// Reset forgets all queues and counters.
func (m *ModerationDesk) Reset() {
	m.reset(func() {
		m.stats = domain.Stats{}
		m.chart = nil
		m.pendingAdmin = nil
		m.disputed = nil
		m.qDisputed = nil
	})
}

func dropReview(list []domain.Review, id int64) []domain.Review {
	return slices.DeleteFunc(list, func(r domain.Review) bool { return r.ID == id })
}

// DirectoryDesk lists professionals and users for the admin.
type DirectoryDesk struct {
	*desk
	api domain.AdminAPI

	professionals []domain.ProfessionalSummary
	users         []domain.UserSummary
}

// NewDirectoryDesk creates the professionals and users panel.
func NewDirectoryDesk(auth Authorizer, api domain.AdminAPI, msgs Messages, log *zap.Logger) *DirectoryDesk {
	return &DirectoryDesk{desk: newDesk(auth, msgs, log, "directory"), api: api}
}

// LoadProfessionals fetches the professionals list.
func (d *DirectoryDesk) LoadProfessionals(ctx context.Context) error {
	return d.run(ctx, ActionProfessionalsLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := d.api.Professionals(ctx)
		if err != nil {
			return nil, err
		}
		return func() { d.professionals = list }, nil
	})
}

// LoadUsers fetches all user accounts.
func (d *DirectoryDesk) LoadUsers(ctx context.Context) error {
	return d.run(ctx, ActionUsersLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := d.api.Users(ctx)
		if err != nil {
			return nil, err
		}
		return func() { d.users = list }, nil
	})
}

// Professionals returns the loaded professionals.
func (d *DirectoryDesk) Professionals() []domain.ProfessionalSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.professionals)
}

// Users returns the loaded users of every type.
func (d *DirectoryDesk) Users() []domain.UserSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.users)
}

// Clients returns the loaded users whose type is client.
func (d *DirectoryDesk) Clients() []domain.UserSummary {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.UserSummary
	for _, u := range d.users {
		if u.UserType == domain.RoleClient {
			out = append(out, u)
		}
	}
	return out
}

// ToggleStatus flips a professional between active and inactive. The row
// is updated in place and stays in the list.
func (d *DirectoryDesk) ToggleStatus(ctx context.Context, id int64) error {
	p, ok := d.professional(id)
	if !ok {
		return d.fail(domain.ErrNotFound, MsgNotFound)
	}
	next := p.ToggledStatus()
	return d.run(ctx, ProfessionalKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := d.api.SetProfessionalStatus(ctx, id, next); err != nil {
			return nil, err
		}
		return func() {
			d.updateProfessional(id, func(p *domain.ProfessionalSummary) { p.ActiveStatus = next })
			d.succeed(MsgStatusUpdated)
		}, nil
	})
}

// Verify sets a professional's verification badge.
func (d *DirectoryDesk) Verify(ctx context.Context, id int64, verified bool) error {
	if _, ok := d.professional(id); !ok {
		return d.fail(domain.ErrNotFound, MsgNotFound)
	}
	return d.run(ctx, ProfessionalKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := d.api.VerifyProfessional(ctx, id, verified); err != nil {
			return nil, err
		}
		return func() {
			d.updateProfessional(id, func(p *domain.ProfessionalSummary) { p.IsVerified = verified })
			d.succeed(MsgStatusUpdated)
		}, nil
	})
}

func (d *DirectoryDesk) professional(id int64) (domain.ProfessionalSummary, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.professionals {
		if p.ID == id {
			return p, true
		}
	}
	return domain.ProfessionalSummary{}, false
}

// updateProfessional must be called with d.mu held.
func (d *DirectoryDesk) updateProfessional(id int64, fn func(*domain.ProfessionalSummary)) {
	for i := range d.professionals {
		if d.professionals[i].ID == id {
			fn(&d.professionals[i])
		}
	}
}

// Reset forgets both lists.
func (d *DirectoryDesk) Reset() {
	d.reset(func() {
		d.professionals = nil
		d.users = nil
	})
}

// SettingsDesk edits the backend automation settings.
type SettingsDesk struct {
	*desk
	api      domain.AdminAPI
	settings domain.AutomationSettings
}

// NewSettingsDesk creates the settings panel.
func NewSettingsDesk(auth Authorizer, api domain.AdminAPI, msgs Messages, log *zap.Logger) *SettingsDesk {
	return &SettingsDesk{desk: newDesk(auth, msgs, log, "settings"), api: api}
}

// Load fetches the current settings.
func (s *SettingsDesk) Load(ctx context.Context) error {
	return s.run(ctx, ActionSettingsLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		cfg, err := s.api.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return func() { s.settings = cfg }, nil
	})
}

// Settings returns the settings as edited locally.
func (s *SettingsDesk) Settings() domain.AutomationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Set edits one setting locally by its wire name.
func (s *SettingsDesk) Set(key, value string) error {
	s.mu.Lock()
	next := s.settings
	var err error
	switch key {
	case "auto_send_questionnaires":
		next.AutoSendQuestionnaires, err = strconv.ParseBool(value)
	case "reminder_enabled":
		next.ReminderEnabled, err = strconv.ParseBool(value)
	case "questionnaire_delay_days":
		next.QuestionnaireDelayDays, err = strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			err = next.Validate()
		}
	default:
		err = &domain.ValidationError{Field: key, Code: "unknown_field"}
	}
	if err == nil {
		s.settings = next
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(err, MsgGeneric)
	}
	return nil
}

// Save submits the settings.
func (s *SettingsDesk) Save(ctx context.Context) error {
	cfg := s.Settings()
	if err := cfg.Validate(); err != nil {
		return s.fail(err, MsgGeneric)
	}
	return s.run(ctx, ActionSettingsSave, MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := s.api.SaveSettings(ctx, cfg); err != nil {
			return nil, err
		}
		return func() { s.succeed(MsgSettingsSaved) }, nil
	})
}

// Reset forgets the settings.
func (s *SettingsDesk) Reset() { s.reset(func() { s.settings = domain.AutomationSettings{} }) }
