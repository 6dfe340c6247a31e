package app

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

type mockCreds struct {
	mu      sync.Mutex
	value   string
	saves   int
	clears  int
	loadErr error
}

func (m *mockCreds) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.loadErr
}

func (m *mockCreds) Save(ctx context.Context, credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = credential
	m.saves++
	return nil
}

func (m *mockCreds) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = ""
	m.clears++
	return nil
}

func (m *mockCreds) stored() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value
}

// mockBackend implements every port. Unset functions return zero values.
type mockBackend struct {
	loginFn    func(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error)
	registerFn func(ctx context.Context, reg domain.Registration) (domain.RegistrationResult, error)
	logoutFn   func(ctx context.Context) error
	whoAmIFn   func(ctx context.Context) (domain.Identity, error)

	fetchProfileFn     func(ctx context.Context) (domain.ProfileDraft, error)
	fetchReferenceFn   func(ctx context.Context) (domain.ReferenceData, error)
	saveProfileFn      func(ctx context.Context, update domain.ProfileUpdate) error
	saveAvailabilityFn func(ctx context.Context, a domain.Availability) error
	uploadImageFn      func(ctx context.Context, filename string, image io.Reader) (string, error)
	logContactFn       func(ctx context.Context, code string) (string, error)

	pendingReviewsFn     func(ctx context.Context) ([]domain.Review, error)
	actOnReviewFn        func(ctx context.Context, id int64, action domain.ReviewAction) error
	questionnairesFn     func(ctx context.Context) ([]domain.QuestionnaireResponse, error)
	actOnQuestionnaireFn func(ctx context.Context, id int64, action domain.ReviewAction, response string) (string, error)

	statsFn                 func(ctx context.Context) (domain.Stats, error)
	chartFn                 func(ctx context.Context) ([]domain.RegistrationPoint, error)
	pendingAdminFn          func(ctx context.Context) ([]domain.Review, error)
	setReviewStatusFn       func(ctx context.Context, id int64, s domain.ReviewStatus) error
	disputedReviewsFn       func(ctx context.Context) ([]domain.Review, error)
	resolveReviewFn         func(ctx context.Context, id int64, s domain.ReviewStatus) error
	disputedQuestionnaireFn func(ctx context.Context) ([]domain.QuestionnaireResponse, error)
	resolveQuestionnaireFn  func(ctx context.Context, id, profID int64, s domain.ReviewStatus) error
	professionalsFn         func(ctx context.Context) ([]domain.ProfessionalSummary, error)
	setProStatusFn          func(ctx context.Context, id int64, status string) error
	verifyFn                func(ctx context.Context, id int64, verified bool) error
	usersFn                 func(ctx context.Context) ([]domain.UserSummary, error)
	settingsFn              func(ctx context.Context) (domain.AutomationSettings, error)
	saveSettingsFn          func(ctx context.Context, s domain.AutomationSettings) error

	templatesFn      func(ctx context.Context) ([]domain.Template, error)
	createTemplateFn func(ctx context.Context, t domain.Template) error
	updateTemplateFn func(ctx context.Context, t domain.Template) error
	sentFn           func(ctx context.Context) ([]domain.SentQuestionnaire, error)
	sendFn           func(ctx context.Context, req domain.SendRequest) error
}

var _ Backend = (*mockBackend)(nil)

func (m *mockBackend) Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, creds)
	}
	return domain.LoginResult{}, &domain.APIError{Status: 401}
}

func (m *mockBackend) Register(ctx context.Context, reg domain.Registration) (domain.RegistrationResult, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, reg)
	}
	return domain.RegistrationResult{}, nil
}

func (m *mockBackend) Logout(ctx context.Context) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx)
	}
	return nil
}

func (m *mockBackend) WhoAmI(ctx context.Context) (domain.Identity, error) {
	if m.whoAmIFn != nil {
		return m.whoAmIFn(ctx)
	}
	return domain.Identity{}, &domain.APIError{Status: 401}
}

func (m *mockBackend) FetchProfile(ctx context.Context) (domain.ProfileDraft, error) {
	if m.fetchProfileFn != nil {
		return m.fetchProfileFn(ctx)
	}
	return domain.ProfileDraft{}, nil
}

func (m *mockBackend) FetchReference(ctx context.Context) (domain.ReferenceData, error) {
	if m.fetchReferenceFn != nil {
		return m.fetchReferenceFn(ctx)
	}
	return domain.ReferenceData{}, nil
}

func (m *mockBackend) SaveProfile(ctx context.Context, update domain.ProfileUpdate) error {
	if m.saveProfileFn != nil {
		return m.saveProfileFn(ctx, update)
	}
	return nil
}

func (m *mockBackend) SaveAvailability(ctx context.Context, a domain.Availability) error {
	if m.saveAvailabilityFn != nil {
		return m.saveAvailabilityFn(ctx, a)
	}
	return nil
}

func (m *mockBackend) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	if m.uploadImageFn != nil {
		return m.uploadImageFn(ctx, filename, image)
	}
	return "", nil
}

func (m *mockBackend) LogContact(ctx context.Context, code string) (string, error) {
	if m.logContactFn != nil {
		return m.logContactFn(ctx, code)
	}
	return "", nil
}

func (m *mockBackend) PendingReviews(ctx context.Context) ([]domain.Review, error) {
	if m.pendingReviewsFn != nil {
		return m.pendingReviewsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ActOnReview(ctx context.Context, id int64, action domain.ReviewAction) error {
	if m.actOnReviewFn != nil {
		return m.actOnReviewFn(ctx, id, action)
	}
	return nil
}

func (m *mockBackend) Questionnaires(ctx context.Context) ([]domain.QuestionnaireResponse, error) {
	if m.questionnairesFn != nil {
		return m.questionnairesFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ActOnQuestionnaire(ctx context.Context, id int64, action domain.ReviewAction, response string) (string, error) {
	if m.actOnQuestionnaireFn != nil {
		return m.actOnQuestionnaireFn(ctx, id, action, response)
	}
	return "", nil
}

func (m *mockBackend) Stats(ctx context.Context) (domain.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return domain.Stats{}, nil
}

func (m *mockBackend) RegistrationsChart(ctx context.Context) ([]domain.RegistrationPoint, error) {
	if m.chartFn != nil {
		return m.chartFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) PendingAdminReviews(ctx context.Context) ([]domain.Review, error) {
	if m.pendingAdminFn != nil {
		return m.pendingAdminFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) SetReviewStatus(ctx context.Context, id int64, s domain.ReviewStatus) error {
	if m.setReviewStatusFn != nil {
		return m.setReviewStatusFn(ctx, id, s)
	}
	return nil
}

func (m *mockBackend) DisputedReviews(ctx context.Context) ([]domain.Review, error) {
	if m.disputedReviewsFn != nil {
		return m.disputedReviewsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ResolveReviewDispute(ctx context.Context, id int64, s domain.ReviewStatus) error {
	if m.resolveReviewFn != nil {
		return m.resolveReviewFn(ctx, id, s)
	}
	return nil
}

func (m *mockBackend) DisputedQuestionnaires(ctx context.Context) ([]domain.QuestionnaireResponse, error) {
	if m.disputedQuestionnaireFn != nil {
		return m.disputedQuestionnaireFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) ResolveQuestionnaireDispute(ctx context.Context, id, profID int64, s domain.ReviewStatus) error {
	if m.resolveQuestionnaireFn != nil {
		return m.resolveQuestionnaireFn(ctx, id, profID, s)
	}
	return nil
}

func (m *mockBackend) Professionals(ctx context.Context) ([]domain.ProfessionalSummary, error) {
	if m.professionalsFn != nil {
		return m.professionalsFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) SetProfessionalStatus(ctx context.Context, id int64, status string) error {
	if m.setProStatusFn != nil {
		return m.setProStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockBackend) VerifyProfessional(ctx context.Context, id int64, verified bool) error {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, id, verified)
	}
	return nil
}

func (m *mockBackend) Users(ctx context.Context) ([]domain.UserSummary, error) {
	if m.usersFn != nil {
		return m.usersFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) Settings(ctx context.Context) (domain.AutomationSettings, error) {
	if m.settingsFn != nil {
		return m.settingsFn(ctx)
	}
	return domain.AutomationSettings{QuestionnaireDelayDays: 14}, nil
}

func (m *mockBackend) SaveSettings(ctx context.Context, s domain.AutomationSettings) error {
	if m.saveSettingsFn != nil {
		return m.saveSettingsFn(ctx, s)
	}
	return nil
}

func (m *mockBackend) Templates(ctx context.Context) ([]domain.Template, error) {
	if m.templatesFn != nil {
		return m.templatesFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) CreateTemplate(ctx context.Context, t domain.Template) error {
	if m.createTemplateFn != nil {
		return m.createTemplateFn(ctx, t)
	}
	return nil
}

func (m *mockBackend) UpdateTemplate(ctx context.Context, t domain.Template) error {
	if m.updateTemplateFn != nil {
		return m.updateTemplateFn(ctx, t)
	}
	return nil
}

func (m *mockBackend) SentQuestionnaires(ctx context.Context) ([]domain.SentQuestionnaire, error) {
	if m.sentFn != nil {
		return m.sentFn(ctx)
	}
	return nil, nil
}

func (m *mockBackend) SendQuestionnaire(ctx context.Context, req domain.SendRequest) error {
	if m.sendFn != nil {
		return m.sendFn(ctx, req)
	}
	return nil
}

// signToken builds a test JWT. The portal never verifies the signature.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return tok
}

func professionalToken(t *testing.T, profID int64, exp time.Time) string {
	return signToken(t, jwt.MapClaims{
		"userId":         7,
		"userType":       "professional",
		"professionalId": profID,
		"exp":            exp.Unix(),
	})
}

func adminToken(t *testing.T, exp time.Time) string {
	return signToken(t, jwt.MapClaims{
		"userId":   1,
		"userType": "admin",
		"exp":      exp.Unix(),
	})
}

// newTestPortal wires a token-mode portal around backend.
func newTestPortal(backend *mockBackend, creds *mockCreds) *Portal {
	return NewPortal(backend, NewTokenStrategy(creds), NewMessages(English), zap.NewNop())
}

// loggedIn returns a portal with an active session for token.
func loggedIn(t *testing.T, backend *mockBackend, token string) (*Portal, *mockCreds) {
	t.Helper()
	creds := &mockCreds{value: token}
	p := newTestPortal(backend, creds)
	if _, err := p.Router.Start(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !p.Router.View().Authenticated() {
		t.Fatalf("expected dashboard, got %s", p.Router.View())
	}
	return p, creds
}
