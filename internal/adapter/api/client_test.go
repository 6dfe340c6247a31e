package api_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"wellmatch/internal/adapter/api"
	adapthttp "wellmatch/internal/adapter/http"
	"wellmatch/internal/adapter/memory"
	"wellmatch/internal/devapi"
	"wellmatch/internal/domain"
)

type staticToken struct{ token string }

func (s *staticToken) Credential() string { return s.token }

type backend struct {
	ts   *httptest.Server
	db   *memory.DB
	demo *devapi.Demo
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	db := memory.New()
	auth := devapi.NewAuthService(db, db.NewRevocationRepo(), []byte("test-secret"), time.Hour)
	demo, err := devapi.SeedDemo(context.Background(), auth, db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(adapthttp.New(auth, db, db, zap.NewNop(), adapthttp.Options{}).Handler())
	t.Cleanup(ts.Close)
	return &backend{ts: ts, db: db, demo: demo}
}

// tokenClient logs in as email and returns a bearer client holding the token.
func tokenClient(t *testing.T, b *backend, email string) *api.Client {
	t.Helper()
	src := &staticToken{}
	c, err := api.New(b.ts.URL, zap.NewNop(), api.WithBearer(src))
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Login(context.Background(), domain.Credentials{Email: email, Password: devapi.DemoPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	src.token = res.Token
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	if _, err := api.New("localhost:5000", zap.NewNop()); err == nil {
		t.Fatal("expected error for relative url")
	}
}

func TestLogin_Token(t *testing.T) {
	b := newBackend(t)
	c, err := api.New(b.ts.URL, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}

	res, err := c.Login(context.Background(), domain.Credentials{Email: devapi.DemoProfessionalEmail, Password: devapi.DemoPassword})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
	if res.Identity.Role != domain.RoleProfessional || res.Identity.UserID != b.demo.Professional.ID {
		t.Errorf("unexpected identity %+v", res.Identity)
	}
	if res.Identity.ProfessionalID == nil || *res.Identity.ProfessionalID != *b.demo.Professional.ProfessionalID {
		t.Errorf("unexpected professional id %v", res.Identity.ProfessionalID)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	b := newBackend(t)
	c, _ := api.New(b.ts.URL, zap.NewNop())

	_, err := c.Login(context.Background(), domain.Credentials{Email: devapi.DemoAdminEmail, Password: "nope"})
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message == "" {
		t.Errorf("unexpected api error %+v", apiErr)
	}
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Error("expected ErrUnauthorized match")
	}
}

func TestCookieMode_WhoAmI(t *testing.T) {
	b := newBackend(t)
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := api.New(b.ts.URL, zap.NewNop(), api.WithCookieJar(jar))
	ctx := context.Background()

	if _, err := c.WhoAmI(ctx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized before login, got %v", err)
	}

	if _, err := c.Login(ctx, domain.Credentials{Email: devapi.DemoProfessionalEmail, Password: devapi.DemoPassword}); err != nil {
		t.Fatalf("login: %v", err)
	}
	id, err := c.WhoAmI(ctx)
	if err != nil {
		t.Fatalf("who am i: %v", err)
	}
	if id.Role != domain.RoleProfessional || id.ProfessionalID == nil || *id.ProfessionalID != *b.demo.Professional.ProfessionalID {
		t.Errorf("unexpected identity %+v", id)
	}

	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := c.WhoAmI(ctx); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestWhoAmI_BareProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 7, "full_name": "Dana"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	c, _ := api.New(ts.URL, zap.NewNop())
	id, err := c.WhoAmI(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if id.Role != domain.RoleProfessional || id.ProfessionalID == nil || *id.ProfessionalID != 7 {
		t.Errorf("unexpected identity %+v", id)
	}
}

func TestBearerMissing(t *testing.T) {
	b := newBackend(t)
	c, _ := api.New(b.ts.URL, zap.NewNop(), api.WithBearer(&staticToken{}))

	_, err := c.FetchProfile(context.Background())
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error without a token, got %v", err)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	b := newBackend(t)
	c := tokenClient(t, b, devapi.DemoProfessionalEmail)
	ctx := context.Background()

	ref, err := c.FetchReference(ctx)
	if err != nil {
		t.Fatalf("reference: %v", err)
	}
	if len(ref.Professions) == 0 || len(ref.Regions) == 0 {
		t.Fatalf("expected reference data, got %+v", ref)
	}

	p, err := c.FetchProfile(ctx)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.FullName != "Dana Levi" {
		t.Errorf("expected Dana Levi, got %q", p.FullName)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	url, err := c.UploadImage(ctx, "me.jpg", &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	p, _ = c.FetchProfile(ctx)
	if p.ProfileImageURL != url {
		t.Errorf("expected image %q, got %q", url, p.ProfileImageURL)
	}
}

func TestQuestionnaires_DecodeEmbeddedStrings(t *testing.T) {
	b := newBackend(t)
	c := tokenClient(t, b, devapi.DemoProfessionalEmail)

	rs, err := c.Questionnaires(context.Background())
	if err != nil {
		t.Fatalf("questionnaires: %v", err)
	}
	if len(rs) != 1 {
		t.Fatalf("expected 1 response, got %d", len(rs))
	}
	if len(rs[0].Questions) != 3 || rs[0].Answers["q_2"] != "Yes" {
		t.Errorf("questions/answers not decoded: %+v", rs[0])
	}
}

func TestAdminFlow(t *testing.T) {
	b := newBackend(t)
	c := tokenClient(t, b, devapi.DemoAdminEmail)
	ctx := context.Background()

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalDisputedReviews != 1 || stats.TotalDisputedQuestionnaires != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	if err := c.ResolveReviewDispute(ctx, b.demo.DisputedReview.ID, domain.StatusRejected); err != nil {
		t.Fatalf("resolve review: %v", err)
	}
	err = c.ResolveReviewDispute(ctx, b.demo.DisputedReview.ID, domain.StatusRejected)
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict {
		t.Errorf("expected conflict on second resolve, got %v", err)
	}

	disputed, err := c.DisputedQuestionnaires(ctx)
	if err != nil || len(disputed) != 1 {
		t.Fatalf("disputed questionnaires: %v %d", err, len(disputed))
	}
	if err := c.ResolveQuestionnaireDispute(ctx, disputed[0].ID, disputed[0].ProfessionalID, domain.StatusPublished); err != nil {
		t.Fatalf("resolve questionnaire: %v", err)
	}

	tpl := domain.Template{
		Name:        "Intake",
		Description: "First contact",
		Questions:   []domain.Question{{ID: "q_1", Text: "Why now?", Type: domain.QuestionTextarea}},
	}
	if err := c.CreateTemplate(ctx, tpl); err != nil {
		t.Fatalf("create template: %v", err)
	}
	templates, err := c.Templates(ctx)
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	if len(templates) != 1 || len(templates[0].Questions) != 1 || templates[0].Questions[0].Text != "Why now?" {
		t.Fatalf("unexpected templates %+v", templates)
	}

	if err := c.SendQuestionnaire(ctx, domain.SendRequest{
		ClientUserID:    b.demo.Client.ID,
		ProfessionalID:  *b.demo.Professional.ProfessionalID,
		QuestionnaireID: templates[0].ID,
	}); err != nil {
		t.Fatalf("send: %v", err)
	}
	sent, err := c.SentQuestionnaires(ctx)
	if err != nil || len(sent) != 1 {
		t.Fatalf("sent: %v %d", err, len(sent))
	}
}
