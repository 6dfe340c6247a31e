package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"wellmatch/internal/adapter/api"
	adapthttp "wellmatch/internal/adapter/http"
	"wellmatch/internal/adapter/memory"
	"wellmatch/internal/app"
	"wellmatch/internal/cli"
	"wellmatch/internal/devapi"
)

type fixture struct {
	url   string
	demo  *devapi.Demo
	creds *memory.CredentialStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	auth := devapi.NewAuthService(db, db.NewRevocationRepo(), []byte("test-secret"), time.Hour)
	demo, err := devapi.SeedDemo(context.Background(), auth, db)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ts := httptest.NewServer(adapthttp.New(auth, db, db, zap.NewNop(), adapthttp.Options{}).Handler())
	t.Cleanup(ts.Close)
	return &fixture{url: ts.URL, demo: demo, creds: memory.NewCredentialStore()}
}

// run feeds script to a fresh token-mode portal and returns everything it
// printed.
func (f *fixture) run(t *testing.T, script ...string) string {
	t.Helper()
	log := zap.NewNop()
	strategy := app.NewTokenStrategy(f.creds)
	client, err := api.New(f.url, log, api.WithBearer(strategy))
	if err != nil {
		t.Fatal(err)
	}
	portal := app.NewPortal(client, strategy, app.NewMessages(app.English), log)

	var out bytes.Buffer
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	sh := cli.New(portal, in, &out, log, cli.WithTempDir(t.TempDir()))
	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("run: %v\n%s", err, out.String())
	}
	return out.String()
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

func TestShell_AnonymousStartShowsLogin(t *testing.T) {
	f := newFixture(t)
	out := f.run(t, "help", "stats", "quit")

	assertContains(t, out, "== loading ==", "== login ==", "commands in login view", `unknown command "stats" in login view`)
	if strings.Contains(out, "dashboard") {
		t.Errorf("expected no dashboard without a session:\n%s", out)
	}
}

func TestShell_LoginFailureAndUsage(t *testing.T) {
	f := newFixture(t)
	out := f.run(t,
		"login "+devapi.DemoAdminEmail,
		"login "+devapi.DemoAdminEmail+" wrong-password",
	)

	assertContains(t, out, "usage: login <email> <password>", "[!] ")
	if strings.Contains(out, "admin dashboard") {
		t.Errorf("expected to stay logged out:\n%s", out)
	}
}

func TestShell_AdminSession(t *testing.T) {
	f := newFixture(t)
	out := f.run(t,
		"login "+devapi.DemoAdminEmail+" "+devapi.DemoPassword,
		"disputes",
		fmt.Sprintf("resolve %d rejected", f.demo.DisputedReview.ID),
		"pros",
		fmt.Sprintf("verify %d on", *f.demo.Professional.ProfessionalID),
		"template new Intake|First contact",
		"question add rating How was it?",
		"template save",
		"templates",
		"settings set questionnaire_delay_days 0",
		"logout",
	)

	assertContains(t, out,
		"== admin dashboard ==",
		"disputed reviews",
		"Never showed up.",
		"Dana Levi",
		"q_1 [rating] How was it?",
		"[ok] Template saved.",
		"Intake",
		"[!] ",
		"== login ==",
	)
}

func TestShell_ProfessionalSession(t *testing.T) {
	f := newFixture(t)

	dir := t.TempDir()
	photo := filepath.Join(dir, "me.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(photo, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	out := f.run(t,
		"login "+devapi.DemoProfessionalEmail+" "+devapi.DemoPassword,
		fmt.Sprintf("review %d publish", f.demo.PendingReview.ID),
		"answers",
		"set bio Art therapy for teens",
		"age add 12 18",
		"save",
		"photo "+photo+" 0 0 5 5",
		"contact "+f.demo.Client.AnonymousID,
		"reload",
	)

	assertContains(t, out,
		"== professional dashboard ==",
		"Dana Levi: 1 pending reviews, 1 questionnaires awaiting you",
		fmt.Sprintf("[ok] Review %d updated.", f.demo.PendingReview.ID),
		"Q: How satisfied were you with the first session?",
		"(no answer provided)",
		"[ok] Profile updated successfully!",
		"[ok] Image uploaded.",
		"[ok] Contact logged.",
		"Art therapy for teens",
		"12-18",
		"/uploads/",
	)
}

func TestShell_ResumesStoredSession(t *testing.T) {
	f := newFixture(t)
	f.run(t, "login "+devapi.DemoAdminEmail+" "+devapi.DemoPassword)

	stored, _ := f.creds.Load(context.Background())
	if stored == "" {
		t.Fatal("expected the token to be persisted")
	}

	out := f.run(t, "stats", "logout")
	assertContains(t, out, "== admin dashboard ==", "== login ==")
	if stored, _ := f.creds.Load(context.Background()); stored != "" {
		t.Error("expected logout to clear the stored token")
	}
}
