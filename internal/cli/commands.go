package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"wellmatch/internal/app"
	"wellmatch/internal/domain"
	"wellmatch/internal/imaging"
)

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

type handler func(ctx context.Context, s *Shell, args string) (noticer, error)

type command struct {
	name  string
	usage string
	views []app.View
	run   handler
}

var (
	loggedOut    = []app.View{app.ViewLogin, app.ViewRegister}
	dashboards   = []app.View{app.ViewProfessional, app.ViewAdmin}
	professional = []app.View{app.ViewProfessional}
	admin        = []app.View{app.ViewAdmin}
)

var commands = []command{
	{"login", "login <email> <password>", loggedOut, cmdLogin},
	{"register", "register <full name>|<email>|<password>|<confirm>", []app.View{app.ViewRegister}, cmdRegister},
	{"goto register", "goto register", []app.View{app.ViewLogin}, cmdGotoRegister},
	{"goto login", "goto login", []app.View{app.ViewRegister}, cmdGotoLogin},
	{"logout", "logout", dashboards, cmdLogout},

	{"profile", "profile", professional, cmdProfile},
	{"reload", "reload", professional, cmdReload},
	{"set", "set <field> <value>", professional, cmdSet},
	{"profession", "profession <id>", professional, cmdProfession},
	{"specialty", "specialty <id>", professional, cmdSpecialty},
	{"location add", "location add <city>|<region>", professional, cmdLocationAdd},
	{"location rm", "location rm <index>", professional, cmdLocationRemove},
	{"slot", "slot <day> <slot>", professional, cmdSlot},
	{"age add", "age add <min> <max>", professional, cmdAgeAdd},
	{"age rm", "age rm <index>", professional, cmdAgeRemove},
	{"save", "save", professional, cmdSave},
	{"save-availability", "save-availability", professional, cmdSaveAvailability},
	{"photo", "photo <path> [x y w h]", professional, cmdPhoto},
	{"reviews", "reviews", professional, cmdReviews},
	{"review", "review <id> publish|dispute", professional, cmdReview},
	{"answers", "answers", professional, cmdAnswers},
	{"answer", "answer <id> publish|dispute [response]", professional, cmdAnswer},
	{"contact", "contact <client code>", professional, cmdContact},

	{"stats", "stats", admin, cmdStats},
	{"pending", "pending", admin, cmdPending},
	{"moderate", "moderate <id> published|rejected", admin, cmdModerate},
	{"disputes", "disputes", admin, cmdDisputes},
	{"resolve", "resolve <id> published|rejected", admin, cmdResolve},
	{"qdisputes", "qdisputes", admin, cmdQDisputes},
	{"qresolve", "qresolve <id> published|rejected", admin, cmdQResolve},
	{"pros", "pros", admin, cmdPros},
	{"toggle", "toggle <professional id>", admin, cmdToggle},
	{"verify", "verify <professional id> on|off", admin, cmdVerify},
	{"users", "users", admin, cmdUsers},
	{"chart", "chart", admin, cmdChart},
	{"settings", "settings", admin, cmdSettings},
	{"settings set", "settings set <key> <value>", admin, cmdSettingsSet},
	{"settings save", "settings save", admin, cmdSettingsSave},
	{"templates", "templates", admin, cmdTemplates},
	{"template new", "template new <name>|<description>", admin, cmdTemplateNew},
	{"template edit", "template edit <id>", admin, cmdTemplateEdit},
	{"question add", "question add <text|textarea|radio|rating> <text>[|option|option...]", admin, cmdQuestionAdd},
	{"question rm", "question rm <question id>", admin, cmdQuestionRemove},
	{"template save", "template save", admin, cmdTemplateSave},
	{"sent", "sent", admin, cmdSent},
	{"send", "send <client user id> <professional id> <template id>", admin, cmdSend},
}

func lookup(view app.View, name string) (command, bool) {
	for _, c := range commands {
		if c.name == name && slices.Contains(c.views, view) {
			return c, true
		}
	}
	return command{}, false
}

func (s *Shell) help(view app.View) {
	fmt.Fprintf(s.out, "commands in %s view:\n", view)
	for _, c := range commands {
		if slices.Contains(c.views, view) {
			fmt.Fprintf(s.out, "  %s\n", c.usage)
		}
	}
	fmt.Fprintln(s.out, "  dismiss\n  help\n  quit")
}

// exactly splits args into n whitespace separated fields.
func exactly(args string, n int, usage string) ([]string, error) {
	f := strings.Fields(args)
	if len(f) != n {
		return nil, usageError(usage)
	}
	return f, nil
}

func parseID(s, usage string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, usageError(usage)
	}
	return n, nil
}

func parseIndex(s, usage string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, usageError(usage)
	}
	return n, nil
}

// idAnd parses "<id> <word>".
func idAnd(args, usage string) (int64, string, error) {
	f, err := exactly(args, 2, usage)
	if err != nil {
		return 0, "", err
	}
	id, err := parseID(f[0], usage)
	return id, f[1], err
}

// Logged-out views.

func cmdLogin(ctx context.Context, s *Shell, args string) (noticer, error) {
	f, err := exactly(args, 2, "login <email> <password>")
	if err != nil {
		return nil, err
	}
	return s.portal.Router, s.portal.Router.Login(ctx, domain.Credentials{Email: f[0], Password: f[1]})
}

func cmdRegister(ctx context.Context, s *Shell, args string) (noticer, error) {
	parts := strings.Split(args, "|")
	if len(parts) != 4 {
		return nil, usageError("register <full name>|<email>|<password>|<confirm>")
	}
	reg := domain.Registration{
		FullName: strings.TrimSpace(parts[0]),
		Email:    strings.TrimSpace(parts[1]),
		Password: parts[2],
		Confirm:  parts[3],
	}
	return s.portal.Router, s.portal.Router.Register(ctx, reg)
}

func cmdGotoRegister(_ context.Context, s *Shell, _ string) (noticer, error) {
	return s.portal.Router, s.portal.Router.ShowRegister()
}

func cmdGotoLogin(_ context.Context, s *Shell, _ string) (noticer, error) {
	return s.portal.Router, s.portal.Router.ShowLogin()
}

func cmdLogout(ctx context.Context, s *Shell, _ string) (noticer, error) {
	s.portal.Router.Logout(ctx)
	return s.portal.Router, nil
}

// Professional dashboard.

func cmdProfile(_ context.Context, s *Shell, _ string) (noticer, error) {
	s.printProfile()
	return s.portal.Profile, nil
}

// cmdReload fetches the profile again, discarding unsaved edits.
func cmdReload(ctx context.Context, s *Shell, _ string) (noticer, error) {
	if err := s.portal.Profile.Load(ctx); err != nil {
		return s.portal.Profile, err
	}
	s.printProfile()
	return s.portal.Profile, nil
}

func cmdSet(_ context.Context, s *Shell, args string) (noticer, error) {
	field, value, ok := strings.Cut(args, " ")
	if !ok {
		return nil, usageError("set <field> <value>")
	}
	return s.portal.Profile, s.portal.Profile.SetField(field, strings.TrimSpace(value))
}

func cmdProfession(_ context.Context, s *Shell, args string) (noticer, error) {
	id, err := parseID(strings.TrimSpace(args), "profession <id>")
	if err != nil {
		return nil, err
	}
	return s.portal.Profile, s.portal.Profile.SetProfession(id)
}

func cmdSpecialty(_ context.Context, s *Shell, args string) (noticer, error) {
	id, err := parseID(strings.TrimSpace(args), "specialty <id>")
	if err != nil {
		return nil, err
	}
	return s.portal.Profile, s.portal.Profile.ToggleSpecialty(id)
}

func cmdLocationAdd(_ context.Context, s *Shell, args string) (noticer, error) {
	city, region, ok := strings.Cut(args, "|")
	if !ok {
		return nil, usageError("location add <city>|<region>")
	}
	loc := domain.Location{City: strings.TrimSpace(city), Region: strings.TrimSpace(region)}
	return s.portal.Profile, s.portal.Profile.AddLocation(loc)
}

func cmdLocationRemove(_ context.Context, s *Shell, args string) (noticer, error) {
	i, err := parseIndex(args, "location rm <index>")
	if err != nil {
		return nil, err
	}
	return s.portal.Profile, s.portal.Profile.RemoveLocation(i)
}

func cmdSlot(_ context.Context, s *Shell, args string) (noticer, error) {
	f, err := exactly(args, 2, "slot <day> <slot>")
	if err != nil {
		return nil, err
	}
	return s.portal.Profile, s.portal.Profile.ToggleSlot(f[0], f[1])
}

func cmdAgeAdd(_ context.Context, s *Shell, args string) (noticer, error) {
	const usage = "age add <min> <max>"
	f, err := exactly(args, 2, usage)
	if err != nil {
		return nil, err
	}
	lo, err1 := strconv.Atoi(f[0])
	hi, err2 := strconv.Atoi(f[1])
	if err1 != nil || err2 != nil {
		return nil, usageError(usage)
	}
	return s.portal.Profile, s.portal.Profile.AddAgeRange(domain.AgeRange{lo, hi})
}

func cmdAgeRemove(_ context.Context, s *Shell, args string) (noticer, error) {
	i, err := parseIndex(args, "age rm <index>")
	if err != nil {
		return nil, err
	}
	return s.portal.Profile, s.portal.Profile.RemoveAgeRange(i)
}

func cmdSave(ctx context.Context, s *Shell, _ string) (noticer, error) {
	return s.portal.Profile, s.portal.Profile.Save(ctx)
}

func cmdSaveAvailability(ctx context.Context, s *Shell, _ string) (noticer, error) {
	return s.portal.Profile, s.portal.Profile.SaveAvailability(ctx)
}

func cmdPhoto(ctx context.Context, s *Shell, args string) (noticer, error) {
	const usage = "photo <path> [x y w h]"
	f := strings.Fields(args)
	if len(f) != 1 && len(f) != 5 {
		return nil, usageError(usage)
	}
	var rect *imaging.Rect
	if len(f) == 5 {
		var n [4]int
		for i, v := range f[1:] {
			x, err := strconv.Atoi(v)
			if err != nil {
				return nil, usageError(usage)
			}
			n[i] = x
		}
		rect = &imaging.Rect{X: n[0], Y: n[1], W: n[2], H: n[3]}
	}

	preview, err := imaging.NewPreview(s.tempDir, f[0], rect)
	if err != nil {
		return s.portal.Profile, err
	}
	fmt.Fprintf(s.out, "preview %s\n", preview.URL())
	return s.portal.Profile, s.portal.Profile.UploadImage(ctx, preview)
}

func cmdReviews(ctx context.Context, s *Shell, _ string) (noticer, error) {
	if err := s.portal.Reviews.Load(ctx); err != nil {
		return s.portal.Reviews, err
	}
	s.printReviews(s.portal.Reviews.Pending())
	return s.portal.Reviews, nil
}

func cmdReview(ctx context.Context, s *Shell, args string) (noticer, error) {
	id, action, err := idAnd(args, "review <id> publish|dispute")
	if err != nil {
		return nil, err
	}
	return s.portal.Reviews, s.portal.Reviews.Act(ctx, id, domain.ReviewAction(action))
}

func cmdAnswers(ctx context.Context, s *Shell, _ string) (noticer, error) {
	q := s.portal.Questionnaires
	if err := q.Load(ctx); err != nil {
		return q, err
	}
	s.printResponses(q.Responses(), q.Answers)
	return q, nil
}

func cmdAnswer(ctx context.Context, s *Shell, args string) (noticer, error) {
	const usage = "answer <id> publish|dispute [response]"
	f := strings.SplitN(args, " ", 3)
	if len(f) < 2 {
		return nil, usageError(usage)
	}
	id, err := parseID(f[0], usage)
	if err != nil {
		return nil, err
	}
	var response string
	if len(f) == 3 {
		response = strings.TrimSpace(f[2])
	}
	return s.portal.Questionnaires, s.portal.Questionnaires.Act(ctx, id, domain.ReviewAction(f[1]), response)
}

func cmdContact(ctx context.Context, s *Shell, args string) (noticer, error) {
	return s.portal.Contacts, s.portal.Contacts.Submit(ctx, args)
}

// Admin dashboard.

func cmdStats(ctx context.Context, s *Shell, _ string) (noticer, error) {
	m := s.portal.Moderation
	if err := m.LoadStats(ctx); err != nil {
		return m, err
	}
	s.printStats(m.Stats())
	return m, nil
}

func cmdPending(ctx context.Context, s *Shell, _ string) (noticer, error) {
	m := s.portal.Moderation
	if err := m.LoadPendingAdmin(ctx); err != nil {
		return m, err
	}
	s.printReviews(m.PendingAdmin())
	return m, nil
}

func cmdModerate(ctx context.Context, s *Shell, args string) (noticer, error) {
	id, status, err := idAnd(args, "moderate <id> published|rejected")
	if err != nil {
		return nil, err
	}
	return s.portal.Moderation, s.portal.Moderation.Moderate(ctx, id, domain.ReviewStatus(status))
}

func cmdDisputes(ctx context.Context, s *Shell, _ string) (noticer, error) {
	m := s.portal.Moderation
	if err := m.LoadDisputed(ctx); err != nil {
		return m, err
	}
	s.printReviews(m.Disputed())
	return m, nil
}

func cmdResolve(ctx context.Context, s *Shell, args string) (noticer, error) {
	id, status, err := idAnd(args, "resolve <id> published|rejected")
	if err != nil {
		return nil, err
	}
	return s.portal.Moderation, s.portal.Moderation.ResolveDispute(ctx, id, domain.ReviewStatus(status))
}

func cmdQDisputes(ctx context.Context, s *Shell, _ string) (noticer, error) {
	m := s.portal.Moderation
	if err := m.LoadQuestionnaireDisputes(ctx); err != nil {
		return m, err
	}
	s.printResponses(m.QuestionnaireDisputes(), nil)
	return m, nil
}

func cmdQResolve(ctx context.Context, s *Shell, args string) (noticer, error) {
	id, status, err := idAnd(args, "qresolve <id> published|rejected")
	if err != nil {
		return nil, err
	}
	return s.portal.Moderation, s.portal.Moderation.ResolveQuestionnaireDispute(ctx, id, domain.ReviewStatus(status))
}

func cmdPros(ctx context.Context, s *Shell, _ string) (noticer, error) {
	d := s.portal.Directory
	if err := d.LoadProfessionals(ctx); err != nil {
		return d, err
	}
	s.printProfessionals(d.Professionals())
	return d, nil
}

func cmdToggle(ctx context.Context, s *Shell, args string) (noticer, error) {
	id, err := parseID(strings.TrimSpace(args), "toggle <professional id>")
	if err != nil {
		return nil, err
	}
	return s.portal.Directory, s.portal.Directory.ToggleStatus(ctx, id)
}

func cmdVerify(ctx context.Context, s *Shell, args string) (noticer, error) {
	const usage = "verify <professional id> on|off"
	id, flag, err := idAnd(args, usage)
	if err != nil {
		return nil, err
	}
	if flag != "on" && flag != "off" {
		return nil, usageError(usage)
	}
	return s.portal.Directory, s.portal.Directory.Verify(ctx, id, flag == "on")
}

func cmdUsers(ctx context.Context, s *Shell, _ string) (noticer, error) {
	d := s.portal.Directory
	if err := d.LoadUsers(ctx); err != nil {
		return d, err
	}
	s.printUsers(d.Users())
	return d, nil
}

func cmdChart(ctx context.Context, s *Shell, _ string) (noticer, error) {
	m := s.portal.Moderation
	if err := m.LoadChart(ctx); err != nil {
		return m, err
	}
	s.printChart(m.Chart())
	return m, nil
}

func cmdSettings(ctx context.Context, s *Shell, _ string) (noticer, error) {
	st := s.portal.Settings
	if err := st.Load(ctx); err != nil {
		return st, err
	}
	s.printSettings(st.Settings())
	return st, nil
}

func cmdSettingsSet(_ context.Context, s *Shell, args string) (noticer, error) {
	f, err := exactly(args, 2, "settings set <key> <value>")
	if err != nil {
		return nil, err
	}
	if err := s.portal.Settings.Set(f[0], f[1]); err != nil {
		return s.portal.Settings, err
	}
	s.printSettings(s.portal.Settings.Settings())
	return s.portal.Settings, nil
}

func cmdSettingsSave(ctx context.Context, s *Shell, _ string) (noticer, error) {
	return s.portal.Settings, s.portal.Settings.Save(ctx)
}

func cmdTemplates(ctx context.Context, s *Shell, _ string) (noticer, error) {
	t := s.portal.Templates
	if err := t.Load(ctx); err != nil {
		return t, err
	}
	s.printTemplates(t.Templates())
	return t, nil
}

func cmdTemplateNew(_ context.Context, s *Shell, args string) (noticer, error) {
	name, desc, _ := strings.Cut(args, "|")
	if strings.TrimSpace(name) == "" {
		return nil, usageError("template new <name>|<description>")
	}
	s.portal.Templates.NewDraft(name, desc)
	s.printDraft()
	return s.portal.Templates, nil
}

func cmdTemplateEdit(_ context.Context, s *Shell, args string) (noticer, error) {
	id, err := parseID(strings.TrimSpace(args), "template edit <id>")
	if err != nil {
		return nil, err
	}
	if err := s.portal.Templates.EditTemplate(id); err != nil {
		return s.portal.Templates, err
	}
	s.printDraft()
	return s.portal.Templates, nil
}

func cmdQuestionAdd(_ context.Context, s *Shell, args string) (noticer, error) {
	const usage = "question add <text|textarea|radio|rating> <text>[|option|option...]"
	typ, rest, ok := strings.Cut(args, " ")
	if !ok {
		return nil, usageError(usage)
	}
	parts := strings.Split(rest, "|")
	var options []string
	for _, o := range parts[1:] {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}
	_, err := s.portal.Templates.AddQuestion(domain.QuestionType(typ), parts[0], options...)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, usageError("template new <name>|<description> first")
	}
	if err != nil {
		return s.portal.Templates, err
	}
	s.printDraft()
	return s.portal.Templates, nil
}

func cmdQuestionRemove(_ context.Context, s *Shell, args string) (noticer, error) {
	id := strings.TrimSpace(args)
	if id == "" {
		return nil, usageError("question rm <question id>")
	}
	s.portal.Templates.RemoveQuestion(id)
	s.printDraft()
	return s.portal.Templates, nil
}

func cmdTemplateSave(ctx context.Context, s *Shell, _ string) (noticer, error) {
	return s.portal.Templates, s.portal.Templates.SaveDraft(ctx)
}

func cmdSent(ctx context.Context, s *Shell, _ string) (noticer, error) {
	t := s.portal.Templates
	if err := t.LoadSent(ctx); err != nil {
		return t, err
	}
	s.printSent(t.Sent())
	return t, nil
}

func cmdSend(ctx context.Context, s *Shell, args string) (noticer, error) {
	const usage = "send <client user id> <professional id> <template id>"
	f, err := exactly(args, 3, usage)
	if err != nil {
		return nil, err
	}
	var ids [3]int64
	for i, v := range f {
		if ids[i], err = parseID(v, usage); err != nil {
			return nil, err
		}
	}
	req := domain.SendRequest{ClientUserID: ids[0], ProfessionalID: ids[1], QuestionnaireID: ids[2]}
	return s.portal.Templates, s.portal.Templates.Send(ctx, req)
}
