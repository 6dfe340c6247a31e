package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"wellmatch/internal/app"
	"wellmatch/internal/domain"
)

const dateLayout = "2006-01-02 15:04"

// render draws the header of view and its current notice.
func (s *Shell) render(view app.View) {
	p := s.portal
	fmt.Fprintf(s.out, "\n== %s ==\n", title(view))
	switch view {
	case app.ViewLoading:
		fmt.Fprintln(s.out, "loading...")
		return
	case app.ViewLogin:
		fmt.Fprintln(s.out, "login <email> <password>   goto register   help")
	case app.ViewRegister:
		fmt.Fprintln(s.out, "register <full name>|<email>|<password>|<confirm>   goto login   help")
	case app.ViewProfessional:
		d := p.Profile.Draft()
		fmt.Fprintf(s.out, "%s: %d pending reviews, %d questionnaires awaiting you\n",
			d.FullName, len(p.Reviews.Pending()), len(p.Questionnaires.Responses()))
	case app.ViewAdmin:
		s.printStats(p.Moderation.Stats())
	}
	if n := s.last.Notice(); !n.Empty() {
		s.printNotice(n)
	}
}

func title(v app.View) string {
	switch v {
	case app.ViewProfessional:
		return "professional dashboard"
	case app.ViewAdmin:
		return "admin dashboard"
	}
	return string(v)
}

func (s *Shell) table() *tabwriter.Writer {
	return tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
}

func (s *Shell) printProfile() {
	d := s.portal.Profile.Draft()
	ref := s.portal.Profile.Reference()

	profession := "-"
	for _, pr := range ref.Professions {
		if pr.ID == d.ProfessionID {
			profession = fmt.Sprintf("%s (%d)", pr.Name, pr.ID)
		}
	}
	var specialties []string
	for _, sp := range ref.Specialties {
		if sp.ProfessionID != d.ProfessionID {
			continue
		}
		mark := " "
		for _, id := range d.SpecialtyIDs {
			if id == sp.ID {
				mark = "x"
			}
		}
		specialties = append(specialties, fmt.Sprintf("[%s] %d %s", mark, sp.ID, sp.Name))
	}

	w := s.table()
	fmt.Fprintf(w, "full_name\t%s\n", d.FullName)
	fmt.Fprintf(w, "bio\t%s\n", d.Bio)
	fmt.Fprintf(w, "phone_number\t%s\n", d.PhoneNumber)
	fmt.Fprintf(w, "years_of_practice\t%d\n", d.YearsOfPractice)
	fmt.Fprintf(w, "profession\t%s\n", profession)
	fmt.Fprintf(w, "specialties\t%s\n", strings.Join(specialties, ", "))
	fmt.Fprintf(w, "image\t%s\n", d.ProfileImageURL)
	for i, l := range d.Locations {
		fmt.Fprintf(w, "location %d\t%s, %s\n", i, l.City, l.Region)
	}
	for i, r := range d.AgeRanges {
		fmt.Fprintf(w, "ages %d\t%d-%d\n", i, r[0], r[1])
	}
	days := make([]string, 0, len(d.Availability))
	for day := range d.Availability {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		fmt.Fprintf(w, "%s\t%s\n", day, strings.Join(d.Availability[day], " "))
	}
	w.Flush()
}

func (s *Shell) printReviews(rs []domain.Review) {
	if len(rs) == 0 {
		fmt.Fprintln(s.out, "no reviews")
		return
	}
	w := s.table()
	fmt.Fprintln(w, "ID\tRATING\tCLIENT\tPROFESSIONAL\tDATE\tTEXT")
	for _, r := range rs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID, stars(r.Rating), r.ClientRef,
			orDash(r.ProfessionalName), r.CreatedAt.Local().Format(dateLayout), r.Text)
	}
	w.Flush()
}

func stars(n int) string {
	n = max(0, min(n, 5))
	return strings.Repeat("*", n) + strings.Repeat(".", 5-n)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// printResponses lists responses; answers, when given, supplies the
// question and answer pairs shown under each.
func (s *Shell) printResponses(rs []domain.QuestionnaireResponse, answers func(int64) ([]domain.QAPair, error)) {
	if len(rs) == 0 {
		fmt.Fprintln(s.out, "no questionnaires")
		return
	}
	for _, r := range rs {
		fmt.Fprintf(s.out, "#%d %s  client %s  %s\n", r.ID, r.TemplateName, r.ClientRef, r.SubmittedAt.Local().Format(dateLayout))
		if r.ProfessionalName != "" {
			fmt.Fprintf(s.out, "   professional: %s\n", r.ProfessionalName)
		}
		if r.TherapistResponse != "" {
			fmt.Fprintf(s.out, "   response: %s\n", r.TherapistResponse)
		}
		if answers == nil {
			continue
		}
		pairs, err := answers(r.ID)
		if err != nil {
			continue
		}
		for _, qa := range pairs {
			fmt.Fprintf(s.out, "   Q: %s\n   A: %s\n", qa.Question, qa.Answer)
		}
	}
}

func (s *Shell) printStats(st domain.Stats) {
	w := s.table()
	fmt.Fprintf(w, "users\t%d\n", st.TotalUsers)
	fmt.Fprintf(w, "professionals\t%d\n", st.TotalProfessionals)
	fmt.Fprintf(w, "pending reviews\t%d\n", st.TotalPendingReviews)
	fmt.Fprintf(w, "disputed reviews\t%d\n", st.TotalDisputedReviews)
	fmt.Fprintf(w, "disputed questionnaires\t%d\n", st.TotalDisputedQuestionnaires)
	w.Flush()
}

func (s *Shell) printProfessionals(ps []domain.ProfessionalSummary) {
	w := s.table()
	fmt.Fprintln(w, "ID\tNAME\tPROFESSION\tVIEWS\tSTATUS\tVERIFIED")
	for _, p := range ps {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%t\n", p.ID, p.FullName, orDash(p.Profession), p.Views, p.ActiveStatus, p.IsVerified)
	}
	w.Flush()
}

func (s *Shell) printUsers(us []domain.UserSummary) {
	w := s.table()
	fmt.Fprintln(w, "ID\tEMAIL\tTYPE\tCODE\tJOINED")
	for _, u := range us {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.UserType, orDash(u.AnonymousID), u.CreatedAt.Local().Format(time.DateOnly))
	}
	w.Flush()
}

func (s *Shell) printChart(points []domain.RegistrationPoint) {
	w := s.table()
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s %d\n", p.Date, strings.Repeat("#", p.Count), p.Count)
	}
	w.Flush()
}

func (s *Shell) printSettings(st domain.AutomationSettings) {
	w := s.table()
	fmt.Fprintf(w, "auto_send_questionnaires\t%t\n", st.AutoSendQuestionnaires)
	fmt.Fprintf(w, "questionnaire_delay_days\t%d\n", st.QuestionnaireDelayDays)
	fmt.Fprintf(w, "reminder_enabled\t%t\n", st.ReminderEnabled)
	w.Flush()
}

func (s *Shell) printTemplates(ts []domain.Template) {
	if len(ts) == 0 {
		fmt.Fprintln(s.out, "no questionnaires")
		return
	}
	w := s.table()
	fmt.Fprintln(w, "ID\tNAME\tQUESTIONS\tDESCRIPTION")
	for _, t := range ts {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", t.ID, t.Name, len(t.Questions), t.Description)
	}
	w.Flush()
}

func (s *Shell) printDraft() {
	d, ok := s.portal.Templates.Draft()
	if !ok {
		return
	}
	label := "new"
	if d.ID != 0 {
		label = fmt.Sprintf("#%d", d.ID)
	}
	fmt.Fprintf(s.out, "draft %s: %s\n", label, d.Name)
	for _, q := range d.Questions {
		line := fmt.Sprintf("  %s [%s] %s", q.ID, q.Type, q.Text)
		if len(q.Options) > 0 {
			line += " (" + strings.Join(q.Options, " / ") + ")"
		}
		fmt.Fprintln(s.out, line)
	}
}

func (s *Shell) printSent(sent []domain.SentQuestionnaire) {
	if len(sent) == 0 {
		fmt.Fprintln(s.out, "nothing sent")
		return
	}
	w := s.table()
	fmt.Fprintln(w, "ID\tQUESTIONNAIRE\tCLIENT\tPROFESSIONAL\tSTATUS\tSENT")
	for _, q := range sent {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", q.ID, q.TemplateName, q.ClientRef, q.ProfessionalName, q.Status, q.SentAt.Local().Format(dateLayout))
	}
	w.Flush()
}
