package app

import (
	"errors"
	"fmt"

	"wellmatch/internal/domain"
)

// Locale selects the language of user-facing messages.
type Locale string

const (
	Hebrew  Locale = "he"
	English Locale = "en"
)

// MessageKey names a catalog entry.
type MessageKey string

const (
	MsgLoginFailed         MessageKey = "login_failed"
	MsgRegisterFailed      MessageKey = "register_failed"
	MsgRegistered          MessageKey = "registered"
	MsgAwaitingApproval    MessageKey = "awaiting_approval"
	MsgSessionExpired      MessageKey = "session_expired"
	MsgMalformedToken      MessageKey = "malformed_token"
	MsgNotProfessional     MessageKey = "not_professional"
	MsgAccessRestricted    MessageKey = "access_restricted"
	MsgUnauthorized        MessageKey = "unauthorized"
	MsgNetwork             MessageKey = "network"
	MsgGeneric             MessageKey = "generic"
	MsgBusy                MessageKey = "busy"
	MsgNotFound            MessageKey = "not_found"
	MsgLoadFailed          MessageKey = "load_failed"
	MsgProfileSaved        MessageKey = "profile_saved"
	MsgProfileSaveFailed   MessageKey = "profile_save_failed"
	MsgAvailabilitySaved   MessageKey = "availability_saved"
	MsgImageUploaded       MessageKey = "image_uploaded"
	MsgReviewUpdated       MessageKey = "review_updated"
	MsgStatusUpdated       MessageKey = "status_updated"
	MsgContactLogged       MessageKey = "contact_logged"
	MsgTemplateSaved       MessageKey = "template_saved"
	MsgQuestionnaireSent   MessageKey = "questionnaire_sent"
	MsgSettingsSaved       MessageKey = "settings_saved"
	MsgNoAnswer            MessageKey = "no_answer"
	MsgProfessionalMissing MessageKey = "professional_missing"
)

var catalog = map[Locale]map[MessageKey]string{
	Hebrew: {
		MsgLoginFailed:         "התחברות נכשלה.",
		MsgRegisterFailed:      "ההרשמה נכשלה.",
		MsgRegistered:          "ההרשמה הושלמה בהצלחה, אנא התחבר.",
		MsgAwaitingApproval:    "ההרשמה התקבלה וממתינה לאישור מנהל.",
		MsgSessionExpired:      "פג תוקף ההתחברות, אנא התחבר מחדש.",
		MsgMalformedToken:      "אסימון לא תקין, אנא התחבר מחדש.",
		MsgNotProfessional:     "התחברת בהצלחה אך חשבונך אינו מוגדר כמטפל.",
		MsgAccessRestricted:    "הגישה מוגבלת למטפלים ולמנהלים בלבד.",
		MsgUnauthorized:        "אין הרשאה, אנא התחבר מחדש.",
		MsgNetwork:             "שגיאה ברשת או בשרת.",
		MsgGeneric:             "הפעולה נכשלה.",
		MsgBusy:                "הפעולה כבר מתבצעת.",
		MsgNotFound:            "הנתיב לא נמצא (404). ודא שה-API בשרת מעודכן.",
		MsgLoadFailed:          "שגיאה בטעינת הנתונים.",
		MsgProfileSaved:        "הפרופיל עודכן בהצלחה!",
		MsgProfileSaveFailed:   "שגיאה בעדכון הפרופיל.",
		MsgAvailabilitySaved:   "הזמינות עודכנה בהצלחה.",
		MsgImageUploaded:       "התמונה הועלתה בהצלחה.",
		MsgReviewUpdated:       "ביקורת %d עודכנה בהצלחה.",
		MsgStatusUpdated:       "הסטטוס עודכן בהצלחה.",
		MsgContactLogged:       "הדיווח התקבל בהצלחה.",
		MsgTemplateSaved:       "התבנית נשמרה.",
		MsgQuestionnaireSent:   "השאלון נשלח.",
		MsgSettingsSaved:       "ההגדרות נשמרו.",
		MsgNoAnswer:            "(לא סופקה תשובה)",
		MsgProfessionalMissing: "שגיאה בטעינת נתוני מטפל. נסה להתחבר מחדש.",
	},
	English: {
		MsgLoginFailed:         "Login failed.",
		MsgRegisterFailed:      "Registration failed.",
		MsgRegistered:          "Registration complete. Please log in.",
		MsgAwaitingApproval:    "Registration received and awaiting admin approval.",
		MsgSessionExpired:      "Your session has expired, please log in again.",
		MsgMalformedToken:      "Invalid token, please log in again.",
		MsgNotProfessional:     "Logged in, but your account is not configured as a professional.",
		MsgAccessRestricted:    "Access restricted to professionals and admins.",
		MsgUnauthorized:        "Not authorized, please log in again.",
		MsgNetwork:             "Network or server error.",
		MsgGeneric:             "The action failed.",
		MsgBusy:                "The action is already in progress.",
		MsgNotFound:            "Route not found (404). Make sure the server API is up to date.",
		MsgLoadFailed:          "Failed to load data.",
		MsgProfileSaved:        "Profile updated successfully!",
		MsgProfileSaveFailed:   "Failed to update the profile.",
		MsgAvailabilitySaved:   "Availability updated.",
		MsgImageUploaded:       "Image uploaded.",
		MsgReviewUpdated:       "Review %d updated.",
		MsgStatusUpdated:       "Status updated.",
		MsgContactLogged:       "Contact logged.",
		MsgTemplateSaved:       "Template saved.",
		MsgQuestionnaireSent:   "Questionnaire sent.",
		MsgSettingsSaved:       "Settings saved.",
		MsgNoAnswer:            "(no answer provided)",
		MsgProfessionalMissing: "Failed to load professional data. Try logging in again.",
	},
}

var validationText = map[Locale]map[string]string{
	Hebrew: {
		domain.CodeCredentialsRequired: "יש להזין אימייל וסיסמה.",
		domain.CodeFullNameRequired:    "יש למלא שם מלא.",
		domain.CodePasswordMismatch:    "הסיסמאות אינן תואמות.",
		domain.CodePasswordTooShort:    "הסיסמה חייבת להכיל לפחות 6 תווים.",
		domain.CodeInvalidSpecialty:    "התמחות אינה תקפה למקצוע שנבחר.",
		domain.CodeCityRequired:        "יש להזין עיר.",
		domain.CodeInvalidRegion:       "אזור לא תקין.",
		domain.CodeInvalidSlot:         "יום או משבצת זמן לא תקינים.",
		domain.CodeInvalidAgeRange:     "טווח גילאים לא תקין.",
		domain.CodeTemplateName:        "חובה למלא שם תבנית.",
		domain.CodeTemplateQuestions:   "חובה להוסיף לפחות שאלה אחת.",
		domain.CodeSendSelection:       "חובה לבחור לקוח, מטפל ותבנית.",
		domain.CodeContactCode:         "יש להזין את קוד הזיהוי האנונימי של המטופל.",
		domain.CodeDelayDays:           "מספר הימים חייב להיות בין 1 ל-365.",
		domain.CodeImageCrop:           "אזור החיתוך חורג מגבולות התמונה.",
		domain.CodeProfileNotLoaded:    "הפרופיל עדיין לא נטען, נסה לרענן.",
	},
	English: {
		domain.CodeCredentialsRequired: "Please enter both email and password.",
		domain.CodeFullNameRequired:    "Full name is required.",
		domain.CodePasswordMismatch:    "Passwords do not match.",
		domain.CodePasswordTooShort:    "Password must be at least 6 characters.",
		domain.CodeInvalidSpecialty:    "Specialty does not belong to the selected profession.",
		domain.CodeCityRequired:        "City is required.",
		domain.CodeInvalidRegion:       "Unknown region.",
		domain.CodeInvalidSlot:         "Unknown day or time slot.",
		domain.CodeInvalidAgeRange:     "Invalid age range.",
		domain.CodeTemplateName:        "Template name is required.",
		domain.CodeTemplateQuestions:   "Add at least one question.",
		domain.CodeSendSelection:       "Select a client, a professional and a template.",
		domain.CodeContactCode:         "Enter the client's anonymous id.",
		domain.CodeDelayDays:           "Delay must be between 1 and 365 days.",
		domain.CodeImageCrop:           "Crop area is outside the image.",
		domain.CodeProfileNotLoaded:    "The profile has not loaded yet. Reload it and try again.",
	},
}

// Messages renders catalog entries in one locale.
type Messages struct {
	locale Locale
}

// NewMessages returns a catalog for l, falling back to Hebrew.
func NewMessages(l Locale) Messages {
	if _, ok := catalog[l]; !ok {
		l = Hebrew
	}
	return Messages{locale: l}
}

// Text formats the entry for key.
func (m Messages) Text(key MessageKey, args ...any) string {
	s, ok := catalog[m.locale][key]
	if !ok {
		s = string(key)
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// ForError converts err into a user-facing message. Server-provided text is
// shown verbatim; fallback is used when nothing more specific applies.
func (m Messages) ForError(err error, fallback MessageKey) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		if s, ok := validationText[m.locale][ve.Code]; ok {
			return s
		}
		return m.Text(fallback)
	}

	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return m.Text(MsgSessionExpired)
	case errors.Is(err, domain.ErrMalformedCredential):
		return m.Text(MsgMalformedToken)
	case errors.Is(err, domain.ErrMissingProfessionalID):
		return m.Text(MsgNotProfessional)
	case errors.Is(err, domain.ErrAccessRestricted):
		return m.Text(MsgAccessRestricted)
	case errors.Is(err, domain.ErrBusy):
		return m.Text(MsgBusy)
	case errors.Is(err, domain.ErrNoSession):
		return m.Text(MsgUnauthorized)
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Message != "":
			return apiErr.Message
		case errors.Is(apiErr, domain.ErrUnauthorized):
			return m.Text(MsgUnauthorized)
		case errors.Is(apiErr, domain.ErrNotFound):
			return m.Text(MsgNotFound)
		}
		return m.Text(fallback)
	}

	var te *domain.TransportError
	if errors.As(err, &te) {
		return m.Text(MsgNetwork)
	}
	return m.Text(fallback)
}

// NoticeKind distinguishes success and error notices.
type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
)

// Notice is a dismissible inline message.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Empty reports whether there is nothing to show.
func (n Notice) Empty() bool { return n.Kind == NoticeNone || n.Text == "" }

func successNotice(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }

func errorNotice(text string) Notice { return Notice{Kind: NoticeError, Text: text} }
