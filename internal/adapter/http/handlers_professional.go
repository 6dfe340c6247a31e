package adapthttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wellmatch/internal/devapi"
	"wellmatch/internal/domain"
)

const imageField = "profileImage"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// professionalID is only called behind requireRole(RoleProfessional).
func professionalID(r *http.Request) int64 {
	return *claimsFrom(r.Context()).ProfessionalID
}

// meBody is the profile plus the identity fields used by cookie clients to
// probe who they are.
type meBody struct {
	domain.ProfileDraft
	UserID         int64       `json:"user_id"`
	UserType       domain.Role `json:"user_type"`
	ProfessionalID int64       `json:"professional_id"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	switch {
	case c.UserType == domain.RoleAdmin:
		writeJSON(w, http.StatusOK, map[string]any{"user_id": c.UserID, "user_type": c.UserType})
		return
	case c.UserType != domain.RoleProfessional || c.ProfessionalID == nil:
		writeError(w, http.StatusForbidden, errors.New("forbidden"))
		return
	}

	p, err := s.store.Profile(r.Context(), *c.ProfessionalID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meBody{
		ProfileDraft:   p,
		UserID:         c.UserID,
		UserType:       c.UserType,
		ProfessionalID: *c.ProfessionalID,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	ref, err := s.store.Reference(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var u domain.ProfileUpdate
	if err := parseJSON(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := s.store.UpdateProfile(r.Context(), professionalID(r), u)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Availability domain.Availability `json:"availability"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.SetAvailability(r.Context(), professionalID(r), body.Availability); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Availability updated."})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid upload: %w", err))
		return
	}
	file, _, err := r.FormFile(imageField)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing %s: %w", imageField, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported image type %s", contentType))
		return
	}

	name := uuid.NewString() + ext
	if err := s.uploads.SaveUpload(r.Context(), devapi.Upload{Name: name, ContentType: contentType, Data: data}); err != nil {
		s.writeStoreError(w, err)
		return
	}
	url := "/uploads/" + name
	if err := s.store.SetImage(r.Context(), professionalID(r), url); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.log.Info("image uploaded", zap.Int64("professional_id", professionalID(r)), zap.Int("bytes", len(data)))
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, err := s.uploads.GetUpload(r.Context(), r.PathValue("name"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if u == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", u.ContentType)
	http.ServeContent(w, r, u.Name, time.Time{}, bytes.NewReader(u.Data))
}

func (s *Server) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ReviewsFor(r.Context(), professionalID(r), domain.StatusPending)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleActOnReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Action domain.ReviewAction `json:"action"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := body.Action.Target()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.ActOnReview(r.Context(), professionalID(r), id, to); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review " + string(to) + "."})
}

// responseBody sends questions and answers as JSON encoded strings, the way
// the stored rows hold them.
type responseBody struct {
	domain.QuestionnaireResponse
	Questions string `json:"questions"`
	Answers   string `json:"answers"`
}

func newResponseBodies(rs []domain.QuestionnaireResponse) ([]responseBody, error) {
	out := make([]responseBody, 0, len(rs))
	for _, r := range rs {
		qs := r.Questions
		if qs == nil {
			qs = []domain.Question{}
		}
		q, err := json.Marshal(qs)
		if err != nil {
			return nil, err
		}
		answers := r.Answers
		if answers == nil {
			answers = domain.Answers{}
		}
		a, err := json.Marshal(map[string]string(answers))
		if err != nil {
			return nil, err
		}
		out = append(out, responseBody{QuestionnaireResponse: r, Questions: string(q), Answers: string(a)})
	}
	return out, nil
}

func (s *Server) writeResponses(w http.ResponseWriter, rs []domain.QuestionnaireResponse, err error) {
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	out, err := newResponseBodies(rs)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleQuestionnaires(w http.ResponseWriter, r *http.Request) {
	rs, err := s.store.ResponsesFor(r.Context(), professionalID(r), domain.StatusPending)
	s.writeResponses(w, rs, err)
}

func (s *Server) handleActOnQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		Action   domain.ReviewAction `json:"action"`
		Response string              `json:"response"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := body.Action.Target()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	reply := strings.TrimSpace(body.Response)
	if err := s.store.ActOnResponse(r.Context(), professionalID(r), id, to, reply); err != nil {
		s.writeStoreError(w, err)
		return
	}
	msg := "Questionnaire published."
	if to == domain.StatusDisputed {
		msg = "Questionnaire sent to admin review."
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleLogContact(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ClientAnonymousID string `json:"client_anonymous_id"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	code := strings.TrimSpace(body.ClientAnonymousID)
	if code == "" {
		writeError(w, http.StatusBadRequest, errors.New("client_anonymous_id is required"))
		return
	}
	if err := s.store.LogContact(r.Context(), professionalID(r), code); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Contact logged. A follow-up questionnaire will be sent."})
}
