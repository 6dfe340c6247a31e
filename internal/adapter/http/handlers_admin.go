package adapthttp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

const chartDays = 30

type statusBody struct {
	NewStatus domain.ReviewStatus `json:"newStatus"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleRegistrationsChart(w http.ResponseWriter, r *http.Request) {
	points, err := s.store.Registrations(r.Context(), chartDays)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handlePendingAdmin(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Reviews(r.Context(), domain.StatusPending)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDisputedReviews(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Reviews(r.Context(), domain.StatusDisputed)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// reviewTransition handles the two admin review endpoints, which differ only
// in the status the review must currently hold.
func (s *Server) reviewTransition(w http.ResponseWriter, r *http.Request, from domain.ReviewStatus, check func(domain.ReviewStatus) error) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body statusBody
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := check(body.NewStatus); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.SetReviewStatus(r.Context(), id, from, body.NewStatus); err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.log.Info("review status changed", zap.Int64("review_id", id), zap.String("to", string(body.NewStatus)))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Review status updated."})
}

func (s *Server) handleModerateReview(w http.ResponseWriter, r *http.Request) {
	s.reviewTransition(w, r, domain.StatusPending, domain.CheckModeration)
}

func (s *Server) handleResolveReview(w http.ResponseWriter, r *http.Request) {
	s.reviewTransition(w, r, domain.StatusDisputed, domain.CheckResolution)
}

func (s *Server) handleDisputedQuestionnaires(w http.ResponseWriter, r *http.Request) {
	rs, err := s.store.Responses(r.Context(), domain.StatusDisputed)
	s.writeResponses(w, rs, err)
}

func (s *Server) handleResolveQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		NewStatus      domain.ReviewStatus `json:"newStatus"`
		ProfessionalID int64               `json:"professionalId"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := domain.CheckResolution(body.NewStatus); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.ResolveResponse(r.Context(), id, body.ProfessionalID, body.NewStatus); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Dispute resolved."})
}

func (s *Server) handleProfessionals(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Professionals(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleProfessionalStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		ActiveStatus string `json:"active_status"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.SetProfessionalStatus(r.Context(), id, body.ActiveStatus); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated."})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var body struct {
		IsVerified bool `json:"is_verified"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.VerifyProfessional(r.Context(), id, body.IsVerified); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Verification updated."})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Users(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings domain.AutomationSettings
	if err := parseJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.store.SaveSettings(r.Context(), settings); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Settings saved."})
}

// templateBody is a template as stored: questions travel as a JSON string.
type templateBody struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionsJSON string `json:"questions_json"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func (b templateBody) template() (domain.Template, error) {
	t := domain.Template{ID: b.ID, Name: b.Name, Description: b.Description}
	if b.QuestionsJSON != "" {
		if err := json.Unmarshal([]byte(b.QuestionsJSON), &t.Questions); err != nil {
			return domain.Template{}, fmt.Errorf("invalid questions_json: %w", err)
		}
	}
	return t, nil
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Templates(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	out := make([]templateBody, 0, len(items))
	for _, t := range items {
		q, err := json.Marshal(t.Questions)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		out = append(out, templateBody{
			ID:            t.ID,
			Name:          t.Name,
			Description:   t.Description,
			QuestionsJSON: string(q),
			CreatedAt:     t.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) decodeTemplate(r *http.Request) (domain.Template, error) {
	var body templateBody
	if err := parseJSON(r, &body); err != nil {
		return domain.Template{}, err
	}
	return body.template()
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.decodeTemplate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := s.store.CreateTemplate(r.Context(), t)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": created.ID, "message": "Questionnaire created."})
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := s.decodeTemplate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t.ID = id
	if err := s.store.UpdateTemplate(r.Context(), t); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Questionnaire updated."})
}

func (s *Server) handleSent(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Sent(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req domain.SendRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sent, err := s.store.Send(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": sent.ID, "message": "Questionnaire sent."})
}
