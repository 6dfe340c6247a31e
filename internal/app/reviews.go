package app

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"wellmatch/internal/domain"
)

// Action keys of the professional's review panels.
const (
	ActionReviewsLoad        = "reviews:load"
	ActionQuestionnairesLoad = "questionnaires:load"
)

// ReviewKey is the per-item action key of a pending review.
func ReviewKey(id int64) string { return fmt.Sprintf("review:%d", id) }

// QuestionnaireKey is the per-item action key of a questionnaire response.
func QuestionnaireKey(id int64) string { return fmt.Sprintf("questionnaire:%d", id) }

// ReviewDesk lists the professional's pending reviews and publishes or
// disputes them. Acted-on reviews leave the list locally.
type ReviewDesk struct {
	*desk
	api     domain.ReviewAPI
	pending []domain.Review
}

// NewReviewDesk creates the pending reviews panel.
func NewReviewDesk(auth Authorizer, api domain.ReviewAPI, msgs Messages, log *zap.Logger) *ReviewDesk {
	return &ReviewDesk{desk: newDesk(auth, msgs, log, "reviews"), api: api}
}

// Load fetches the pending list.
func (r *ReviewDesk) Load(ctx context.Context) error {
	return r.run(ctx, ActionReviewsLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := r.api.PendingReviews(ctx)
		if err != nil {
			return nil, err
		}
		return func() { r.pending = list }, nil
	})
}

// Pending returns the visible pending reviews.
func (r *ReviewDesk) Pending() []domain.Review {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.pending)
}

// Act publishes or disputes review id. Other reviews stay actionable while
// it is in flight.
func (r *ReviewDesk) Act(ctx context.Context, id int64, action domain.ReviewAction) error {
	if _, err := action.Target(); err != nil {
		return r.fail(err, MsgGeneric)
	}
	if !r.visible(id) {
		return r.fail(domain.ErrNotFound, MsgNotFound)
	}

	return r.run(ctx, ReviewKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		if err := r.api.ActOnReview(ctx, id, action); err != nil {
			return nil, err
		}
		return func() {
			r.pending = slices.DeleteFunc(r.pending, func(rv domain.Review) bool { return rv.ID == id })
			r.succeed(MsgReviewUpdated, id)
		}, nil
	})
}

func (r *ReviewDesk) visible(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.ContainsFunc(r.pending, func(rv domain.Review) bool { return rv.ID == id })
}

// Reset forgets the list.
func (r *ReviewDesk) Reset() { r.reset(func() { r.pending = nil }) }

// QuestionnaireDesk lists completed questionnaires about the professional
// and lets them publish or dispute each with an optional public response.
type QuestionnaireDesk struct {
	*desk
	api       domain.ReviewAPI
	responses []domain.QuestionnaireResponse
}

// NewQuestionnaireDesk creates the questionnaire responses panel.
func NewQuestionnaireDesk(auth Authorizer, api domain.ReviewAPI, msgs Messages, log *zap.Logger) *QuestionnaireDesk {
	return &QuestionnaireDesk{desk: newDesk(auth, msgs, log, "questionnaires"), api: api}
}

// Load fetches the responses awaiting action.
func (q *QuestionnaireDesk) Load(ctx context.Context) error {
	return q.run(ctx, ActionQuestionnairesLoad, MsgLoadFailed, func(ctx context.Context) (func(), error) {
		list, err := q.api.Questionnaires(ctx)
		if err != nil {
			return nil, err
		}
		return func() { q.responses = list }, nil
	})
}

// Responses returns the visible responses.
func (q *QuestionnaireDesk) Responses() []domain.QuestionnaireResponse {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.responses)
}

// Answers returns the question and answer pairs of response id. Missing
// answers carry the localized placeholder.
func (q *QuestionnaireDesk) Answers(id int64) ([]domain.QAPair, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	i := slices.IndexFunc(q.responses, func(r domain.QuestionnaireResponse) bool { return r.ID == id })
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	pairs := q.responses[i].Pairs()
	for j := range pairs {
		if !pairs[j].Answered {
			pairs[j].Answer = q.msgs.Text(MsgNoAnswer)
		}
	}
	return pairs, nil
}

// Act publishes or disputes response id.
func (q *QuestionnaireDesk) Act(ctx context.Context, id int64, action domain.ReviewAction, response string) error {
	if _, err := action.Target(); err != nil {
		return q.fail(err, MsgGeneric)
	}

	return q.run(ctx, QuestionnaireKey(id), MsgGeneric, func(ctx context.Context) (func(), error) {
		msg, err := q.api.ActOnQuestionnaire(ctx, id, action, response)
		if err != nil {
			return nil, err
		}
		return func() {
			q.responses = slices.DeleteFunc(q.responses, func(r domain.QuestionnaireResponse) bool { return r.ID == id })
			q.succeedWith(msg, MsgStatusUpdated)
		}, nil
	})
}

// Reset forgets the list.
func (q *QuestionnaireDesk) Reset() { q.reset(func() { q.responses = nil }) }
