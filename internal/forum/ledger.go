package forum

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/metrics"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

// TargetKind is the kind of entity a vote refers to.
type TargetKind string

const (
	TargetQuestion TargetKind = "question"
	TargetAnswer   TargetKind = "answer"
)

// Direction is the user-facing vote choice.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down", case-insensitively.
func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case Up, Down:
		return d, nil
	default:
		return "", apperrors.ValidationError("vote direction must be up or down").
			WithFields(map[string]string{"direction": "direction must be up or down"})
	}
}

// Value maps the direction to its ledger value; 0 for an unknown direction.
func (d Direction) Value() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	default:
		return 0
	}
}

// Ballot is one vote submission.
type Ballot struct {
	TargetID  uint
	Kind      TargetKind
	Direction Direction
}

// VoteOutcome describes what a cast did to the ledger.
type VoteOutcome string

const (
	VoteCreated VoteOutcome = "created"
	VoteFlipped VoteOutcome = "flipped"
	// VoteUnchanged is a repeated identical vote. It is a success, not a conflict.
	VoteUnchanged VoteOutcome = "unchanged"
)

type VoteResult struct {
	TargetID uint        `json:"target_id"`
	Kind     TargetKind  `json:"kind"`
	Value    int         `json:"value"`
	Rating   int         `json:"rating"`
	Outcome  VoteOutcome `json:"outcome"`
}

// ratedRow is the part of a question or answer row the ledger needs.
type ratedRow struct {
	ID     uint
	Rating int
}

// ledger describes where votes and the cached rating of one target kind live.
type ledger struct {
	kind         TargetKind
	votesTable   string
	targetColumn string
	model        func() any
	vote         func(userID, targetID uint, value int, now time.Time) any
}

var ledgers = map[TargetKind]ledger{
	TargetQuestion: {
		kind:         TargetQuestion,
		votesTable:   "question_votes",
		targetColumn: "question_id",
		model:        func() any { return &models.Question{} },
		vote: func(userID, targetID uint, value int, now time.Time) any {
			return &models.QuestionVote{UserID: userID, QuestionID: targetID, Value: value, CreatedAt: now, UpdatedAt: now}
		},
	},
	TargetAnswer: {
		kind:         TargetAnswer,
		votesTable:   "answer_votes",
		targetColumn: "answer_id",
		model:        func() any { return &models.Answer{} },
		vote: func(userID, targetID uint, value int, now time.Time) any {
			return &models.AnswerVote{UserID: userID, AnswerID: targetID, Value: value, CreatedAt: now, UpdatedAt: now}
		},
	},
}

func ledgerFor(kind TargetKind) (ledger, error) {
	l, ok := ledgers[kind]
	if !ok {
		return ledger{}, apperrors.ValidationError("unknown vote target kind").WithContext("kind", string(kind))
	}
	return l, nil
}

// CastQuestionVote records voterID's vote on a question.
func (s *Service) CastQuestionVote(ctx context.Context, voterID, questionID uint, d Direction) (*VoteResult, error) {
	return s.CastVote(ctx, voterID, Ballot{TargetID: questionID, Kind: TargetQuestion, Direction: d})
}

// CastAnswerVote records voterID's vote on an answer.
func (s *Service) CastAnswerVote(ctx context.Context, voterID, answerID uint, d Direction) (*VoteResult, error) {
	return s.CastVote(ctx, voterID, Ballot{TargetID: answerID, Kind: TargetAnswer, Direction: d})
}

// CastVote creates, flips or keeps the single ledger row for (voter, target)
// and recomputes the target's rating in the same transaction. Repeating the
// current vote leaves the ledger and rating untouched. Voting on one's own
// content is allowed.
func (s *Service) CastVote(ctx context.Context, voterID uint, b Ballot) (*VoteResult, error) {
	if err := requireUser(voterID, "vote"); err != nil {
		return nil, err
	}
	l, err := ledgerFor(b.Kind)
	if err != nil {
		return nil, err
	}
	value := b.Direction.Value()
	if value == 0 {
		_, err := ParseDirection(string(b.Direction))
		return nil, err
	}

	result := VoteResult{TargetID: b.TargetID, Kind: b.Kind, Value: value}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target ratedRow
		// Concurrent votes on one target queue on this row lock, so each
		// recompute below sees every vote committed before it.
		err := forUpdate(tx.Model(l.model())).Select("id", "rating").Where("id = ?", b.TargetID).Take(&target).Error
		if isNotFound(err) {
			return apperrors.NotFoundError(string(l.kind) + " not found").WithContext("id", b.TargetID)
		}
		if err != nil {
			return err
		}

		var previous []int
		err = tx.Table(l.votesTable).
			Where("user_id = ? AND "+l.targetColumn+" = ?", voterID, b.TargetID).
			Limit(1).
			Pluck("value", &previous).Error
		if err != nil {
			return err
		}

		switch {
		case len(previous) == 0:
			result.Outcome = VoteCreated
		case previous[0] == value:
			result.Outcome = VoteUnchanged
			result.Rating = target.Rating
			return nil
		default:
			result.Outcome = VoteFlipped
		}

		// The unique (user_id, target) index decides between insert and
		// update, so a racing first vote by the same user cannot add a row.
		now := s.clock.Now().UTC()
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: l.targetColumn}},
			DoUpdates: clause.Assignments(map[string]any{"value": value, "updated_at": now}),
		}).Create(l.vote(voterID, b.TargetID, value, now)).Error
		if err != nil {
			return err
		}

		result.Rating, err = recompute(tx, l, b.TargetID)
		return err
	})
	if err != nil {
		return nil, storageError("failed to record vote", err)
	}

	metrics.VotesTotal.WithLabelValues(string(b.Kind), string(result.Outcome)).Inc()
	s.log.Debug().
		Uint("voter_id", voterID).
		Str("kind", string(b.Kind)).
		Uint("target_id", b.TargetID).
		Int("value", value).
		Str("outcome", string(result.Outcome)).
		Int("rating", result.Rating).
		Msg("vote cast")

	return &result, nil
}
