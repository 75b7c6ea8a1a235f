package forum

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/metrics"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

// MarkCorrect makes answerID the accepted answer of questionID. Only the
// question's author may do this. Any previously accepted answer is cleared
// in the same transaction, so readers never see two accepted answers.
// Marking the already-accepted answer again changes nothing.
func (s *Service) MarkCorrect(ctx context.Context, questionID, answerID, requesterID uint) (*models.Answer, error) {
	if err := requireUser(requesterID, "accept an answer"); err != nil {
		return nil, err
	}

	var answer models.Answer
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		err := forUpdate(tx).Select("id", "author_id").Take(&question, questionID).Error
		if isNotFound(err) {
			return apperrors.NotFoundError("question not found").WithContext("id", questionID)
		}
		if err != nil {
			return err
		}
		if question.AuthorID != requesterID {
			return apperrors.PermissionDenied("only the question author can accept an answer")
		}

		err = tx.Where("id = ? AND question_id = ?", answerID, questionID).Take(&answer).Error
		if isNotFound(err) {
			return apperrors.NotFoundError("answer not found for this question").
				WithContext("question_id", questionID).
				WithContext("answer_id", answerID)
		}
		if err != nil {
			return err
		}
		if answer.IsCorrect {
			return nil
		}

		// Clear first: the partial unique index allows one accepted answer
		// per question at any statement boundary.
		err = tx.Model(&models.Answer{}).
			Where("question_id = ? AND id <> ? AND is_correct = ?", questionID, answerID, true).
			UpdateColumn("is_correct", false).Error
		if err != nil {
			return err
		}
		if err := tx.Model(&answer).UpdateColumn("is_correct", true).Error; err != nil {
			return err
		}
		answer.IsCorrect = true
		changed = true
		return nil
	})
	if err != nil {
		return nil, storageError("failed to accept answer", err)
	}

	if changed {
		metrics.CorrectMarksTotal.Inc()
		s.log.Info().
			Uint("question_id", questionID).
			Uint("answer_id", answerID).
			Msg("answer accepted")
	}
	return &answer, nil
}
