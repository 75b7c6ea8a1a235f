package forum

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
	"github.com/emilythestrangee/askme/backend/internal/models"
	"github.com/emilythestrangee/askme/backend/internal/testutil"
)

const testMaxTags = 3

func newTestService(t *testing.T) (*Service, *gorm.DB, *clockwork.FakeClock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := clockwork.NewFakeClockAt(testutil.Epoch)
	svc := New(db, Options{MaxTags: testMaxTags, Clock: clock, Logger: zerolog.Nop()})
	return svc, db, clock
}

func requireErrorType(t *testing.T, err error, want apperrors.ErrorType) *apperrors.Error {
	t.Helper()
	require.Error(t, err)
	structured := apperrors.AsStructuredError(err)
	require.Equal(t, want, structured.Type, "unexpected error: %v", err)
	return structured
}

// assertQuestionRating checks the cached rating and that it equals the ledger sum.
func assertQuestionRating(t *testing.T, db *gorm.DB, questionID uint, want int) {
	t.Helper()

	var q models.Question
	require.NoError(t, db.Take(&q, questionID).Error)

	var sum int64
	require.NoError(t, db.Model(&models.QuestionVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("question_id = ?", questionID).
		Row().Scan(&sum))

	assert.Equal(t, want, q.Rating, "cached rating")
	assert.Equal(t, int64(q.Rating), sum, "cached rating must equal ledger sum")
}

func assertAnswerRating(t *testing.T, db *gorm.DB, answerID uint, want int) {
	t.Helper()

	var a models.Answer
	require.NoError(t, db.Take(&a, answerID).Error)

	var sum int64
	require.NoError(t, db.Model(&models.AnswerVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("answer_id = ?", answerID).
		Row().Scan(&sum))

	assert.Equal(t, want, a.Rating, "cached rating")
	assert.Equal(t, int64(a.Rating), sum, "cached rating must equal ledger sum")
}

func TestNew_Defaults(t *testing.T) {
	svc := New(nil, Options{})

	assert.Equal(t, DefaultMaxTags, svc.maxTags)
	assert.NotNil(t, svc.clock)
	assert.NotNil(t, svc.validate)
}

func TestRequireUser(t *testing.T) {
	requireErrorType(t, requireUser(Anonymous, "vote"), apperrors.TypePermission)
	assert.NoError(t, requireUser(7, "vote"))
}

func TestStorageError(t *testing.T) {
	notFound := apperrors.NotFoundError("question not found")
	assert.Same(t, notFound, storageError("ignored", notFound))

	wrapped := storageError("failed to record vote", context.DeadlineExceeded)
	requireErrorType(t, wrapped, apperrors.TypeInternal)
	assert.ErrorIs(t, wrapped, context.DeadlineExceeded)
}
