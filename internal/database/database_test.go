package database_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/askme/backend/internal/database"
	"github.com/emilythestrangee/askme/backend/internal/models"
	"github.com/emilythestrangee/askme/backend/internal/testutil"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{"users", "tags", "questions", "question_tags", "answers", "question_votes", "answer_votes"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s", table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.QuestionVote{}, "idx_question_votes_user_target"))
	assert.True(t, db.Migrator().HasIndex(&models.AnswerVote{}, "idx_answer_votes_user_target"))
	assert.True(t, db.Migrator().HasIndex(&models.Answer{}, "idx_answers_one_correct"))
}

func TestVoteUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	author := testutil.CreateUser(t, db, "author")
	q := testutil.CreateQuestion(t, db, author, "Unique", testutil.Epoch)

	require.NoError(t, db.Create(&models.QuestionVote{UserID: author.ID, QuestionID: q.ID, Value: 1}).Error)
	err := db.Create(&models.QuestionVote{UserID: author.ID, QuestionID: q.ID, Value: -1}).Error
	assert.Error(t, err)
}

func TestUserUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CreateUser(t, db, "dup")

	err := db.Create(&models.User{Username: "dup", Email: "another@example.com", Password: "x"}).Error
	assert.Error(t, err)
}

func TestService_HealthAndClose(t *testing.T) {
	svc := database.Wrap(testutil.SetupTestDB(t), zerolog.Nop())

	stats := svc.Health(context.Background())
	assert.Equal(t, "up", stats["status"])
	assert.Contains(t, stats, "open_connections")
	assert.NotNil(t, svc.GetDB())

	require.NoError(t, svc.Close())
	stats = svc.Health(context.Background())
	assert.Equal(t, "down", stats["status"])
}

func TestConfig(t *testing.T) {
	cfg := database.Config(zerolog.Nop())
	assert.True(t, cfg.TranslateError)
	assert.Equal(t, "UTC", cfg.NowFunc().Location().String())
	assert.NotNil(t, cfg.Logger)
}
