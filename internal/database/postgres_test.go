package database_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/emilythestrangee/askme/backend/internal/database"
	"github.com/emilythestrangee/askme/backend/internal/forum"
	"github.com/emilythestrangee/askme/backend/internal/models"
	"github.com/emilythestrangee/askme/backend/internal/testutil"
)

var pgService database.Service

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	// Start PostgreSQL container once for all tests
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("askme"),
		postgres.WithUsername("askme"),
		postgres.WithPassword("askme"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "postgres container unavailable, integration tests will skip: %v\n", err)
		os.Exit(m.Run())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get connection string: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	pgService, err = database.New(connStr, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to test database: %v\n", err)
		_ = container.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	_ = pgService.Close()
	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to terminate postgres container: %v\n", err)
	}
	os.Exit(code)
}

// setupPostgres returns the shared database and truncates every table after the test.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if pgService == nil {
		t.Skip("postgres container not available")
	}

	db := pgService.GetDB()
	t.Cleanup(func() {
		err := db.Exec("TRUNCATE users, tags, questions, question_tags, answers, question_votes, answer_votes RESTART IDENTITY CASCADE").Error
		if err != nil {
			t.Logf("Failed to truncate tables: %v", err)
		}
	})
	return db
}

func TestPostgres_Health(t *testing.T) {
	setupPostgres(t)
	assert.Equal(t, "up", pgService.Health(context.Background())["status"])
}

func TestPostgres_ConcurrentVotesKeepRatingEqualToLedger(t *testing.T) {
	db := setupPostgres(t)
	svc := forum.New(db, forum.Options{})
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	q := testutil.CreateQuestion(t, db, author, "Race", testutil.Epoch)

	const voters = 24
	users := make([]models.User, voters)
	for i := range users {
		users[i] = testutil.CreateUser(t, db, fmt.Sprintf("voter%02d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, voters*2)
	for i, u := range users {
		wg.Add(1)
		go func(i int, u models.User) {
			defer wg.Done()
			first, second := forum.Up, forum.Down
			if i%3 == 0 {
				second = forum.Up
			}
			if _, err := svc.CastQuestionVote(ctx, u.ID, q.ID, first); err != nil {
				errs <- err
				return
			}
			if _, err := svc.CastQuestionVote(ctx, u.ID, q.ID, second); err != nil {
				errs <- err
			}
		}(i, u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var stored models.Question
	require.NoError(t, db.Take(&stored, q.ID).Error)

	var sum int64
	require.NoError(t, db.Model(&models.QuestionVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("question_id = ?", q.ID).
		Row().Scan(&sum))

	var rows int64
	require.NoError(t, db.Model(&models.QuestionVote{}).Where("question_id = ?", q.ID).Count(&rows).Error)

	// 8 voters end up, 16 end down.
	assert.Equal(t, int64(voters), rows)
	assert.Equal(t, int64(8-16), sum)
	assert.Equal(t, int(sum), stored.Rating)
}

func TestPostgres_ConcurrentFirstVotesBySameUser(t *testing.T) {
	db := setupPostgres(t)
	svc := forum.New(db, forum.Options{})
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	voter := testutil.CreateUser(t, db, "voter")
	q := testutil.CreateQuestion(t, db, author, "Double click", testutil.Epoch)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CastQuestionVote(ctx, voter.ID, q.ID, forum.Up)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var rows int64
	require.NoError(t, db.Model(&models.QuestionVote{}).Where("question_id = ?", q.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	var stored models.Question
	require.NoError(t, db.Take(&stored, q.ID).Error)
	assert.Equal(t, 1, stored.Rating)
}

func TestPostgres_ConcurrentMarkCorrect(t *testing.T) {
	db := setupPostgres(t)
	svc := forum.New(db, forum.Options{})
	ctx := context.Background()

	author := testutil.CreateUser(t, db, "author")
	q := testutil.CreateQuestion(t, db, author, "Pick one", testutil.Epoch)
	answers := make([]models.Answer, 6)
	for i := range answers {
		answers[i] = testutil.CreateAnswer(t, db, q, author, fmt.Sprintf("answer %d", i), testutil.Epoch)
	}

	var wg sync.WaitGroup
	for _, a := range answers {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.MarkCorrect(ctx, q.ID, id, author.ID)
			assert.NoError(t, err)
		}(a.ID)
	}
	wg.Wait()

	var correct int64
	require.NoError(t, db.Model(&models.Answer{}).
		Where("question_id = ? AND is_correct = ?", q.ID, true).
		Count(&correct).Error)
	assert.Equal(t, int64(1), correct)
}

func TestPostgres_DuplicateUserTranslatesToConflict(t *testing.T) {
	db := setupPostgres(t)
	testutil.CreateUser(t, db, "taken")

	err := db.Create(&models.User{Username: "taken", Email: "new@example.com", Password: "x"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
