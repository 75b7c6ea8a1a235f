// Package testutil provides an in-process SQLite database and fixtures for
// package tests that do not need a PostgreSQL container.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/emilythestrangee/askme/backend/internal/database"
	"github.com/emilythestrangee/askme/backend/internal/models"
)

// TestPassword is the plaintext password of every user created by CreateUser.
const TestPassword = "correct-horse"

// Epoch is a fixed reference time for fake clocks.
var Epoch = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// SetupTestDB opens a fresh migrated SQLite database in a temp directory.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "forum.db")
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), database.Config(zerolog.Nop()))
	require.NoError(t, err, "failed to open sqlite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hash),
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// CreateQuestion inserts a question directly, bypassing validation.
func CreateQuestion(t *testing.T, db *gorm.DB, author models.User, title string, createdAt time.Time, tags ...string) models.Question {
	t.Helper()

	q := models.Question{
		Title:     title,
		Slug:      title,
		Body:      "body of " + title,
		AuthorID:  author.ID,
		CreatedAt: createdAt,
	}
	for _, title := range tags {
		tag := models.Tag{Title: title}
		require.NoError(t, db.Where(models.Tag{Title: title}).FirstOrCreate(&tag).Error)
		q.Tags = append(q.Tags, tag)
	}
	require.NoError(t, db.Create(&q).Error)
	return q
}

// CreateAnswer inserts an answer by author directly.
func CreateAnswer(t *testing.T, db *gorm.DB, question models.Question, author models.User, body string, createdAt time.Time) models.Answer {
	t.Helper()

	a := models.Answer{
		QuestionID: question.ID,
		AuthorID:   &author.ID,
		Body:       body,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Create(&a).Error)
	return a
}
