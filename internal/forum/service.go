// Package forum implements the voting, ranking and listing core of the
// question-and-answer forum. Every mutating operation runs inside a single
// database transaction; cached ratings are recomputed from the vote ledger
// before the transaction commits.
package forum

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
)

// Anonymous is the user ID of an unauthenticated caller.
const Anonymous uint = 0

// DefaultMaxTags caps the tags of one question when Options leaves it unset.
const DefaultMaxTags = 5

type Options struct {
	MaxTags int
	Clock   clockwork.Clock
	Logger  zerolog.Logger
}

type Service struct {
	db       *gorm.DB
	clock    clockwork.Clock
	log      zerolog.Logger
	validate *validator.Validate
	maxTags  int
}

func New(db *gorm.DB, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = DefaultMaxTags
	}
	return &Service{
		db:       db,
		clock:    opts.Clock,
		log:      opts.Logger.With().Str("component", "forum").Logger(),
		validate: newValidator(),
		maxTags:  opts.MaxTags,
	}
}

// forUpdate locks the selected rows until the transaction ends. SQLite has
// no row locks and serializes writers on its own, so the clause is only
// added for PostgreSQL.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// storageError keeps structured errors raised inside a transaction and
// wraps everything else as internal.
func storageError(message string, err error) error {
	var structured *apperrors.Error
	if errors.As(err, &structured) {
		return structured
	}
	return apperrors.InternalError(message, err)
}

func requireUser(userID uint, action string) error {
	if userID == Anonymous {
		return apperrors.PermissionDenied("you must be logged in to " + action)
	}
	return nil
}
