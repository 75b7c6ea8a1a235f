package forum

import (
	"context"

	"gorm.io/gorm"

	apperrors "github.com/emilythestrangee/askme/backend/internal/errors"
)

// Recompute rebuilds the cached rating of one target from its ledger and
// returns it. CastVote already does this inside its own transaction; the
// exported form repairs a rating after out-of-band ledger edits.
func (s *Service) Recompute(ctx context.Context, kind TargetKind, targetID uint) (int, error) {
	l, err := ledgerFor(kind)
	if err != nil {
		return 0, err
	}

	var rating int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(l.model()).Where("id = ?", targetID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NotFoundError(string(kind) + " not found").WithContext("id", targetID)
		}
		sum, err := recompute(tx, l, targetID)
		rating = sum
		return err
	})
	if err != nil {
		return 0, storageError("failed to recompute rating", err)
	}
	return rating, nil
}

// recompute writes sum(value) over the target's ledger rows, 0 when there
// are none, to the target's rating column.
func recompute(tx *gorm.DB, l ledger, targetID uint) (int, error) {
	var sum int64
	row := tx.Table(l.votesTable).
		Select("COALESCE(SUM(value), 0)").
		Where(l.targetColumn+" = ?", targetID).
		Row()
	if err := row.Scan(&sum); err != nil {
		return 0, err
	}

	err := tx.Model(l.model()).Where("id = ?", targetID).UpdateColumn("rating", sum).Error
	if err != nil {
		return 0, err
	}
	return int(sum), nil
}
