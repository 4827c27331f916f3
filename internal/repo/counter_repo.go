// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the guarded sequence used for
// identifier assignment.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-onboarding-backend/internal/domain"
)

// NextSequence allocates and returns the next 0-indexed value of the named
// counter: the first call for a key returns 0, the second 1, and so on.
//
// The row is upserted and then incremented with a relative UPDATE, so two
// transactions can never read the same value — the caller is expected to
// invoke this inside the transaction that also inserts the submission,
// which replaces the count-then-assign pattern the identifiers originally
// used.
func NextSequence(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	tx := db.WithContext(ctx)

	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Counter{Key: key, Value: 0}).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&domain.Counter{}).
		Where("key = ?", key).
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}

	var c domain.Counter
	if err := tx.First(&c, "key = ?", key).Error; err != nil {
		return 0, err
	}
	return c.Value - 1, nil
}
