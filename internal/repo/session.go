package repo

import (
	"context"

	"github.com/quotewatch/quote-watch/internal/entity"
	"gorm.io/gorm"
)

type SessionRepo interface {
	// Replace swaps all stored intervals for the (broker, instrument, type)
	// key of the given rows. Rows must share the same key.
	Replace(ctx context.Context, rows []entity.Session) error
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return &sessionRepo{
		db: db,
	}
}

func (r *sessionRepo) Replace(ctx context.Context, rows []entity.Session) error {
	if len(rows) == 0 {
		return nil
	}
	key := rows[0]
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("broker_id = ? AND instrument_id = ? AND type = ?",
			key.BrokerId, key.InstrumentId, key.Type).
			Delete(&entity.Session{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&rows).Error
	})
}
