package repo

import (
	"context"
	"time"

	"github.com/quotewatch/quote-watch/internal/entity"
	"gorm.io/gorm"
)

type EventRepo interface {
	// Create inserts an open event together with its price snapshot
	// and returns the assigned event id.
	Create(ctx context.Context, event entity.Event, prices []entity.EventPrice) (int64, error)
	// Close sets the release time on the open event matching the
	// (broker, instrument, type, raise time) key and returns its id.
	Close(ctx context.Context, event entity.Event, releaseTime time.Time) (int64, error)
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return &eventRepo{
		db: db,
	}
}

func (r *eventRepo) Create(ctx context.Context, event entity.Event, prices []entity.EventPrice) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for i := range prices {
			prices[i].EventId = event.Id
		}
		if len(prices) == 0 {
			return nil
		}
		return tx.Create(&prices).Error
	})
	if err != nil {
		return 0, err
	}
	return event.Id, nil
}

func (r *eventRepo) Close(ctx context.Context, event entity.Event, releaseTime time.Time) (int64, error) {
	var id int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open entity.Event
		err := tx.
			Where("broker_id = ? AND instrument_id = ? AND type_id = ? AND raise_time = ? AND release_time IS NULL",
				event.BrokerId, event.InstrumentId, event.TypeId, event.RaiseTime).
			First(&open).Error
		if err != nil {
			return err
		}
		id = open.Id
		return tx.Model(&entity.Event{}).Where("id = ?", open.Id).
			Update("release_time", releaseTime).Error
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
