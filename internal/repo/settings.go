package repo

import (
	"context"

	"github.com/quotewatch/quote-watch/internal/entity"
	"gorm.io/gorm"
)

type SettingsRepo interface {
	Brokers(ctx context.Context) ([]entity.Broker, error)
	BrokerServers(ctx context.Context) ([]entity.BrokerServer, error)
	BrokerInstruments(ctx context.Context) ([]entity.BrokerInstrument, error)
	Instruments(ctx context.Context) ([]entity.Instrument, error)
	EventTypes(ctx context.Context) ([]entity.EventType, error)
	Sessions(ctx context.Context) ([]entity.Session, error)
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &settingsRepo{
		db: db,
	}
}

func (r *settingsRepo) Brokers(ctx context.Context) ([]entity.Broker, error) {
	var brokers []entity.Broker
	err := r.db.WithContext(ctx).Find(&brokers).Error
	if err != nil {
		return nil, err
	}
	return brokers, nil
}

func (r *settingsRepo) BrokerServers(ctx context.Context) ([]entity.BrokerServer, error) {
	var servers []entity.BrokerServer
	err := r.db.WithContext(ctx).Find(&servers).Error
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func (r *settingsRepo) BrokerInstruments(ctx context.Context) ([]entity.BrokerInstrument, error) {
	var instruments []entity.BrokerInstrument
	err := r.db.WithContext(ctx).Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

func (r *settingsRepo) Instruments(ctx context.Context) ([]entity.Instrument, error) {
	var instruments []entity.Instrument
	err := r.db.WithContext(ctx).Find(&instruments).Error
	if err != nil {
		return nil, err
	}
	return instruments, nil
}

func (r *settingsRepo) EventTypes(ctx context.Context) ([]entity.EventType, error) {
	var types []entity.EventType
	err := r.db.WithContext(ctx).Find(&types).Error
	if err != nil {
		return nil, err
	}
	return types, nil
}

func (r *settingsRepo) Sessions(ctx context.Context) ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.WithContext(ctx).Order("weekday, `index`").Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
