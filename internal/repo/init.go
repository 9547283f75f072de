package repo

import (
	"github.com/quotewatch/quote-watch/internal/entity"
	"gorm.io/gorm"
)

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Broker{},
		&entity.BrokerServer{},
		&entity.BrokerInstrument{},
		&entity.Instrument{},
		&entity.EventType{},
		&entity.Session{},
		&entity.Event{},
		&entity.EventPrice{},
	)
}
