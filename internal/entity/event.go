package entity

import (
	"time"
)

// Event 异常事件
type Event struct {
	Id           int64 `gorm:"primaryKey;autoIncrement"`
	BrokerId     int64 `gorm:"index:event_key_idx"`
	InstrumentId int64 `gorm:"index:event_key_idx"` // 0 for broker-level events
	TypeId       int64 `gorm:"index:event_key_idx"`
	RaiseTime    time.Time
	ReleaseTime  *time.Time
	Data         string // detector diagnostic payload, json
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EventPrice snapshot of one broker's quote at event transition time.
type EventPrice struct {
	Id             int64 `gorm:"primaryKey;autoIncrement"`
	EventId        int64 `gorm:"index"`
	BrokerId       int64
	InstrumentId   int64
	Bid            string
	Ask            string
	Used           bool
	BrokerDatetime time.Time
	SystemDatetime time.Time
}
