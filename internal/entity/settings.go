package entity

// Broker 行情源经纪商
type Broker struct {
	Id             int64 `gorm:"primaryKey"`
	Name           string
	GmtOffset      int64 // ms added to broker tick time to get GMT
	Running        int64 // bitmask of tracked detector type ids
	StoppedMaxTime int64 // ms, 0 = stopped-broker detection disabled
}

type BrokerServer struct {
	Id         int64  `gorm:"primaryKey;autoIncrement"`
	BrokerId   int64  `gorm:"index"`
	ServerName string `gorm:"uniqueIndex"`
}

type BrokerInstrument struct {
	Id             int64  `gorm:"primaryKey;autoIncrement"`
	BrokerId       int64  `gorm:"uniqueIndex:broker_instrument_idx"`
	InstrumentName string `gorm:"uniqueIndex:broker_instrument_idx"`
	InstrumentId   int64  `gorm:"index"`
	Coeff          float64
}

// Instrument thresholds, zero value means the corresponding
// detector is disabled for this instrument.
type Instrument struct {
	Id                int64 `gorm:"primaryKey"`
	Name              string
	DelayPercent      float64
	FrozenTime        int64 // ms
	SpreadMultiplier  float64
	StoppedMaxTime    int64 // ms
	StoppedMaxTimeOwn int64 // ms
}

type EventType struct {
	Id       int64 `gorm:"primaryKey"`
	TypeName string
}
