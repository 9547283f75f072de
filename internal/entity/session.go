package entity

// Session 单个交易时段区间
// Start/End are ms offsets from UTC midnight, already split so that
// no interval crosses a day boundary.
type Session struct {
	Id           int64  `gorm:"primaryKey;autoIncrement"`
	BrokerId     int64  `gorm:"index:session_key_idx"`
	InstrumentId int64  `gorm:"index:session_key_idx"`
	Type         string `gorm:"index:session_key_idx"` // quote / trade
	Weekday      int    // 0-6, UTC
	Index        int
	Start        int64 // ms of day, inclusive
	End          int64 // ms of day, inclusive
}
