package session

import (
	"sort"
	"time"

	"github.com/quotewatch/quote-watch/internal/entity"
)

// Message 交易时段更新消息
type Message struct {
	Server  string        `json:"server"`
	Account int64         `json:"account"`
	Symbol  string        `json:"symbol"`
	Type    WindowType    `json:"type"`
	Spans   []WeekdaySpan `json:"spans"`
}

// Table holds the session windows per (instrument, broker, window type).
// Not safe for concurrent use, the engine serializes access.
type Table struct {
	// windows[instrumentId][brokerId][type]
	windows map[int64]map[int64]map[WindowType]WeekHours
}

func NewTable() *Table {
	return &Table{
		windows: make(map[int64]map[int64]map[WindowType]WeekHours),
	}
}

func (t *Table) Set(instrumentId, brokerId int64, typ WindowType, hours WeekHours) {
	if _, ok := t.windows[instrumentId]; !ok {
		t.windows[instrumentId] = make(map[int64]map[WindowType]WeekHours)
	}
	if _, ok := t.windows[instrumentId][brokerId]; !ok {
		t.windows[instrumentId][brokerId] = make(map[WindowType]WeekHours)
	}
	t.windows[instrumentId][brokerId][typ] = hours
}

// IsActive reports whether the (broker, instrument) pair is currently
// inside its trade window. No configured window means inactive.
func (t *Table) IsActive(brokerId, instrumentId int64, now time.Time) bool {
	byBroker, ok := t.windows[instrumentId]
	if !ok {
		return false
	}
	byType, ok := byBroker[brokerId]
	if !ok {
		return false
	}
	hours, ok := byType[WindowTrade]
	if !ok {
		return false
	}

	u := now.UTC()
	timeOfDay := time.Duration(u.Hour())*time.Hour +
		time.Duration(u.Minute())*time.Minute +
		time.Duration(u.Second())*time.Second +
		time.Duration(u.Nanosecond())
	return hours.Contains(u.Weekday(), timeOfDay)
}

// Load replaces table contents from persisted rows.
func (t *Table) Load(rows []entity.Session) {
	t.windows = make(map[int64]map[int64]map[WindowType]WeekHours)
	for _, row := range rows {
		byBroker, ok := t.windows[row.InstrumentId]
		if !ok {
			byBroker = make(map[int64]map[WindowType]WeekHours)
			t.windows[row.InstrumentId] = byBroker
		}
		byType, ok := byBroker[row.BrokerId]
		if !ok {
			byType = make(map[WindowType]WeekHours)
			byBroker[row.BrokerId] = byType
		}
		hours, ok := byType[WindowType(row.Type)]
		if !ok {
			hours = WeekHours{}
			byType[WindowType(row.Type)] = hours
		}
		hours[time.Weekday(row.Weekday)] = append(hours[time.Weekday(row.Weekday)], Interval{
			Start: time.Duration(row.Start) * time.Millisecond,
			End:   time.Duration(row.End) * time.Millisecond,
		})
	}
}

// Rows flattens a week schedule into persistable rows.
func Rows(brokerId, instrumentId int64, typ WindowType, hours WeekHours) []entity.Session {
	weekdays := make([]int, 0, len(hours))
	for weekday := range hours {
		weekdays = append(weekdays, int(weekday))
	}
	sort.Ints(weekdays)

	var rows []entity.Session
	for _, weekday := range weekdays {
		for i, iv := range hours[time.Weekday(weekday)] {
			rows = append(rows, entity.Session{
				BrokerId:     brokerId,
				InstrumentId: instrumentId,
				Type:         string(typ),
				Weekday:      weekday,
				Index:        i,
				Start:        iv.Start.Milliseconds(),
				End:          iv.End.Milliseconds(),
			})
		}
	}
	return rows
}
