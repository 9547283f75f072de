package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quotewatch/quote-watch/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeSettingsRepo struct {
	brokers     []entity.Broker
	servers     []entity.BrokerServer
	mappings    []entity.BrokerInstrument
	instruments []entity.Instrument
	eventTypes  []entity.EventType
	sessions    []entity.Session
	brokersErr  error
}

func (f *fakeSettingsRepo) Brokers(ctx context.Context) ([]entity.Broker, error) {
	return f.brokers, f.brokersErr
}

func (f *fakeSettingsRepo) BrokerServers(ctx context.Context) ([]entity.BrokerServer, error) {
	return f.servers, nil
}

func (f *fakeSettingsRepo) BrokerInstruments(ctx context.Context) ([]entity.BrokerInstrument, error) {
	return f.mappings, nil
}

func (f *fakeSettingsRepo) Instruments(ctx context.Context) ([]entity.Instrument, error) {
	return f.instruments, nil
}

func (f *fakeSettingsRepo) EventTypes(ctx context.Context) ([]entity.EventType, error) {
	return f.eventTypes, nil
}

func (f *fakeSettingsRepo) Sessions(ctx context.Context) ([]entity.Session, error) {
	return f.sessions, nil
}

func fixtureRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{
		brokers: []entity.Broker{
			{Id: 1, Name: "Our", GmtOffset: 2 * time.Hour.Milliseconds(), Running: 63, StoppedMaxTime: 60000},
			{Id: 2, Name: "Peer", Running: 6},
		},
		servers: []entity.BrokerServer{
			{BrokerId: 1, ServerName: "our-live"},
			{BrokerId: 2, ServerName: "peer-live"},
		},
		mappings: []entity.BrokerInstrument{
			{BrokerId: 1, InstrumentName: "EURUSD.", InstrumentId: 7, Coeff: 1},
			{BrokerId: 2, InstrumentName: "EURUSD", InstrumentId: 7, Coeff: 1},
		},
		instruments: []entity.Instrument{
			{Id: 7, Name: "EURUSD", DelayPercent: 5, FrozenTime: 300000, SpreadMultiplier: 2, StoppedMaxTime: 60000, StoppedMaxTimeOwn: 30000},
		},
		eventTypes: []entity.EventType{
			{Id: 2, TypeName: "Delayed quote"},
		},
		sessions: []entity.Session{
			{BrokerId: 1, InstrumentId: 7, Type: "trade", Weekday: 1, Start: 0, End: 86399999},
		},
	}
}

func TestServiceLoad(t *testing.T) {
	svc := NewService(fixtureRepo())
	assert.NoError(t, svc.Load(context.Background()))

	snap := svc.Snapshot()
	assert.Equal(t, 2*time.Hour, snap.Brokers[1].GmtOffset)
	assert.Equal(t, time.Minute, snap.Brokers[1].StoppedMaxTime)

	inst := snap.Instruments[7]
	assert.True(t, inst.DelayPercent.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 5*time.Minute, inst.FrozenTime)
	assert.Equal(t, 30*time.Second, inst.StoppedMaxTimeOwn)

	assert.Equal(t, "Delayed quote", snap.EventTypes[2])
	assert.Len(t, snap.SessionRows, 1)
}

func TestSnapshotResolve(t *testing.T) {
	svc := NewService(fixtureRepo())
	assert.NoError(t, svc.Load(context.Background()))
	snap := svc.Snapshot()

	// broker-local symbol names resolve to the shared instrument id
	broker, instrumentId, ok := snap.Resolve("our-live", "EURUSD.")
	assert.True(t, ok)
	assert.Equal(t, int64(1), broker.Id)
	assert.Equal(t, int64(7), instrumentId)

	_, _, ok = snap.Resolve("our-live", "EURUSD")
	assert.False(t, ok)
	_, _, ok = snap.Resolve("unknown", "EURUSD")
	assert.False(t, ok)

	assert.True(t, snap.Tracks(2, "EURUSD"))
	assert.False(t, snap.Tracks(2, "GBPUSD"))
}

func TestLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	repo := fixtureRepo()
	svc := NewService(repo)
	assert.NoError(t, svc.Load(context.Background()))

	repo.brokersErr = errors.New("db gone")
	err := svc.Load(context.Background())
	assert.Error(t, err)

	// the snapshot from the successful load stays active
	snap := svc.Snapshot()
	assert.Len(t, snap.Brokers, 2)
}

func TestEmptySnapshotBeforeFirstLoad(t *testing.T) {
	svc := NewService(fixtureRepo())
	snap := svc.Snapshot()

	_, _, ok := snap.Resolve("our-live", "EURUSD.")
	assert.False(t, ok)
}
