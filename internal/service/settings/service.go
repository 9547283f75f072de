package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/quotewatch/quote-watch/internal/repo"
	"github.com/shopspring/decimal"
)

type service struct {
	repo     repo.SettingsRepo
	snapshot atomic.Pointer[Snapshot]
}

func NewService(settingsRepo repo.SettingsRepo) Service {
	svc := &service{
		repo: settingsRepo,
	}
	svc.snapshot.Store(&Snapshot{
		Brokers:           map[int64]Broker{},
		Servers:           map[string]int64{},
		BrokerInstruments: map[int64]map[string]BrokerInstrument{},
		Instruments:       map[int64]Instrument{},
		EventTypes:        map[int64]string{},
	})
	return svc
}

func (s *service) Load(ctx context.Context) error {
	snapshot, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.snapshot.Store(snapshot)
	slog.Info("settings loaded",
		"brokers", len(snapshot.Brokers),
		"servers", len(snapshot.Servers),
		"instruments", len(snapshot.Instruments),
		"sessionRows", len(snapshot.SessionRows))
	return nil
}

func (s *service) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

func (s *service) build(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{
		Brokers:           map[int64]Broker{},
		Servers:           map[string]int64{},
		BrokerInstruments: map[int64]map[string]BrokerInstrument{},
		Instruments:       map[int64]Instrument{},
		EventTypes:        map[int64]string{},
	}

	brokers, err := s.repo.Brokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load brokers: %w", err)
	}
	for _, b := range brokers {
		snapshot.Brokers[b.Id] = Broker{
			Id:             b.Id,
			Name:           b.Name,
			GmtOffset:      time.Duration(b.GmtOffset) * time.Millisecond,
			Running:        b.Running,
			StoppedMaxTime: time.Duration(b.StoppedMaxTime) * time.Millisecond,
		}
	}

	servers, err := s.repo.BrokerServers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load broker servers: %w", err)
	}
	for _, server := range servers {
		snapshot.Servers[server.ServerName] = server.BrokerId
	}

	brokerInstruments, err := s.repo.BrokerInstruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load broker instruments: %w", err)
	}
	for _, bi := range brokerInstruments {
		if _, ok := snapshot.BrokerInstruments[bi.BrokerId]; !ok {
			snapshot.BrokerInstruments[bi.BrokerId] = map[string]BrokerInstrument{}
		}
		snapshot.BrokerInstruments[bi.BrokerId][bi.InstrumentName] = BrokerInstrument{
			InstrumentId: bi.InstrumentId,
			Coeff:        bi.Coeff,
		}
	}

	instruments, err := s.repo.Instruments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load instruments: %w", err)
	}
	for _, inst := range instruments {
		snapshot.Instruments[inst.Id] = Instrument{
			Id:                inst.Id,
			Name:              inst.Name,
			DelayPercent:      decimal.NewFromFloat(inst.DelayPercent),
			FrozenTime:        time.Duration(inst.FrozenTime) * time.Millisecond,
			SpreadMultiplier:  decimal.NewFromFloat(inst.SpreadMultiplier),
			StoppedMaxTime:    time.Duration(inst.StoppedMaxTime) * time.Millisecond,
			StoppedMaxTimeOwn: time.Duration(inst.StoppedMaxTimeOwn) * time.Millisecond,
		}
	}

	eventTypes, err := s.repo.EventTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load event types: %w", err)
	}
	for _, et := range eventTypes {
		snapshot.EventTypes[et.Id] = et.TypeName
	}

	sessions, err := s.repo.Sessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	snapshot.SessionRows = sessions

	return snapshot, nil
}
