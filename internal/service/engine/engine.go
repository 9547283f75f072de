package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/quotewatch/quote-watch/internal/entity"
	"github.com/quotewatch/quote-watch/internal/metrics"
	"github.com/quotewatch/quote-watch/internal/repo"
	"github.com/quotewatch/quote-watch/internal/schedule"
	"github.com/quotewatch/quote-watch/internal/service/detector"
	"github.com/quotewatch/quote-watch/internal/service/session"
	"github.com/quotewatch/quote-watch/internal/service/settings"
)

type Config struct {
	OwnBrokerId int64
}

// Engine owns the detection state: the price index, the session table
// and the transition tracker. All mutation goes through the engine
// mutex; detector passes never overlap.
type Engine struct {
	cfg         Config
	settings    settings.Service
	sessionRepo repo.SessionRepo
	sink        EventSink
	clock       schedule.Clock
	metrics     *metrics.Metrics

	mu              sync.Mutex
	sessions        *session.Table
	prices          *PriceIndex
	tracker         *detector.Tracker
	touched         map[int64]struct{}
	pendingSessions [][]entity.Session

	kick chan struct{}
}

func New(cfg Config, settingsSvc settings.Service, sessionRepo repo.SessionRepo,
	sink EventSink, clock schedule.Clock, m *metrics.Metrics) *Engine {
	return &Engine{
		cfg:         cfg,
		settings:    settingsSvc,
		sessionRepo: sessionRepo,
		sink:        sink,
		clock:       clock,
		metrics:     m,
		sessions:    session.NewTable(),
		prices:      NewPriceIndex(),
		tracker:     detector.NewTracker(),
		touched:     make(map[int64]struct{}),
		kick:        make(chan struct{}, 1),
	}
}

// Start launches the coalescing loop: one tick pass per kick, covering
// every instrument touched since the previous pass.
func (e *Engine) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-e.kick:
				e.RunTickPass()
			}
		}
	}()
}

// SeedSessions fills the session table from the persisted windows of
// the current settings snapshot.
func (e *Engine) SeedSessions() {
	rows := e.settings.Snapshot().SessionRows
	e.mu.Lock()
	e.sessions.Load(rows)
	e.mu.Unlock()
}

// OnTick ingests one inbound price message: resolve, shift to GMT,
// gate on the trade session, index, and mark the instrument touched.
// Detection itself runs on the next coalescing pass.
func (e *Engine) OnTick(msg TickMessage) {
	snap := e.settings.Snapshot()
	broker, instrumentId, ok := snap.Resolve(msg.Server, msg.Symbol)
	if !ok {
		slog.Warn("dropping tick from unknown source", "server", msg.Server, "symbol", msg.Symbol)
		e.metrics.DroppedMessages.WithLabelValues("unresolved_tick").Inc()
		return
	}

	tick := &detector.PriceTick{
		BrokerId:     broker.Id,
		InstrumentId: instrumentId,
		Symbol:       msg.Symbol,
		Bid:          msg.Bid,
		Ask:          msg.Ask,
		TickTime:     time.UnixMilli(msg.TickTime).Add(broker.GmtOffset).UTC(),
		SystemTime:   time.UnixMilli(msg.ReceiptTime).UTC(),
	}

	e.mu.Lock()
	if !e.sessions.IsActive(broker.Id, instrumentId, e.clock.Now()) {
		e.mu.Unlock()
		return
	}
	e.prices.Put(tick)
	e.touched[instrumentId] = struct{}{}
	e.mu.Unlock()

	e.metrics.PricesProcessed.Inc()

	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// OnSessionInfo ingests one session-window message: resolve, split the
// raw spans into same-day intervals, install them and queue the rows
// for persistence.
func (e *Engine) OnSessionInfo(msg session.Message) {
	snap := e.settings.Snapshot()
	broker, instrumentId, ok := snap.Resolve(msg.Server, msg.Symbol)
	if !ok {
		slog.Warn("dropping session info from unknown source", "server", msg.Server, "symbol", msg.Symbol)
		e.metrics.DroppedMessages.WithLabelValues("unresolved_session").Inc()
		return
	}

	hours := session.ParseHours(msg.Spans, broker.GmtOffset)
	rows := session.Rows(broker.Id, instrumentId, msg.Type, hours)

	e.mu.Lock()
	e.sessions.Set(instrumentId, broker.Id, msg.Type, hours)
	e.pendingSessions = append(e.pendingSessions, rows)
	e.mu.Unlock()

	e.metrics.SessionsProcessed.Inc()
}

// RunTickPass evaluates the per-tick detectors over every instrument
// touched since the previous pass, then clears the touched set.
func (e *Engine) RunTickPass() {
	snap := e.settings.Snapshot()

	e.mu.Lock()
	var emitted []*detector.Event
	for instrumentId := range e.touched {
		emitted = append(emitted, e.checkInstrument(snap, instrumentId)...)
	}
	e.touched = make(map[int64]struct{})
	owned := e.finishPass(emitted)
	e.mu.Unlock()

	e.dispatch(owned)
}

// RunTimerPass evaluates the derived, instrument-timer and
// broker-timer detectors.
func (e *Engine) RunTimerPass() {
	snap := e.settings.Snapshot()
	now := e.clock.Now()

	e.mu.Lock()
	var emitted []*detector.Event
	emitted = append(emitted, e.checkFrozen(snap, now)...)
	emitted = append(emitted, e.checkStoppedInstruments(snap, now)...)
	emitted = append(emitted, e.checkStoppedBrokers(snap, now)...)
	owned := e.finishPass(emitted)
	e.mu.Unlock()

	e.dispatch(owned)
}

// RunSessionSweep drops price index entries whose trade session has
// closed, bounding memory and keeping stale quotes out of the timer
// detectors.
func (e *Engine) RunSessionSweep() {
	now := e.clock.Now()

	e.mu.Lock()
	type pair struct{ instrumentId, brokerId int64 }
	var expired []pair
	e.prices.Range(func(instrumentId, brokerId int64, _ *detector.PriceTick) {
		if !e.sessions.IsActive(brokerId, instrumentId, now) {
			expired = append(expired, pair{instrumentId, brokerId})
		}
	})
	for _, p := range expired {
		e.prices.Delete(p.instrumentId, p.brokerId)
	}
	e.mu.Unlock()

	if len(expired) > 0 {
		slog.Debug("removed session-expired prices", "count", len(expired))
	}
}

// Reload reloads the settings snapshot and prunes price index entries
// for pairs the new configuration no longer tracks. Registered as the
// engine's reload handler.
func (e *Engine) Reload(ctx context.Context) error {
	if err := e.settings.Load(ctx); err != nil {
		return err
	}
	snap := e.settings.Snapshot()

	e.mu.Lock()
	type pair struct{ instrumentId, brokerId int64 }
	var untracked []pair
	e.prices.Range(func(instrumentId, brokerId int64, tick *detector.PriceTick) {
		if !snap.Tracks(brokerId, tick.Symbol) {
			untracked = append(untracked, pair{instrumentId, brokerId})
		}
	})
	for _, p := range untracked {
		e.prices.Delete(p.instrumentId, p.brokerId)
	}
	e.mu.Unlock()

	if len(untracked) > 0 {
		slog.Info("removed untracked prices after reload", "count", len(untracked))
	}
	return nil
}

// FlushSessions drains the pending session rows to storage.
func (e *Engine) FlushSessions(ctx context.Context) error {
	e.mu.Lock()
	queue := e.pendingSessions
	e.pendingSessions = nil
	e.mu.Unlock()

	if len(queue) == 0 {
		return nil
	}

	start := e.clock.Now()
	for _, rows := range queue {
		if err := e.sessionRepo.Replace(ctx, rows); err != nil {
			slog.Error("failed to save session rows", "error", err)
		}
	}
	slog.Debug("saved session infos from queue", "batches", len(queue), "took", e.clock.Now().Sub(start))
	return nil
}

// TimerTask, SweepTask and SessionSaveTask adapt the periodic passes
// for the scheduler.
func (e *Engine) TimerTask() schedule.Task {
	return schedule.NewTaskFunc("detector timer pass", func(ctx context.Context) error {
		e.RunTimerPass()
		return nil
	})
}

func (e *Engine) SweepTask() schedule.Task {
	return schedule.NewTaskFunc("session sweep", func(ctx context.Context) error {
		e.RunSessionSweep()
		return nil
	})
}

func (e *Engine) SessionSaveTask() schedule.Task {
	return schedule.NewTaskFunc("session save", e.FlushSessions)
}

// finishPass snapshots emitted events into owned values and refreshes
// the open-event gauge. Called with the engine mutex held.
func (e *Engine) finishPass(emitted []*detector.Event) []detector.Event {
	e.metrics.OpenEvents.Set(float64(e.tracker.OpenCount()))
	if len(emitted) == 0 {
		return nil
	}
	owned := make([]detector.Event, 0, len(emitted))
	for _, ev := range emitted {
		owned = append(owned, *ev)
	}
	return owned
}

func (e *Engine) dispatch(events []detector.Event) {
	if len(events) == 0 {
		return
	}
	e.sink.Enqueue(events)
}

func (e *Engine) checkInstrument(snap *settings.Snapshot, instrumentId int64) []*detector.Event {
	group := e.prices.Instrument(instrumentId)
	if _, ok := group[e.cfg.OwnBrokerId]; !ok {
		// no own price to compare against
		return nil
	}
	inst, ok := snap.Instruments[instrumentId]
	if !ok {
		return nil
	}

	var events []*detector.Event
	for _, typ := range detector.TickTypes {
		var (
			snapshot = make([]detector.PriceTick, 0, len(group))
			own      detector.PriceTick
			others   []detector.PriceTick
		)
		for brokerId, tick := range group {
			cp := *tick
			if brokerId == e.cfg.OwnBrokerId {
				cp.Used = true
				own = cp
			} else if broker, known := snap.Brokers[brokerId]; known && broker.Running&int64(typ) != 0 {
				cp.Used = true
				others = append(others, cp)
			}
			snapshot = append(snapshot, cp)
		}
		if len(others) == 0 {
			// need at least one more price in addition to ours
			continue
		}

		var (
			res        detector.Result
			applicable bool
		)
		switch typ {
		case detector.TypeDelayed:
			res, applicable = detector.CheckDelayed(own, others, inst)
		case detector.TypeSpread:
			res, applicable = detector.CheckSpread(own, others, inst)
		}
		if !applicable {
			continue
		}

		events = append(events, e.tracker.Apply(detector.Transition{
			Type:         typ,
			Key:          detector.InstrumentKey(instrumentId),
			BrokerId:     e.cfg.OwnBrokerId,
			InstrumentId: instrumentId,
			Active:       res.Active,
			Time:         maxTickTime(own, others),
			Data:         res.Data,
			Prices:       snapshot,
		})...)
	}
	return events
}

func (e *Engine) checkFrozen(snap *settings.Snapshot, now time.Time) []*detector.Event {
	delayed := e.tracker.OpenEvents(detector.TypeDelayed)
	if len(delayed) == 0 {
		return nil
	}

	var events []*detector.Event
	for key, delayedEvent := range delayed {
		inst, ok := snap.Instruments[key.InstrumentId]
		if !ok {
			continue
		}
		res, applicable := detector.CheckFrozen(delayedEvent, now, inst)
		if !applicable {
			continue
		}
		events = append(events, e.tracker.Apply(detector.Transition{
			Type:         detector.TypeFrozen,
			Key:          detector.InstrumentKey(key.InstrumentId),
			BrokerId:     e.cfg.OwnBrokerId,
			InstrumentId: key.InstrumentId,
			Active:       res.Active,
			Time:         now,
			Data:         res.Data,
			Prices:       delayedEvent.Prices,
		})...)
	}
	return events
}

func (e *Engine) checkStoppedInstruments(snap *settings.Snapshot, now time.Time) []*detector.Event {
	var events []*detector.Event
	for brokerId, instruments := range e.prices.Brokers() {
		broker, known := snap.Brokers[brokerId]
		if !known {
			continue
		}
		for _, typ := range detector.InstrumentTimerTypes {
			if broker.Running&int64(typ) == 0 {
				// not tracking this event
				continue
			}
			if typ == detector.TypeStoppedInstrumentOwn && brokerId != e.cfg.OwnBrokerId {
				continue
			}
			for instrumentId, tick := range instruments {
				inst, ok := snap.Instruments[instrumentId]
				if !ok {
					continue
				}
				var (
					res        detector.Result
					applicable bool
				)
				if typ == detector.TypeStoppedInstrumentOwn {
					res, applicable = detector.CheckStoppedInstrumentOwn(*tick, now, inst)
				} else {
					res, applicable = detector.CheckStoppedInstrument(*tick, now, inst)
				}
				if !applicable {
					continue
				}
				events = append(events, e.tracker.Apply(detector.Transition{
					Type:         typ,
					Key:          detector.BrokerInstrumentKey(brokerId, instrumentId),
					BrokerId:     brokerId,
					InstrumentId: instrumentId,
					Active:       res.Active,
					Time:         now,
					Data:         res.Data,
					Prices:       []detector.PriceTick{*tick},
				})...)
			}
		}
	}
	return events
}

func (e *Engine) checkStoppedBrokers(snap *settings.Snapshot, now time.Time) []*detector.Event {
	var events []*detector.Event
	for brokerId, instruments := range e.prices.Brokers() {
		broker, known := snap.Brokers[brokerId]
		if !known || broker.Running&int64(detector.TypeStoppedBroker) == 0 {
			continue
		}
		ticks := make([]detector.PriceTick, 0, len(instruments))
		for _, tick := range instruments {
			ticks = append(ticks, *tick)
		}
		res, applicable := detector.CheckStoppedBroker(ticks, now, broker)
		if !applicable {
			continue
		}
		events = append(events, e.tracker.Apply(detector.Transition{
			Type:     detector.TypeStoppedBroker,
			Key:      detector.BrokerKey(brokerId),
			BrokerId: brokerId,
			Active:   res.Active,
			Time:     now,
			Data:     res.Data,
			Prices:   ticks,
		})...)
	}
	return events
}

// maxTickTime is the event timestamp rule for per-tick evaluations:
// the newest tick time among the prices that fed the check.
func maxTickTime(own detector.PriceTick, others []detector.PriceTick) time.Time {
	max := own.TickTime
	for _, p := range others {
		if p.TickTime.After(max) {
			max = p.TickTime
		}
	}
	return max
}
