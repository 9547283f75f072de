package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/quotewatch/quote-watch/internal/metrics"
	"github.com/quotewatch/quote-watch/internal/repo"
	"github.com/quotewatch/quote-watch/internal/schedule"
	"github.com/quotewatch/quote-watch/internal/service/bus"
	"github.com/quotewatch/quote-watch/internal/service/control"
	"github.com/quotewatch/quote-watch/internal/service/engine"
	"github.com/quotewatch/quote-watch/internal/service/notification"
	"github.com/quotewatch/quote-watch/internal/service/settings"
	"github.com/quotewatch/quote-watch/ioc"
)

func initViper() {

	// --config=./config/xxx.yaml
	file := pflag.String("config", "./config/config.dev.yaml", "specify config file")
	pflag.Parse()

	viper.SetConfigFile(*file)
	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}

	viper.SetDefault("common.check_interval", time.Second)
	viper.SetDefault("common.session_check_interval", time.Minute)
	viper.SetDefault("common.session_save_interval", 10*time.Second)
	viper.SetDefault("common.dispatch_queue_size", 1024)
	viper.SetDefault("metrics.addr", ":9100")
	viper.SetDefault("bus.event_channel", "quotewatch:events")
	viper.SetDefault("bus.tick_channel", "quotewatch:ticks")
	viper.SetDefault("bus.session_channel", "quotewatch:sessions")
	viper.SetDefault("bus.command_channel", "quotewatch:commands")
}

func main() {
	initViper()

	db := ioc.InitDB()
	if err := repo.InitTables(db); err != nil {
		panic(err)
	}
	rdb := ioc.InitRedis()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	settingsSvc := settings.NewService(repo.NewSettingsRepo(db))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// no point starting without a configuration
	if err := settingsSvc.Load(ctx); err != nil {
		panic(err)
	}

	var busCfg bus.Config
	if err := viper.UnmarshalKey("bus", &busCfg); err != nil {
		panic(err)
	}
	eventBus := bus.New(rdb, busCfg)

	ownBrokerId := viper.GetInt64("common.own_broker_id")

	var notifier notification.Notifier
	if endpoint := viper.GetString("push.endpoint"); endpoint != "" {
		notifier = notification.NewWebhookNotifier(endpoint, viper.GetString("web.url"), ownBrokerId, settingsSvc)
	} else {
		notifier = notification.LogNotifier{}
	}

	dispatcher := engine.NewDispatcher(viper.GetInt("common.dispatch_queue_size"),
		repo.NewEventRepo(db), eventBus, notifier, m)

	eng := engine.New(engine.Config{OwnBrokerId: ownBrokerId},
		settingsSvc, repo.NewSessionRepo(db), dispatcher, schedule.SystemClock(), m)
	eng.SeedSessions()

	coordinator := control.NewCoordinator()
	coordinator.RegisterReloadHandler(eng.Reload)

	scheduler := schedule.NewScheduler(schedule.SystemClock())
	scheduler.Add(eng.TimerTask(), viper.GetDuration("common.check_interval"))
	scheduler.Add(eng.SweepTask(), viper.GetDuration("common.session_check_interval"))
	scheduler.Add(eng.SessionSaveTask(), viper.GetDuration("common.session_save_interval"))

	go dispatcher.Run(ctx)
	eng.Start(ctx)
	scheduler.Start(ctx)

	go func() {
		for tick := range eventBus.Ticks(ctx) {
			eng.OnTick(tick)
		}
	}()
	go func() {
		for msg := range eventBus.Sessions(ctx) {
			eng.OnSessionInfo(msg)
		}
	}()
	go func() {
		for cmd := range eventBus.Commands(ctx) {
			m.CommandsProcessed.Inc()
			coordinator.OnCommand(ctx, cmd)
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		addr := viper.GetString("metrics.addr")
		slog.Info("metrics listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("metrics server stopped", "error", err)
		}
	}()

	slog.Info("quote watch started", "ownBrokerId", ownBrokerId)
	<-ctx.Done()
	scheduler.Wait()

	// best effort flush of queued session rows on the way out
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = eng.FlushSessions(flushCtx)
}
