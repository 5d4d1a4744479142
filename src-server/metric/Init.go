package metric

import (
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// register registers collector and tolerates a previous registration, so
// Init can run more than once per process.
func register(name string, collector prometheus.Collector) bool {
	if err := prometheus.Register(collector); err != nil {
		var alreadyRegistered prometheus.AlreadyRegisteredError
		if !errors.As(err, &alreadyRegistered) {
			slog.Error("can't register metric", "metric", name, "error", err)
			return false
		}
	}
	slog.Debug("metric registered", "metric", name)
	return true
}

func unregister(name string, collector prometheus.Collector) {
	switch prometheus.Unregister(collector) {
	case true:
		slog.Debug("metric unregistered", "metric", name)
	case false:
		slog.Warn("metric not registered", "metric", name)
	}
}

func databaseEmptyRead(db *bun.DB, tickerInterval time.Duration, done <-chan struct{}) {
	name := "pocketbot_database_empty_read_microsec"
	databaseEmptyRead := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of an empty database read in microseconds",
	})
	if register(name, databaseEmptyRead) {
		databaseEmptyRead.Set(0)
	}
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				unregister(name, databaseEmptyRead)
				return
			case <-ticker.C:
				latency, err := database(db)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func discordHeartbeatLatency(dg *discordgo.Session, tickerInterval time.Duration, done <-chan struct{}) {
	name := "pocketbot_discord_heartbeat_latency_microsec"
	discordHeartbeatLatency := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of a discord heartbeat in microseconds",
	})
	if register(name, discordHeartbeatLatency) {
		discordHeartbeatLatency.Set(0)
	}
	go func() {
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				unregister(name, discordHeartbeatLatency)
				return
			case <-ticker.C:
				discordHeartbeatLatency.Set(float64(dg.HeartbeatLatency().Microseconds()))
			}
		}
	}()
}

// Init starts the periodic collectors. They stop once done is closed.
func Init(db *bun.DB, dg *discordgo.Session, tickerInterval time.Duration, done <-chan struct{}) {
	databaseEmptyRead(db, tickerInterval, done)
	discordHeartbeatLatency(dg, tickerInterval, done)
}
