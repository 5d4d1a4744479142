package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var discordSend = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pocketbot_discord_send_seconds",
	Help:    "Latency of discord REST calls made by the bot",
	Buckets: prometheus.DefBuckets,
}, []string{"kind"})

// ObserveDiscordSend records the time since start for one kind of call
// (reply, react, notice, typing).
func ObserveDiscordSend(kind string, start time.Time) {
	discordSend.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
