package metric

import (
	"context"
	"time"

	"pocketbot/src-server/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uptrace/bun"
)

var databaseQuery = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pocketbot_database_query_seconds",
	Help:    "Latency of database queries by operation",
	Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
}, []string{"operation", "result"})

func database(db *bun.DB) (time.Duration, error) {
	start := time.Now()
	if _, err := db.NewSelect().
		Model((*model.User)(nil)).
		Where("user_id = ?", "").
		Exists(context.Background()); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// QueryHook records the latency of every query bun runs.
type QueryHook struct{}

var _ bun.QueryHook = (*QueryHook)(nil)

func (QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	result := "ok"
	if event.Err != nil {
		result = "error"
	}
	databaseQuery.
		WithLabelValues(event.Operation(), result).
		Observe(time.Since(event.StartTime).Seconds())
}
