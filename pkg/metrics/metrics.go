package metrics

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Package metrics keeps operational counters and gauges in an embedded
// time-series store under the application workdir.

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

// InitMetrics opens the embedded metric store under workdir/metrics.
func InitMetrics(workdir string) error {
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(filepath.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
	)
	if err != nil {
		return err
	}
	mu.Lock()
	storage = s
	mu.Unlock()
	return nil
}

func insert(name string, value float64) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return
	}
	_ = s.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
}

// CounterInc records a single occurrence of the named event.
func CounterInc(name string) {
	insert(name, 1)
}

// SetGauge records the current value of the named gauge.
func SetGauge(name string, value int64) {
	insert(name, float64(value))
}

// Range returns the raw points for a metric between start and end (unix seconds).
func Range(name string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	s := storage
	mu.RUnlock()
	if s == nil {
		return nil, nil
	}
	points, err := s.Select(name, nil, start, end)
	if err != nil {
		if err == tstorage.ErrNoDataPoints {
			return nil, nil
		}
		return nil, err
	}
	return points, nil
}

// CounterValue sums the occurrences of the named event over the last day.
func CounterValue(name string) float64 {
	now := time.Now().Unix()
	points, err := Range(name, now-86400, now)
	if err != nil {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.Value
	}
	return sum
}

// Close flushes and closes the metric store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
