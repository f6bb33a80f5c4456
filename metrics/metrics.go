package metrics

import (
	"context"
	"runtime"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	topicCount  atomic.Int64
	viewerCount atomic.Int64
	meter       metric.Meter

	// Application metrics
	topicCountGauge  metric.Int64ObservableGauge
	viewerCountGauge metric.Int64ObservableGauge
	ingestCounter    metric.Int64Counter
	decodeErrCounter metric.Int64Counter
	deltaCounter     metric.Int64Counter

	// Go runtime metrics
	goroutinesGauge   metric.Int64ObservableGauge
	memHeapAllocGauge metric.Int64ObservableGauge
	memSysGauge       metric.Int64ObservableGauge
	gcNumGauge        metric.Int64ObservableGauge
	numCPUGauge       metric.Int64ObservableGauge
)

func Init() error {
	meter = otel.Meter("zenwatch.metrics")

	// Application metrics
	var err error
	topicCountGauge, err = meter.Int64ObservableGauge(
		"zenwatch.topics.count",
		metric.WithDescription("Number of topics currently held in the cache"),
		metric.WithUnit("{topics}"),
	)
	if err != nil {
		return err
	}

	viewerCountGauge, err = meter.Int64ObservableGauge(
		"zenwatch.viewers.count",
		metric.WithDescription("Number of currently connected viewer sessions"),
		metric.WithUnit("{sessions}"),
	)
	if err != nil {
		return err
	}

	ingestCounter, err = meter.Int64Counter(
		"zenwatch.ingest.events",
		metric.WithDescription("Total pub/sub events absorbed into the cache"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return err
	}

	decodeErrCounter, err = meter.Int64Counter(
		"zenwatch.decode.errors",
		metric.WithDescription("Total decoder failures (events still counted and cached)"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return err
	}

	deltaCounter, err = meter.Int64Counter(
		"zenwatch.deltas.published",
		metric.WithDescription("Total deltas published to the stream hub, empty ones included"),
		metric.WithUnit("{deltas}"),
	)
	if err != nil {
		return err
	}

	// Go runtime metrics
	goroutinesGauge, err = meter.Int64ObservableGauge(
		"go.goroutines",
		metric.WithDescription("Number of goroutines"),
		metric.WithUnit("{goroutines}"),
	)
	if err != nil {
		return err
	}

	memHeapAllocGauge, err = meter.Int64ObservableGauge(
		"go.memory.heap.allocated",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	memSysGauge, err = meter.Int64ObservableGauge(
		"go.memory.sys",
		metric.WithDescription("Total bytes of memory obtained from the OS"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	gcNumGauge, err = meter.Int64ObservableGauge(
		"go.gc.count",
		metric.WithDescription("Number of completed GC cycles"),
		metric.WithUnit("{cycles}"),
	)
	if err != nil {
		return err
	}

	numCPUGauge, err = meter.Int64ObservableGauge(
		"go.cpu.count",
		metric.WithDescription("Number of logical CPUs"),
		metric.WithUnit("{cpus}"),
	)
	if err != nil {
		return err
	}

	// Register callback for all observable metrics
	_, err = meter.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(topicCountGauge, topicCount.Load())
			o.ObserveInt64(viewerCountGauge, viewerCount.Load())

			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			o.ObserveInt64(goroutinesGauge, int64(runtime.NumGoroutine()))
			o.ObserveInt64(memHeapAllocGauge, int64(m.HeapAlloc))
			o.ObserveInt64(memSysGauge, int64(m.Sys))
			o.ObserveInt64(gcNumGauge, int64(m.NumGC))
			o.ObserveInt64(numCPUGauge, int64(runtime.NumCPU()))

			return nil
		},
		topicCountGauge,
		viewerCountGauge,
		goroutinesGauge,
		memHeapAllocGauge,
		memSysGauge,
		gcNumGauge,
		numCPUGauge,
	)
	return err
}

func SetTopicCount(n int) {
	topicCount.Store(int64(n))
}

func SetViewerCount(n int) {
	viewerCount.Store(int64(n))
}

func IncIngestEvents() {
	if ingestCounter != nil {
		ingestCounter.Add(context.Background(), 1)
	}
}

func IncDecodeErrors() {
	if decodeErrCounter != nil {
		decodeErrCounter.Add(context.Background(), 1)
	}
}

func IncDeltasPublished() {
	if deltaCounter != nil {
		deltaCounter.Add(context.Background(), 1)
	}
}
