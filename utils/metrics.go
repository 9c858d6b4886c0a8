package utils

import (
	"context"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	formatLabel  = "format"
	errTypeLabel = "error_type"
)

var (
	conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxtree_conversions",
		Help: "The number of assets converted to voxel trees.",
	}, []string{
		formatLabel,
	})

	conversionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxtree_conversion_errors",
		Help: "The errors that occured while converting an asset.",
	}, []string{
		formatLabel,
		errTypeLabel,
	})

	conversionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxtree_conversion_latency",
		Help:    "The time to voxelize, compile and store an asset.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
	}, []string{
		formatLabel,
	})

	storedBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voxtree_stored_bytes",
		Help:    "The compressed size of written trees.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 12),
	}, []string{
		formatLabel,
	})
)

func instrumentConversion(format string, start time.Time, size int) {
	conversions.With(prometheus.Labels{
		formatLabel: format,
	}).Inc()
	conversionLatency.With(prometheus.Labels{
		formatLabel: format,
	}).Observe(time.Since(start).Seconds())
	storedBytes.With(prometheus.Labels{
		formatLabel: format,
	}).Observe(float64(size))
}

func instrumentConversionError(format string, err error) {
	conversionErrors.
		With(prometheus.Labels{
			formatLabel:  format,
			errTypeLabel: errors.Type(err),
		}).
		Inc()
}

// ServeMetrics exposes the Prometheus registry on addr until the returned
// function is called. An empty addr serves nothing.
func ServeMetrics(addr string) func() {
	if addr == "" {
		return func() {}
	}

	var mux http.ServeMux
	mux.Handle("/metrics", promhttp.Handler())
	s := &http.Server{Addr: addr, Handler: &mux}

	go func() {
		logs.WithTag("addr", addr).Info("starting metrics server")

		switch err := s.ListenAndServe(); err {
		case nil, http.ErrServerClosed:
			logs.WithTag("addr", addr).Info("stopping metrics server")

		default:
			logs.Warn(errors.New("metrics server stopped").
				WithTag("addr", addr).
				Wrap(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(ctx); err != nil {
			logs.Warn(errors.New("shutting down the metrics server failed").
				WithTag("addr", addr).
				Wrap(err))
		}
	}
}
