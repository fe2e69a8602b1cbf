// Package metrics provides Prometheus metrics for keaconv.
//
// Converters are short-lived batch jobs, so nothing is served over HTTP.
// The registry is instead written to a node-exporter textfile after a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric names use the keaconv_ prefix.
const (
	Namespace = "keaconv"
)

// Converter label values.
const (
	ConverterAXFR = "axfr-to-kea"
	ConverterCSV  = "csv-to-kea"
	ConverterISC  = "isc-to-csv"
)

// Registry holds every keaconv collector. It is separate from the default
// registry so textfile output carries no Go runtime or process metrics.
var Registry = prometheus.NewRegistry()

var (
	// BuildInfo exposes version information.
	BuildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "build_info",
			Help:      "Build information for keaconv.",
		},
		[]string{"version", "go_version"},
	)

	// InputRecordsTotal counts lines, rows or blocks examined.
	InputRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "input_records_total",
			Help:      "Input lines, rows or host blocks examined.",
		},
		[]string{"converter"},
	)

	// OutputRecordsTotal counts records emitted.
	OutputRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "output_records_total",
			Help:      "Reservations or CSV rows emitted.",
		},
		[]string{"converter"},
	)

	// SkippedRecordsTotal counts input records that produced no output.
	SkippedRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "skipped_records_total",
			Help:      "Input records skipped, by reason.",
		},
		[]string{"converter", "reason"},
	)

	// ConversionDuration tracks how long a conversion took, input to output.
	ConversionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Duration of a conversion run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
		[]string{"converter"},
	)
)

func init() {
	Registry.MustRegister(
		BuildInfo,
		InputRecordsTotal,
		OutputRecordsTotal,
		SkippedRecordsTotal,
		ConversionDuration,
	)
}

// SetBuildInfo records the running version.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// Conversion summarizes one converter run.
type Conversion struct {
	Converter string
	Input     int
	Output    int
	Skipped   map[string]int
	Duration  time.Duration
}

// Record adds a finished conversion to the collectors.
func Record(c Conversion) {
	InputRecordsTotal.WithLabelValues(c.Converter).Add(float64(c.Input))
	OutputRecordsTotal.WithLabelValues(c.Converter).Add(float64(c.Output))
	for reason, n := range c.Skipped {
		if n > 0 {
			SkippedRecordsTotal.WithLabelValues(c.Converter, reason).Add(float64(n))
		}
	}
	ConversionDuration.WithLabelValues(c.Converter).Observe(c.Duration.Seconds())
}

// WriteTextfile writes the registry to path in the Prometheus text format.
// An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
