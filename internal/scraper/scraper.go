// This file implements a standalone metrics forwarder for SafarBot. It runs
// as its own container (Cloud Run) and is poked periodically by Cloud
// Scheduler: each poke scrapes the bot's /metrics endpoint, parses the
// Prometheus exposition text, and writes the samples into Google Cloud's
// Managed Service for Prometheus. Keeping the forwarder out of the bot
// binary means a slow or failing Monitoring API can never delay a chat
// reply.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/genproto/googleapis/api/distribution"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// forwarder bundles everything one scrape-and-ingest cycle needs.
type forwarder struct {
	projectID  string
	location   string
	metricsURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	metricsURL := os.Getenv("METRICS_URL")
	projectID := os.Getenv("PROJECT_ID")
	if metricsURL == "" || projectID == "" {
		logger.Error("METRICS_URL and PROJECT_ID must be set")
		os.Exit(1)
	}
	location := os.Getenv("MONITORING_LOCATION")
	if location == "" {
		location = "europe-west1"
	}

	f := &forwarder{
		projectID:  projectID,
		location:   location,
		metricsURL: metricsURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("starting server", "port", port)

	mux := http.NewServeMux()
	mux.HandleFunc("/", f.handleForward)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

// handleForward runs one scrape-and-ingest cycle per scheduler poke.
func (f *forwarder) handleForward(w http.ResponseWriter, r *http.Request) {
	f.logger.Info("forward request received")

	series, err := f.collect(r.Context())
	if err != nil {
		f.logger.Error("metrics collection failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(series) == 0 {
		f.logger.Info("no metric samples to ingest")
		fmt.Fprintln(w, "Nothing to do")
		return
	}

	if err := f.ingest(r.Context(), series); err != nil {
		f.logger.Error("metrics ingestion failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f.logger.Info("metrics forwarded", "series", len(series))
	fmt.Fprintln(w, "Success")
}

// collect scrapes the bot's /metrics endpoint and converts every safarbot_*
// family into Cloud Monitoring TimeSeries. Runtime families exported by the
// Prometheus client (go_*, process_*) are left out; Cloud Run already
// reports the equivalent resource metrics.
func (f *forwarder) collect(ctx context.Context) ([]*monitoringpb.TimeSeries, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.metricsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metrics endpoint returned status code %d", resp.StatusCode)
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prometheus metrics: %w", err)
	}

	resource := &monitoredres.MonitoredResource{
		Type: "prometheus_target",
		Labels: map[string]string{
			"project_id": f.projectID,
			"location":   f.location,
			"cluster":    "__gce__",
			"namespace":  "safarbot",
			"job":        "safarbot",
			"instance":   f.metricsURL,
		},
	}

	var series []*monitoringpb.TimeSeries
	now := timestamppb.New(time.Now())

	for name, mf := range families {
		if !strings.HasPrefix(name, "safarbot_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			var point *monitoringpb.Point
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				point = f.scalarPoint(now, m.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				point = f.scalarPoint(now, m.GetGauge().GetValue())
			case dto.MetricType_UNTYPED:
				point = f.scalarPoint(now, m.GetUntyped().GetValue())
			case dto.MetricType_HISTOGRAM:
				point = f.distributionPoint(now, m.GetHistogram())
			default:
				f.logger.Warn("skipping metric with unhandled type", "metric", name, "type", mf.GetType())
				continue
			}

			series = append(series, &monitoringpb.TimeSeries{
				Metric: &metric.Metric{
					Type:   "prometheus.googleapis.com/" + name,
					Labels: labels,
				},
				Resource: resource,
				Points:   []*monitoringpb.Point{point},
			})
		}
	}
	return series, nil
}

// scalarPoint wraps a counter/gauge sample in a TimeSeries point.
func (f *forwarder) scalarPoint(timestamp *timestamppb.Timestamp, value float64) *monitoringpb.Point {
	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{
			EndTime: timestamp,
		},
		Value: &monitoringpb.TypedValue{
			Value: &monitoringpb.TypedValue_DoubleValue{
				DoubleValue: value,
			},
		},
	}
}

// distributionPoint converts a Prometheus histogram into a Cloud Monitoring
// Distribution. Prometheus buckets are cumulative and end with +Inf; the
// Distribution wants per-bucket counts and bounds without the +Inf edge.
func (f *forwarder) distributionPoint(timestamp *timestamppb.Timestamp, h *dto.Histogram) *monitoringpb.Point {
	promBuckets := h.GetBucket()
	bounds := make([]float64, len(promBuckets)-1)
	bucketCounts := make([]int64, len(promBuckets))
	var lastCumulative uint64

	for i, b := range promBuckets {
		if i < len(promBuckets)-1 {
			bounds[i] = b.GetUpperBound()
		}
		cumulative := b.GetCumulativeCount()
		count := cumulative - lastCumulative
		if count > math.MaxInt64 {
			f.logger.Warn("histogram bucket count exceeds MaxInt64, capping value", "bucket", i, "value", count)
			bucketCounts[i] = math.MaxInt64
		} else {
			bucketCounts[i] = int64(count)
		}
		lastCumulative = cumulative
	}

	sampleCount := h.GetSampleCount()
	var finalCount int64
	if sampleCount > math.MaxInt64 {
		f.logger.Warn("histogram sample count exceeds MaxInt64, capping value", "value", sampleCount)
		finalCount = math.MaxInt64
	} else {
		finalCount = int64(sampleCount)
	}

	dist := &distribution.Distribution{
		Count: finalCount,
		Mean:  h.GetSampleSum() / float64(h.GetSampleCount()),
		BucketOptions: &distribution.Distribution_BucketOptions{
			Options: &distribution.Distribution_BucketOptions_ExplicitBuckets{
				ExplicitBuckets: &distribution.Distribution_BucketOptions_Explicit{
					Bounds: bounds,
				},
			},
		},
		BucketCounts: bucketCounts,
	}

	return &monitoringpb.Point{
		Interval: &monitoringpb.TimeInterval{
			EndTime: timestamp,
		},
		Value: &monitoringpb.TypedValue{
			Value: &monitoringpb.TypedValue_DistributionValue{
				DistributionValue: dist,
			},
		},
	}
}

// ingest writes the TimeSeries batch to the Cloud Monitoring API.
func (f *forwarder) ingest(ctx context.Context, series []*monitoringpb.TimeSeries) error {
	client, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create monitoring client: %w", err)
	}
	defer client.Close()

	req := &monitoringpb.CreateTimeSeriesRequest{
		Name:       "projects/" + f.projectID,
		TimeSeries: series,
	}

	if err := client.CreateTimeSeries(ctx, req); err != nil {
		return fmt.Errorf("failed to write time series data: %w", err)
	}
	return nil
}
