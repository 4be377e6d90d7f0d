package metric

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
)

const namespace = "bpclaim"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

func resolveHostname() string {
	nodeName := os.Getenv("NODE_NAME")
	if nodeName == "" {
		nodeName, _ = os.Hostname()
	}
	return nodeName
}

// RunMetric collects the outcome of one run. The process exits right after
// the run, so the values are written to a textfile for node_exporter
// instead of being served.
type RunMetric struct {
	registry *prometheus.Registry

	reward       *prometheus.GaugeVec
	threshold    *prometheus.GaugeVec
	submitted    *prometheus.GaugeVec
	skipped      *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
	errorCode    *prometheus.GaugeVec
	apiRequests  *prometheus.CounterVec
	apiDurations *prometheus.HistogramVec
}

func NewRunMetric(producer string) *RunMetric {
	labels := prometheus.Labels{
		"producer": producer,
		"hostname": resolveHostname(),
	}
	gauge := func(name, help string, lbs ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}, lbs)
	}
	m := &RunMetric{
		registry:  prometheus.NewRegistry(),
		reward:    gauge("estimated_reward", "Estimated pending vote pay in token units", "symbol"),
		threshold: gauge("reward_threshold", "Reward threshold of the claim gate", "symbol"),
		submitted: gauge("claim_submitted", "1 when the claim transaction was accepted by the node"),
		skipped:   gauge("claim_skipped", "1 when the claim was skipped by the reward gate"),
		lastRun:   gauge("last_run_timestamp_seconds", "Unix time of the last run", "result"),
		errorCode: gauge("last_error_code", "Error code of the last run, 0 on success"),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "api_requests_total",
			Help:        "Chain API requests by path and result",
			ConstLabels: labels,
		}, []string{"path", "result"}),
		apiDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "api_request_duration_seconds",
			Help:        "Chain API request latency",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"path"}),
	}
	m.registry.MustRegister(m.reward, m.threshold, m.submitted, m.skipped,
		m.lastRun, m.errorCode, m.apiRequests, m.apiDurations)
	return m
}

func (m *RunMetric) Registry() *prometheus.Registry {
	return m.registry
}

// OnRequest matches client.RequestObserver.
func (m *RunMetric) OnRequest(path string, elapsed time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.apiRequests.WithLabelValues(path, result).Inc()
	m.apiDurations.WithLabelValues(path).Observe(elapsed.Seconds())
}

func (m *RunMetric) SetEstimate(symbol string, reward, threshold float64) {
	m.reward.WithLabelValues(symbol).Set(reward)
	m.threshold.WithLabelValues(symbol).Set(threshold)
}

func boolValue(yn bool) float64 {
	if yn {
		return 1
	}
	return 0
}

// SetOutcome records the end of a run.
func (m *RunMetric) SetOutcome(submitted, skipped bool, err error, at time.Time) {
	m.submitted.WithLabelValues().Set(boolValue(submitted))
	m.skipped.WithLabelValues().Set(boolValue(skipped))
	m.errorCode.WithLabelValues().Set(float64(errors.CodeOf(err)))
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.lastRun.WithLabelValues(result).Set(float64(at.Unix()))
}

// WriteTextfile writes the collected values in the text exposition format.
func (m *RunMetric) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "fail to write metrics(path=%s)", path)
	}
	log.Debugf("Metrics written to %s", path)
	return nil
}
