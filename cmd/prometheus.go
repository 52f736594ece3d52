package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	log "github.com/sirupsen/logrus"

	"github.com/robotfashion/dataset-loader/robotfashion"
)

// PrometheusConfig holds configuration for Prometheus metrics reporting
type PrometheusConfig struct {
	Enabled bool
	PushURL string
	JobName string
}

// ProvisionMetrics holds the Prometheus metrics for a provisioning run
type ProvisionMetrics struct {
	ProvisionSeconds prometheus.Gauge
	ArchiveBytes     prometheus.Gauge
	Archives         prometheus.Gauge
}

// NewProvisionMetrics creates a new set of provisioning metrics
func NewProvisionMetrics(registry *prometheus.Registry, labels prometheus.Labels) *ProvisionMetrics {
	metrics := &ProvisionMetrics{
		ProvisionSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "robotfashion_provision_seconds",
			Help:        "Wall time of the provisioning run in seconds",
			ConstLabels: labels,
		}),
		ArchiveBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "robotfashion_provision_archive_bytes",
			Help:        "Total declared size of the dataset archives in bytes",
			ConstLabels: labels,
		}),
		Archives: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "robotfashion_provision_archives",
			Help:        "Number of archives in the dataset version",
			ConstLabels: labels,
		}),
	}

	registry.MustRegister(
		metrics.ProvisionSeconds,
		metrics.ArchiveBytes,
		metrics.Archives,
	)

	return metrics
}

// PushProvisionMetrics pushes the provisioning results to a Prometheus pushgateway
func PushProvisionMetrics(cfg *Config, seconds float64, archiveBytes int64, archives int) error {
	if !cfg.PrometheusConfig.Enabled || cfg.PrometheusConfig.PushURL == "" {
		return nil
	}

	registry := prometheus.NewRegistry()

	labels := prometheus.Labels{
		"dataset": robotfashion.DatasetName(),
		"root":    cfg.Root,
	}

	// Add custom labels from config
	if cfg.LabelMap != nil {
		for key, value := range cfg.LabelMap {
			labels[key] = value
		}
	}

	metrics := NewProvisionMetrics(registry, labels)

	metrics.ProvisionSeconds.Set(seconds)
	metrics.ArchiveBytes.Set(float64(archiveBytes))
	metrics.Archives.Set(float64(archives))

	pusher := push.New(cfg.PrometheusConfig.PushURL, cfg.PrometheusConfig.JobName).
		Gatherer(registry)

	if err := pusher.Push(); err != nil {
		log.WithError(err).Error("Failed to push metrics to Prometheus")
		return err
	}

	log.WithFields(log.Fields{
		"url": cfg.PrometheusConfig.PushURL,
		"job": cfg.PrometheusConfig.JobName,
	}).Info("Successfully pushed metrics to Prometheus")

	return nil
}
