package metrics

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultJob is the push gateway job name used when none is given.
const DefaultJob = "lightcheck"

// WriteTextfile writes the current snapshot in text exposition format to
// path, suitable for the node exporter textfile collector. The file is
// replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrapf(err, "metrics: write textfile %s", path)
	}
	return nil
}

// Push sends the current snapshot to a Prometheus push gateway at url,
// replacing all metrics previously pushed under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if job == "" {
		job = DefaultJob
	}
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return errors.Wrapf(err, "metrics: push to %s", url)
	}
	return nil
}

// Handler returns an HTTP handler serving the registry at scrape time.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
