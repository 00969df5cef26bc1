package metrics

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// LogHook is a logrus hook that counts log entries per level and module.
type LogHook struct {
	m *Metrics
}

// LogHook returns a hook feeding the log_events_total counter.
func (m *Metrics) LogHook() *LogHook {
	return &LogHook{m: m}
}

// Levels implements logrus.Hook. Debug entries are not counted.
func (h *LogHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.FatalLevel,
		logrus.PanicLevel,
	}
}

// Fire implements logrus.Hook.
func (h *LogHook) Fire(e *logrus.Entry) error {
	module := "global"
	if v, ok := e.Data["module"]; ok {
		module = fmt.Sprint(v)
	}
	h.m.logEvents.WithLabelValues(e.Level.String(), module).Inc()
	return nil
}
