package cli

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// Log output formats accepted by --log-format.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatLogfmt = "logfmt"
)

// newLogger creates the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLogFormat maps a --log-format value to a formatter. JSON and logfmt
// are meant for `orgchart serve` behind a log collector.
func parseLogFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", LogFormatText:
		return log.TextFormatter, nil
	case LogFormatJSON:
		return log.JSONFormatter, nil
	case LogFormatLogfmt:
		return log.LogfmtFormatter, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown log format %q (must be text, json or logfmt)", s)
}

// progress measures one command and logs its stages at debug level.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// stage logs the time spent since the previous stage.
func (p *progress) stage(name string, keyvals ...any) {
	now := time.Now()
	p.logger.Debug(name, append(keyvals, "took", now.Sub(p.last).Round(time.Millisecond))...)
	p.last = now
}

// done logs msg with the total elapsed time, e.g. "Rendered 3 artifact(s) (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
