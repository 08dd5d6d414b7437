package main

import (
	"github.com/rs/zerolog"

	"github.com/heavyprofile/hprofile/internal/archive"
)

// logSink reports fetch status through the CLI logger. Progress is throttled
// to 10% steps so a chunked download does not flood the terminal; when the
// server sends no Content-Length it falls back to a step per 10 MiB.
type logSink struct {
	log      zerolog.Logger
	lastStep int64
}

const unknownTotalStep = 10 << 20

var _ archive.StatusSink = (*logSink)(nil)

func newLogSink(log zerolog.Logger) *logSink {
	return &logSink{log: log, lastStep: -1}
}

func (s *logSink) Msg(msg string) {
	s.log.Info().Msg(msg)
}

func (s *logSink) Progress(written, total int64) {
	var step int64
	if total == archive.UnknownTotal {
		step = written / unknownTotalStep
		if step > s.lastStep {
			s.lastStep = step
			s.log.Info().Int64("written", written).Msg("downloading")
		}
		return
	}

	if total > 0 {
		step = written * 10 / total
	}
	if step > s.lastStep {
		s.lastStep = step
		s.log.Info().
			Int64("written", written).
			Int64("total", total).
			Msgf("%d%%", step*10)
	}
}
