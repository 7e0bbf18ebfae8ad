package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// New builds a logger writing to out (stdout when nil).
// format is "json" (default) or "text"; level is any logrus level name.
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	if out == nil {
		out = os.Stdout
	}
	log := logrus.New()
	log.Out = out
	log.Level = lvl
	switch strings.ToLower(format) {
	case "", "json":
		log.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "severity",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	case "text":
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}
	return log, nil
}
