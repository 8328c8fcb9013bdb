package logger_test

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"pricecompare/internal/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    logger.Level
		wantErr bool
	}{
		{in: "debug", want: logger.LevelDebug},
		{in: " INFO ", want: logger.LevelInfo},
		{in: "Trace", want: logger.LevelTrace},
		{in: "off", want: logger.LevelOff},
		{in: "verbose", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c := qt.New(t)
			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				c.Assert(err, qt.ErrorMatches, "invalid level: .*")
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}

func TestLevelString(t *testing.T) {
	c := qt.New(t)
	c.Assert(logger.LevelWarn.String(), qt.Equals, "WARN")
	c.Assert(logger.Level(42).String(), qt.Equals, "Level(42)")
}

func TestNewLoggerFiltersByLevel(t *testing.T) {
	c := qt.New(t)
	buf := &bytes.Buffer{}
	l := logger.NewLogger(logger.LevelInfo, buf)

	l.Debugf("hidden %d", 1)
	l.Trace("hidden too")
	l.Infof("shown %d", 2)
	l.Warn("careful")
	l.Errorf("broken: %v", "x")

	out := buf.String()
	c.Assert(out, qt.Not(qt.Contains), "hidden")
	c.Assert(out, qt.Contains, "INFO :")
	c.Assert(out, qt.Contains, "shown 2")
	c.Assert(out, qt.Contains, "WARN :")
	c.Assert(out, qt.Contains, "ERROR:")
	c.Assert(out, qt.Contains, "broken: x")
}

func TestOffWritesNothing(t *testing.T) {
	c := qt.New(t)
	buf := &bytes.Buffer{}
	l := logger.NewLogger(logger.LevelOff, buf)
	l.Error("nope")
	l.Infof("nope")
	c.Assert(buf.Len(), qt.Equals, 0)
}
