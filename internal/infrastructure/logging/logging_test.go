package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	cases := []struct {
		level   string
		want    zerolog.Level
		debugOK bool
	}{
		{"debug", zerolog.DebugLevel, true},
		{"warn", zerolog.WarnLevel, false},
		{"", zerolog.InfoLevel, false},
		{"shouting", zerolog.InfoLevel, false},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		Setup(tc.level, &buf)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Errorf("Setup(%q) level = %s, want %s", tc.level, got, tc.want)
		}
		log.Debug().Msg("visible")
		if got := strings.Contains(buf.String(), "visible"); got != tc.debugOK {
			t.Errorf("Setup(%q) debug output = %v, want %v", tc.level, got, tc.debugOK)
		}
	}
}
