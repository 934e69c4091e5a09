package logs

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
)

func TestNew_FiltersByLevel(t *testing.T) {
	tests := []struct {
		lvl       string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{lvl: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{lvl: "info", wantInfo: true, wantWarn: true},
		{lvl: "warn", wantWarn: true},
		{lvl: "bogus", wantInfo: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.lvl, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.lvl)

			_ = level.Debug(l).Log("msg", "d-line")
			_ = level.Info(l).Log("msg", "i-line")
			_ = level.Warn(l).Log("msg", "w-line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("d-line")), out)
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("i-line")), out)
			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("w-line")), out)
		})
	}
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("INFO"))
	assert.True(t, ValidLevel(" warn "))
	assert.False(t, ValidLevel("trace"))
}
