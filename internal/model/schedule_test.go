package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockTimeScan(t *testing.T) {
	cases := map[string]struct {
		src  any
		want ClockTime
	}{
		"driver time":   {time.Date(0, 1, 1, 21, 45, 30, 0, time.UTC), "21:45"},
		"text bytes":    {[]byte("09:00:00"), "09:00:00"},
		"text string":   {"17:30", "17:30"},
		"null is empty": {nil, ""},
	}
	for name, tc := range cases {
		var c ClockTime
		assert.NoError(t, c.Scan(tc.src), name)
		assert.Equal(t, tc.want, c, name)
	}

	var c ClockTime
	assert.Error(t, c.Scan(int64(900)))
}
