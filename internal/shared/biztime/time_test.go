package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfMonthUTC(t *testing.T) {
	in := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.FixedZone("X", -5*3600))

	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), StartOfMonthUTC(in))
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), StartOfNextMonthUTC(in))
}

func TestFromUnix(t *testing.T) {
	assert.True(t, FromUnix(0).IsZero())
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), FromUnix(1767225600))
}
