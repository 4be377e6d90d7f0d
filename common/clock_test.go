package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTestClock(t *testing.T) {
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	cl := NewTestClock(base)
	assert.Equal(t, base, cl.Now())

	cl.PassTime(time.Minute)
	assert.Equal(t, base.Add(time.Minute), cl.Now())

	cl.SetTime(base)
	assert.Equal(t, base.Add(time.Minute), cl.Now(), "clock never goes back")
}
