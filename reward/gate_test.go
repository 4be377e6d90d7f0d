package reward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_Boundary(t *testing.T) {
	g := NewGate(DefaultThreshold)
	assert.True(t, g.Allows(100))
	assert.True(t, g.Allows(100.0001))
	assert.False(t, g.Allows(99.9999999))
	assert.False(t, g.Allows(math.Nextafter(100, 0)))
	assert.False(t, g.Allows(0))
}

func TestGate_ThresholdChangesGatingOnly(t *testing.T) {
	e := newTestEstimator(t, DefaultParams())
	est, err := e.Estimate(exampleInputs())
	if !assert.NoError(t, err) {
		return
	}
	est2, err := e.Estimate(exampleInputs())
	assert.NoError(t, err)
	assert.Equal(t, est, est2)

	assert.True(t, NewGate(est.Reward).Allows(est.Reward))
	assert.False(t, NewGate(est.Reward+1).Allows(est.Reward))
	assert.True(t, NewGate(0).Allows(0))
}
