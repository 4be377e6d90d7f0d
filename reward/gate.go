package reward

// Gate decides whether a claim is worth submitting.
type Gate struct {
	Threshold float64
}

func NewGate(threshold float64) Gate {
	return Gate{Threshold: threshold}
}

// Allows returns false when the reward is strictly below the threshold.
func (g Gate) Allows(reward float64) bool {
	return !(reward < g.Threshold)
}
