package reward

import (
	"math"
	"time"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	DefaultContinuousRate  = 0.04879
	DefaultBlockLag        = 500 * time.Second
	DefaultProducerDivisor = 5
	DefaultPerBlockDivisor = 4
	DefaultPrecision       = 10000
	DefaultUsecPerYear     = 52 * 7 * 24 * 3600 * 1000000
	DefaultThreshold       = 100
)

// Params are the constants of the vote pay inflation model.
type Params struct {
	// ContinuousRate is the yearly inflation rate.
	ContinuousRate float64 `json:"continuous_rate"`
	// BlockLag is subtracted from the current time to approximate the time
	// of the block the claim will land in.
	BlockLag        time.Duration `json:"block_lag"`
	ProducerDivisor float64       `json:"producer_divisor"`
	PerBlockDivisor float64       `json:"per_block_divisor"`
	// Precision converts token units into the smallest unit.
	Precision   float64 `json:"precision"`
	UsecPerYear float64 `json:"usec_per_year"`
}

func DefaultParams() Params {
	return Params{
		ContinuousRate:  DefaultContinuousRate,
		BlockLag:        DefaultBlockLag,
		ProducerDivisor: DefaultProducerDivisor,
		PerBlockDivisor: DefaultPerBlockDivisor,
		Precision:       DefaultPrecision,
		UsecPerYear:     DefaultUsecPerYear,
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func (p *Params) Validate() error {
	switch {
	case math.IsNaN(p.ContinuousRate) || math.IsInf(p.ContinuousRate, 0) || p.ContinuousRate < 0:
		return errors.IllegalArgumentError.Errorf("InvalidContinuousRate(rate=%v)", p.ContinuousRate)
	case p.BlockLag < 0:
		return errors.IllegalArgumentError.Errorf("InvalidBlockLag(lag=%v)", p.BlockLag)
	case !positive(p.ProducerDivisor):
		return errors.IllegalArgumentError.Errorf("InvalidProducerDivisor(divisor=%v)", p.ProducerDivisor)
	case !positive(p.PerBlockDivisor):
		return errors.IllegalArgumentError.Errorf("InvalidPerBlockDivisor(divisor=%v)", p.PerBlockDivisor)
	case !positive(p.Precision):
		return errors.IllegalArgumentError.Errorf("InvalidPrecision(precision=%v)", p.Precision)
	case !positive(p.UsecPerYear):
		return errors.IllegalArgumentError.Errorf("InvalidUsecPerYear(usec=%v)", p.UsecPerYear)
	}
	return nil
}
