package reward

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/module"
)

// Inputs are the chain values the estimation depends on.
type Inputs struct {
	TokenSupply             decimal.Decimal
	PervoteBucket           int64
	LastPervoteBucketFill   time.Time
	TotalProducerVoteWeight float64
	ProducerVotes           float64
	Now                     time.Time
}

func NewInputs(ts *module.TokenSupply, gs *module.GlobalState, pr *module.ProducerRecord, now time.Time) *Inputs {
	return &Inputs{
		TokenSupply:             ts.Supply,
		PervoteBucket:           gs.PervoteBucket,
		LastPervoteBucketFill:   gs.LastPervoteBucketFill,
		TotalProducerVoteWeight: gs.TotalProducerVoteWeight,
		ProducerVotes:           pr.TotalVotes,
		Now:                     now,
	}
}

// Estimate keeps every intermediate value of the computation. Amounts are
// in the smallest unit except Reward, which is in token units.
type Estimate struct {
	ScaledSupply   float64 `json:"scaled_supply"`
	ElapsedUsec    float64 `json:"elapsed_usec"`
	Clamped        bool    `json:"clamped"`
	NewTokens      float64 `json:"new_tokens"`
	ToProducers    float64 `json:"to_producers"`
	ToPerBlockPay  float64 `json:"to_per_block_pay"`
	ToPerVotePay   float64 `json:"to_per_vote_pay"`
	AdjustedBucket float64 `json:"adjusted_bucket"`
	VoteShare      float64 `json:"vote_share"`
	RawReward      float64 `json:"raw_reward"`
	Reward         float64 `json:"reward"`
}

type Estimator struct {
	params Params
	log    log.Logger
}

func NewEstimator(p Params, logger log.Logger) (*Estimator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.WithModule("reward")
	}
	return &Estimator{params: p, log: logger}, nil
}

func (e *Estimator) Params() Params {
	return e.params
}

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func (e *Estimator) checkInputs(in *Inputs) error {
	if in.TokenSupply.IsNegative() {
		return errors.InvalidStateError.Errorf("NegativeSupply(supply=%s)", in.TokenSupply)
	}
	if in.PervoteBucket < 0 {
		return errors.InvalidStateError.Errorf("NegativeBucket(bucket=%d)", in.PervoteBucket)
	}
	if !finiteNonNegative(in.ProducerVotes) {
		return errors.InvalidStateError.Errorf("InvalidProducerVotes(votes=%v)", in.ProducerVotes)
	}
	if !finiteNonNegative(in.TotalProducerVoteWeight) {
		return errors.InvalidStateError.Errorf("InvalidTotalVoteWeight(weight=%v)", in.TotalProducerVoteWeight)
	}
	if in.TotalProducerVoteWeight == 0 {
		return errors.InvalidStateError.New("ZeroTotalVoteWeight")
	}
	return nil
}

// Estimate computes the pending vote pay of a producer as if the claim
// were executed at in.Now. It has no side effect on the chain.
func (e *Estimator) Estimate(in *Inputs) (*Estimate, error) {
	if err := e.checkInputs(in); err != nil {
		return nil, err
	}
	p := &e.params
	est := &Estimate{}

	est.ScaledSupply = in.TokenSupply.InexactFloat64() * p.Precision

	lagSec := int64(p.BlockLag / time.Second)
	lastBlockTimeUsec := float64(in.Now.Unix()-lagSec) * 1e6
	est.ElapsedUsec = lastBlockTimeUsec - float64(in.LastPervoteBucketFill.UnixMicro())
	if est.ElapsedUsec < 0 {
		e.log.Warnf("Last pervote bucket fill %s is ahead of the estimated block time, elapsed %.0fus clamped to zero",
			in.LastPervoteBucketFill.UTC().Format(time.RFC3339), est.ElapsedUsec)
		est.ElapsedUsec = 0
		est.Clamped = true
	}

	est.NewTokens = p.ContinuousRate * est.ScaledSupply * est.ElapsedUsec / p.UsecPerYear
	est.ToProducers = est.NewTokens / p.ProducerDivisor
	est.ToPerBlockPay = est.ToProducers / p.PerBlockDivisor
	est.ToPerVotePay = est.ToProducers - est.ToPerBlockPay
	est.AdjustedBucket = float64(in.PervoteBucket) + est.ToPerVotePay
	est.VoteShare = in.ProducerVotes / in.TotalProducerVoteWeight
	est.RawReward = est.AdjustedBucket * est.VoteShare
	est.Reward = est.RawReward / p.Precision

	if !finiteNonNegative(est.Reward) {
		return nil, errors.InvalidStateError.Errorf("InvalidReward(reward=%v)", est.Reward)
	}
	e.log.Debugf("Estimate elapsed=%.0fus new_tokens=%.4f per_vote=%.4f bucket=%.4f share=%.8f reward=%.4f",
		est.ElapsedUsec, est.NewTokens, est.ToPerVotePay, est.AdjustedBucket, est.VoteShare, est.Reward)
	return est, nil
}
