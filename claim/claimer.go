package claim

import (
	"context"
	"time"

	"github.com/eosbp/bpclaim/common"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/module"
	"github.com/eosbp/bpclaim/reward"
)

const DefaultGateSymbol = "EOS"

type Config struct {
	Producer string
	// Symbol is the reward token. The reward gate only applies when it
	// equals GateSymbol.
	Symbol     string
	GateSymbol string
	Threshold  float64
}

// Snapshot is the chain state read for one estimation.
type Snapshot struct {
	Supply   *module.TokenSupply    `json:"supply"`
	Global   *module.GlobalState    `json:"global"`
	Producer *module.ProducerRecord `json:"producer"`
	Time     time.Time              `json:"time"`
}

// Result reports what one run did.
type Result struct {
	Producer   string           `json:"producer"`
	Symbol     string           `json:"symbol"`
	Gated      bool             `json:"gated"`
	Skipped    bool             `json:"skipped"`
	Threshold  float64          `json:"threshold,omitempty"`
	Snapshot   *Snapshot        `json:"snapshot,omitempty"`
	Estimate   *reward.Estimate `json:"estimate,omitempty"`
	Submission *Submission      `json:"submission,omitempty"`
}

type Claimer struct {
	reader    module.ChainStateReader
	estimator *reward.Estimator
	gate      reward.Gate
	submitter *Submitter
	clock     common.Clock
	cfg       Config
	log       log.Logger
}

func NewClaimer(reader module.ChainStateReader, est *reward.Estimator, sub *Submitter, cl common.Clock, cfg Config) *Claimer {
	if cfg.GateSymbol == "" {
		cfg.GateSymbol = DefaultGateSymbol
	}
	if cfg.Symbol == "" {
		cfg.Symbol = cfg.GateSymbol
	}
	if cl == nil {
		cl = &common.GoTimeClock{}
	}
	return &Claimer{
		reader:    reader,
		estimator: est,
		gate:      reward.NewGate(cfg.Threshold),
		submitter: sub,
		clock:     cl,
		cfg:       cfg,
		log:       log.WithFields(log.Fields{log.FieldKeyModule: "claim", log.FieldKeyProducer: cfg.Producer}),
	}
}

// GateApplies reports whether the reward gate is evaluated for the symbol.
func (c *Claimer) GateApplies() bool {
	return c.cfg.Symbol == c.cfg.GateSymbol
}

// ReadSnapshot fetches token supply, global state and the producer record.
func (c *Claimer) ReadSnapshot(ctx context.Context) (*Snapshot, error) {
	supply, err := c.reader.GetTokenSupply(ctx, c.cfg.Symbol)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read token supply(symbol=%s)", c.cfg.Symbol)
	}
	global, err := c.reader.GetGlobalState(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "fail to read global state")
	}
	producer, err := c.reader.GetProducer(ctx, c.cfg.Producer)
	if err != nil {
		return nil, errors.Wrapf(err, "fail to read producer(owner=%s)", c.cfg.Producer)
	}
	return &Snapshot{
		Supply:   supply,
		Global:   global,
		Producer: producer,
		Time:     c.clock.Now(),
	}, nil
}

// EstimateReward reads the chain state and estimates the pending reward.
func (c *Claimer) EstimateReward(ctx context.Context) (*Snapshot, *reward.Estimate, error) {
	snap, err := c.ReadSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	est, err := c.estimator.Estimate(reward.NewInputs(snap.Supply, snap.Global, snap.Producer, snap.Time))
	if err != nil {
		return snap, nil, err
	}
	return snap, est, nil
}

// Run evaluates the gate when it applies and submits the claim.
func (c *Claimer) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		Producer: c.cfg.Producer,
		Symbol:   c.cfg.Symbol,
	}
	if c.GateApplies() {
		res.Gated = true
		res.Threshold = c.gate.Threshold
		snap, est, err := c.EstimateReward(ctx)
		res.Snapshot = snap
		if err != nil {
			return res, err
		}
		res.Estimate = est
		c.log.Infof("Estimated reward %.4f %s (threshold %.4f)", est.Reward, c.cfg.Symbol, c.gate.Threshold)
		if !c.gate.Allows(est.Reward) {
			c.log.Infof("Reward %.4f is below threshold %.4f, claim skipped", est.Reward, c.gate.Threshold)
			res.Skipped = true
			return res, nil
		}
	} else {
		c.log.Debugf("Reward gate skipped for symbol %s", c.cfg.Symbol)
	}

	sub, err := c.submitter.Submit(ctx)
	res.Submission = sub
	if err != nil {
		c.log.Errorf("Claim failed err=%v", err)
		return res, err
	}
	return res, nil
}
