package cli

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eosbp/bpclaim/claim"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/metric"
	"github.com/eosbp/bpclaim/reward"
)

func NewClaimCmd(parentCmd *cobra.Command, parentVc *viper.Viper) *cobra.Command {
	cmd, vc := NewCommand(parentCmd, parentVc, "claim", "Claim producer rewards")
	cmd.Long = "Estimate the pending vote pay reward of the producer and submit " +
		"claimrewards when it reaches the threshold. The estimation is skipped " +
		"for a symbol other than the gate symbol."
	cmd.Args = ArgsWithDefaultErrorFunc(cobra.NoArgs)
	flags := cmd.Flags()
	addClaimFlags(flags)
	BindPFlags(vc, flags)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := &ClaimConfig{}
		if err := loadConfig(vc, cmd.Flags(), cfg); err != nil {
			return err
		}
		ctx, cancel := CommandContext(cmd.Context())
		defer cancel()
		_, err := RunClaim(ctx, cfg, cmd.OutOrStdout())
		return err
	}
	return cmd
}

// RunClaim runs one claim and prints the result. A submission failure is
// only logged when TolerateSubmitFailure is set.
func RunClaim(ctx context.Context, cfg *ClaimConfig, out io.Writer) (*claim.Result, error) {
	logger := log.WithFields(log.Fields{log.FieldKeyModule: "cli", log.FieldKeyProducer: cfg.Producer})
	w, err := cfg.Wallet()
	if err != nil {
		return nil, err
	}
	est, err := reward.NewEstimator(cfg.Params, log.WithModule("reward"))
	if err != nil {
		return nil, err
	}

	m := metric.NewRunMetric(cfg.Producer)
	cc := cfg.NewChainClient(m.OnRequest)
	sub := claim.NewSubmitter(cc, w, nil, cfg.SubmitterConfig())
	claimer := claim.NewClaimer(cc, est, sub, nil, cfg.ClaimerConfig())

	res, err := claimer.Run(ctx)
	recordResult(m, res, err)
	if cfg.MetricsFile != "" {
		if merr := m.WriteTextfile(cfg.MetricsFile); merr != nil {
			logger.Warnf("Fail to write metrics err=%+v", merr)
		}
	}
	if res != nil {
		if perr := JsonPrettyPrintln(out, res); perr != nil {
			logger.Warnf("Fail to print result err=%+v", perr)
		}
	}

	if err != nil {
		if errors.IsSubmission(err) && cfg.TolerateSubmitFailure {
			logger.Warnf("Claim is not accepted, ignored err=%v", err)
			return res, nil
		}
		return res, err
	}
	return res, nil
}

func recordResult(m *metric.RunMetric, res *claim.Result, err error) {
	submitted, skipped := false, false
	if res != nil {
		if res.Estimate != nil {
			m.SetEstimate(res.Symbol, res.Estimate.Reward, res.Threshold)
		}
		skipped = res.Skipped
		submitted = err == nil && res.Submission != nil && !res.Submission.DryRun
	}
	m.SetOutcome(submitted, skipped, err, time.Now())
}
