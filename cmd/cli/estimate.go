package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eosbp/bpclaim/claim"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/metric"
	"github.com/eosbp/bpclaim/reward"
)

const DefaultMaxColWidth = 60

// EstimateView is printed by the estimate command.
type EstimateView struct {
	Producer  string           `json:"producer"`
	Symbol    string           `json:"symbol"`
	Threshold float64          `json:"threshold"`
	Claimable bool             `json:"claimable"`
	Snapshot  *claim.Snapshot  `json:"snapshot"`
	Estimate  *reward.Estimate `json:"estimate"`
}

func NewEstimateCmd(parentCmd *cobra.Command, parentVc *viper.Viper) *cobra.Command {
	cmd, vc := NewCommand(parentCmd, parentVc, "estimate", "Estimate the pending reward without claiming")
	cmd.Args = ArgsWithDefaultErrorFunc(cobra.NoArgs)
	flags := cmd.Flags()
	addChainFlags(flags)
	flags.Bool("json", false, "Print as JSON")
	flags.Uint("max_col_width", DefaultMaxColWidth, "Max column width of the table")
	BindPFlags(vc, flags)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg := &ChainConfig{}
		if err := loadConfig(vc, cmd.Flags(), cfg); err != nil {
			return err
		}
		ctx, cancel := CommandContext(cmd.Context())
		defer cancel()
		v, err := RunEstimate(ctx, cfg)
		if err != nil {
			return err
		}
		if vc.GetBool("json") {
			return JsonPrettyPrintln(cmd.OutOrStdout(), v)
		}
		PrintEstimateView(cmd.OutOrStdout(), v, vc.GetUint("max_col_width"))
		return nil
	}
	return cmd
}

func RunEstimate(ctx context.Context, cfg *ChainConfig) (*EstimateView, error) {
	est, err := reward.NewEstimator(cfg.Params, log.WithModule("reward"))
	if err != nil {
		return nil, err
	}
	m := metric.NewRunMetric(cfg.Producer)
	cc := cfg.NewChainClient(m.OnRequest)
	claimer := claim.NewClaimer(cc, est, nil, nil, cfg.ClaimerConfig())

	snap, e, err := claimer.EstimateReward(ctx)
	if cfg.MetricsFile != "" {
		if e != nil {
			m.SetEstimate(cfg.Symbol, e.Reward, cfg.Threshold)
		}
		if merr := m.WriteTextfile(cfg.MetricsFile); merr != nil {
			log.Warnf("Fail to write metrics err=%+v", merr)
		}
	}
	if err != nil {
		return nil, err
	}
	return &EstimateView{
		Producer:  cfg.Producer,
		Symbol:    cfg.Symbol,
		Threshold: cfg.Threshold,
		Claimable: reward.NewGate(cfg.Threshold).Allows(e.Reward),
		Snapshot:  snap,
		Estimate:  e,
	}, nil
}

func EstimateViewToTable(v *EstimateView, maxColWidth uint) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = maxColWidth
	table.AddRow("Producer", v.Producer)
	table.AddRow("Symbol", v.Symbol)
	if s := v.Snapshot; s != nil {
		table.AddRow("Time", s.Time.UTC().Format("2006-01-02T15:04:05.000"))
		if s.Supply != nil {
			table.AddRow("Supply", s.Supply.Supply.StringFixed(4))
		}
		if s.Global != nil {
			table.AddRow("PervoteBucket", s.Global.PervoteBucket)
			table.AddRow("LastPervoteBucketFill", s.Global.LastPervoteBucketFill.UTC().Format("2006-01-02T15:04:05.000"))
			table.AddRow("TotalProducerVoteWeight", fmt.Sprintf("%.4f", s.Global.TotalProducerVoteWeight))
		}
		if s.Producer != nil {
			table.AddRow("TotalVotes", fmt.Sprintf("%.4f", s.Producer.TotalVotes))
			table.AddRow("UnpaidBlocks", s.Producer.UnpaidBlocks)
			table.AddRow("IsActive", s.Producer.IsActive)
		}
	}
	if e := v.Estimate; e != nil {
		table.AddRow("ElapsedUsec", fmt.Sprintf("%.0f", e.ElapsedUsec))
		table.AddRow("NewTokens", fmt.Sprintf("%.4f", e.NewTokens))
		table.AddRow("ToPerVotePay", fmt.Sprintf("%.4f", e.ToPerVotePay))
		table.AddRow("VoteShare", fmt.Sprintf("%.8f", e.VoteShare))
		table.AddRow("Reward", fmt.Sprintf("%.4f %s", e.Reward, v.Symbol))
	}
	table.AddRow("Threshold", fmt.Sprintf("%.4f", v.Threshold))
	table.AddRow("Claimable", v.Claimable)
	return table
}

func PrintEstimateView(w io.Writer, v *EstimateView, maxColWidth uint) {
	fmt.Fprintln(w, EstimateViewToTable(v, maxColWidth))
}
