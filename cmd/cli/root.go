package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
)

const (
	ExitFailure         = 1
	ExitIllegalArgument = 2
	ExitSubmission      = 3
)

// NewRootCmd returns the bpclaim command tree.
func NewRootCmd(version, build string) (*cobra.Command, *viper.Viper) {
	rootCmd, rootVc := NewCommand(nil, nil, "bpclaim", "Vote pay reward claimer for block producers")
	rootCmd.SilenceUsage = true
	rootVc.SetEnvPrefix(EnvPrefix)
	rootVc.Set("env_prefix", EnvPrefix)

	pflags := rootCmd.PersistentFlags()
	pflags.StringP("config", "c", "", "Configuration file path (json, yaml or toml)")
	pflags.BoolP("verbose", "v", false, "Print log entries to the console at the log level")
	pflags.BoolP("debug", "d", false, "Log at debug level")
	pflags.StringP("log_file", "l", DefaultLogFile, "Log file path")
	BindPFlags(rootVc, pflags)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := readConfigFile(rootVc); err != nil {
			return err
		}
		return SetupLogger(rootVc)
	}

	NewClaimCmd(rootCmd, rootVc)
	NewEstimateCmd(rootCmd, rootVc)
	rootCmd.AddCommand(NewKeystoreCmd("keystore"))
	NewGenerateMarkdownCommand(rootCmd)
	NewVersionCmd(rootCmd, version, build)
	return rootCmd, rootVc
}

// SetupLogger applies the logging flags to the global logger. Entries
// reach the log file at the log level while the console stays silent
// unless verbose is set.
func SetupLogger(vc *viper.Viper) error {
	logger := log.GlobalLogger()
	lv := log.InfoLevel
	if vc.GetBool("debug") {
		lv = log.DebugLevel
	}
	logger.SetLevel(lv)
	if vc.GetBool("verbose") {
		logger.SetConsoleLevel(lv)
	} else {
		logger.SetConsoleLevel(log.PanicLevel)
	}

	if fn := vc.GetString("log_file"); fn != "" {
		w, err := log.NewWriter(&log.WriterConfig{Filename: fn})
		if err != nil {
			return errors.IllegalArgumentError.Wrapf(err, "InvalidLogFile(path=%s)", fn)
		}
		logger.SetFileWriter(w)
	}

	if vc.IsSet("log_forwarder") {
		fc := &log.ForwarderConfig{}
		if err := vc.UnmarshalKey("log_forwarder", fc, ViperDecodeOptJson); err != nil {
			return errors.IllegalArgumentError.Wrap(err, "InvalidLogForwarder")
		}
		if err := log.AddForwarder(fc); err != nil {
			return err
		}
	}
	return nil
}

// CommandContext returns a context cancelled by SIGINT or SIGTERM.
func CommandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func ExitCodeOf(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IllegalArgumentError.Equals(err):
		return ExitIllegalArgument
	case errors.IsSubmission(err):
		return ExitSubmission
	default:
		return ExitFailure
	}
}
