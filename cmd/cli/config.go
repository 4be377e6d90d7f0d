package cli

import (
	"bytes"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eosbp/bpclaim/claim"
	"github.com/eosbp/bpclaim/client"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/log"
	"github.com/eosbp/bpclaim/common/wallet"
	"github.com/eosbp/bpclaim/module"
	"github.com/eosbp/bpclaim/reward"
)

const (
	EnvPrefix      = "BPCLAIM"
	DefaultLogFile = "bpclaim.log"
	DefaultTimeout = 10 * time.Second
)

// ChainConfig is what a run needs to read the chain state and estimate the
// reward of a producer.
type ChainConfig struct {
	URI         string        `json:"uri" validate:"required,url"`
	Producer    string        `json:"bp-account" validate:"required,eos_name"`
	Symbol      string        `json:"symbol" validate:"required,eos_symbol"`
	GateSymbol  string        `json:"gate_symbol" validate:"required,eos_symbol"`
	Threshold   float64       `json:"threshold" validate:"min=0"`
	Timeout     time.Duration `json:"timeout" validate:"gt=0"`
	MetricsFile string        `json:"metrics_file,omitempty"`

	reward.Params `json:",squash"`
}

type ClaimConfig struct {
	ChainConfig `json:",squash"`

	Permission  string `json:"permission" validate:"required,eos_name"`
	Key         string `json:"key,omitempty" validate:"required_without=KeyStore"`
	KeyStore    string `json:"key_store,omitempty" validate:"required_without=Key"`
	KeyPassword string `json:"key_password,omitempty"`
	KeySecret   string `json:"key_secret,omitempty"`

	Expiration            time.Duration `json:"expiration" validate:"gt=0"`
	LocalABI              bool          `json:"local_abi"`
	DryRun                bool          `json:"dry_run"`
	TolerateSubmitFailure bool          `json:"tolerate_submit_failure"`
}

func addChainFlags(fs *pflag.FlagSet) {
	p := reward.DefaultParams()
	fs.StringP("uri", "u", "", "URI of the chain API endpoint (ex. https://api.eosnewyork.io)")
	fs.String("bp-account", "", "Block producer account name")
	fs.String("symbol", claim.DefaultGateSymbol, "Symbol of the reward token")
	fs.String("gate_symbol", claim.DefaultGateSymbol, "Reward gate is evaluated only for this symbol")
	fs.Float64("threshold", reward.DefaultThreshold, "Minimum estimated reward to claim")
	fs.Duration("timeout", DefaultTimeout, "Timeout of each API request")
	fs.String("metrics_file", "", "Write run metrics to the file in Prometheus text format")
	fs.Float64("continuous_rate", p.ContinuousRate, "Yearly continuous inflation rate")
	fs.Duration("block_lag", p.BlockLag, "Lag subtracted from now for the claim block time")
	fs.Float64("producer_divisor", p.ProducerDivisor, "Divisor of new tokens for producers")
	fs.Float64("per_block_divisor", p.PerBlockDivisor, "Divisor of producer pay for per block pay")
	fs.Float64("precision", p.Precision, "Smallest units per token")
	fs.Float64("usec_per_year", p.UsecPerYear, "Microseconds per year of the inflation model")
	_ = MarkAnnotationHidden(fs, "usec_per_year")
	_ = MarkAnnotationCustom(fs, "uri", "bp-account")
}

func addClaimFlags(fs *pflag.FlagSet) {
	addChainFlags(fs)
	fs.StringP("permission", "p", "", "Permission of the producer account to sign with")
	fs.StringP("key", "k", "", "Private key (WIF or PVT_K1_)")
	fs.String("key_store", "", "KeyStore file path, used when no key is given")
	fs.String("key_password", "", "Password for the KeyStore file")
	fs.String("key_secret", "", "Secret (password) file for the KeyStore")
	fs.Duration("expiration", claim.DefaultExpiration, "Expiration of the transaction")
	fs.Bool("local_abi", false, "Pack the action data locally instead of abi_json_to_bin")
	fs.Bool("dry_run", false, "Sign the transaction and print it without pushing")
	fs.Bool("tolerate_submit_failure", false, "Exit with zero even if the claim is not accepted")
	_ = MarkAnnotationCustom(fs, "permission")
}

func readConfigFile(vc *viper.Viper) error {
	p := vc.GetString("config")
	if p == "" {
		return nil
	}
	vc.SetConfigFile(p)
	if err := vc.MergeInConfig(); err != nil {
		return errors.IllegalArgumentError.Wrapf(err, "FailToReadConfig(path=%s)", p)
	}
	return nil
}

// loadConfig decodes flags, environment variables and the configuration
// file into cfg and validates it.
func loadConfig(vc *viper.Viper, fs *pflag.FlagSet, cfg interface{}) error {
	if err := readConfigFile(vc); err != nil {
		return err
	}
	if err := ValidateFlagsWithViper(vc, fs); err != nil {
		return err
	}
	if err := vc.Unmarshal(cfg, ViperDecodeOptJson); err != nil {
		return errors.IllegalArgumentError.Wrap(err, "InvalidConfig")
	}
	if err := NewValidator().Validate(cfg); err != nil {
		return errors.IllegalArgumentError.Wrap(err, "InvalidConfig")
	}
	return nil
}

func (cfg *ChainConfig) ClaimerConfig() claim.Config {
	return claim.Config{
		Producer:   cfg.Producer,
		Symbol:     cfg.Symbol,
		GateSymbol: cfg.GateSymbol,
		Threshold:  cfg.Threshold,
	}
}

func (cfg *ChainConfig) NewChainClient(observer client.RequestObserver) *client.ChainClient {
	hc := &http.Client{Timeout: cfg.Timeout}
	c := client.NewChainClient(hc, cfg.URI)
	if observer != nil {
		c.SetObserver(observer)
	}
	return c
}

func (cfg *ClaimConfig) SubmitterConfig() claim.SubmitterConfig {
	return claim.SubmitterConfig{
		Producer:   cfg.Producer,
		Permission: cfg.Permission,
		Expiration: cfg.Expiration,
		LocalABI:   cfg.LocalABI,
		DryRun:     cfg.DryRun,
	}
}

func (cfg *ClaimConfig) password() ([]byte, error) {
	if cfg.KeySecret == "" {
		return []byte(cfg.KeyPassword), nil
	}
	pb, err := os.ReadFile(cfg.KeySecret)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrapf(err, "FailToReadKeySecret(path=%s)", cfg.KeySecret)
	}
	return bytes.TrimRight(pb, "\r\n"), nil
}

// Wallet returns the signing wallet. The key is preferred over the
// KeyStore when both are given.
func (cfg *ClaimConfig) Wallet() (module.Wallet, error) {
	if cfg.Key != "" {
		w, err := wallet.NewFromWIF(cfg.Key)
		if err != nil {
			return nil, errors.IllegalArgumentError.Wrap(err, "InvalidKey")
		}
		return w, nil
	}
	if cfg.KeyStore == "" {
		return nil, errors.IllegalArgumentError.New("NoKeyOrKeyStore")
	}
	ks, err := os.ReadFile(cfg.KeyStore)
	if err != nil {
		return nil, errors.IllegalArgumentError.Wrapf(err, "FailToReadKeyStore(path=%s)", cfg.KeyStore)
	}
	pb, err := cfg.password()
	if err != nil {
		return nil, err
	}
	w, err := wallet.NewFromKeyStore(ks, pb)
	if err != nil {
		return nil, err
	}
	log.Debugf("Using KeyStore %s", cfg.KeyStore)
	return w, nil
}
