package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eosbp/bpclaim/common/errors"
)

const (
	FlagAnnotationCustom = "custom"
)

func NewCommand(parentCmd *cobra.Command, parentVc *viper.Viper, use, short string) (*cobra.Command, *viper.Viper) {
	c := &cobra.Command{Use: use, Short: short}
	c.SetFlagErrorFunc(DefaultFlagErrorFunc)
	if parentCmd != nil {
		parentCmd.AddCommand(c)
	}

	var pFlags *pflag.FlagSet
	envPrefix := strings.ReplaceAll(c.CommandPath(), " ", "_")
	if parentVc != nil {
		if v := parentVc.Get("env_prefix"); v != nil {
			envPrefix = v.(string)
		}
		if v := parentVc.Get("pflags"); v != nil {
			pFlags = v.(*pflag.FlagSet)
		}
	}
	vc := NewViper(envPrefix)
	if pFlags != nil {
		BindPFlags(vc, pFlags)
	}

	return c, vc
}

func NewViper(envPrefix string) *viper.Viper {
	vc := viper.New()
	vc.AutomaticEnv()
	vc.SetEnvPrefix(envPrefix)
	vc.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vc.Set("env_prefix", envPrefix)
	return vc
}

func BindPFlags(vc *viper.Viper, pFlags *pflag.FlagSet) error {
	var bindPFlags *pflag.FlagSet
	if v := vc.Get("pflags"); v != nil {
		bindPFlags = v.(*pflag.FlagSet)
	} else {
		bindPFlags = pflag.NewFlagSet("pflags", pflag.ContinueOnError)
		vc.Set("pflags", bindPFlags)
	}
	bindPFlags.AddFlagSet(pFlags)
	return vc.BindPFlags(pFlags)
}

func MarkAnnotationCustom(fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := fs.SetAnnotation(name, cobra.BashCompCustom, []string{FlagAnnotationCustom}); err != nil {
			return err
		}
	}
	return nil
}

func MarkAnnotationHidden(fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := fs.MarkHidden(name); err != nil {
			return err
		}
	}
	return nil
}

func isCheckedFlag(f *pflag.Flag, names []string) bool {
	if anns, ok := f.Annotations[cobra.BashCompCustom]; ok && anns[0] == FlagAnnotationCustom {
		return true
	}
	for _, name := range names {
		if f.Name == name {
			return true
		}
	}
	return false
}

// ValidateFlagsWithViper reports custom annotated or named flags which are
// set neither by flag nor by environment or configuration file.
func ValidateFlagsWithViper(vc *viper.Viper, fs *pflag.FlagSet, flagNames ...string) error {
	var missing []string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || !isCheckedFlag(f, flagNames) {
			return
		}
		if vc.GetString(f.Name) == f.DefValue {
			missing = append(missing, f.Name)
		}
	})
	if len(missing) > 0 {
		return errors.IllegalArgumentError.Errorf(`required flag(s) "%s" not set`, strings.Join(missing, `", "`))
	}
	return nil
}

func ViperDecodeOptJson(c *mapstructure.DecoderConfig) {
	c.TagName = "json"
	c.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		func(inputValType reflect.Type, outValType reflect.Type, input interface{}) (interface{}, error) {
			if outValType.Name() == "RawMessage" {
				if inputValType.Kind() == reflect.Map && inputValType.Key().Kind() == reflect.String {
					return json.Marshal(input)
				} else if inputValType.Kind() == reflect.String && input != "" {
					return os.ReadFile(input.(string))
				}
			}
			return input, nil
		},
		mapstructure.StringToTimeDurationHookFunc(),
		c.DecodeHook)
}

func ArgsWithErrorFunc(arg cobra.PositionalArgs,
	errFunc func(cmd *cobra.Command, err error) error) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := arg(cmd, args); err != nil {
			return errFunc(cmd, err)
		}
		return nil
	}
}

func ArgsWithDefaultErrorFunc(arg cobra.PositionalArgs) cobra.PositionalArgs {
	return ArgsWithErrorFunc(arg, DefaultArgErrorFunc)
}

func DefaultArgErrorFunc(cmd *cobra.Command, err error) error {
	cmd.Println("Usage: " + cmd.UseLine())
	return errors.IllegalArgumentError.Wrap(err, err.Error())
}

func DefaultFlagErrorFunc(cmd *cobra.Command, err error) error {
	names := make([]string, 0)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = name + " or -" + f.Shorthand
		}
		names = append(names, name)
	})
	cmd.Println("Available Flags: " + strings.Join(names, ", "))
	return errors.IllegalArgumentError.Wrap(err, err.Error())
}

func JsonPrettyPrintln(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Errorf("failed JsonPrettyPrintln v=%+v, err=%+v", v, err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
