package cli

import (
	"runtime"

	"github.com/spf13/cobra"
)

func NewVersionCmd(parentCmd *cobra.Command, version, build string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  ArgsWithDefaultErrorFunc(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s version %s build %s (%s %s/%s)\n",
				cmd.Root().Name(), version, build, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
	if parentCmd != nil {
		parentCmd.AddCommand(cmd)
	}
	return cmd
}
