package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eosbp/bpclaim/common/errors"
)

func NewGenerateMarkdownCommand(parentCmd *cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc [FILE]",
		Short: "Generate markdown for the command line interface",
		Args:  ArgsWithDefaultErrorFunc(cobra.MaximumNArgs(1)),
	}
	if parentCmd != nil {
		parentCmd.AddCommand(cmd)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		filePath := cmd.Root().Name() + ".md"
		if len(args) > 0 {
			filePath = args[0]
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()
		return GenerateMarkdown(cmd.Root(), f)
	}
	return cmd
}

func skipInMarkdown(cmd *cobra.Command) bool {
	return cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "completion"
}

func anchorOf(cmd *cobra.Command) string {
	p := cmd.CommandPath()
	return fmt.Sprintf("[%s](#%s)", p, strings.ReplaceAll(p, " ", "-"))
}

type markdownWriter struct {
	*bufio.Writer
}

func (w markdownWriter) heading(level int, title string) {
	fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", level), title)
}

func (w markdownWriter) flags(title string, fs *pflag.FlagSet) {
	w.heading(3, title)
	fmt.Fprintln(w, "| Name, shorthand | Default | Description |")
	fmt.Fprintln(w, "|---|---|---|")
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" && f.ShorthandDeprecated == "" {
			name += ", -" + f.Shorthand
		}
		fmt.Fprintf(w, "| %s | %s | %s |\n", name, f.DefValue, f.Usage)
	})
	fmt.Fprintln(w)
}

func (w markdownWriter) commands(title string, cmds ...*cobra.Command) {
	w.heading(3, title)
	fmt.Fprintln(w, "| Command | Description |")
	fmt.Fprintln(w, "|---|---|")
	for _, c := range cmds {
		if !skipInMarkdown(c) {
			fmt.Fprintf(w, "| %s | %s |\n", anchorOf(c), c.Short)
		}
	}
	fmt.Fprintln(w)
}

func (w markdownWriter) command(cmd *cobra.Command) {
	if skipInMarkdown(cmd) {
		return
	}
	if !cmd.HasParent() {
		name := cmd.Name()
		w.heading(1, strings.ToUpper(name[:1])+name[1:])
	}
	w.heading(2, cmd.CommandPath())

	w.heading(3, "Description")
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	fmt.Fprintf(w, "%s\n\n", desc)

	w.heading(3, "Usage")
	fmt.Fprintf(w, "`%s`\n\n", cmd.UseLine())

	if cmd.HasLocalFlags() || cmd.HasPersistentFlags() {
		w.flags("Options", cmd.NonInheritedFlags())
	}
	if cmd.HasInheritedFlags() {
		w.flags("Inherited Options", cmd.InheritedFlags())
	}
	if cmd.HasAvailableSubCommands() {
		w.commands("Child commands", cmd.Commands()...)
	}
	if cmd.HasParent() {
		w.commands("Parent command", cmd.Parent())
	}
	for _, c := range cmd.Commands() {
		w.command(c)
	}
}

// GenerateMarkdown writes the reference of cmd and its descendants.
func GenerateMarkdown(cmd *cobra.Command, w io.Writer) error {
	mw := markdownWriter{bufio.NewWriter(w)}
	mw.command(cmd)
	return mw.Flush()
}
