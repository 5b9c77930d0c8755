package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/presentation"
	"github.com/zjrosen/regview/internal/registry"
)

var showCmd = &cobra.Command{
	Use:   "show <category/name>",
	Short: "Print one registry object",
	Long: `Print an object's attributes in source order, the objects they reference
and the objects that reference it.

Examples:
  regview show mntner/FOO-MNT
  regview show /person/FOO-DN42 -o yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd.Context(), os.Stdout, cfg, args[0], outputFormat)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	addOutputFlag(showCmd)
}

func runShow(ctx context.Context, w io.Writer, c config.Config, path, format string) error {
	f, err := presentation.ParseFormat(format)
	if err != nil {
		return err
	}
	// Accept the fragment form as well.
	target, ok := registry.ParseTarget(strings.TrimPrefix(strings.TrimPrefix(path, "#"), "/"))
	if !ok {
		return fmt.Errorf("invalid object path %q (want category/name)", path)
	}

	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	detail, err := explorer.NewResolver(sess.client).Resolve(ctx, target)
	if err != nil {
		return fmt.Errorf("%s: %w", explorer.ErrorMessage(err), err)
	}
	return presentation.NewFormatter(w, f).FormatObject(presentation.FromDetail(detail))
}
