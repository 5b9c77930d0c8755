package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/presentation"
	"github.com/zjrosen/regview/internal/registry"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show registry session info and category counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInfo(cmd.Context(), os.Stdout, cfg, outputFormat)
	},
}

var roaCmd = &cobra.Command{
	Use:   "roa <v4|v6|json>",
	Short: "Download the route origin authorizations",
	Long: `Print one of the service's ROA exports as served: bird filter tables for
v4 and v6, or the JSON export.

Examples:
  regview roa json > roa.json
  regview roa v6`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(registry.ROAv4), string(registry.ROAv6), string(registry.ROAJSON)},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runROA(cmd.Context(), os.Stdout, cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(roaCmd)
	addOutputFlag(infoCmd)
}

func runInfo(ctx context.Context, w io.Writer, c config.Config, format string) error {
	f, err := presentation.ParseFormat(format)
	if err != nil {
		return err
	}
	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	idx, err := explorer.NewIndexCache(sess.client).Ensure(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", explorer.ErrorMessage(err), err)
	}
	return presentation.NewFormatter(w, f).FormatInfo(presentation.FromIndex(sess.client.BaseURL(), idx))
}

func runROA(ctx context.Context, w io.Writer, c config.Config, name string) error {
	format, err := registry.ParseROAFormat(name)
	if err != nil {
		return err
	}
	sess, err := newSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	body, err := sess.client.ROA(ctx, format)
	if err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}
