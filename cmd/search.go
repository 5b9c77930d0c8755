package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regview/internal/config"
	"github.com/zjrosen/regview/internal/explorer"
	"github.com/zjrosen/regview/internal/presentation"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the object index",
	Long: `Search object names in the index without starting the explorer.

Matching is a case-insensitive substring test. A "category/" prefix limits
the search to one category, and "category/" alone lists the category.

Examples:
  regview search FOO
  regview search mntner/FOO
  regview search person/ --all -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd.Context(), os.Stdout, cfg, args[0], searchAll, outputFormat)
	},
}

var (
	searchAll    bool
	outputFormat string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVarP(&searchAll, "all", "a", false, "list every match instead of the first batch")
	addOutputFlag(searchCmd)
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, json or yaml")
}

func runSearch(ctx context.Context, w io.Writer, c config.Config, query string, all bool, format string) error {
	f, err := presentation.ParseFormat(format)
	if err != nil {
		return err
	}
	minLen := c.Search.MinQueryLength
	if minLen <= 0 {
		minLen = explorer.DefaultMinQueryLength
	}
	if utf8.RuneCountInString(query) < minLen {
		return fmt.Errorf("query %q is shorter than %d characters", query, minLen)
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

	category, text := explorer.ParseQuery(query)
	pager := explorer.NewPager(explorer.Filter(idx, category, text), c.Search.BatchSize)
	pager.Pull()
	if all {
		pager.ShowAll()
	}
	return presentation.NewFormatter(w, f).FormatSearch(presentation.FromPager(query, pager))
}
