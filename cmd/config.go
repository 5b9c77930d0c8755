package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/regview/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(os.Stdout, configPath())
		return err
	},
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <base-url>",
	Short: "Point regview at a different registry service",
	Long: `Save server.base_url in the config file. Comments and the other settings
in the file are kept.

Example:
  regview config set-url https://explorer.example.net/api/`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runSetURL(os.Stdout, configPath(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetURLCmd)
}

func runSetURL(w io.Writer, path, baseURL string) error {
	if path == "" {
		return fmt.Errorf("no config file location; pass --config")
	}
	if err := config.SaveServerURL(path, baseURL); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "server.base_url set to %s in %s\n", baseURL, path)
	return err
}
