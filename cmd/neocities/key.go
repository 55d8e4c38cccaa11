package main

import (
	"os"

	"github.com/sagarc03/neocities"
	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Show API key",
	Long: `Show the API key of your site. Neocities generates one on first request.

Example:
  neocities key --username mysite --password secret`,
	Args: cobra.NoArgs,
	RunE: runKey,
}

func runKey(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.FetchAPIKey(cmd.Context())
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return getFormatter().FormatKey(os.Stdout, resp.APIKey)
}

var extensionsCmd = &cobra.Command{
	Use:   "extensions",
	Short: "List the file extensions Neocities accepts",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return getFormatter().FormatExtensions(os.Stdout, neocities.ValidExtensions())
	},
}
