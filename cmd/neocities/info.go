package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	infoSitename string
	infoFormat   string
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about a Neocities site",
	Long: `Show information about your Neocities site, or any public site with
--sitename.

Examples:
  neocities info
  neocities info --sitename kyledrake
  neocities info --format json`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().StringVar(&infoSitename, "sitename", "", "Neocities sitename")
	infoCmd.Flags().StringVar(&infoFormat, "format", "", "output format: json")
}

func runInfo(cmd *cobra.Command, _ []string) error {
	formatter, err := commandFormatter(infoFormat)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.FetchInfo(cmd.Context(), infoSitename)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return formatter.FormatInfo(os.Stdout, resp)
}
