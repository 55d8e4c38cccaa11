package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sagarc03/neocities/clientcli"
	"github.com/spf13/cobra"
)

var (
	listPath   string
	listFormat string
	listLong   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the file list of your Neocities site",
	Long: `Show the file list of your Neocities site.

Examples:
  neocities list
  neocities list --path img
  neocities list -l
  neocities list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listPath, "path", "", "if provided, show a list of files for this path")
	listCmd.Flags().StringVar(&listFormat, "format", "", "output format: json")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show size and update time")
}

func runList(cmd *cobra.Command, _ []string) error {
	formatter, err := commandFormatter(listFormat)
	if err != nil {
		return err
	}
	if hf, ok := formatter.(*clientcli.HumanFormatter); ok {
		hf.Long = listLong
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	resp, err := client.FetchFileList(cmd.Context(), listPath)
	if err != nil {
		return handleError(os.Stderr, err)
	}

	return formatter.FormatList(os.Stdout, resp)
}

// commandFormatter honours a per-command --format on top of --json.
func commandFormatter(format string) (clientcli.Formatter, error) {
	switch strings.ToLower(format) {
	case "":
		return getFormatter(), nil
	case "json":
		return &clientcli.JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("invalid value %q for --format: expected json", format)
	}
}
