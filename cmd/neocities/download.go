package main

import (
	"os"

	"github.com/sagarc03/neocities/clientcli"
	"github.com/spf13/cobra"
)

var downloadVerify bool

var downloadCmd = &cobra.Command{
	Use:   "download <dir>",
	Short: "Download all the files on your Neocities site",
	Long: `Download all the files on your Neocities site into an existing directory.

Files are fetched from the public site, so the listing and the downloaded
content may differ for a moment after an upload.

Examples:
  neocities download ./backup
  neocities download --verify ./backup`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().BoolVar(&downloadVerify, "verify", false, "check each file against the listed sha1 hash")
}

func runDownload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()
	opts := []clientcli.DownloadOption{
		clientcli.WithProgress(func(p clientcli.Progress) {
			_ = formatter.FormatDownload(os.Stdout, p)
		}),
	}
	if downloadVerify {
		opts = append(opts, clientcli.WithChecksumVerify())
	}

	if err := client.DownloadAll(cmd.Context(), args[0], opts...); err != nil {
		return handleError(os.Stderr, err)
	}
	return nil
}
