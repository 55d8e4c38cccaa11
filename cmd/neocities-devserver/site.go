package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/neocities"
	"github.com/sagarc03/neocities/config"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage site accounts",
}

var siteAddCmd = &cobra.Command{
	Use:   "add <sitename>",
	Short: "Create a site",
	Long: `Create a site account seeded with the default index.html.

Examples:
  neocities-devserver site add demo --password secret
  neocities-devserver site add blog --password secret --tag art --tag games`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteAdd,
}

var siteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List sites",
	Args:    cobra.NoArgs,
	RunE:    runSiteList,
}

var siteRotateKeyCmd = &cobra.Command{
	Use:   "rotate-key <sitename>",
	Short: "Replace the API key of a site",
	Args:  cobra.ExactArgs(1),
	RunE:  runSiteRotateKey,
}

var (
	sitePassword string
	siteAPIKey   string
	siteDomain   string
	siteTags     []string
)

func init() {
	siteAddCmd.Flags().StringVar(&sitePassword, "password", "", "site password (required)")
	siteAddCmd.Flags().StringVar(&siteAPIKey, "api-key", "", "fixed API key (default: generated on first request)")
	siteAddCmd.Flags().StringVar(&siteDomain, "domain", "", "custom domain")
	siteAddCmd.Flags().StringArrayVar(&siteTags, "tag", nil, "site tag (repeatable)")
	_ = siteAddCmd.MarkFlagRequired("password")

	siteCmd.AddCommand(siteAddCmd)
	siteCmd.AddCommand(siteListCmd)
	siteCmd.AddCommand(siteRotateKeyCmd)
}

func runSiteAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	site, err := service.CreateSite(ctx, neocities.NewSite{
		Sitename: args[0],
		Password: sitePassword,
		APIKey:   siteAPIKey,
		Domain:   siteDomain,
		Tags:     siteTags,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Site '%s' created.\n", site.Sitename)
	return nil
}

func runSiteList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	sites, err := service.ListSites(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sites) == 0 {
		_, _ = fmt.Fprintln(out, "No sites.")
		return nil
	}

	maxNameLen := len("SITENAME")
	for _, s := range sites {
		maxNameLen = max(maxNameLen, len(s.Sitename))
	}

	_, _ = fmt.Fprintf(out, "%-*s  %8s  %-31s  %s\n", maxNameLen, "SITENAME", "HITS", "CREATED", "TAGS")
	for _, s := range sites {
		_, _ = fmt.Fprintf(out, "%-*s  %8d  %-31s  %s\n",
			maxNameLen, s.Sitename, s.Hits, s.CreatedAt.UTC().Format(neocities.TimeLayout), strings.Join(s.Tags, ", "))
	}
	return nil
}

func runSiteRotateKey(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := openService(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if _, err := service.Info(ctx, args[0]); err != nil {
		return err
	}

	key, err := service.RotateAPIKey(ctx, args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}
