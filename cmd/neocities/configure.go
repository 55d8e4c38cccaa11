package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/neocities/clientcli"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage site profiles",
	Long: `Manage site profiles in the configuration file.

Profiles save the credentials of several Neocities sites so you can switch
between them using --profile or NEOCITIES_PROFILE.

Configuration is stored in ~/.neocities/config.yaml`,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configured profiles",
	Long: `List all profiles configured in the config file.

The default profile is marked with an asterisk (*).`,
	RunE: runConfigureList,
}

var configureAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new profile",
	Long: `Add a new profile interactively.

You will be prompted for:
  - API base URL
  - Authentication method (API key or username and password)
  - The credentials
  - Whether to set as default

The credentials are checked against the API before saving.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureAdd,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var configureSetDefaultCmd = &cobra.Command{
	Use:   "set-default <name>",
	Short: "Set the default profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureSetDefault,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show profile details",
	Long: `Show details for a profile.

If no name is provided, shows the default profile.
Secrets are hidden by default; use --show-secrets to reveal them.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigureShow,
}

var showSecrets bool

const (
	authMethodKey      = "API key"
	authMethodPassword = "Username and password"
)

func init() {
	configureCmd.AddCommand(configureListCmd)
	configureCmd.AddCommand(configureAddCmd)
	configureCmd.AddCommand(configureRemoveCmd)
	configureCmd.AddCommand(configureSetDefaultCmd)
	configureCmd.AddCommand(configureShowCmd)

	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			printNoProfiles()
			return nil
		}
		return fmt.Errorf("load config: %w", err)
	}

	if len(cfg.Profiles) == 0 {
		printNoProfiles()
		return nil
	}

	defaultProfile, err := cfg.GetDefaultProfile()
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileList(os.Stdout, cfg.Profiles, defaultProfile.Name, showSecrets)
}

func printNoProfiles() {
	fmt.Println("No profiles configured.")
	fmt.Println("Run 'neocities configure add <name>' to create one.")
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	// Load existing config or create new
	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = &clientcli.ConfigFile{}
	}

	existingProfile, _ := cfg.GetProfile(name)
	if existingProfile != nil {
		if !confirm(fmt.Sprintf("Profile '%s' already exists. Update it", name)) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	baseURLPrompt := promptui.Prompt{
		Label:    "API base URL",
		Default:  clientcli.DefaultBaseURL,
		Validate: validateBaseURL,
	}
	baseURLVal, err := baseURLPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	methodPrompt := promptui.Select{
		Label: "Authentication method",
		Items: []string{authMethodKey, authMethodPassword},
	}
	_, method, err := methodPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	newProfile := clientcli.Profile{Name: name}
	if baseURLVal = strings.TrimSuffix(baseURLVal, "/"); baseURLVal != clientcli.DefaultBaseURL {
		newProfile.BaseURL = baseURLVal
	}

	if method == authMethodKey {
		keyPrompt := promptui.Prompt{Label: "API Key", Mask: '*', Validate: required("API key")}
		if newProfile.APIKey, err = keyPrompt.Run(); err != nil {
			return handlePromptError(err)
		}
	} else {
		userPrompt := promptui.Prompt{Label: "Username", Validate: required("username")}
		if newProfile.Username, err = userPrompt.Run(); err != nil {
			return handlePromptError(err)
		}
		passPrompt := promptui.Prompt{Label: "Password", Mask: '*', Validate: required("password")}
		if newProfile.Password, err = passPrompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	setAsDefault := len(cfg.Profiles) == 0 || (existingProfile != nil && existingProfile.Default)
	if !setAsDefault {
		setAsDefault = confirm("Set as default profile")
	}
	newProfile.Default = setAsDefault

	fmt.Print("Checking credentials... ")
	if checkErr := testCredentials(cmd.Context(), &newProfile); checkErr != nil {
		fmt.Println("FAILED")
		fmt.Printf("Warning: %v\n", checkErr)

		if !confirm("Save profile anyway") {
			fmt.Println("Cancelled.")
			return nil
		}
	} else {
		fmt.Println("OK")
	}

	// If setting as default, clear default from others
	if setAsDefault {
		for i := range cfg.Profiles {
			cfg.Profiles[i].Default = false
		}
	}

	if existingProfile != nil {
		err = cfg.UpdateProfile(newProfile)
	} else {
		err = cfg.AddProfile(newProfile)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if existingProfile != nil {
		fmt.Printf("Profile '%s' updated.\n", name)
	} else {
		fmt.Printf("Profile '%s' added.\n", name)
	}

	if setAsDefault {
		fmt.Printf("Set as default profile.\n")
	}

	return nil
}

func validateBaseURL(input string) error {
	if input == "" {
		return errors.New("base URL is required")
	}
	parsedURL, err := url.Parse(input)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

func required(what string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if _, err = cfg.GetProfile(name); err != nil {
		return err
	}

	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return fmt.Errorf("remove profile: %w", err)
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Profile '%s' removed.\n", name)
	return nil
}

func runConfigureSetDefault(_ *cobra.Command, args []string) error {
	name := args[0]
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.SetDefault(name); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("Default profile set to '%s'.\n", name)
	return nil
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	isDefault := p.Default || name == ""
	return getFormatter().FormatProfileShow(os.Stdout, *p, isDefault, showSecrets)
}

// testCredentials asks the API for the profile's key. A failure means the
// server is unreachable or rejects the credentials.
func testCredentials(ctx context.Context, p *clientcli.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := clientcli.New(clientcli.ConfigFromProfile(p),
		clientcli.WithLookupEnv(func(string) (string, bool) { return "", false }),
		clientcli.WithUserAgent("neocities-cli/"+version),
	)
	if err != nil {
		return err
	}

	if _, err := client.FetchAPIKey(ctx); err != nil {
		return err
	}
	return nil
}

// handlePromptError handles promptui errors.
func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
