package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagarc03/neocities/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	apiKey      string
	username    string
	password    string
	baseURL     string
	verbose     bool
	jsonOutput  bool
	quiet       bool
	logLevel    string
	maxRPS      float64
)

var rootCmd = &cobra.Command{
	Use:     "neocities",
	Version: version,
	Short:   "Command line client for Neocities",
	Long: `neocities - manage a Neocities site from the command line

Credentials are taken from flags, then environment variables, then the
selected profile in the config file:
  --key        NEOCITIES_API_KEY
  --username   NEOCITIES_USERNAME
  --password   NEOCITIES_PASSWORD

An API key takes precedence over a username and password.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		setupLogging(os.Stderr, logLevel, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.neocities/config.yaml, env: NEOCITIES_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile to use (env: NEOCITIES_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", "", "API key (env: NEOCITIES_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "user name for authentication (env: NEOCITIES_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "password for authentication (env: NEOCITIES_PASSWORD)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL (default: "+clientcli.DefaultBaseURL+", env: NEOCITIES_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: warn)")
	rootCmd.PersistentFlags().Float64Var(&maxRPS, "max-rps", 0, "limit API requests per second (0 disables)")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(extensionsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// getConfigPath returns the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile file, env vars, and flags
// (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	// 1. Load from config file
	configPath := getConfigPath()
	if configPath != "" {
		fileCfg, err := profileConfig(configPath)
		if err != nil {
			// Only error if user explicitly asked for a file or profile
			if cfgFile != "" || profileName != "" {
				return nil, err
			}
		} else {
			configs = append(configs, fileCfg)
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{
		APIKey:   apiKey,
		Username: username,
		Password: password,
		BaseURL:  baseURL,
		Verbose:  verbose,
	})

	cfg := clientcli.MergeConfig(configs...)

	// A username given on the command line means basic auth, even when a
	// lower layer supplies a key.
	if username != "" && apiKey == "" {
		cfg.APIKey = ""
	}

	return cfg, nil
}

func profileConfig(configPath string) (*clientcli.Config, error) {
	file, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		return nil, err
	}

	name := profileName
	if name == "" {
		name = clientcli.ProfileFromEnv()
	}

	p, err := file.GetProfile(name)
	if err != nil {
		return nil, err
	}
	return clientcli.ConfigFromProfile(p), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	opts := []clientcli.Option{
		clientcli.WithOutput(os.Stderr),
		clientcli.WithUserAgent("neocities-cli/" + version),
	}
	if username != "" && apiKey == "" {
		opts = append(opts, clientcli.WithLookupEnv(withoutAPIKey))
	}
	if maxRPS > 0 {
		opts = append(opts, clientcli.WithThrottle(maxRPS, 1))
	}

	return clientcli.New(cfg, opts...)
}

// withoutAPIKey hides NEOCITIES_API_KEY from credential resolution.
func withoutAPIKey(key string) (string, bool) {
	if key == clientcli.EnvAPIKey {
		return "", false
	}
	return os.LookupEnv(key)
}

// handleError prints err through the formatter and turns it into exit
// code 1.
func handleError(w io.Writer, err error) error {
	_ = getFormatter().FormatError(w, err)
	return &exitError{code: 1}
}

// exitError is returned when we want to exit with a specific code
// but don't want cobra to print an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
