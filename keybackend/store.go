package keybackend

// AccountsConfig holds configuration for loading seed accounts.
type AccountsConfig struct {
	Inline []SiteAccount `mapstructure:"inline"` // Inline accounts from config
	File   string        `mapstructure:"file"`   // Path to JSON file containing accounts
}

// NewAccountStore creates an account store from the given configuration.
// It loads accounts from both inline config and file (if specified),
// merging them into a single store. File accounts take precedence over
// inline accounts with the same sitename.
func NewAccountStore(cfg AccountsConfig) (*MapAccountStore, error) {
	accounts := make(map[string]SiteAccount)

	for _, a := range cfg.Inline {
		if err := ValidateAccount(a); err != nil {
			return nil, err
		}
		accounts[a.Sitename] = a
	}

	if cfg.File != "" {
		fileAccounts, err := LoadAccountsFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for _, a := range fileAccounts {
			accounts[a.Sitename] = a
		}
	}

	return NewMapAccountStore(accounts), nil
}
