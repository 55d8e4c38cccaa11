package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
)

// SiteAccount is a site created on startup of the dev server.
type SiteAccount struct {
	Sitename string   `json:"sitename" mapstructure:"sitename" validate:"required,sitename"`
	Password string   `json:"password" mapstructure:"password" validate:"required"`
	APIKey   string   `json:"api_key" mapstructure:"api_key" validate:"omitempty,alphanum,max=64"`
	Domain   string   `json:"domain" mapstructure:"domain" validate:"omitempty,hostname"`
	Tags     []string `json:"tags" mapstructure:"tags" validate:"max=20,dive,required"`
}

// LoadAccountsFromFile loads seed accounts from a JSON file.
// The file should contain an array of accounts:
//
//	[
//	  {"sitename": "demo", "password": "secret", "api_key": "6d1b..."},
//	  {"sitename": "blog", "password": "hunter2", "tags": ["art"]}
//	]
//
// Every account is validated; the first invalid one fails the load.
func LoadAccountsFromFile(path string) ([]SiteAccount, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read accounts file: %w", err)
	}

	var accounts []SiteAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("parse accounts file: %w", err)
	}

	for i, a := range accounts {
		if err := ValidateAccount(a); err != nil {
			return nil, fmt.Errorf("accounts file entry %d: %w", i, err)
		}
	}

	return accounts, nil
}
