// Package secrets stores provider API keys in the OS keychain.
package secrets

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/config"
)

// Service is the keychain service name entries are stored under.
const Service = "lead-cli"

// Accounts are the keychain account names, one per credential.
var Accounts = []string{"gemini", "anthropic", "openai", "google_geocode"}

func validAccount(account string) error {
	for _, a := range Accounts {
		if a == account {
			return nil
		}
	}
	return eris.Errorf("secrets: unknown account %q (want one of %s)", account, strings.Join(Accounts, ", "))
}

// Get returns the stored key for account, or "" when none is stored.
func Get(account string) (string, error) {
	if err := validAccount(account); err != nil {
		return "", err
	}
	v, err := keyring.Get(Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrapf(err, "secrets: get %s", account)
	}
	return v, nil
}

// Set stores value for account.
func Set(account, value string) error {
	if err := validAccount(account); err != nil {
		return err
	}
	if strings.TrimSpace(value) == "" {
		return eris.New("secrets: value is empty")
	}
	return eris.Wrapf(keyring.Set(Service, account, value), "secrets: set %s", account)
}

// Delete removes the stored key for account. Deleting a missing key is not
// an error.
func Delete(account string) error {
	if err := validAccount(account); err != nil {
		return err
	}
	err := keyring.Delete(Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return eris.Wrapf(err, "secrets: delete %s", account)
}

// Resolve returns configured when it is set, otherwise the keychain entry.
// Keychain failures are logged and treated as "not stored".
func Resolve(account, configured string) string {
	if configured != "" {
		return configured
	}
	v, err := Get(account)
	if err != nil {
		zap.L().Debug("keychain lookup failed", zap.String("account", account), zap.Error(err))
		return ""
	}
	return v
}

// Apply fills empty provider keys in cfg from the keychain.
func Apply(cfg *config.Config) {
	cfg.Gemini.Key = Resolve("gemini", cfg.Gemini.Key)
	cfg.Anthropic.Key = Resolve("anthropic", cfg.Anthropic.Key)
	cfg.OpenAI.Key = Resolve("openai", cfg.OpenAI.Key)
	cfg.Geo.GoogleKey = Resolve("google_geocode", cfg.Geo.GoogleKey)
}
