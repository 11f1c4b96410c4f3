package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// EnvSMTPPassword is how CI schedulers (GitHub Actions secrets etc.)
	// hand the password over. It wins over the keyring.
	EnvSMTPPassword = "SMTP_PASSWORD"

	// KeyringService groups this app's secrets in the OS keychain for
	// local interactive use.
	KeyringService = "jobwatch"
)

var ErrNotFound = errors.New("SMTP password not found (set SMTP_PASSWORD or store it in the keychain)")

// SMTPPassword resolves the transport password: process environment first,
// then the OS keyring. The value is never written to state or logs.
func SMTPPassword(account string) (string, error) {
	if pw := strings.TrimSpace(os.Getenv(EnvSMTPPassword)); pw != "" {
		return pw, nil
	}

	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}

	return "", ErrNotFound
}

func SetSMTPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteSMTPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// SMTPKeyringAccount names the keyring entry for a user/host pair.
func SMTPKeyringAccount(user, host string) string {
	return fmt.Sprintf("jobwatch:smtp:%s@%s", user, host)
}
