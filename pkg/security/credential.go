package security

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/angelmondragon/basket-engine/pkg/config"
)

// Credential is the single account the storefront accepts. Only the argon2id
// hash of the password is kept in memory.
type Credential struct {
	username string
	hash     string
}

// NewCredential builds the demo credential from config. A configured hash wins
// over the plain password, which is hashed once at startup.
func NewCredential(auth config.AuthConfig, pw config.PasswordConfig) (*Credential, error) {
	username := strings.TrimSpace(auth.DemoUsername)
	if username == "" {
		return nil, fmt.Errorf("demo username is required")
	}
	hash := strings.TrimSpace(auth.DemoPasswordHash)
	if hash != "" {
		if _, _, _, err := decodeHash(hash); err != nil {
			return nil, fmt.Errorf("demo password hash: %w", err)
		}
		return &Credential{username: username, hash: hash}, nil
	}
	hash, err := HashPassword(auth.DemoPassword, pw)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	return &Credential{username: username, hash: hash}, nil
}

// Matches reports whether the pair is the configured account.
func (c *Credential) Matches(username, password string) (bool, error) {
	if c == nil {
		return false, nil
	}
	ok, err := VerifyPassword(password, c.hash)
	if err != nil {
		return false, err
	}
	sameUser := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1
	return ok && sameUser, nil
}
