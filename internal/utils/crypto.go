package utils

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// CookieKeyConfig holds the configuration for session cookie key derivation
type CookieKeyConfig struct {
	Salt           string
	HashKeyLength  int
	BlockKeyLength int
}

// DefaultCookieKeyConfig returns the default configuration for cookie keys.
// A 32 byte block key selects AES-256 for cookie encryption.
func DefaultCookieKeyConfig() *CookieKeyConfig {
	return &CookieKeyConfig{
		Salt:           "bakery-storefront/session",
		HashKeyLength:  64,
		BlockKeyLength: 32,
	}
}

// DeriveCookieKeys expands a single configured secret into independent keys
// for signing and encrypting the session cookie
func DeriveCookieKeys(secret string) (hashKey, blockKey []byte, err error) {
	return DeriveCookieKeysWithConfig(secret, DefaultCookieKeyConfig())
}

// DeriveCookieKeysWithConfig derives cookie keys using the given configuration
func DeriveCookieKeysWithConfig(secret string, config *CookieKeyConfig) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return nil, nil, fmt.Errorf("session secret cannot be empty")
	}

	hashKey, err = expand(secret, config.Salt, "cookie-hash", config.HashKeyLength)
	if err != nil {
		return nil, nil, err
	}
	blockKey, err = expand(secret, config.Salt, "cookie-block", config.BlockKeyLength)
	if err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

func expand(secret, salt, info string, length int) ([]byte, error) {
	key := make([]byte, length)
	reader := hkdf.New(sha256.New, []byte(secret), []byte(salt), []byte(info))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive %s key: %w", info, err)
	}
	return key, nil
}
