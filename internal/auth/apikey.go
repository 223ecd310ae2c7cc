// Package auth implements the API key scheme for the REST API: opaque
// sk_-prefixed keys generated from a CSPRNG, stored only as bcrypt
// hashes, and verified through a display-prefix lookup.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// KeyPrefix starts every issued key.
	KeyPrefix = "sk"

	// keyRandomLength is the length of the random part of a key.
	keyRandomLength = 32

	// bcryptCost balances verification latency against guessing cost.
	bcryptCost = 12

	// bcryptMaxInput is bcrypt's input limit; longer keys are
	// pre-hashed so every byte still contributes.
	bcryptMaxInput = 72

	// displayRandomChars is how much of the random part the display
	// prefix reveals.
	displayRandomChars = 8

	maxKeyNameLength = 255

	minKeyLength = 15
	maxKeyLength = 50
)

// KeyInfo is the stored metadata for one issued key. The key itself is
// never stored; only its hash and display prefix are.
type KeyInfo struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	KeyPrefix  string     `db:"key_prefix" json:"key_prefix"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	UsageCount int        `db:"usage_count" json:"usage_count"`
	Notes      string     `db:"notes" json:"notes,omitempty"`
	CreatedBy  *string    `db:"created_by" json:"created_by,omitempty"`
}

// IsExpired reports whether the key's expiry has passed. Keys without
// an expiry never expire.
func (k *KeyInfo) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return k.ExpiresAt.Before(time.Now().UTC())
}

// IsValid reports whether the key is usable for authentication.
func (k *KeyInfo) IsValid() bool {
	return k.IsActive && !k.IsExpired()
}

// GeneratedKey pairs a freshly generated key with its metadata. Key is
// the only copy of the full secret; it is shown once and discarded.
type GeneratedKey struct {
	Key  string  `json:"key"`
	Info KeyInfo `json:"key_info"`
}

// Generate creates a named key. Base32 keeps the random part free of
// characters that are ambiguous when read aloud or copied.
func Generate(name string) (*GeneratedKey, error) {
	if err := validateKeyName(name); err != nil {
		return nil, fmt.Errorf("invalid key name: %w", err)
	}

	raw := make([]byte, keyRandomLength)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}

	random := strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw))
	if len(random) > keyRandomLength {
		random = random[:keyRandomLength]
	}
	key := KeyPrefix + "_" + random

	now := time.Now().UTC()
	return &GeneratedKey{
		Key: key,
		Info: KeyInfo{
			Name:      name,
			KeyPrefix: DisplayPrefix(key),
			CreatedAt: now,
			UpdatedAt: now,
			IsActive:  true,
		},
	}, nil
}

// Hash prepares a key for storage. Keys beyond bcrypt's 72-byte limit
// are reduced with SHA-256 first.
func Hash(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("API key cannot be empty")
	}

	input := []byte(key)
	if len(input) > bcryptMaxInput {
		sum := sha256.Sum256(input)
		input = sum[:]
	}

	hash, err := bcrypt.GenerateFromPassword(input, bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash API key: %w", err)
	}
	return string(hash), nil
}

// Matches reports whether a presented key matches a stored hash. The
// same pre-hash step as Hash keeps long keys comparable, and bcrypt's
// comparison is constant-time over the digest.
func Matches(key, storedHash string) bool {
	if key == "" || storedHash == "" {
		return false
	}

	input := []byte(key)
	if len(input) > bcryptMaxInput {
		sum := sha256.Sum256(input)
		input = sum[:]
	}

	return bcrypt.CompareHashAndPassword([]byte(storedHash), input) == nil
}

// ValidFormat reports whether a presented string is shaped like an
// issued key: prefixed, length-bounded, and limited to the characters
// generation can produce.
func ValidFormat(key string) bool {
	if !strings.HasPrefix(key, KeyPrefix+"_") {
		return false
	}
	if len(key) < minKeyLength || len(key) > maxKeyLength {
		return false
	}

	for _, char := range key {
		if (char < 'a' || char > 'z') &&
			(char < 'A' || char > 'Z') &&
			(char < '0' || char > '9') &&
			char != '_' {
			return false
		}
	}
	return true
}

// DisplayPrefix returns the safe-to-show form of a key, enough to tell
// keys apart without revealing usable material.
func DisplayPrefix(key string) string {
	if !ValidFormat(key) {
		return "invalid_key"
	}

	parts := strings.SplitN(key, "_", 2)
	random := parts[1]
	if len(random) > displayRandomChars {
		random = random[:displayRandomChars]
	}
	return fmt.Sprintf("%s_%s...", parts[0], random)
}

// validateKeyName rejects empty and oversized names, and names with
// control or direction-formatting characters that could corrupt
// listings.
func validateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("key name cannot be empty")
	}
	if len(name) > maxKeyNameLength {
		return fmt.Errorf("key name must be at most %d characters", maxKeyNameLength)
	}

	for _, char := range name {
		if char < 32 || char == 127 {
			return fmt.Errorf("key name contains invalid characters")
		}
		// C1 controls, bidirectional overrides, directional isolates.
		if (char >= 0x0080 && char <= 0x009F) ||
			(char >= 0x202A && char <= 0x202E) ||
			(char >= 0x2066 && char <= 0x2069) {
			return fmt.Errorf("key name contains invalid characters")
		}
	}
	return nil
}
