package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

// DummyHash is a well-formed digest that matches no password. Verifying
// against it costs the same as verifying against a real account's digest.
var DummyHash = fmt.Sprintf(
	"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
	memory,
	iterations,
	parallelism,
	base64.RawStdEncoding.EncodeToString(make([]byte, saltLength)),
	base64.RawStdEncoding.EncodeToString(make([]byte, keyLength)),
)

// ErrMalformedHash is returned by ParseHash for digests that are neither
// Argon2id PHC strings nor bcrypt hashes.
var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes passwords with Argon2id and a server-side pepper.
// Legacy bcrypt digests still verify so that accounts carried over from the
// previous system can log in and be rehashed.
type PasswordHasher struct {
	pepper string
}

// NewPasswordHasher returns a hasher that mixes pepper into every digest.
func NewPasswordHasher(pepper string) *PasswordHasher {
	return &PasswordHasher{pepper: pepper}
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password+h.pepper), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether password matches encodedHash. A malformed digest
// never matches.
func (h *PasswordHasher) Verify(password, encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}

	params, err := ParseHash(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		params.Salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		uint32(len(params.Key)), // #nosec G115 - bounded by ParseHash
	)
	return subtle.ConstantTimeCompare(computed, params.Key) == 1
}

// NeedsUpgrade reports whether encodedHash was produced by an older scheme
// or with weaker parameters than the current ones.
func (h *PasswordHasher) NeedsUpgrade(encodedHash string) bool {
	if isBcrypt(encodedHash) {
		return true
	}
	params, err := ParseHash(encodedHash)
	if err != nil {
		return true
	}
	return params.Memory < memory || params.Iterations < iterations || len(params.Key) < keyLength
}

// HashParams are the decoded components of an Argon2id PHC string.
type HashParams struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	Salt        []byte
	Key         []byte
}

// ParseHash decodes a PHC-style Argon2id string: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
func ParseHash(encodedHash string) (HashParams, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return HashParams{}, fmt.Errorf("%w: expected 6 parts", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return HashParams{}, fmt.Errorf("%w: not argon2id", ErrMalformedHash)
	}
	if parts[2] != "v=19" {
		return HashParams{}, fmt.Errorf("%w: wrong version", ErrMalformedHash)
	}

	var p HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return HashParams{}, fmt.Errorf("%w: failed to parse parameters: %w", ErrMalformedHash, err)
	}

	var err error
	if p.Salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return HashParams{}, fmt.Errorf("%w: failed to decode salt: %w", ErrMalformedHash, err)
	}
	if p.Key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return HashParams{}, fmt.Errorf("%w: failed to decode hash: %w", ErrMalformedHash, err)
	}
	if len(p.Key) == 0 || len(p.Key) > 1024 {
		return HashParams{}, fmt.Errorf("%w: invalid key length %d", ErrMalformedHash, len(p.Key))
	}
	return p, nil
}

func isBcrypt(encodedHash string) bool {
	return strings.HasPrefix(encodedHash, "$2a$") ||
		strings.HasPrefix(encodedHash, "$2b$") ||
		strings.HasPrefix(encodedHash, "$2y$")
}
