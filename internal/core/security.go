// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLength   = 16

	argonPrefix = "$argon2id$"
)

var errMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  argonMemory,
	time:    argonTime,
	threads: argonThreads,
	keyLen:  argonKeyLen,
}

// HashPassword produces a PHC formatted argon2id hash.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password),
		salt,
		currentParams.time,
		currentParams.memory,
		currentParams.threads,
		currentParams.keyLen,
	)

	return fmt.Sprintf(
		"%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argonPrefix,
		argon2.Version,
		currentParams.memory,
		currentParams.time,
		currentParams.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// IsLegacyHash reports whether the stored hash was produced by the previous
// bcrypt based platform.
func IsLegacyHash(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

// VerifyPassword accepts both argon2id and legacy bcrypt hashes.
func VerifyPassword(password, encoded string) (bool, error) {
	if IsLegacyHash(encoded) {
		err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("compare bcrypt hash: %w", err)
		}
	}

	params, salt, want, err := parseArgonHash(encoded)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.threads,
		params.keyLen,
	)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// VerifyPasswordWithRehash returns a replacement hash when the stored one is
// bcrypt or uses outdated argon2 parameters.
func VerifyPasswordWithRehash(
	password, encoded string,
) (bool, string, error) {
	ok, err := VerifyPassword(password, encoded)
	if err != nil || !ok {
		return false, "", err
	}

	if !needsRehash(encoded) {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		//nolint:nilerr // the password itself verified
		return true, "", nil
	}
	return true, upgraded, nil
}

var dummyHash string

func init() {
	h, err := HashPassword("nhpc-timing-equaliser")
	if err != nil {
		panic(fmt.Sprintf("security: dummy hash: %v", err))
	}
	dummyHash = h
}

// VerifyPasswordTimingSafe burns an argon2 round even when the account has no
// local password so lookups cannot be timed.
func VerifyPasswordTimingSafe(
	password string,
	encoded *string,
) (bool, string, error) {
	if encoded == nil || *encoded == "" {
		_, _ = VerifyPassword(password, dummyHash)
		return false, "", nil
	}
	return VerifyPasswordWithRehash(password, *encoded)
}

func parseArgonHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	if !strings.HasPrefix(encoded, argonPrefix) {
		return p, nil, nil, errMalformedHash
	}

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("argon2 version %d unsupported", version)
	}

	if _, err := fmt.Sscanf(
		fields[3],
		"m=%d,t=%d,p=%d",
		&p.memory,
		&p.time,
		&p.threads,
	); err != nil {
		return p, nil, nil, fmt.Errorf("parse params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode key: %w", err)
	}

	//nolint:gosec // argon2 keys are 32 bytes
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

func needsRehash(encoded string) bool {
	if IsLegacyHash(encoded) {
		return true
	}
	p, _, _, err := parseArgonHash(encoded)
	if err != nil {
		return true
	}
	return p != currentParams
}

func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func GenerateRefreshToken() (string, error) {
	return GenerateSecureToken(32)
}

// GenerateResetToken returns a URL safe token for password reset links.
func GenerateResetToken() (string, error) {
	return GenerateSecureToken(32)
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func CompareTokenHash(token, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}
