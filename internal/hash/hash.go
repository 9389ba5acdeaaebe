package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Stored credentials depend on these staying fixed;
// changing them invalidates every existing password record.
const (
	saltBytes  = 16
	keyBytes   = 32
	iterations = 10000
)

// HashPassword derives a salted key from password and returns both the key
// and the salt, base64-encoded.
func HashPassword(password string) (string, string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("hash: salt generation failed: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyBytes, sha256.New)

	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(salt), nil
}

// CheckPassword re-derives the key with the stored salt and compares it to
// the stored hash. A malformed salt or hash fails closed.
func CheckPassword(password, storedHash, storedSalt string) bool {
	salt, err := base64.StdEncoding.DecodeString(storedSalt)
	if err != nil {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyBytes, sha256.New)

	return subtle.ConstantTimeCompare(key, expected) == 1
}
