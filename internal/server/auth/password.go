package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"lifeweeks/internal/common"
)

// argon2id parameters, per the RFC 9106 low-memory recommendation.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32

	saltLen = 16
)

// HashPassword derives an argon2id hash of password under a fresh random
// salt. Both the hash and the salt are stored with the user row.
func HashPassword(password []byte) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(saltLen)
	hash = argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hash, salt
}

// VerifyPassword recomputes the hash of candidate under salt and compares it
// to the stored hash in constant time.
func VerifyPassword(candidate, salt, hash []byte) bool {
	computed := argon2.IDKey(candidate, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(computed, hash) == 1
}
