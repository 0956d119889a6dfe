package dripper

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hasher produces a deterministic fingerprint of its input.
// The same input must always produce the same digest.
type Hasher interface {
	// Hash returns the hex-encoded digest of data.
	Hash(data []byte) (string, error)
}

// HasherFunc adapts a function to the Hasher interface.
type HasherFunc func(data []byte) (string, error)

// Hash calls f(data).
func (f HasherFunc) Hash(data []byte) (string, error) { return f(data) }

// SHA256Hasher returns a SHA-256 hasher (64 hex characters).
func SHA256Hasher() Hasher {
	return HasherFunc(func(data []byte) (string, error) {
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	})
}

// SHA512Hasher returns a SHA-512 hasher (128 hex characters).
func SHA512Hasher() Hasher {
	return HasherFunc(func(data []byte) (string, error) {
		sum := sha512.Sum512(data)
		return hex.EncodeToString(sum[:]), nil
	})
}

// BLAKE2bHasher returns a BLAKE2b-256 hasher (64 hex characters).
func BLAKE2bHasher() Hasher {
	return HasherFunc(func(data []byte) (string, error) {
		sum := blake2b.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	})
}

// hashConverter fingerprints strings and byte slices; other values are
// hashed through their fmt.Sprint form.
func hashConverter(h Hasher) ConvertFunc {
	return func(value any) (any, error) {
		var data []byte
		switch v := value.(type) {
		case string:
			data = []byte(v)
		case []byte:
			data = v
		default:
			data = []byte(fmt.Sprint(v))
		}
		digest, err := h.Hash(data)
		if err != nil {
			return nil, fmt.Errorf("%w: hash: %v", ErrConvert, err)
		}
		return digest, nil
	}
}

// builtinHashers returns the default hasher registry.
func builtinHashers() map[HashAlgo]Hasher {
	return map[HashAlgo]Hasher{
		HashSHA256:  SHA256Hasher(),
		HashSHA512:  SHA512Hasher(),
		HashBLAKE2b: BLAKE2bHasher(),
	}
}

// digest returns the SHA-256 hex digest of the concatenated parts.
func digest(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
