package dripper

import "strings"

// Converter names registered on every Compiler.
// Use them in data-form declarations: {"__path__": [...], "__convert__": "trim"}
const (
	ConvertLower  = "lower"
	ConvertUpper  = "upper"
	ConvertTrim   = "trim"
	ConvertString = "string"
	ConvertInt    = "int"
	ConvertFloat  = "float"
	ConvertBool   = "bool"
)

// Merge operator names registered on every Compiler.
const (
	MergeAdd      = "add"
	MergeCoalesce = "coalesce"
	MergeJoin     = "join"
)

// MaskType represents a known data format with masking rules.
// Masking converters are named "mask:<type>", e.g. "mask:email".
type MaskType string

const (
	MaskSSN   MaskType = "ssn"   // 123-45-6789 -> ***-**-6789
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // (555) 123-4567 -> (***) ***-4567
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskIP    MaskType = "ip"    // 192.168.1.100 -> 192.168.xxx.xxx
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-... -> 550e8400-****-****-****-************
	MaskIBAN  MaskType = "iban"  // GB82WEST12345698765432 -> GB82**************5432
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// HashAlgo represents a deterministic fingerprint algorithm.
// Hashing converters are named "hash:<algo>", e.g. "hash:sha256".
type HashAlgo string

const (
	// HashSHA256 produces a hex-encoded SHA-256 digest.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 produces a hex-encoded SHA-512 digest.
	HashSHA512 HashAlgo = "sha512"

	// HashBLAKE2b produces a hex-encoded BLAKE2b-256 digest.
	HashBLAKE2b HashAlgo = "blake2b"
)

const (
	maskPrefix = "mask:"
	hashPrefix = "hash:"
)

// validMaskTypes contains all valid mask types.
var validMaskTypes = map[MaskType]bool{
	MaskSSN:   true,
	MaskEmail: true,
	MaskPhone: true,
	MaskCard:  true,
	MaskIP:    true,
	MaskUUID:  true,
	MaskIBAN:  true,
	MaskName:  true,
}

// validHashAlgos contains all valid hash algorithms.
var validHashAlgos = map[HashAlgo]bool{
	HashSHA256:  true,
	HashSHA512:  true,
	HashBLAKE2b: true,
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	return validHashAlgos[algo]
}

// MaskConverter returns the converter name for a mask type.
func MaskConverter(mt MaskType) string {
	return maskPrefix + string(mt)
}

// HashConverter returns the converter name for a hash algorithm.
func HashConverter(algo HashAlgo) string {
	return hashPrefix + string(algo)
}

// IsBuiltinConverter reports whether name is registered on a fresh Compiler.
func IsBuiltinConverter(name string) bool {
	switch name {
	case ConvertLower, ConvertUpper, ConvertTrim, ConvertString, ConvertInt, ConvertFloat, ConvertBool:
		return true
	}
	if mt, ok := strings.CutPrefix(name, maskPrefix); ok {
		return IsValidMaskType(MaskType(mt))
	}
	if algo, ok := strings.CutPrefix(name, hashPrefix); ok {
		return IsValidHashAlgo(HashAlgo(algo))
	}
	return false
}
