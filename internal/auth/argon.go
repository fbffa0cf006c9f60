package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// maxPasswordLength bounds the input to the key derivation.
const maxPasswordLength = 1024

var (
	errEmptyPassword    = errors.New("password cannot be empty")
	errPasswordTooLong  = fmt.Errorf("password longer than %d bytes", maxPasswordLength)
	errMalformedHash    = errors.New("malformed argon2id hash")
	errUnsupportedCodec = errors.New("unsupported password hash")
)

// kdfParams are the argon2id cost settings recorded in a PHC string.
type kdfParams struct {
	memoryKiB uint32
	passes    uint32
	lanes     uint8
}

// adminKDF is what new ADMIN_PASSWORD_HASH values are generated with.
var adminKDF = kdfParams{memoryKiB: 64 * 1024, passes: 3, lanes: 4}

const (
	saltBytes = 16
	keyBytes  = 32
)

// phcHash is a decoded "$argon2id$v=19$m=..,t=..,p=..$salt$key" string.
type phcHash struct {
	params kdfParams
	salt   []byte
	key    []byte
}

func (h phcHash) derive(password string) []byte {
	//nolint:gosec // key length comes from a decoded hash and never exceeds a few dozen bytes
	return argon2.IDKey([]byte(password), h.salt, h.params.passes, h.params.memoryKiB, h.params.lanes, uint32(len(h.key)))
}

func (h phcHash) String() string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.memoryKiB, h.params.passes, h.params.lanes,
		b64.EncodeToString(h.salt), b64.EncodeToString(h.key))
}

// HashPassword returns the argon2id PHC string for password, in the form
// ADMIN_PASSWORD_HASH expects.
func HashPassword(password string) (string, error) {
	switch {
	case password == "":
		return "", errEmptyPassword
	case len(password) > maxPasswordLength:
		return "", errPasswordTooLong
	}

	h := phcHash{params: adminKDF, salt: make([]byte, saltBytes), key: make([]byte, keyBytes)}
	if _, err := rand.Read(h.salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	h.key = h.derive(password)
	return h.String(), nil
}

// VerifyPassword reports whether password matches the PHC string stored for the admin.
// Surrounding whitespace in the stored value is ignored. A malformed value never
// matches and is not reported as an error.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if password == "" || len(password) > maxPasswordLength {
		return false, nil
	}
	h, err := parsePHC(strings.TrimSpace(encodedHash))
	if err != nil {
		return false, nil
	}
	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

func parsePHC(s string) (phcHash, error) {
	var h phcHash

	fields := strings.Split(strings.TrimPrefix(s, "$"), "$")
	if len(fields) != 5 || !strings.HasPrefix(s, "$") {
		return h, errMalformedHash
	}
	if fields[0] != "argon2id" || fields[1] != "v="+strconv.Itoa(argon2.Version) {
		return h, fmt.Errorf("%w: %s %s", errUnsupportedCodec, fields[0], fields[1])
	}

	for _, kv := range strings.Split(fields[2], ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return h, errMalformedHash
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return h, fmt.Errorf("%w: %s", errMalformedHash, kv)
		}
		switch name {
		case "m":
			h.params.memoryKiB = uint32(n)
		case "t":
			h.params.passes = uint32(n)
		case "p":
			if n > 255 {
				return h, fmt.Errorf("%w: %s", errMalformedHash, kv)
			}
			h.params.lanes = uint8(n)
		default:
			return h, fmt.Errorf("%w: unknown parameter %q", errMalformedHash, name)
		}
	}
	if h.params.memoryKiB == 0 || h.params.passes == 0 || h.params.lanes == 0 {
		return h, errMalformedHash
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[3]); err != nil {
		return h, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return h, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}
	if len(h.salt) == 0 || len(h.key) == 0 {
		return h, errMalformedHash
	}
	return h, nil
}
