package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
)

const selfAuthenticatingSuffix = 0x02

var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is the stable external identifier of an identity, derived
// from its public key or assigned by the system.
type Principal struct {
	raw []byte
}

// SelfAuthenticatingPrincipal derives a principal from an encoded
// public key: SHA-224 of the key followed by the self-authenticating
// suffix byte.
func SelfAuthenticatingPrincipal(pubKey []byte) Principal {
	sum := sha256.Sum224(pubKey)
	raw := make([]byte, 0, len(sum)+1)
	raw = append(raw, sum[:]...)
	raw = append(raw, selfAuthenticatingSuffix)
	return Principal{raw: raw}
}

// AnonymousPrincipal is the principal of an identity-less caller.
func AnonymousPrincipal() Principal {
	return Principal{raw: []byte{0x04}}
}

// PrincipalFromText parses the dashed textual form and verifies its
// leading CRC-32 checksum.
func PrincipalFromText(text string) (Principal, error) {
	stripped := strings.ToUpper(strings.ReplaceAll(text, "-", ""))
	decoded, err := principalEncoding.DecodeString(stripped)
	if err != nil {
		return Principal{}, fmt.Errorf("malformed principal %q: %w", text, err)
	}
	if len(decoded) < 4 {
		return Principal{}, fmt.Errorf("malformed principal %q: too short", text)
	}
	raw := decoded[4:]
	expected := crc32.ChecksumIEEE(raw)
	if binary.BigEndian.Uint32(decoded[:4]) != expected {
		return Principal{}, fmt.Errorf("malformed principal %q: checksum mismatch", text)
	}
	return Principal{raw: raw}, nil
}

// Raw returns a copy of the principal's raw bytes.
func (p Principal) Raw() []byte {
	return bytes.Clone(p.raw)
}

// IsAnonymous reports whether the principal is the anonymous one.
func (p Principal) IsAnonymous() bool {
	return len(p.raw) == 1 && p.raw[0] == 0x04
}

// Equal reports whether two principals identify the same caller.
func (p Principal) Equal(other Principal) bool {
	return bytes.Equal(p.raw, other.raw)
}

// String renders the canonical dashed textual form: base32 of the
// CRC-32 checksum plus raw bytes, lowercased, grouped in fives.
func (p Principal) String() string {
	buf := make([]byte, 4, 4+len(p.raw))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(p.raw))
	buf = append(buf, p.raw...)

	encoded := strings.ToLower(principalEncoding.EncodeToString(buf))

	var b strings.Builder
	for i, r := range encoded {
		if i > 0 && i%5 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}
