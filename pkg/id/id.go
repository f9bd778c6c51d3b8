// Package id generates request ids, session tokens and other random identifiers.
package id

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"time"
)

// Crockford's Base32 alphabet (no I, L, O, U).
const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character ULID: 48 bits of millisecond timestamp
// followed by 80 random bits. ULIDs sort by creation time.
func NewULID() string {
	return ulidAt(time.Now())
}

func ulidAt(t time.Time) string {
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[:8], uint64(t.UnixMilli())<<16)
	entropy(raw[6:])

	// 128 bits as two halves; 26 chars * 5 bits = 130, so the first char carries 3 bits.
	hi := binary.BigEndian.Uint64(raw[:8])
	lo := binary.BigEndian.Uint64(raw[8:])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&0x1F]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// RandomHex returns 2*n hex characters drawn from n random bytes.
func RandomHex(n int) string {
	b := make([]byte, n)
	entropy(b)
	return hex.EncodeToString(b)
}

// RandomToken returns n random bytes encoded as unpadded URL-safe base64.
func RandomToken(n int) string {
	b := make([]byte, n)
	entropy(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func entropy(b []byte) {
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms; keep ids unique regardless.
		var seed [8]byte
		binary.BigEndian.PutUint64(seed[:], uint64(time.Now().UnixNano()))
		for i := range b {
			b[i] = seed[i%8] ^ byte(i)
		}
	}
}
