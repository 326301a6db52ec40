// Package resourcetoken seals upstream identifiers into opaque, URL-safe
// tokens bound to one requester and valid for a limited time.
//
// A token is base64url(nonce || seal(issuedAt || len(scope) || scope || value))
// using XChaCha20-Poly1305. Decrypt fails with sentinel.ErrMalformed for
// tampered input, sentinel.ErrExpired past the TTL and sentinel.ErrScopeMismatch
// when the token was issued for another scope.
package resourcetoken

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/platform/sentinel"
)

// DefaultTTL is how long a token stays valid after it was issued.
const DefaultTTL = time.Hour

const timestampSize = 8

// Codec encrypts and decrypts resource tokens with one key.
type Codec struct {
	aead cipher.AEAD
	ttl  time.Duration
	now  func() time.Time
}

type Option func(*Codec)

func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source; tests use it to age tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// New creates a codec from a 32-byte key.
func New(key []byte, opts ...Option) (*Codec, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("resource token key: %w", err)
	}
	c := &Codec{aead: aead, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ParseKey decodes a key given as base64url (padded or not) or hex.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("resource token key is empty")
	}
	if b, err := hex.DecodeString(s); err == nil && len(b) == chacha20poly1305.KeySize {
		return b, nil
	}
	for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.RawURLEncoding, base64.StdEncoding} {
		if b, err := enc.DecodeString(s); err == nil && len(b) == chacha20poly1305.KeySize {
			return b, nil
		}
	}
	return nil, fmt.Errorf("resource token key must decode to %d bytes", chacha20poly1305.KeySize)
}

// Encrypt seals value for scope.
func (c *Codec) Encrypt(value, scope string) (string, error) {
	plain := make([]byte, timestampSize, timestampSize+binary.MaxVarintLen64+len(scope)+len(value))
	binary.BigEndian.PutUint64(plain, uint64(c.now().Unix()))
	plain = binary.AppendUvarint(plain, uint64(len(scope)))
	plain = append(plain, scope...)
	plain = append(plain, value...)

	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens token and returns the sealed value if it was issued for scope
// within the TTL.
func (c *Codec) Decrypt(token, scope string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("decode token: %w", sentinel.ErrMalformed)
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", fmt.Errorf("token too short: %w", sentinel.ErrMalformed)
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("open token: %w", sentinel.ErrMalformed)
	}
	if len(plain) < timestampSize {
		return "", fmt.Errorf("token payload too short: %w", sentinel.ErrMalformed)
	}

	issued := time.Unix(int64(binary.BigEndian.Uint64(plain[:timestampSize])), 0)
	if c.now().Sub(issued) > c.ttl {
		return "", fmt.Errorf("token issued at %s: %w", issued.UTC().Format(time.RFC3339), sentinel.ErrExpired)
	}

	rest := plain[timestampSize:]
	n, read := binary.Uvarint(rest)
	if read <= 0 || uint64(len(rest)-read) < n {
		return "", fmt.Errorf("token scope length: %w", sentinel.ErrMalformed)
	}
	rest = rest[read:]
	if string(rest[:n]) != scope {
		return "", sentinel.ErrScopeMismatch
	}
	return string(rest[n:]), nil
}
