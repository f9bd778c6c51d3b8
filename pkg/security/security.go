package security

import (
	"crypto/subtle"
	"fmt"
	"html"
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/cureconnect/portal/pkg/id"
	"github.com/cureconnect/portal/pkg/session"
	"github.com/cureconnect/portal/pkg/slug"
)

// CSRFSessionKey is the session key holding the form token.
const CSRFSessionKey = "csrf_token"

var (
	phoneDisallowed = regexp.MustCompile(`[^0-9+\-\s()]`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9\-\s()]{7,20}$`)

	validate     *validator.Validate
	validateOnce sync.Once
)

// EscapeHTML escapes &, <, >, " and ' for safe inclusion in markup.
func EscapeHTML(s string) string {
	return html.EscapeString(s)
}

// SanitizeInput trims s, removes backslash escaping and HTML-escapes the rest.
func SanitizeInput(s string) string {
	return EscapeHTML(stripSlashes(strings.TrimSpace(s)))
}

func stripSlashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if r == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	return b.String()
}

// CSRFToken returns the session's token, creating a 64-character hex token on
// first use.
func CSRFToken(s *session.Session) string {
	if tok, ok := s.Get(CSRFSessionKey); ok && tok != "" {
		return tok
	}
	tok := id.RandomHex(32)
	s.Set(CSRFSessionKey, tok)
	return tok
}

// VerifyCSRFToken compares token with the session's in constant time.
func VerifyCSRFToken(s *session.Session, token string) bool {
	want, ok := s.Get(CSRFSessionKey)
	if !ok || want == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

// ValidateEmail reports whether email is a syntactically valid address.
func ValidateEmail(email string) bool {
	validateOnce.Do(func() { validate = validator.New() })
	return validate.Var(email, "required,email") == nil
}

// ValidatePhone drops characters that cannot appear in a phone number and
// checks that 7 to 20 digits, spaces, dashes or parentheses remain, with an
// optional leading '+'.
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phoneDisallowed.ReplaceAllString(phone, ""))
}

// Slug is slug.Make without options.
func Slug(s string) string {
	return slug.Make(s)
}

// ClientIP picks the visitor address from Client-IP, then the first entry of
// X-Forwarded-For, then remoteAddr. Header values are only trusted when they
// hold a public address.
func ClientIP(header func(string) string, remoteAddr string) string {
	for _, name := range []string{"Client-Ip", "X-Forwarded-For"} {
		v := header(name)
		if v == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil && isPublic(addr) {
			return addr.String()
		}
	}
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

func isPublic(a netip.Addr) bool {
	return a.IsGlobalUnicast() && !a.IsPrivate() && !a.IsLoopback() && !isReserved(a)
}

var reserved = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("2001:db8::/32"),
}

func isReserved(a netip.Addr) bool {
	for _, p := range reserved {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// CheckRateLimit counts an attempt for key in the session and reports whether
// it is allowed: at most limit attempts inside window, after which the window
// restarts. The counter is stored as "count:start-unix" under rate_limit_{key}.
func CheckRateLimit(s *session.Session, key string, limit int, window time.Duration, now time.Time) bool {
	sk := "rate_limit_" + key
	count, start := 0, now.Unix()
	if raw, ok := s.Get(sk); ok {
		if c, st, ok := parseCounter(raw); ok && now.Unix()-st <= int64(window/time.Second) {
			count, start = c, st
		}
	}
	if count >= limit {
		return false
	}
	s.Set(sk, fmt.Sprintf("%d:%d", count+1, start))
	return true
}

func parseCounter(raw string) (int, int64, bool) {
	c, st, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, 0, false
	}
	count, err1 := strconv.Atoi(c)
	start, err2 := strconv.ParseInt(st, 10, 64)
	return count, start, err1 == nil && err2 == nil
}
