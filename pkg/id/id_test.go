package id

import (
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("format", func(t *testing.T) {
		t.Parallel()

		u := NewULID()
		require.Len(t, u, 26)
		assert.Regexp(t, regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`), u)
	})

	t.Run("unique", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{}, 1000)
		for range 1000 {
			u := NewULID()
			_, dup := seen[u]
			require.False(t, dup, "duplicate ulid %s", u)
			seen[u] = struct{}{}
		}
	})

	t.Run("sortable by time", func(t *testing.T) {
		t.Parallel()

		base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		ids := []string{
			ulidAt(base.Add(2 * time.Second)),
			ulidAt(base),
			ulidAt(base.Add(time.Second)),
		}
		sorted := append([]string(nil), ids...)
		sort.Strings(sorted)
		assert.Equal(t, []string{ids[1], ids[2], ids[0]}, sorted)
	})

	t.Run("encodes timestamp prefix", func(t *testing.T) {
		t.Parallel()

		ts := time.UnixMilli(0)
		assert.Equal(t, "0000000000", ulidAt(ts)[:10])
	})
}

func TestRandomHex(t *testing.T) {
	t.Parallel()

	h := RandomHex(32)
	assert.Len(t, h, 64)
	assert.Regexp(t, `^[0-9a-f]+$`, h)
	assert.NotEqual(t, h, RandomHex(32))
}

func TestRandomToken(t *testing.T) {
	t.Parallel()

	tok := RandomToken(32)
	assert.Len(t, tok, 43)
	assert.NotContains(t, tok, "=")
	assert.NotEqual(t, tok, RandomToken(32))
}
