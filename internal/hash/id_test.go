package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestTag(t *testing.T) {
	names := []string{"", "main.Point", "github.com/acme/quotes.Quote", "serializer.pair"}

	for _, name := range names {
		tag := Tag(name)
		require.NotZero(t, tag, "tag zero is reserved")
		require.Equal(t, tag, Tag(name), "tags must be deterministic")
	}
}

func TestTag_Spread(t *testing.T) {
	seen := make(map[uint8]struct{})
	for i := range 1000 {
		seen[Tag(string(rune('a'+i%26))+string(rune(i)))] = struct{}{}
	}

	require.Greater(t, len(seen), 200, "tags should spread over the byte range")
}
