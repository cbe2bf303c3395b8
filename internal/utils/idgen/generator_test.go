package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		length     int
		wantErr    bool
		wantPrefix string
	}{
		{name: "room name", prefix: "room", length: 24, wantPrefix: "room_"},
		{name: "short id", prefix: "test", length: 8, wantPrefix: "test_"},
		{name: "no prefix", prefix: "", length: 12, wantPrefix: ""},
		{name: "zero length", prefix: "room", length: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSecureID(tt.prefix, tt.length)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, tt.wantPrefix))
			suffix := strings.TrimPrefix(got, tt.wantPrefix)
			assert.Len(t, suffix, tt.length)
			for _, char := range suffix {
				assert.True(t, (char >= 'a' && char <= 'z') || (char >= '0' && char <= '9'), "invalid character %q", char)
			}
		})
	}
}

func TestGenerateSecureID_Uniqueness(t *testing.T) {
	const iterations = 10000
	seen := make(map[string]struct{}, iterations)

	for i := 0; i < iterations; i++ {
		id, err := GenerateSecureID("room", 16)
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
