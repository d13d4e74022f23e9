package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeParseID(t *testing.T) {
	tests := []struct {
		tag      SourceTag
		original string
		want     string
	}{
		{SourcePrimary, "42", "primary-42"},
		{SourceSecondary, "900", "secondary-900"},
		{SourceLocal, "ficus-1", "local-ficus-1"},
		{SourceLocal, "a-b-c", "local-a-b-c"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			id := MakeID(tt.tag, tt.original)
			assert.Equal(t, tt.want, id)

			tag, original, err := ParseID(id)
			require.NoError(t, err)
			assert.Equal(t, tt.tag, tag)
			assert.Equal(t, tt.original, original)
		})
	}
}

func TestParseID_Invalid(t *testing.T) {
	for _, id := range []string{"", "-", "primary", "primary-", "trefle-1", "Primary-1", "-42"} {
		_, _, err := ParseID(id)
		assert.ErrorIs(t, err, ErrInvalidID, "id %q", id)
	}
}
