package pagecursor

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_DecodePosition(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedOffset int
		wantErr        bool
	}{
		{"empty token", "", NoPosition, false},
		{"zero encoded", base64.RawURLEncoding.EncodeToString([]byte("0")), 0, false},
		{"non-zero encoded", base64.RawURLEncoding.EncodeToString([]byte("15")), 15, false},
		{"not base64", "!!!", NoPosition, true},
		{"not a number", base64.RawURLEncoding.EncodeToString([]byte("abc")), NoPosition, true},
		{"negative", base64.RawURLEncoding.EncodeToString([]byte("-3")), NoPosition, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, err := DecodePosition(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if offset != tt.expectedOffset {
				t.Errorf("%s: offset=%d want %d", tt.name, offset, tt.expectedOffset)
			}
		})
	}
}

func Test_EncodePosition(t *testing.T) {
	require.Empty(t, EncodePosition(NoPosition))

	for _, offset := range []int{0, 1, 7, 12345} {
		decoded, err := DecodePosition(EncodePosition(offset))
		require.NoError(t, err)
		require.Equal(t, offset, decoded)
	}
}

func Test_PageArithmetic(t *testing.T) {
	tests := []struct {
		offset   int
		pageSize int
		page     int
		index    int
	}{
		{0, 2, 1, 0},
		{1, 2, 1, 1},
		{2, 2, 2, 0},
		{4, 2, 3, 0},
		{19, 20, 1, 19},
		{20, 20, 2, 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.page, PageOf(tt.offset, tt.pageSize), "page of %d", tt.offset)
		require.Equal(t, tt.index, IndexOf(tt.offset, tt.pageSize), "index of %d", tt.offset)
		require.Equal(t, tt.offset, OffsetOf(tt.page, tt.index, tt.pageSize))
	}
}

func Test_TotalPages(t *testing.T) {
	tests := []struct {
		total    int
		pageSize int
		want     int
	}{
		{0, 2, 0},
		{5, 2, 3},
		{4, 2, 2},
		{1, 20, 1},
		{TotalUnknown, 2, 0},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, TotalPages(tt.total, tt.pageSize), "%d/%d", tt.total, tt.pageSize)
	}
}
