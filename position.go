package pagecursor

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

var _encoder = base64.RawURLEncoding

// NoPosition is the global offset reported when the cursor points nowhere.
const NoPosition = -1

// PageOf returns the 1-based page containing the global offset.
func PageOf(offset, pageSize int) int {
	return offset/pageSize + 1
}

// IndexOf returns the in-page index of the global offset.
func IndexOf(offset, pageSize int) int {
	return offset % pageSize
}

// OffsetOf is the inverse of PageOf/IndexOf.
func OffsetOf(page, index, pageSize int) int {
	return (page-1)*pageSize + index
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}

	return (total + pageSize - 1) / pageSize
}

// EncodePosition builds a bookmark token for the global offset. NoPosition
// and other negative offsets encode to an empty token.
func EncodePosition(offset int) string {
	if offset < 0 {
		return ""
	}

	return _encoder.EncodeToString([]byte(strconv.Itoa(offset)))
}

// DecodePosition parses a token produced by EncodePosition. An empty token
// decodes to NoPosition.
func DecodePosition(token string) (int, error) {
	if len(token) == 0 {
		return NoPosition, nil
	}

	offsetBytes, err := _encoder.DecodeString(token)
	if err != nil {
		return NoPosition, fmt.Errorf("failed to decode base64 encoded position: %w", err)
	}

	offset, err := strconv.Atoi(string(offsetBytes))
	if err != nil {
		return NoPosition, fmt.Errorf("failed to decode position offset value: %w", err)
	}
	if offset < 0 {
		return NoPosition, fmt.Errorf("negative position offset %d", offset)
	}

	return offset, nil
}
