package pagecursor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
)

// listEnvelope covers the enveloped list shapes seen on REST backends:
//
//	{"items": [...], "total": n}
//	{"rows": [...], "total": n}
//	{"rows": [...], "count": n}
type listEnvelope[T any] struct {
	Items []T  `json:"items"`
	Rows  []T  `json:"rows"`
	Total *int `json:"total"`
	Count *int `json:"count"`
}

// DecodeListResponse parses a list response body. Both a bare JSON array and
// an enveloped object are accepted. A bare array, or an envelope without a
// total, yields Total = TotalUnknown. A null body or an object without rows
// yields an empty page.
func DecodeListResponse[T any](body []byte) (ListResponse[T], error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return ListResponse[T]{Rows: []T{}, Total: TotalUnknown}, nil
	}

	switch body[0] {
	case '[':
		var rows []T
		if err := json.Unmarshal(body, &rows); err != nil {
			return ListResponse[T]{}, fmt.Errorf("failed to unmarshal list response: %w", err)
		}

		return ListResponse[T]{Rows: rows, Total: TotalUnknown}, nil
	case '{':
		var env listEnvelope[T]
		if err := json.Unmarshal(body, &env); err != nil {
			return ListResponse[T]{}, fmt.Errorf("failed to unmarshal list envelope: %w", err)
		}

		rows := lo.Ternary(env.Rows != nil, env.Rows, env.Items)
		if rows == nil {
			return ListResponse[T]{Rows: []T{}, Total: TotalUnknown}, nil
		}

		total := TotalUnknown
		if env.Total != nil {
			total = *env.Total
		} else if env.Count != nil {
			total = *env.Count
		}

		return ListResponse[T]{Rows: rows, Total: total}, nil
	default:
		return ListResponse[T]{}, fmt.Errorf("unexpected list response shape starting with %q", body[0])
	}
}
