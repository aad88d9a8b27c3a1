package pagecursor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/samber/lo"
)

// listParams is the query string of a list request. Filter fields travel
// separately as filter[<field>]=<json value>.
type listParams struct {
	Page  int      `url:"page"`
	Limit int      `url:"limit"`
	Sort  []string `url:"sort,omitempty"`
}

// errorBody is the JSON error payload exchanged with NewHandler.
type errorBody struct {
	Error string `json:"error"`
}

// HTTPCollection is a RemoteCollection over REST endpoints:
//
//	GET    {endpoint}?page=&limit=&sort=&filter[field]=
//	POST   {endpoint}
//	PUT    {endpoint}/{id}
//	DELETE {endpoint}/{id}
//
// Request and response bodies are JSON. List responses may be a bare array
// or an envelope, see DecodeListResponse. 404 responses map to ErrNotFound.
type HTTPCollection[T any] struct {
	endpoint string
	client   *http.Client
}

func NewHTTPCollection[T any](endpoint string) *HTTPCollection[T] {
	return &HTTPCollection[T]{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   http.DefaultClient,
	}
}

// WithClient sets the HTTP client. Timeouts, retries and authentication are
// configured there.
func (h *HTTPCollection[T]) WithClient(client *http.Client) *HTTPCollection[T] {
	h.client = client

	return h
}

// EncodeListQuery renders q as the query string understood by NewHandler.
func EncodeListQuery(q ListQuery) (url.Values, error) {
	values, err := query.Values(listParams{Page: q.Page, Limit: q.Limit, Sort: q.Sort})
	if err != nil {
		return nil, fmt.Errorf("failed to encode list query: %w", err)
	}

	for field, value := range q.Filter {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode filter field '%s': %w", field, err)
		}
		values.Set(fmt.Sprintf("filter[%s]", field), string(raw))
	}

	return values, nil
}

// List implements RemoteCollection.
func (h *HTTPCollection[T]) List(ctx context.Context, q ListQuery) (ListResponse[T], error) {
	values, err := EncodeListQuery(q)
	if err != nil {
		return ListResponse[T]{}, err
	}

	body, err := h.do(ctx, http.MethodGet, h.endpoint+"?"+values.Encode(), nil)
	if err != nil {
		return ListResponse[T]{}, err
	}

	return DecodeListResponse[T](body)
}

// Create implements RemoteCollection.
func (h *HTTPCollection[T]) Create(ctx context.Context, payload T) (T, error) {
	body, err := h.do(ctx, http.MethodPost, h.endpoint, payload)
	if err != nil {
		return lo.Empty[T](), err
	}

	return decodeRecord[T](body)
}

// Replace implements RemoteCollection.
func (h *HTTPCollection[T]) Replace(ctx context.Context, id any, payload T) (T, error) {
	body, err := h.do(ctx, http.MethodPut, h.recordURL(id), payload)
	if err != nil {
		return lo.Empty[T](), err
	}

	return decodeRecord[T](body)
}

// Remove implements RemoteCollection.
func (h *HTTPCollection[T]) Remove(ctx context.Context, id any) error {
	_, err := h.do(ctx, http.MethodDelete, h.recordURL(id), nil)
	return err
}

func (h *HTTPCollection[T]) recordURL(id any) string {
	return h.endpoint + "/" + url.PathEscape(fmt.Sprint(id))
}

func (h *HTTPCollection[T]) do(ctx context.Context, method, target string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}

		err = fmt.Errorf("%s %s: %s: %s", method, req.URL.Path, resp.Status, msg)
		if resp.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("%w: %s", ErrNotFound, err.Error())
		}

		return nil, err
	}

	return body, nil
}

func decodeRecord[T any](body []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(body, &rec); err != nil {
		return lo.Empty[T](), fmt.Errorf("failed to unmarshal record: %w", err)
	}

	return rec, nil
}

var _ RemoteCollection[struct{}] = (*HTTPCollection[struct{}])(nil)
