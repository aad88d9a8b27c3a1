package pagecursor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type handler[T any] struct {
	collection RemoteCollection[T]
	logger     logrus.FieldLogger
}

// NewHandler serves collection as REST endpoints under prefix (e.g. "/users"),
// in the format HTTPCollection consumes. List responses use the
// {"items": [...], "total": n} envelope. A nil logger logs nothing.
func NewHandler[T any](prefix string, collection RemoteCollection[T], logger logrus.FieldLogger) http.Handler {
	if logger == nil {
		logger = discardLogger()
	}

	h := &handler[T]{collection: collection, logger: logger}
	prefix = "/" + strings.Trim(prefix, "/")

	r := mux.NewRouter()
	r.HandleFunc(prefix, h.list).Methods(http.MethodGet)
	r.HandleFunc(prefix, h.create).Methods(http.MethodPost)
	r.HandleFunc(strings.TrimRight(prefix, "/")+"/{id}", h.replace).Methods(http.MethodPut)
	r.HandleFunc(strings.TrimRight(prefix, "/")+"/{id}", h.remove).Methods(http.MethodDelete)

	return r
}

// DecodeListQuery parses a query string produced by EncodeListQuery. Filter
// values that are not valid JSON are taken as plain strings.
func DecodeListQuery(r *http.Request) ListQuery {
	values := r.URL.Query()
	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))

	q := ListQuery{
		Page:  NormalizePage(page),
		Limit: NormalizePageSize(limit),
		Sort:  values["sort"],
	}

	for key := range values {
		field, found := strings.CutPrefix(key, "filter[")
		if !found || !strings.HasSuffix(field, "]") {
			continue
		}
		field = strings.TrimSuffix(field, "]")

		raw := values.Get(key)
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}

		if q.Filter == nil {
			q.Filter = Filter{}
		}
		q.Filter[field] = value
	}

	return q
}

type listBody[T any] struct {
	Items []T  `json:"items"`
	Total *int `json:"total,omitempty"`
}

func (h *handler[T]) list(w http.ResponseWriter, r *http.Request) {
	resp, err := h.collection.List(r.Context(), DecodeListQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	body := listBody[T]{Items: resp.Rows}
	if body.Items == nil {
		body.Items = []T{}
	}
	if resp.HasTotal() {
		body.Total = &resp.Total
	}

	h.writeJSON(w, http.StatusOK, body)
}

func (h *handler[T]) create(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodePayload(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.collection.Create(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, created)
}

func (h *handler[T]) replace(w http.ResponseWriter, r *http.Request) {
	payload, err := h.decodePayload(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.collection.Replace(r.Context(), mux.Vars(r)["id"], payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}

func (h *handler[T]) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.collection.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler[T]) decodePayload(r *http.Request) (T, error) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, newValidationError("payload", fmt.Sprintf("is malformed: %v", err))
	}

	return payload, validatePayload(payload)
}

func (h *handler[T]) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WithError(err).Warn("cannot write response")
	}
}

func (h *handler[T]) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *ValidationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	}

	entry := h.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).WithError(err)
	if status == http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	h.writeJSON(w, status, errorBody{Error: err.Error()})
}
