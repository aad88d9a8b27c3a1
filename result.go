package pagecursor

// Result is the uniform outcome of every network-touching cursor operation.
// Failures never surface as Go errors; the cause is kept in Err for
// errors.Is/errors.As checks.
type Result[D any] struct {
	Success bool   `json:"success"`
	Data    D      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	// Skipped is set by Update when the payload was detected unchanged and no
	// network call was made.
	Skipped bool `json:"skipped,omitempty"`

	err error
}

func okResult[D any](data D) Result[D] {
	return Result[D]{Success: true, Data: data}
}

func failResult[D any](err error) Result[D] {
	return Result[D]{Error: err.Error(), err: err}
}

// Err returns the failure cause, or nil on success.
func (r Result[D]) Err() error {
	return r.err
}
