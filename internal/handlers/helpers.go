package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is empty")
)

// readLimitedBody reads at most limit bytes from the request body, failing
// when the body is empty or exceeds the limit.
func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, errEmptyBody
	}
	return body, nil
}

// decodeJSONBody reads and unmarshals the request body into out.
func decodeJSONBody(r *http.Request, limit int64, out any) error {
	body, err := readLimitedBody(r, limit)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
