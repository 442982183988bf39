package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxRequestBodyBytes bounds the size of a JSON request body.
const MaxRequestBodyBytes = 1 << 20

// ErrInvalidJSON is returned when a request body is not a single JSON object.
var ErrInvalidJSON = errors.New("invalid JSON body")

// DecodeJSON decodes the request body into v. Bodies larger than
// MaxRequestBodyBytes, empty bodies and trailing data are rejected.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", ErrInvalidJSON)
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", ErrInvalidJSON)
	}
	return nil
}
