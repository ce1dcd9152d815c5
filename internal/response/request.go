package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cinehub/internal/services"
)

// MaxBodyBytes caps JSON request bodies
const MaxBodyBytes = 1 << 20

// DecodeJSON reads the request body into dst. An empty body leaves dst
// untouched; malformed JSON becomes a validation error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	decoder := json.NewDecoder(body)

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.NewValidationError(fmt.Sprintf("Request body exceeds %d bytes", MaxBodyBytes), err)
		}
		return services.NewValidationError("Invalid request body format", err)
	}
	return nil
}
