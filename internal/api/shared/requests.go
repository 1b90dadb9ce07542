package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every request struct; a single instance caches
// the parsed struct tags.
var validate = validator.New()

// Validatable is implemented by request types whose validation goes
// beyond what struct tags can express.
type Validatable interface {
	Validate() error
}

// DecodeJSON decodes the request body into the given struct.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates the given struct, preferring its own
// Validate method over the struct tags when it has one.
func ValidateRequest(v interface{}) error {
	if validatable, ok := v.(Validatable); ok {
		return validatable.Validate()
	}

	return validate.Struct(v)
}
