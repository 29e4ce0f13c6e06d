package aiproxy

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-openapi/strfmt"
)

// validatable is implemented by request models.
type validatable interface {
	Validate(formats strfmt.Registry) error
}

// validateRequest validates req before any network call. A nil request or a
// failed validation is returned as a BAD_REQUEST *Error wrapping the
// validation errors.
func validateRequest(req validatable, isNil bool) error {
	if isNil {
		return newError(CodeBadRequest, "request is required", http.StatusBadRequest, nil)
	}
	if err := req.Validate(strfmt.Default); err != nil {
		return newError(CodeBadRequest, err.Error(), http.StatusBadRequest, err)
	}
	return nil
}

// pathSegment escapes a caller-supplied identifier for use in a path.
func pathSegment(name, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", newError(CodeBadRequest, name+" is required", http.StatusBadRequest, nil)
	}
	return url.PathEscape(value), nil
}
