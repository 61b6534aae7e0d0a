package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
)

// ParseSearchQuery returns the trimmed query parameter, rejecting values longer than maxLen.
func ParseSearchQuery(r *http.Request, key string, maxLen int) (string, error) {
	raw := r.URL.Query().Get(key)
	value := strings.TrimSpace(raw)
	if maxLen > 0 && len(value) > maxLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter too long").WithDetails(map[string]any{"field": key, "max": maxLen})
	}
	return value, nil
}
