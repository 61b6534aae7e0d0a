package validators

import (
	"strings"

	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
)

// BearerToken extracts the token from an Authorization header value. The
// "Bearer " scheme prefix is optional.
func BearerToken(header string) (string, error) {
	token := strings.TrimSpace(header)
	if strings.EqualFold(token, "bearer") {
		token = ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	return token, nil
}
