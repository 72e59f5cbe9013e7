package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"lodgia.org/internal/auth"
	"lodgia.org/internal/rental"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// authenticate runs the authentication gate: extract the bearer token,
// verify it, resolve the subject to a principal. Every failure is a 401
// except lookup infrastructure errors.
func (a *API) authenticate(r *http.Request) (auth.Principal, *rejection) {
	token, err := extractBearerToken(r.Header.Get(authHeader))
	if err != nil {
		return auth.Principal{}, &rejection{stage: "authenticate", status: http.StatusUnauthorized, message: "not authenticated"}
	}

	subject, err := a.issuer.Verify(token)
	if err != nil {
		msg := "invalid token"
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			msg = "token expired"
		case errors.Is(err, auth.ErrInvalidSignature):
			msg = "invalid token signature"
		}
		return auth.Principal{}, &rejection{stage: "authenticate", status: http.StatusUnauthorized, message: msg}
	}

	principal, err := a.users.FindByTokenSubject(r.Context(), subject)
	if err != nil {
		if errors.Is(err, rental.ErrNotFound) {
			return auth.Principal{}, &rejection{stage: "authenticate", status: http.StatusUnauthorized, message: "user not found"}
		}
		msg := "internal error"
		if !a.cfg.Production() {
			msg = "internal error: " + err.Error()
		}
		return auth.Principal{}, &rejection{stage: "authenticate", status: http.StatusInternalServerError, message: msg}
	}
	return principal, nil
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
