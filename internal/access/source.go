package access

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/pkg/tokens"
)

const (
	HeaderRole   = "UserRole"
	HeaderUserID = "UserId"

	AccessTokenCookie = "accessToken"
)

// Source extracts a Claim from a request. An absent identity is an empty
// Claim, not an error; the Policy decides what that means.
type Source interface {
	Claim(r *http.Request) (Claim, error)
}

// HeaderSource reads the plain UserRole and UserId headers.
type HeaderSource struct{}

func (HeaderSource) Claim(r *http.Request) (Claim, error) {
	claim := Claim{Role: strings.TrimSpace(r.Header.Get(HeaderRole))}

	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		return claim, nil
	}
	id, err := parseActorID(raw)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: %s header must be an integer", domain.ErrInvalidInput, HeaderUserID)
	}
	claim.ActorID = &id
	return claim, nil
}

// JWTSource reads an HS256 access token from the Authorization header or the
// accessToken cookie. The role claim is the role and sub is the user id.
type JWTSource struct {
	Secret []byte
}

func (s JWTSource) Claim(r *http.Request) (Claim, error) {
	raw := bearerToken(r)
	if raw == "" {
		if ck, err := r.Cookie(AccessTokenCookie); err == nil {
			raw = ck.Value
		}
	}
	if raw == "" {
		return Claim{}, nil
	}

	claims, err := tokens.AccessClaimsFromToken(raw, s.Secret)
	if err != nil {
		return Claim{}, fmt.Errorf("%w: invalid access token: %v", domain.ErrUnauthenticated, err)
	}

	claim := Claim{Role: strings.TrimSpace(claims.Role)}
	if claims.Subject != "" {
		id, err := parseActorID(claims.Subject)
		if err != nil {
			return Claim{}, fmt.Errorf("%w: token subject is not a user id", domain.ErrUnauthenticated)
		}
		claim.ActorID = &id
	}
	return claim, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

func parseActorID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}
