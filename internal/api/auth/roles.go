package auth

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hbomb79/mediaprobe/pkg/logger"
	"github.com/labstack/echo/v4"
)

var (
	log = logger.Get("Auth")

	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized)
	errForbidden    = echo.NewHTTPError(http.StatusForbidden)
)

const (
	authTokenCookieName = "auth-token"

	SuperAdminRole = "super-admin"
)

type (
	// customClaims are the claims expected of the JWTs issued by the
	// application which owns the users. Only the roles are consulted.
	customClaims struct {
		jwt.RegisteredClaims
		Roles []string `json:"roles"`
	}

	jwtRoleChecker struct {
		secret []byte
	}
)

// NewJwtRoleChecker constructs a checker which validates HS256 signed JWTs
// using the secret provided. With an empty secret every request is rejected.
func NewJwtRoleChecker(secret string) *jwtRoleChecker {
	return &jwtRoleChecker{secret: []byte(secret)}
}

// RequireRole returns an echo middleware which rejects requests that do not
// carry a valid JWT containing the role provided. The token is read from the
// 'Authorization: Bearer' header, falling back to the auth token cookie.
func (checker *jwtRoleChecker) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			claims, err := checker.validateToken(ec)
			if err != nil {
				log.Warnf("Rejecting request to %s: %v\n", ec.Path(), err)
				return errUnauthorized
			}

			if !slices.Contains(claims.Roles, role) {
				log.Warnf("Rejecting request to %s: subject %s lacks role %s\n", ec.Path(), claims.Subject, role)
				return errForbidden
			}

			return next(ec)
		}
	}
}

func (checker *jwtRoleChecker) validateToken(ec echo.Context) (*customClaims, error) {
	if len(checker.secret) == 0 {
		return nil, errors.New("no JWT secret is configured")
	}

	raw, err := extractToken(ec)
	if err != nil {
		return nil, err
	}

	claims := &customClaims{}
	tkn, err := jwt.ParseWithClaims(
		raw,
		claims,
		func(token *jwt.Token) (interface{}, error) { return checker.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	if tkn == nil || !tkn.Valid {
		return nil, errors.New("failed to verify JWT: token is expired or invalid")
	}

	return claims, nil
}

func extractToken(ec echo.Context) (string, error) {
	if header := ec.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return "", errors.New("authorization header is not a bearer token")
		}

		return token, nil
	}

	cookie, err := ec.Cookie(authTokenCookieName)
	if err != nil {
		return "", fmt.Errorf("failed to extract cookie %s: %w", authTokenCookieName, err)
	}

	return cookie.Value, nil
}
