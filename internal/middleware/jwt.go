package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fakti/internal/common"
	"fakti/internal/logging"
	"fakti/internal/services"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// TokenContextKey is where echo-jwt leaves the parsed token.
const TokenContextKey = "user"

var errTokenRevoked = errors.New("token revoked")

// LoadJWKS fetches the key set behind url and keeps it refreshed in the
// background until ctx is done.
func LoadJWKS(ctx context.Context, url string, logger logrus.FieldLogger) (*keyfunc.JWKS, error) {
	jwks, err := keyfunc.Get(url, keyfunc.Options{
		Ctx:               ctx,
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logging.LogError(logger, "middleware", "LoadJWKS", "refresh", url, err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", url, err)
	}
	return jwks, nil
}

// JWTConfig accepts HS256 tokens signed with secret and, when jwks is not
// nil, asymmetric tokens signed by one of its keys. Revoked tokens are
// refused. The user ID and token language are copied into the request
// context.
func JWTConfig(authSvc services.AuthService, secret string, jwks *keyfunc.JWKS, logger logrus.FieldLogger) echojwt.Config {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() == jwt.SigningMethodHS256.Alg() {
			return []byte(secret), nil
		}
		if jwks == nil {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return jwks.Keyfunc(token)
	}

	return echojwt.Config{
		ContextKey: TokenContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			token, err := jwt.ParseWithClaims(auth, new(services.TokenClaims), keyFunc, jwt.WithAudience(services.TokenAudience))
			if err != nil {
				return nil, err
			}
			claims, ok := token.Claims.(*services.TokenClaims)
			if !ok || !token.Valid {
				return nil, services.ErrInvalidToken
			}

			userID, err := claimsUserID(claims)
			if err != nil {
				return nil, err
			}

			ctx := c.Request().Context()
			if claims.TokenID != "" {
				revoked, err := authSvc.IsRevoked(ctx, claims.TokenID)
				if err != nil {
					logging.LogError(logger, "middleware", "JWTConfig", "revocation check", claims.TokenID, err)
					return nil, err
				}
				if revoked {
					return nil, errTokenRevoked
				}
			}

			ctx = common.WithUserID(ctx, userID)
			if claims.Language != "" {
				ctx = common.WithLanguage(ctx, claims.Language)
			}
			c.SetRequest(c.Request().WithContext(ctx))
			return token, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	}
}

// claimsUserID reads the user from the user_id claim, falling back to the
// subject for tokens issued by an external provider.
func claimsUserID(claims *services.TokenClaims) (uuid.UUID, error) {
	raw := strings.TrimSpace(claims.UserID)
	if raw == "" {
		raw = claims.Subject
	}
	userID, err := uuid.Parse(raw)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, services.ErrInvalidToken
	}
	return userID, nil
}

// ClaimsFromContext returns the claims of the token that authenticated c.
func ClaimsFromContext(c echo.Context) (*services.TokenClaims, bool) {
	token, ok := c.Get(TokenContextKey).(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*services.TokenClaims)
	return claims, ok
}
