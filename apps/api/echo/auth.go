package echoapi

import (
	"crypto/subtle"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/datastorylab/showtell/core"
)

const adminTokenContextKey = "adminToken"

// Claims represents the authorization claims transmitted via a JWT.
// The only elevated actor is the admin who presented the shared key.
type Claims struct {
	jwt.StandardClaims
	IsAdmin bool `json:"is_admin,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    adminTokenContextKey,
		Claims:        new(Claims),
	}
}

func getAdminClaims(conf *core.Config) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   "admin",
			Audience:  "ShowTell",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsAdmin: true,
	}
}

// unlock checks the presented key against the configured admin key. An
// unset key is a configuration error, not an authentication failure.
func unlock(key string, conf *core.Config) (*Claims, error) {
	if conf.AdminKey == "" {
		return nil, core.NewConfigError("admin key is not configured: set ADMIN_KEY")
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(conf.AdminKey)) != 1 {
		return nil, errAuthenticationFailed
	}
	return getAdminClaims(conf), nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(adminTokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
