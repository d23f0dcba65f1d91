package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

// appJWTConfig is the default JWT auth middleware config. The signing key is
// set from the configuration when the server is built.
var appJWTConfig = middleware.JWTConfig{
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "userToken",
	Claims:        new(Claims),
}

// Claims represents the authorization claims transmitted via a JWT.
// The host owns user accounts; we only carry the identity needed for
// view tracking and completion.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// GetClaims builds the claims identifying the acting user.
func GetClaims(userID, name, email string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   userID,
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  name,
		Email: email,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
