package middleware

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"doorstep-clean/internal/policy"
)

// Claims is the signed identity payload carried by every authenticated
// request: {user id, email, role, name}. The core trusts it as-is.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWT returns the echo-jwt middleware configured for our claims.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
	})
}

// ExtractIdentity copies the verified claims onto the echo context under the
// keys handlers read (userID, userRole, userName, userEmail).
func ExtractIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.ErrUnauthorized
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return echo.ErrUnauthorized
		}
		c.Set("userID", claims.Subject)
		c.Set("userRole", claims.Role)
		c.Set("userName", claims.Name)
		c.Set("userEmail", claims.Email)
		return next(c)
	}
}

// ActorFrom rebuilds the policy actor from the context keys set by
// ExtractIdentity.
func ActorFrom(c echo.Context) policy.Actor {
	actor := policy.Actor{}
	if v, ok := c.Get("userID").(string); ok {
		actor.ID = v
	}
	if v, ok := c.Get("userRole").(string); ok {
		actor.Role = v
	}
	if v, ok := c.Get("userName").(string); ok {
		actor.Name = v
	}
	if v, ok := c.Get("userEmail").(string); ok {
		actor.Email = v
	}
	return actor
}
