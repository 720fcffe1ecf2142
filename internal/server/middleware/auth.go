package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"message": msg})
}

func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Unauthorized")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		ac := c.(*AppContext)
		app := ac.App

		// Master API Key bypass
		if app.MasterAPIKey != "" && app.MasterPersonID != "" && token == app.MasterAPIKey {
			role := app.MasterRole
			if role == "" {
				role = "admin"
			}
			ac.User = &AppUser{PersonID: app.MasterPersonID, Role: role}
			return next(c)
		}

		if app.Keyfunc == nil {
			return unauthorized(c, "Unauthorized")
		}
		parsed, err := jwt.Parse(token, app.Keyfunc)
		if err != nil || !parsed.Valid {
			return unauthorized(c, "Unauthorized")
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c, "Unauthorized")
		}

		personID, ok := personClaim(claims["id"])
		if !ok {
			return unauthorized(c, "Invalid person ID")
		}

		role := "user"
		if roleClaim, ok := claims["role"].(string); ok && roleClaim != "" {
			role = roleClaim
		}

		ac.User = &AppUser{PersonID: personID, Role: role}
		return next(c)
	}
}

// personClaim accepts the id claim as a string or as a JSON number.
func personClaim(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		return strconv.FormatInt(int64(id), 10), true
	default:
		return "", false
	}
}

// RequireRole rejects users whose role is not one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return unauthorized(c, "Unauthorized")
			}
			for _, r := range roles {
				if user.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Forbidden"})
		}
	}
}
