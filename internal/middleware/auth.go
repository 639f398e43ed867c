package middleware

import (
	"net/http"
	"strings"

	"gallery-service/pkg/jwtutil"
	"gallery-service/pkg/logger"
	"gallery-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token on the internal selector API and
// extracts the company scope. Public gallery routes never pass through here.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		prometheus.AuthAttemptsCounter.Inc()

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)

		// Every selector call must carry a company scope; cross-company
		// visibility of inventory is a correctness bug.
		if claims.CompanyID == nil {
			log.Warn("JWT token does not contain company_id")
			prometheus.AuthErrorsCounter.Inc()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "company_id is required in the token"})
		}

		c.Set("company_id", *claims.CompanyID)
		c.Set("company_name", claims.CompanyName)
		c.Set("user_role", claims.Role)
		prometheus.AuthSuccessCounter.Inc()
		log.Info("Request authenticated with company context",
			zap.Uint("company_id", *claims.CompanyID),
			zap.String("company_name", claims.CompanyName),
			zap.String("role", claims.Role))

		// Token is valid, proceed with the request
		return next(c)
	}
}

// GetCompanyIDFromContext retrieves the company scope from the context.
// Returns 0, false if it is not set.
func GetCompanyIDFromContext(c echo.Context) (uint, bool) {
	companyID, ok := c.Get("company_id").(uint)
	return companyID, ok
}

// GetUserIDFromContext retrieves the authenticated user id from the context.
func GetUserIDFromContext(c echo.Context) (uint, bool) {
	userID, ok := c.Get("user_id").(uint)
	return userID, ok
}
