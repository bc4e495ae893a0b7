package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/pkg/jwt"
)

// Locals keys para UserID y StoreURL en Fiber.
const (
	LocalUserID   = "user_id"
	LocalStoreURL = "store_url"
)

// AuthMiddleware valida el Bearer Token JWT y extrae UserID y StoreURL a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, storeURL, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		if storeURL == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_STORE", Message: "el token no identifica una tienda"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalStoreURL, storeURL)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetStoreURL devuelve el dominio de la tienda autenticada (después del middleware de auth).
func GetStoreURL(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalStoreURL).(string)
	return s
}
