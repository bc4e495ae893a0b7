package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/marketbox-api/internal/application/dto"
	"github.com/jhoicas/marketbox-api/pkg/logger"
)

// storeChecker es el contrato mínimo que necesita el middleware para reconocer tiendas internas.
// Lo implementa *usecase.StoreService; el uso de interfaz evita el import circular.
type storeChecker interface {
	IsInternal(ctx context.Context, storeURL string) (bool, error)
}

// RequireInternalStore devuelve un middleware Fiber que solo deja pasar a la tienda interna
// del marketplace. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalStoreURL).
//
// Comportamiento:
//   - 401 Unauthorized → sin tienda en el contexto, o la tienda no es interna.
//   - 503 Service Unavailable → fallo de infraestructura al consultar la DB.
func RequireInternalStore(checker storeChecker, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeURL := GetStoreURL(c)
		if storeURL == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "store_url no encontrado en el token",
			})
		}

		internal, err := checker.IsInternal(c.UserContext(), storeURL)
		if err != nil {
			log.Error().Err(err).Str("store_url", storeURL).Msg("no se pudo verificar la tienda")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "STORE_CHECK_FAILED",
				Message: "no se pudo verificar la tienda, intente más tarde",
			})
		}

		if !internal {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "NOT_INTERNAL_STORE",
				Message: "solo la tienda del marketplace puede realizar esta operación",
			})
		}

		return c.Next()
	}
}
