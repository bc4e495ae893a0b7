package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/marketbox-api/internal/interfaces/http"
	"github.com/jhoicas/marketbox-api/pkg/logger"
	pkgjwt "github.com/jhoicas/marketbox-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret   = "test-secret-key-for-unit-tests"
	testUserID      = "00000000-0000-0000-0000-000000000001"
	testMarketURL   = "market.myshopify.com"
	testMerchantURL = "merchant.myshopify.com"
	testIssuer      = "marketbox-test"
	testExpMin      = 60
)

// checkerFunc adapta una función al contrato que espera RequireInternalStore.
type checkerFunc func(ctx context.Context, storeURL string) (bool, error)

func (f checkerFunc) IsInternal(ctx context.Context, storeURL string) (bool, error) {
	return f(ctx, storeURL)
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireInternalStore con el checker dado
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(checker checkerFunc) *fiber.App {
	app := fiber.New()
	app.Get("/internal",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireInternalStore(checker, logger.Nop()),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "store_url": apphttp.GetStoreURL(c)})
		},
	)
	return app
}

// tokenFor genera un JWT para la tienda indicada.
func tokenFor(t *testing.T, storeURL string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, storeURL, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /internal y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/internal", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func onlyMarket(_ context.Context, storeURL string) (bool, error) {
	return storeURL == testMarketURL, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireInternalStore
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireInternalStore_TiendaInternaPasa(t *testing.T) {
	app := buildTestApp(onlyMarket)
	resp := doRequest(t, app, tokenFor(t, testMarketURL))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testMarketURL, body["store_url"])
}

func TestRequireInternalStore_ComercianteBloqueado(t *testing.T) {
	app := buildTestApp(onlyMarket)
	resp := doRequest(t, app, tokenFor(t, testMerchantURL))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "NOT_INTERNAL_STORE")
}

func TestRequireInternalStore_FalloDeDB_Retorna503(t *testing.T) {
	app := buildTestApp(func(context.Context, string) (bool, error) {
		return false, errors.New("db caída")
	})
	resp := doRequest(t, app, tokenFor(t, testMarketURL))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	resp := doRequest(t, buildTestApp(onlyMarket), "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	resp := doRequest(t, buildTestApp(onlyMarket), "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenSinTienda_Retorna401(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, buildTestApp(onlyMarket), "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_STORE")
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"store_url": apphttp.GetStoreURL(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, testMerchantURL))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testMerchantURL, body["store_url"])
}
