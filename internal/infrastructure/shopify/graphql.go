// Package shopify implementa el cliente del catálogo remoto sobre la Admin GraphQL API de Shopify.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Client ejecuta operaciones GraphQL contra la Admin API de cualquier tienda.
// Las credenciales viajan en cada llamada (multi-tenant).
type Client struct {
	apiVersion string
	httpClient *http.Client
	endpoint   func(shopDomain, apiVersion string) string
}

// Option personaliza el cliente.
type Option func(*Client)

// WithEndpoint reemplaza la URL de la Admin API (tests con httptest).
func WithEndpoint(fn func(shopDomain, apiVersion string) string) Option {
	return func(c *Client) { c.endpoint = fn }
}

// WithHTTPClient reemplaza el http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient construye el cliente. timeout aplica a cada request HTTP.
func NewClient(apiVersion string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &Client{
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
		endpoint: func(shopDomain, apiVersion string) string {
			return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", shopDomain, apiVersion)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GraphQLError error de nivel superior de una respuesta GraphQL.
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

// UserError error de negocio devuelto por una mutación.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// postGraphQL envía la operación y decodifica data en T. Los errores GraphQL de nivel
// superior y los HTTP distintos de 200 se devuelven como error.
func postGraphQL[T any](ctx context.Context, c *Client, shopDomain, accessToken, operation, query string, variables any) (*T, error) {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, fmt.Errorf("shopify %s: serializar request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(shopDomain, c.apiVersion), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopify %s: crear request: %w", operation, err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("shopify %s: timeout o cancelación: %w", operation, ctx.Err())
		}
		return nil, fmt.Errorf("shopify %s: llamada HTTP fallida: %w", operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("shopify %s: leer respuesta: %w", operation, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify %s: HTTP %d: %s", operation, resp.StatusCode, truncate(string(raw), 300))
	}

	var out graphQLResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("shopify %s: deserializar respuesta: %w", operation, err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("shopify %s: %s", operation, strings.Join(msgs, "; "))
	}
	return &out.Data, nil
}

// userErrorsErr convierte los userErrors de una mutación en error (nil si no hay).
func userErrorsErr(operation string, errs []UserError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		if len(e.Field) > 0 {
			msgs = append(msgs, strings.Join(e.Field, ".")+": "+e.Message)
		} else {
			msgs = append(msgs, e.Message)
		}
	}
	return fmt.Errorf("shopify %s: %s", operation, strings.Join(msgs, "; "))
}

// truncate corta s a lo sumo en n bytes sin partir un carácter UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
