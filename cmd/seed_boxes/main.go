// seed_boxes genera el script SQL que puebla el catálogo maestro de cajas
// a partir de un CSV con columnas name,price,size (con fila de encabezado).
//
// Uso: go run ./cmd/seed_boxes [ruta/boxes.csv]
// Por defecto busca boxes.csv en el directorio actual. Acepta UTF-8 o ISO-8859-1
// (exportaciones de hojas de cálculo).
// Escribe: internal/infrastructure/postgres/migrations/002_seed_boxes.sql
package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// boxNamespace espacio de nombres para IDs estables: la misma caja genera el mismo UUID
// en cada corrida, así el script es re-ejecutable.
var boxNamespace = uuid.MustParse("6f1c2a54-4d0e-4f5b-9a3e-2b7c9d8e1f00")

type boxRow struct {
	id    uuid.UUID
	name  string
	price decimal.Decimal
	size  string
}

func main() {
	csvPath := "boxes.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}

	rows, err := parseBoxes(decodeInput(raw))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_boxes.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	writeSQL(out, rows)
	fmt.Printf("Generado %s: %d cajas\n", outPath, len(rows))
}

// decodeInput convierte a UTF-8 si el archivo viene en ISO-8859-1.
func decodeInput(raw []byte) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")))
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder())
}

func parseBoxes(r io.Reader) ([]boxRow, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("el CSV no tiene filas de datos")
	}

	col := map[string]int{}
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, k := range []string{"name", "price", "size"} {
		if _, ok := col[k]; !ok {
			return nil, fmt.Errorf("falta la columna %q", k)
		}
	}

	seen := map[string]bool{}
	rows := make([]boxRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		name := strings.TrimSpace(rec[col["name"]])
		if name == "" {
			continue
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("línea %d: caja %q duplicada", line, name)
		}
		seen[strings.ToLower(name)] = true

		price, err := decimal.NewFromString(strings.TrimSpace(rec[col["price"]]))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("línea %d: precio inválido %q", line, rec[col["price"]])
		}
		rows = append(rows, boxRow{
			id:    uuid.NewSHA1(boxNamespace, []byte(strings.ToLower(name))),
			name:  name,
			price: price,
			size:  strings.TrimSpace(rec[col["size"]]),
		})
	}
	return rows, nil
}

func writeSQL(out io.Writer, rows []boxRow) {
	fmt.Fprint(out, "-- Catálogo maestro de cajas de empaque\n")
	fmt.Fprint(out, "-- Generado por cmd/seed_boxes\n\n")
	fmt.Fprint(out, "INSERT INTO boxes (id, name, price, size) VALUES\n")
	for i, b := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(out, "  ('%s', '%s', %s, '%s')%s\n", b.id, escapeSQL(b.name), b.price.StringFixed(2), escapeSQL(b.size), sep)
	}
	fmt.Fprint(out, "ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, size = EXCLUDED.size, updated_at = now();\n")
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
