package packaging

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/jhoicas/marketbox-api/internal/domain"
	"github.com/jhoicas/marketbox-api/internal/domain/entity"
)

// MaxQuantity tope de una línea, de una caja agrupada y del total de la orden (columnas INTEGER).
const MaxQuantity = math.MaxInt32

// RawItem línea tal como llega en la petición (quantity puede faltar o no ser entera).
type RawItem struct {
	BoxID    string
	Quantity *float64
}

// ValidateItems valida todas las líneas y devuelve un *domain.ValidationError con todas
// las violaciones encontradas. Si no hay violaciones devuelve las líneas tipadas.
func ValidateItems(raw []RawItem) ([]entity.StoreBoxOrderItem, error) {
	verr := &domain.ValidationError{}
	if len(raw) == 0 {
		verr.Add("orderItems", "se requiere al menos una línea de pedido")
		return nil, verr
	}
	items := make([]entity.StoreBoxOrderItem, 0, len(raw))
	for i, r := range raw {
		prefix := fmt.Sprintf("orderItems[%d]", i)
		if r.BoxID == "" {
			verr.Add(prefix+".box", "cada línea debe incluir el ID de la caja")
		} else if !IsBoxID(r.BoxID) {
			verr.Add(prefix+".box", "formato de ID de caja inválido")
		}
		switch {
		case r.Quantity == nil:
			verr.Add(prefix+".quantity", "cada línea debe incluir una cantidad")
		case *r.Quantity != math.Trunc(*r.Quantity):
			verr.Add(prefix+".quantity", "la cantidad debe ser un número entero")
		case *r.Quantity <= 0:
			verr.Add(prefix+".quantity", "la cantidad debe ser mayor que 0")
		case *r.Quantity > MaxQuantity:
			verr.Add(prefix+".quantity", "la cantidad excede el máximo permitido")
		default:
			items = append(items, entity.StoreBoxOrderItem{BoxID: r.BoxID, Quantity: int(*r.Quantity)})
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return items, nil
}

// IsBoxID indica si id tiene formato de ID de caja.
func IsBoxID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// BoxIDs IDs de caja con formato válido, sin repetir, en orden de primera aparición.
func BoxIDs(raw []RawItem) []string {
	seen := make(map[string]bool, len(raw))
	ids := make([]string, 0, len(raw))
	for _, r := range raw {
		if seen[r.BoxID] || !IsBoxID(r.BoxID) {
			continue
		}
		seen[r.BoxID] = true
		ids = append(ids, r.BoxID)
	}
	return ids
}

// ValidateMerged revisa los topes después de agrupar. La violación de una caja se
// reporta en su primera línea de la petición.
func ValidateMerged(raw []RawItem, merged []entity.StoreBoxOrderItem, total int) error {
	first := make(map[string]int, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		first[raw[i].BoxID] = i
	}
	verr := &domain.ValidationError{}
	for _, it := range merged {
		if it.Quantity > MaxQuantity {
			verr.Add(fmt.Sprintf("orderItems[%d].quantity", first[it.BoxID]), "la cantidad total de la caja excede el máximo permitido")
		}
	}
	if total > MaxQuantity {
		verr.Add("orderItems", "la cantidad total de la orden excede el máximo permitido")
	}
	return verr.OrNil()
}

// MergeItems agrupa las líneas por caja sumando cantidades (orden de primera aparición)
// y devuelve la cantidad total.
func MergeItems(items []entity.StoreBoxOrderItem) ([]entity.StoreBoxOrderItem, int) {
	index := make(map[string]int, len(items))
	merged := make([]entity.StoreBoxOrderItem, 0, len(items))
	total := 0
	for _, it := range items {
		total += it.Quantity
		if pos, ok := index[it.BoxID]; ok {
			merged[pos].Quantity += it.Quantity
			continue
		}
		index[it.BoxID] = len(merged)
		merged = append(merged, entity.StoreBoxOrderItem{BoxID: it.BoxID, Quantity: it.Quantity})
	}
	return merged, total
}
