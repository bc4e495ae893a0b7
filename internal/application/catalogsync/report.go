package catalogsync

import (
	"sort"

	"github.com/jhoicas/marketbox-api/internal/application/dto"
)

// Estados de un resultado por bundle.
const (
	StatusSynced  = "synced"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Pasos de la sincronización (para localizar fallos en logs y reportes).
const (
	StepListBundles     = "list_bundles"
	StepUnpublished     = "unpublished"
	StepBox             = "box"
	StepFetchVariants   = "fetch_variants"
	StepCreateVariant   = "create_variant"
	StepUpdateVariant   = "update_variant"
	StepAdjustInventory = "adjust_inventory"
	StepPanic           = "panic"
)

// BundleResult resultado de un bundle (o de una caja completa si BundleID está vacío).
type BundleResult struct {
	BoxID     string
	BundleID  string
	Status    string
	Step      string
	Err       error
	VariantID string
	Delta     int
}

// Report resumen de una corrida. Err solo se fija si la corrida no pudo empezar.
type Report struct {
	StoreID string
	Results []BundleResult
	Err     error
}

// Count devuelve cuántos resultados tienen el estado dado.
func (r *Report) Count(status string) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Find devuelve el resultado de un bundle, si existe.
func (r *Report) Find(bundleID string) (BundleResult, bool) {
	for _, res := range r.Results {
		if res.BundleID == bundleID {
			return res, true
		}
	}
	return BundleResult{}, false
}

func (r *Report) sort() {
	sort.Slice(r.Results, func(i, j int) bool {
		if r.Results[i].BoxID != r.Results[j].BoxID {
			return r.Results[i].BoxID < r.Results[j].BoxID
		}
		return r.Results[i].BundleID < r.Results[j].BundleID
	})
}

// DTO convierte el reporte a su representación HTTP.
func (r *Report) DTO() dto.SyncReportResponse {
	out := dto.SyncReportResponse{
		StoreID: r.StoreID,
		Synced:  r.Count(StatusSynced),
		Skipped: r.Count(StatusSkipped),
		Failed:  r.Count(StatusFailed),
		Results: make([]dto.BundleSyncResult, 0, len(r.Results)),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	for _, res := range r.Results {
		item := dto.BundleSyncResult{
			BoxID:     res.BoxID,
			BundleID:  res.BundleID,
			Status:    res.Status,
			Step:      res.Step,
			VariantID: res.VariantID,
			Delta:     res.Delta,
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		out.Results = append(out.Results, item)
	}
	return out
}
