package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/marketbox-api/internal/domain/entity"
	"github.com/jhoicas/marketbox-api/internal/domain/repository"
	"github.com/jhoicas/marketbox-api/internal/infrastructure/memory"
)

const storeID = "store-merchant"

func TestTxRunner_RollbackDescartaCambios(t *testing.T) {
	db := memory.NewStore()
	db.Inventories().SetEntry(storeID, entity.StoreBoxInventoryEntry{BoxID: "box-a", Quantity: 3, Remaining: 3})

	err := memory.NewTxRunner(db).Run(context.Background(), func(_ repository.StoreBoxOrderRepository, inventory repository.StoreBoxInventoryRepository) error {
		id, err := inventory.EnsureForStore(context.Background(), storeID)
		require.NoError(t, err)
		require.NoError(t, inventory.AddStock(context.Background(), id, "box-a", 5))
		return errors.New("fallo")
	})
	require.Error(t, err)

	inv, err := db.Inventories().GetByStore(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, inv.Entries, 1)
	assert.Equal(t, 3, inv.Entries[0].Remaining)
}

func TestSetShopifyLink_NoSeDeshaceConRollbackConcurrente(t *testing.T) {
	db := memory.NewStore()
	db.Inventories().SetEntry(storeID, entity.StoreBoxInventoryEntry{BoxID: "box-a", Quantity: 3, Remaining: 3})
	link := entity.ShopifyLink{ProductID: "prod-1", VariantID: "var-1"}

	done := make(chan error, 1)
	err := memory.NewTxRunner(db).Run(context.Background(), func(_ repository.StoreBoxOrderRepository, _ repository.StoreBoxInventoryRepository) error {
		started := make(chan struct{})
		go func() {
			close(started)
			done <- db.Inventories().SetShopifyLink(context.Background(), storeID, "box-a", link)
		}()
		<-started
		// margen para que el vínculo se escriba antes del rollback si no esperara a la tx
		time.Sleep(20 * time.Millisecond)
		return errors.New("fallo")
	})
	require.Error(t, err)
	require.NoError(t, <-done)

	inv, err := db.Inventories().GetByStore(context.Background(), storeID)
	require.NoError(t, err)
	require.Len(t, inv.Entries, 1)
	require.NotNil(t, inv.Entries[0].Shopify)
	assert.Equal(t, link, *inv.Entries[0].Shopify)
}
