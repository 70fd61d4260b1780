package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"sandwich-shop-service/internal/migrate"
	"sandwich-shop-service/internal/models"
	"sandwich-shop-service/internal/repository"
	"sandwich-shop-service/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateStorefrontDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedDrop(t *testing.T, repo *repository.Repository) *models.Drop {
	t.Helper()
	ctx := context.Background()

	loc := &models.Location{Name: "Impact Hub", Address: "Rua 1"}
	if err := repo.Locations.Create(ctx, loc); err != nil {
		t.Fatalf("create location: %v", err)
	}
	drop := &models.Drop{
		Date:            time.Now().Truncate(24 * time.Hour),
		LocationID:      loc.ID,
		Status:          models.DropStatusActive,
		PickupDeadline:  time.Now().Add(4 * time.Hour),
		StatusChangedAt: time.Now(),
	}
	if err := repo.Drops.Create(ctx, drop); err != nil {
		t.Fatalf("create drop: %v", err)
	}
	return drop
}

func seedDropProduct(t *testing.T, repo *repository.Repository, dropID uuid.UUID, stock int32) *models.DropProduct {
	t.Helper()
	ctx := context.Background()

	p := &models.Product{Name: "Porchetta", PriceCents: 1300}
	if err := repo.DB.WithContext(ctx).Create(p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	dp := &models.DropProduct{
		DropID:            dropID,
		ProductID:         p.ID,
		StockQuantity:     stock,
		SellingPriceCents: 1300,
	}
	if err := repo.DropProducts.Create(ctx, dp); err != nil {
		t.Fatalf("create drop product: %v", err)
	}
	return dp
}

func TestDropProductRepo_TryReserve(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)
	dp := seedDropProduct(t, repo, drop.ID, 10)

	// Successful reservation
	ok, err := repo.DropProducts.TryReserve(ctx, dp.ID, 3)
	if err != nil {
		t.Fatalf("TryReserve: %v", err)
	}
	if !ok {
		t.Fatal("expected TryReserve ok=true")
	}

	got, _ := repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 3 {
		t.Fatalf("expected reserved=3, got %d", got.ReservedQuantity)
	}

	// Reserving more than remains must fail without touching the counter
	ok, err = repo.DropProducts.TryReserve(ctx, dp.ID, 8)
	if err != nil {
		t.Fatalf("TryReserve overflow: %v", err)
	}
	if ok {
		t.Fatal("expected TryReserve ok=false for overflow")
	}

	got, _ = repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 3 {
		t.Fatalf("expected reserved unchanged=3, got %d", got.ReservedQuantity)
	}

	// Exactly the remaining stock is fine
	ok, err = repo.DropProducts.TryReserve(ctx, dp.ID, 7)
	if err != nil {
		t.Fatalf("TryReserve exact: %v", err)
	}
	if !ok {
		t.Fatal("expected TryReserve ok=true for exact fit")
	}

	got, _ = repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 10 || got.AvailableQuantity() != 0 {
		t.Fatalf("expected reserved=10 available=0, got %+v", got)
	}
}

func TestDropProductRepo_ReleaseFloor(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)
	dp := seedDropProduct(t, repo, drop.ID, 10)

	if ok, err := repo.DropProducts.TryReserve(ctx, dp.ID, 4); err != nil || !ok {
		t.Fatalf("TryReserve: ok=%v err=%v", ok, err)
	}

	ok, err := repo.DropProducts.Release(ctx, dp.ID, 3)
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if !ok {
		t.Fatal("expected Release ok=true")
	}

	got, _ := repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 1 {
		t.Fatalf("expected reserved=1, got %d", got.ReservedQuantity)
	}

	// Over-release is floored at zero instead of going negative
	ok, err = repo.DropProducts.Release(ctx, dp.ID, 50)
	if err != nil {
		t.Fatalf("Release overflow: %v", err)
	}
	if !ok {
		t.Fatal("expected Release ok=true, row exists")
	}

	got, _ = repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 0 {
		t.Fatalf("expected reserved floored at 0, got %d", got.ReservedQuantity)
	}
}

func TestDropProductRepo_ConcurrentReserve(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)
	dp := seedDropProduct(t, repo, drop.ID, 5)

	const attempts = 10
	var wg sync.WaitGroup
	results := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DropProducts.TryReserve(ctx, dp.ID, 1)
			if err != nil {
				t.Errorf("TryReserve: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	if succeeded != 5 {
		t.Fatalf("expected exactly 5 successful reservations, got %d", succeeded)
	}

	got, _ := repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 5 {
		t.Fatalf("expected reserved=5, got %d", got.ReservedQuantity)
	}
}

func TestDropRepo_NextOrderNumber(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)

	for want := int64(1); want <= 3; want++ {
		seq, err := repo.Drops.NextOrderNumber(ctx, drop.ID)
		if err != nil {
			t.Fatalf("NextOrderNumber: %v", err)
		}
		if seq != want {
			t.Fatalf("expected seq=%d, got %d", want, seq)
		}
	}

	if _, err := repo.Drops.NextOrderNumber(ctx, uuid.New()); err == nil {
		t.Fatal("expected error for unknown drop")
	}
}

func TestDropRepo_GetActive(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	grace := 10 * time.Minute

	drop := seedDrop(t, repo)

	got, err := repo.Drops.GetActive(ctx, time.Now(), grace)
	if err != nil {
		t.Fatalf("GetActive: %v", err)
	}
	if got == nil || got.ID != drop.ID {
		t.Fatalf("expected active drop %s, got %+v", drop.ID, got)
	}

	// Within the grace window after the deadline the drop is still orderable
	got, err = repo.Drops.GetActive(ctx, drop.PickupDeadline.Add(5*time.Minute), grace)
	if err != nil {
		t.Fatalf("GetActive in grace: %v", err)
	}
	if got == nil {
		t.Fatal("expected drop still active inside grace window")
	}

	// Past the grace window it is not
	got, err = repo.Drops.GetActive(ctx, drop.PickupDeadline.Add(11*time.Minute), grace)
	if err != nil {
		t.Fatalf("GetActive past grace: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no active drop past grace, got %+v", got)
	}
}

func TestDropRepo_UpdateStatus(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)

	// active -> completed moves
	moved, err := repo.Drops.UpdateStatus(ctx, drop.ID, []models.DropStatus{models.DropStatusActive}, models.DropStatusCompleted, time.Now())
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if !moved {
		t.Fatal("expected moved=true")
	}

	// Second transition from active must not move: status already changed
	moved, err = repo.Drops.UpdateStatus(ctx, drop.ID, []models.DropStatus{models.DropStatusActive}, models.DropStatusCompleted, time.Now())
	if err != nil {
		t.Fatalf("UpdateStatus second: %v", err)
	}
	if moved {
		t.Fatal("expected moved=false for repeated transition")
	}
}

func TestOrderRepo_UpdateStatusFrom(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)
	client, err := repo.Clients.GetOrCreate(ctx, "Ana", "ana@example.com", "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	intentID := "pi_test_123"
	order := &models.Order{
		DropID:          drop.ID,
		ClientID:        client.ID,
		OrderNumber:     "#001",
		PublicCode:      "SW-TEST0001",
		Status:          models.OrderStatusPending,
		PickupTime:      "12:30",
		TotalCents:      2600,
		PaymentIntentID: &intentID,
	}
	if err := repo.Orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}

	// pending -> confirmed moves exactly once
	moved, err := repo.Orders.UpdateStatusFrom(ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed, nil)
	if err != nil {
		t.Fatalf("UpdateStatusFrom: %v", err)
	}
	if !moved {
		t.Fatal("expected moved=true")
	}

	moved, err = repo.Orders.UpdateStatusFrom(ctx, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed, nil)
	if err != nil {
		t.Fatalf("UpdateStatusFrom duplicate: %v", err)
	}
	if moved {
		t.Fatal("expected moved=false on duplicate transition")
	}

	got, err := repo.Orders.GetByPaymentIntentID(ctx, intentID)
	if err != nil {
		t.Fatalf("GetByPaymentIntentID: %v", err)
	}
	if got == nil || got.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected confirmed order, got %+v", got)
	}

	// A second order with the same payment intent violates the partial unique index
	dup := &models.Order{
		DropID:          drop.ID,
		ClientID:        client.ID,
		OrderNumber:     "#002",
		PublicCode:      "SW-TEST0002",
		Status:          models.OrderStatusPending,
		PickupTime:      "12:30",
		PaymentIntentID: &intentID,
	}
	if err := repo.Orders.Create(ctx, dup); err == nil {
		t.Fatal("expected unique violation for duplicate payment intent")
	}
}

func TestClientRepo_GetOrCreate(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	c1, err := repo.Clients.GetOrCreate(ctx, "Ana", "Ana@Example.com", "111")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// Same email in another case resolves to the same client with fresh contact data
	c2, err := repo.Clients.GetOrCreate(ctx, "Ana Maria", "ana@example.com", "222")
	if err != nil {
		t.Fatalf("GetOrCreate second: %v", err)
	}
	if c1.ID != c2.ID {
		t.Fatalf("expected same client, got %s and %s", c1.ID, c2.ID)
	}
	if c2.Name != "Ana Maria" || c2.Phone != "222" {
		t.Fatalf("expected refreshed contact data, got %+v", c2)
	}
}

func TestDropProductRepo_MenuOperations(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)
	dp := seedDropProduct(t, repo, drop.ID, 10)

	ok, err := repo.DropProducts.UpdateStockAndPrice(ctx, dp.ID, 15, 1400)
	if err != nil {
		t.Fatalf("UpdateStockAndPrice: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	got, _ := repo.DropProducts.GetByID(ctx, dp.ID)
	if got.StockQuantity != 15 || got.SellingPriceCents != 1400 {
		t.Fatalf("expected stock=15 price=1400, got %+v", got)
	}

	// No order references yet
	has, err := repo.DropProducts.HasOrderReferences(ctx, dp.ID)
	if err != nil {
		t.Fatalf("HasOrderReferences: %v", err)
	}
	if has {
		t.Fatal("expected no order references")
	}

	// Attach an order line, then the row must report references and survive retirement
	client, _ := repo.Clients.GetOrCreate(ctx, "Ana", "ana@example.com", "")
	order := &models.Order{
		DropID:      drop.ID,
		ClientID:    client.ID,
		OrderNumber: "#001",
		PublicCode:  "SW-MENU0001",
		Status:      models.OrderStatusConfirmed,
		PickupTime:  "12:00",
	}
	if err := repo.Orders.Create(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if err := repo.OrderProducts.BulkCreate(ctx, []models.OrderProduct{{
		OrderID:        order.ID,
		DropProductID:  dp.ID,
		Quantity:       2,
		UnitPriceCents: 1400,
		LineTotalCents: 2800,
	}}); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	has, err = repo.DropProducts.HasOrderReferences(ctx, dp.ID)
	if err != nil {
		t.Fatalf("HasOrderReferences after order: %v", err)
	}
	if !has {
		t.Fatal("expected order references")
	}

	// Retiring via ZeroStock keeps the row
	ok, err = repo.DropProducts.ZeroStock(ctx, dp.ID)
	if err != nil {
		t.Fatalf("ZeroStock: %v", err)
	}
	if !ok {
		t.Fatal("expected ok=true")
	}
	got, _ = repo.DropProducts.GetByID(ctx, dp.ID)
	if got == nil || got.StockQuantity != 0 {
		t.Fatalf("expected retired row with stock=0, got %+v", got)
	}

	// Deleting a referenced row is blocked by the FK
	if ok, err := repo.DropProducts.Delete(ctx, dp.ID); err == nil && ok {
		t.Fatal("expected delete of referenced row to fail")
	}
}

func TestRepository_WithTx_Rollback(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	drop := seedDrop(t, repo)
	dp := seedDropProduct(t, repo, drop.ID, 10)

	err := repo.WithTx(func(tx *repository.Repository) error {
		ok, err := tx.DropProducts.TryReserve(ctx, dp.ID, 4)
		if err != nil {
			return err
		}
		if !ok {
			t.Fatal("TryReserve failed in tx")
		}
		return gorm.ErrInvalidTransaction
	})
	if err == nil {
		t.Fatal("expected error from WithTx")
	}

	got, _ := repo.DropProducts.GetByID(ctx, dp.ID)
	if got.ReservedQuantity != 0 {
		t.Fatalf("expected rollback to discard reservation, got reserved=%d", got.ReservedQuantity)
	}
}
