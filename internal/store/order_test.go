package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suyanik/Einkauflist/internal/database"
	"github.com/suyanik/Einkauflist/internal/model"
)

func setupOrderTestDB(t *testing.T) (*OrderStore, *sql.DB) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewOrderStore(db), db
}

func TestCreateOrder(t *testing.T) {
	os, _ := setupOrderTestDB(t)

	order, err := os.Create("user-staff-001", []CartItem{
		{ProductID: "prod-domates-001", Quantity: 2},
		{ProductID: "prod-ayran-001", Quantity: 6},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != model.StatusPending {
		t.Errorf("status = %q, want PENDING", order.Status)
	}
	if order.CreatedBy != "user-staff-001" {
		t.Errorf("created_by = %q, want user-staff-001", order.CreatedBy)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	for _, item := range order.Items {
		if item.Price.Valid {
			t.Errorf("item %s should have no price at intake", item.ID)
		}
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	os, _ := setupOrderTestDB(t)

	_, err := os.Create("user-staff-001", []CartItem{{ProductID: "no-such-product", Quantity: 1}})
	if err == nil {
		t.Fatal("expected foreign key error for unknown product")
	}

	// The transaction must leave nothing behind.
	pending, err := os.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending orders after failed create, got %d", len(pending))
	}
}

func TestListPending(t *testing.T) {
	os, _ := setupOrderTestDB(t)

	first, _ := os.Create("user-staff-001", []CartItem{{ProductID: "prod-domates-001", Quantity: 1}})
	second, _ := os.Create("user-admin-001", []CartItem{{ProductID: "prod-ayran-001", Quantity: 3}})

	pending, err := os.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(pending))
	}

	// Newest first. Both were created within the same instant on fast
	// machines, so just check both are present and enriched.
	seen := map[string]bool{}
	for _, o := range pending {
		seen[o.ID] = true
		if o.Creator == nil || o.Creator.Name == "" {
			t.Errorf("order %s missing creator", o.ID)
		}
		for _, item := range o.Items {
			if item.Product == nil || item.Product.NameTR == "" {
				t.Errorf("item %s missing product", item.ID)
			}
		}
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Errorf("pending list missing orders: %v", seen)
	}
}

func TestCompleteOrder(t *testing.T) {
	os, _ := setupOrderTestDB(t)

	order, _ := os.Create("user-staff-001", []CartItem{
		{ProductID: "prod-domates-001", Quantity: 2},
		{ProductID: "prod-ayran-001", Quantity: 6},
	})

	updates := []PriceUpdate{
		{ItemID: order.Items[0].ID, Price: decimal.RequireFromString("3.50")},
		{ItemID: order.Items[1].ID, Price: decimal.RequireFromString("4.00")},
	}
	completed, err := os.Complete(order.ID, updates)
	if err != nil {
		t.Fatalf("complete order: %v", err)
	}
	if completed.Status != model.StatusCompleted {
		t.Errorf("status = %q, want COMPLETED", completed.Status)
	}
	for i, want := range []string{"3.50", "4.00"} {
		got := completed.Items[i].Price
		if !got.Valid {
			t.Fatalf("item %d has no price", i)
		}
		if !got.Decimal.Equal(decimal.RequireFromString(want)) {
			t.Errorf("item %d price = %s, want %s", i, got.Decimal, want)
		}
	}

	pending, _ := os.ListPending()
	if len(pending) != 0 {
		t.Errorf("completed order still pending: %d", len(pending))
	}
}

func TestCompleteOrderForeignItemAborts(t *testing.T) {
	os, _ := setupOrderTestDB(t)

	order, _ := os.Create("user-staff-001", []CartItem{{ProductID: "prod-domates-001", Quantity: 1}})
	other, _ := os.Create("user-staff-001", []CartItem{{ProductID: "prod-ayran-001", Quantity: 1}})

	updates := []PriceUpdate{
		{ItemID: order.Items[0].ID, Price: decimal.RequireFromString("3.50")},
		{ItemID: other.Items[0].ID, Price: decimal.RequireFromString("1.00")}, // belongs to another order
	}
	_, err := os.Complete(order.ID, updates)
	if !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}

	// Rolled back: the order stays pending and keeps its unpriced item.
	got, _ := os.GetByID(order.ID)
	if got.Status != model.StatusPending {
		t.Errorf("status = %q, want PENDING", got.Status)
	}
	if got.Items[0].Price.Valid {
		t.Error("price write should have been rolled back")
	}

	// A retry with only the order's own items succeeds.
	completed, err := os.Complete(order.ID, updates[:1])
	if err != nil {
		t.Fatalf("retry complete: %v", err)
	}
	if completed.Status != model.StatusCompleted {
		t.Errorf("retry status = %q, want COMPLETED", completed.Status)
	}
}

func TestCompleteOrderNotFound(t *testing.T) {
	os, _ := setupOrderTestDB(t)

	_, err := os.Complete("no-such-order", nil)
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestListCompletedItemPricesWindow(t *testing.T) {
	os, db := setupOrderTestDB(t)

	inWindow, _ := os.Create("user-staff-001", []CartItem{{ProductID: "prod-domates-001", Quantity: 1}})
	os.Complete(inWindow.ID, []PriceUpdate{{ItemID: inWindow.Items[0].ID, Price: decimal.RequireFromString("10.00")}})

	// A completed order outside the window.
	outside, _ := os.Create("user-staff-001", []CartItem{{ProductID: "prod-ayran-001", Quantity: 1}})
	os.Complete(outside.ID, []PriceUpdate{{ItemID: outside.Items[0].ID, Price: decimal.RequireFromString("5.00")}})
	if _, err := db.Exec(`UPDATE orders SET created_at = ? WHERE id = ?`,
		time.Date(2020, 1, 15, 12, 0, 0, 0, time.UTC), outside.ID); err != nil {
		t.Fatalf("backdate order: %v", err)
	}

	// A pending order inside the window must not count.
	os.Create("user-staff-001", []CartItem{{ProductID: "prod-sogan-001", Quantity: 1}})

	now := time.Now().UTC()
	items, err := os.ListCompletedItemPrices(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("list completed item prices: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item in window, got %d", len(items))
	}
	if items[0].CategoryName != "Sebze" {
		t.Errorf("category = %q, want Sebze", items[0].CategoryName)
	}
	if !items[0].Price.Decimal.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("price = %s, want 10.00", items[0].Price.Decimal)
	}
}
