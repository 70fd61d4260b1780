package dto_test

import (
	"testing"

	"sandwich-shop-service/internal/dto"

	"github.com/google/uuid"
)

func TestParseIntentMetadata(t *testing.T) {
	dropID := uuid.New()
	itemID := uuid.New()

	md := map[string]string{
		"drop_id":        dropID.String(),
		"customer_name":  "Ana",
		"customer_email": "ana@example.com",
		"pickup_time":    "12:30",
		"cart":           `[{"id":"` + itemID.String() + `","quantity":2}]`,
	}

	got, err := dto.ParseIntentMetadata(md)
	if err != nil {
		t.Fatalf("ParseIntentMetadata: %v", err)
	}
	if got.DropID != dropID {
		t.Fatalf("expected drop id %s, got %s", dropID, got.DropID)
	}
	if got.CustomerName != "Ana" || got.PickupTime != "12:30" {
		t.Fatalf("unexpected metadata %+v", got)
	}
	if len(got.Cart) != 1 || got.Cart[0].ID != itemID || got.Cart[0].Quantity != 2 {
		t.Fatalf("unexpected cart %+v", got.Cart)
	}
}

func TestParseIntentMetadata_Invalid(t *testing.T) {
	dropID := uuid.New().String()

	cases := []struct {
		name string
		md   map[string]string
	}{
		{"missing drop_id", map[string]string{"cart": "[]"}},
		{"bad drop_id", map[string]string{"drop_id": "not-a-uuid"}},
		{"cart not json", map[string]string{"drop_id": dropID, "cart": "{"}},
		{"cart zero quantity", map[string]string{
			"drop_id": dropID,
			"cart":    `[{"id":"` + uuid.New().String() + `","quantity":0}]`,
		}},
		{"cart nil id", map[string]string{
			"drop_id": dropID,
			"cart":    `[{"quantity":1}]`,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := dto.ParseIntentMetadata(tc.md); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestParseIntentMetadata_EmptyCart(t *testing.T) {
	got, err := dto.ParseIntentMetadata(map[string]string{"drop_id": uuid.New().String()})
	if err != nil {
		t.Fatalf("ParseIntentMetadata: %v", err)
	}
	if len(got.Cart) != 0 {
		t.Fatalf("expected empty cart, got %+v", got.Cart)
	}
}
