package dto

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// IntentMetadata is the typed contract for the metadata the checkout attaches
// to a Stripe payment intent. The cart travels as a JSON array under "cart"
// because Stripe metadata values are flat strings.
type IntentMetadata struct {
	DropID        uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	PickupTime    string
	Cart          []CartItemRequest
}

// ParseIntentMetadata validates the raw metadata map. A malformed payload
// fails here with a structured error instead of propagating zero values into
// the reconciliation logic.
func ParseIntentMetadata(md map[string]string) (IntentMetadata, error) {
	var out IntentMetadata

	rawDrop, ok := md["drop_id"]
	if !ok || rawDrop == "" {
		return out, fmt.Errorf("metadata missing drop_id")
	}
	dropID, err := uuid.Parse(rawDrop)
	if err != nil {
		return out, fmt.Errorf("metadata drop_id: %w", err)
	}
	out.DropID = dropID

	out.CustomerName = md["customer_name"]
	out.CustomerEmail = md["customer_email"]
	out.CustomerPhone = md["customer_phone"]
	out.PickupTime = md["pickup_time"]

	if rawCart, ok := md["cart"]; ok && rawCart != "" {
		if err := json.Unmarshal([]byte(rawCart), &out.Cart); err != nil {
			return out, fmt.Errorf("metadata cart: %w", err)
		}
		for _, it := range out.Cart {
			if it.ID == uuid.Nil || it.Quantity <= 0 {
				return out, fmt.Errorf("metadata cart: invalid line item")
			}
		}
	}

	return out, nil
}
