package models

import (
	"time"

	"github.com/google/uuid"
)

type Location struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name    string    `gorm:"type:text;not null"`
	Address string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Location) TableName() string { return "locations" }

// Product is the master catalog entry. PriceCents is the current list price;
// drop menus snapshot their own selling price so historical orders stay stable.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	PriceCents  int64     `gorm:"not null;default:0"`
	IsActive    bool      `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

type DropStatus string

const (
	DropStatusUpcoming  DropStatus = "upcoming"
	DropStatusActive    DropStatus = "active"
	DropStatusCompleted DropStatus = "completed"
	DropStatusCancelled DropStatus = "cancelled"
)

// Drop is one pop-up sale event. OrderSeq backs the per-drop order numbering
// and is only ever advanced through DropRepo.NextOrderNumber.
type Drop struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Date            time.Time  `gorm:"type:date;not null;index"`
	LocationID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status          DropStatus `gorm:"type:text;not null;default:'upcoming';index"`
	PickupDeadline  time.Time  `gorm:"not null"`
	StatusChangedAt time.Time  `gorm:"not null;default:now()"`
	OrderSeq        int64      `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Location *Location `gorm:"foreignKey:LocationID"`
}

func (Drop) TableName() string { return "drops" }

// DropProduct is the stock ledger row: the single source of truth for how many
// units of a product a drop can still sell. ReservedQuantity moves only through
// DropProductRepo.TryReserve / Release.
type DropProduct struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DropID            uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_drop_products_drop_product"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_drop_products_drop_product"`
	StockQuantity     int32     `gorm:"not null;default:0"`
	ReservedQuantity  int32     `gorm:"not null;default:0"`
	SellingPriceCents int64     `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (DropProduct) TableName() string { return "drop_products" }

// AvailableQuantity is derived, clamped at zero: menu retirement may zero the
// stock of a row that still carries reservations from existing orders.
func (dp DropProduct) AvailableQuantity() int32 {
	if avail := dp.StockQuantity - dp.ReservedQuantity; avail > 0 {
		return avail
	}
	return 0
}

// Client is a customer identity, deduplicated by email.
type Client struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name  string    `gorm:"type:text;not null"`
	Email string    `gorm:"type:text;not null;uniqueIndex"`
	Phone string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Client) TableName() string { return "clients" }

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order rows are the audit trail of what was reserved. Ledger drift is never
// fixed by editing orders; it is corrected through reserve/release.
type Order struct {
	ID              uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DropID          uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:ux_orders_drop_number"`
	ClientID        uuid.UUID   `gorm:"type:uuid;not null;index"`
	OrderNumber     string      `gorm:"type:text;not null;uniqueIndex:ux_orders_drop_number"`
	PublicCode      string      `gorm:"type:text;not null;uniqueIndex"`
	Status          OrderStatus `gorm:"type:text;not null;default:'pending';index"`
	PickupTime      string      `gorm:"type:text;not null"`
	TotalCents      int64       `gorm:"not null;default:0"`
	PaymentIntentID *string     `gorm:"type:text;uniqueIndex"`
	Instructions    string      `gorm:"type:text"`
	// NeedsAttention flags orders whose payment succeeded but whose stock could
	// not be reserved; they wait for manual reconciliation.
	NeedsAttention bool    `gorm:"not null;default:false"`
	CancelReason   *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Client *Client        `gorm:"foreignKey:ClientID"`
	Items  []OrderProduct `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderProduct is immutable once created; Quantity is exactly what was
// reserved in the ledger for this order.
type OrderProduct struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_products_order_item"`
	DropProductID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_products_order_item"`
	Quantity       int32     `gorm:"not null"`
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderProduct) TableName() string { return "order_products" }
