package model

import (
	"time"
)

// Location kinds for stock quants. Only internal stock is offerable.
const (
	LocationInternal = "internal"
	LocationOther    = "other"
)

// Product represents the sellable product master data (read-only here)
type Product struct {
	ID         uint            `json:"id" gorm:"primarykey"`
	Name       string          `json:"name" gorm:"type:varchar(255);not null"`
	CategoryID uint            `json:"category_id"`
	Category   ProductCategory `json:"category" gorm:"foreignKey:CategoryID"`
	ListPrice  float64         `json:"list_price" gorm:"default:0"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProductCategory represents product categories (e.g. Marble, Granite)
type ProductCategory struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;unique"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockLot identifies one physical slab. Dimensions are optional; zero means
// the dimension was never measured. UnitPrice is an optional per-lot price
// override used before the product list price.
type StockLot struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	ProductID uint      `json:"product_id" gorm:"index;not null"`
	CompanyID uint      `json:"company_id" gorm:"index;not null"`
	BlockName string    `json:"block_name" gorm:"type:varchar(100)"`
	Height    float64   `json:"height" gorm:"default:0"`
	Width     float64   `json:"width" gorm:"default:0"`
	UnitPrice float64   `json:"unit_price" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StockQuant is the inventory ledger row for a lot: the authoritative free
// and reserved quantities plus the manual hold flag. It is mutated only by
// confirming a hold order, never directly by the gallery paths.
type StockQuant struct {
	ID               uint      `json:"id" gorm:"primarykey"`
	LotID            uint      `json:"lot_id" gorm:"index;not null"`
	CompanyID        uint      `json:"company_id" gorm:"index;not null"`
	LocationKind     string    `json:"location_kind" gorm:"type:varchar(16);not null;default:'internal'"`
	Quantity         float64   `json:"quantity" gorm:"default:0"`
	ReservedQuantity float64   `json:"reserved_quantity" gorm:"default:0"`
	ManualHold       bool      `json:"manual_hold" gorm:"default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
