package model

import (
	"time"
)

// Hold order states
const (
	OrderStateDraft     = "draft"
	OrderStateConfirmed = "confirmed"
)

// HoldOrder is the durable reservation record. It is created with all of its
// lines in one transaction and then confirmed; confirmation is what flips
// the reserved/hold state on the member quants.
type HoldOrder struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	Name         string     `json:"name" gorm:"type:varchar(32);uniqueIndex;not null"`
	CompanyID    uint       `json:"company_id" gorm:"index;not null"`
	CustomerID   uint       `json:"customer_id" gorm:"not null"`
	SalesUserID  uint       `json:"sales_user_id"`
	Currency     string     `json:"currency" gorm:"type:varchar(8);not null"`
	State        string     `json:"state" gorm:"type:varchar(16);not null;default:'draft'"`
	ValidityDate time.Time  `json:"validity_date"`
	Lines        []HoldLine `json:"lines" gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HoldLine reserves one lot in full; there is no partial-quantity splitting.
type HoldLine struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	OrderID     uint      `json:"order_id" gorm:"index;not null"`
	LotID       uint      `json:"lot_id" gorm:"index;not null"`
	ProductID   uint      `json:"product_id" gorm:"not null"`
	Description string    `json:"description" gorm:"type:varchar(255)"`
	Quantity    float64   `json:"quantity" gorm:"not null"`
	UnitPrice   float64   `json:"unit_price" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}
