package model

import (
	"time"
)

// GalleryShare is a token-addressed, time-boxed public catalog link granted
// to one customer. The token is the only credential the customer holds.
type GalleryShare struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	Name           string         `json:"name" gorm:"type:varchar(32);uniqueIndex;not null"`
	AccessToken    string         `json:"-" gorm:"type:varchar(64);uniqueIndex;not null"`
	CompanyID      uint           `json:"company_id" gorm:"index;not null;comment:'Company whose inventory this link exposes'"`
	CustomerID     uint           `json:"customer_id" gorm:"not null"`
	CustomerName   string         `json:"customer_name" gorm:"type:varchar(255)"`
	SalesUserID    uint           `json:"sales_user_id"`
	ExpirationDate time.Time      `json:"expiration_date" gorm:"not null"`
	Images         []GalleryImage `json:"images,omitempty" gorm:"many2many:gallery_share_images;"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// IsExpired reports whether the link is past its expiration date.
func (s *GalleryShare) IsExpired(now time.Time) bool {
	return now.After(s.ExpirationDate)
}

// GalleryImage is one published slab photo, tied to exactly one stock lot.
// Immutable once attached to a share.
type GalleryImage struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Sequence  int       `json:"sequence" gorm:"default:0"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	LotID     uint      `json:"lot_id" gorm:"index;not null"`
	Image     []byte    `json:"-" gorm:"type:bytea"`
	CreatedAt time.Time `json:"created_at"`
}
