// Package ledger is the GORM-backed inventory and order store. Reservation
// writes go through CreateHoldOrder/ConfirmHoldOrder inside WithTx; the
// quant row lock taken by UnitByLotForUpdate makes "first committed
// reservation wins" hold under concurrent submissions.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"gallery-service/internal/availability"
	"gallery-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

type txKey struct{}

// WithTx runs fn inside one database transaction. Nested calls reuse the
// transaction already carried by the context.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// conn returns the transaction bound to ctx, or the base connection.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db.WithContext(ctx)
}

// ShareByToken resolves a gallery link by its access token, with images in
// sequence order. Returns nil when the token is unknown.
func (s *Store) ShareByToken(ctx context.Context, token string) (*model.GalleryShare, error) {
	var share model.GalleryShare
	err := s.conn(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("gallery_images.sequence, gallery_images.id")
		}).
		Where("access_token = ?", token).
		First(&share).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &share, nil
}

// UnitByLot reads the current state of a lot scoped to a company. Every call
// hits the database; availability is never cached across requests.
func (s *Store) UnitByLot(ctx context.Context, lotID, companyID uint) (availability.Unit, error) {
	return s.loadUnit(s.conn(ctx), lotID, companyID, false)
}

// UnitByLotForUpdate is UnitByLot with a row lock on the quant, so the
// availability re-check inside a reservation happens-after any concurrent
// reservation's commit. Must run inside WithTx.
func (s *Store) UnitByLotForUpdate(ctx context.Context, lotID, companyID uint) (availability.Unit, error) {
	return s.loadUnit(s.conn(ctx), lotID, companyID, true)
}

// loadUnit assembles the unit view. Only the quant row is locked; lot and
// product are master data and need no lock.
func (s *Store) loadUnit(db *gorm.DB, lotID, companyID uint, forUpdate bool) (availability.Unit, error) {
	quantQuery := db
	if forUpdate {
		quantQuery = quantQuery.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var quant model.StockQuant
	err := quantQuery.
		Where("lot_id = ? AND company_id = ?", lotID, companyID).
		First(&quant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return availability.Unit{}, nil
	}
	if err != nil {
		return availability.Unit{}, err
	}

	var lot model.StockLot
	if err := db.First(&lot, lotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return availability.Unit{}, nil
		}
		return availability.Unit{}, err
	}

	var product model.Product
	if err := db.Preload("Category").First(&product, lot.ProductID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return availability.Unit{}, err
	}

	return availability.Unit{
		LotID:            lot.ID,
		QuantID:          quant.ID,
		ProductID:        lot.ProductID,
		CompanyID:        quant.CompanyID,
		LotName:          lot.Name,
		CategoryName:     product.Category.Name,
		BlockName:        lot.BlockName,
		LocationKind:     quant.LocationKind,
		FreeQuantity:     quant.Quantity,
		ReservedQuantity: quant.ReservedQuantity,
		ManualHold:       quant.ManualHold,
		Height:           lot.Height,
		Width:            lot.Width,
		UnitPrice:        lot.UnitPrice,
		ListPrice:        product.ListPrice,
	}, nil
}

// CreateHoldOrder inserts the order with all of its lines and assigns the
// human-readable reference. Zero-line orders are rejected here as a last
// line of defense.
func (s *Store) CreateHoldOrder(ctx context.Context, order *model.HoldOrder) error {
	if len(order.Lines) == 0 {
		return errors.New("hold order must have at least one line")
	}
	db := s.conn(ctx)
	if err := db.Create(order).Error; err != nil {
		return err
	}
	order.Name = fmt.Sprintf("RES/%05d", order.ID)
	order.ValidityDate = order.CreatedAt.AddDate(0, 0, 7)
	return db.Model(order).Updates(map[string]interface{}{
		"name":          order.Name,
		"validity_date": order.ValidityDate,
	}).Error
}

// ConfirmHoldOrder transitions the order to confirmed and flips the
// reserved quantity and manual hold flag on every member quant. This is the
// only place the gallery service mutates inventory.
func (s *Store) ConfirmHoldOrder(ctx context.Context, order *model.HoldOrder) error {
	db := s.conn(ctx)

	for _, line := range order.Lines {
		res := db.Model(&model.StockQuant{}).
			Where("lot_id = ? AND company_id = ? AND reserved_quantity = 0 AND manual_hold = false", line.LotID, order.CompanyID).
			Updates(map[string]interface{}{
				"reserved_quantity": line.Quantity,
				"manual_hold":       true,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return fmt.Errorf("quant for lot %d changed during confirmation", line.LotID)
		}
	}

	if err := db.Model(order).Update("state", model.OrderStateConfirmed).Error; err != nil {
		return err
	}
	order.State = model.OrderStateConfirmed
	return nil
}
