package ledger

import (
	"context"
	"errors"
	"fmt"

	"gallery-service/internal/model"

	"gorm.io/gorm"
)

// CreateShare inserts a gallery link with its selected images and assigns
// the human-readable reference.
func (s *Store) CreateShare(ctx context.Context, share *model.GalleryShare, imageIDs []uint) error {
	ids := dedupeIDs(imageIDs)
	return s.WithTx(ctx, func(txCtx context.Context) error {
		db := s.conn(txCtx)

		var images []model.GalleryImage
		if len(ids) > 0 {
			if err := db.Where("id IN ?", ids).Find(&images).Error; err != nil {
				return err
			}
		}
		if len(images) != len(ids) {
			return fmt.Errorf("unknown image in selection")
		}
		share.Images = images

		if err := db.Create(share).Error; err != nil {
			return err
		}
		share.Name = fmt.Sprintf("CAT/%04d", share.ID)
		return db.Model(share).Update("name", share.Name).Error
	})
}

// dedupeIDs drops repeated ids, preserving order. A selection that names the
// same image twice is valid and must not read as an unknown image.
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// SharesByCompany lists the gallery links of one company, newest first.
func (s *Store) SharesByCompany(ctx context.Context, companyID uint) ([]model.GalleryShare, error) {
	var shares []model.GalleryShare
	err := s.conn(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&shares).Error
	return shares, err
}

// RegenerateToken replaces the access token of a link, invalidating the old
// URL. Scoped by company so one company cannot rotate another's links.
func (s *Store) RegenerateToken(ctx context.Context, shareID, companyID uint, token string) error {
	res := s.conn(ctx).Model(&model.GalleryShare{}).
		Where("id = ? AND company_id = ?", shareID, companyID).
		Update("access_token", token)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ImageInShare returns the image when it belongs to the share's image set,
// nil otherwise. Used to gate public image serving.
func (s *Store) ImageInShare(ctx context.Context, shareID, imageID uint) (*model.GalleryImage, error) {
	var image model.GalleryImage
	err := s.conn(ctx).
		Joins("JOIN gallery_share_images gsi ON gsi.gallery_image_id = gallery_images.id").
		Where("gsi.gallery_share_id = ? AND gallery_images.id = ?", shareID, imageID).
		First(&image).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// ImagesByCompany feeds the internal selector: all published images whose
// lot belongs to the company, in sequence order.
func (s *Store) ImagesByCompany(ctx context.Context, companyID uint) ([]model.GalleryImage, error) {
	var images []model.GalleryImage
	err := s.conn(ctx).
		Joins("JOIN stock_lots ON stock_lots.id = gallery_images.lot_id").
		Where("stock_lots.company_id = ?", companyID).
		Order("gallery_images.sequence, gallery_images.id").
		Find(&images).Error
	return images, err
}
