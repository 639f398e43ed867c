// Package gallery assembles the public render payload: the availability
// filter decides what is shown, the grouping engine decides how.
package gallery

import (
	"context"
	"fmt"

	"gallery-service/internal/availability"
	"gallery-service/internal/grouping"
	"gallery-service/internal/model"
)

type ViewBuilder struct {
	finder availability.Finder
	engine grouping.Engine
}

func NewViewBuilder(finder availability.Finder, engine grouping.Engine) *ViewBuilder {
	return &ViewBuilder{finder: finder, engine: engine}
}

// BuildView resolves every image's unit against fresh ledger state, keeps
// only offerable ones and groups them. The same predicate guards the
// reservation path, so what is shown is what can be reserved.
func (b *ViewBuilder) BuildView(ctx context.Context, share *model.GalleryShare) (grouping.Result, error) {
	items := make([]grouping.Item, 0, len(share.Images))

	for _, image := range share.Images {
		unit, err := b.finder.UnitByLot(ctx, image.LotID, share.CompanyID)
		if err != nil {
			return grouping.Result{}, err
		}
		if !availability.Offerable(unit, share.CompanyID) {
			continue
		}

		name := image.Name
		if name == "" {
			name = unit.LotName
		}

		category := unit.CategoryName
		if category == "" {
			category = "Uncategorized"
		}

		items = append(items, grouping.Item{
			ImageID:    image.ID,
			QuantID:    unit.QuantID,
			LotID:      unit.LotID,
			Name:       name,
			LotName:    unit.LotName,
			Category:   category,
			BlockName:  unit.BlockName,
			Dimensions: formatDimensions(unit),
			Area:       availability.Area(unit),
			URL:        fmt.Sprintf("/gallery/image/%s/%d", share.AccessToken, image.ID),
			Sequence:   image.Sequence,
			IsLarge:    image.Sequence%5 == 0,
		})
	}

	return b.engine.Group(items), nil
}

func formatDimensions(u availability.Unit) string {
	if u.Height > 0 && u.Width > 0 {
		return fmt.Sprintf("%.2f x %.2f m", u.Height, u.Width)
	}
	return ""
}
