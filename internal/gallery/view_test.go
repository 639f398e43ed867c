package gallery

import (
	"context"
	"testing"
	"time"

	"gallery-service/internal/availability"
	"gallery-service/internal/grouping"
	"gallery-service/internal/model"
)

type fakeFinder struct {
	units map[uint]availability.Unit
	calls int
}

func (f *fakeFinder) UnitByLot(_ context.Context, lotID, companyID uint) (availability.Unit, error) {
	f.calls++
	u, ok := f.units[lotID]
	if !ok || u.CompanyID != companyID {
		return availability.Unit{}, nil
	}
	return u, nil
}

func unit(lotID uint, category string) availability.Unit {
	return availability.Unit{
		LotID:        lotID,
		QuantID:      lotID + 100,
		CompanyID:    1,
		LotName:      "LOT",
		CategoryName: category,
		LocationKind: model.LocationInternal,
		FreeQuantity: 2,
		Height:       3,
		Width:        1.5,
	}
}

func testShare(images ...model.GalleryImage) *model.GalleryShare {
	return &model.GalleryShare{
		ID:             1,
		AccessToken:    "tok-1",
		CompanyID:      1,
		ExpirationDate: time.Now().Add(time.Hour),
		Images:         images,
	}
}

func TestBuildView(t *testing.T) {
	t.Parallel()

	t.Run("filters non-offerable units", func(t *testing.T) {
		held := unit(2, "Marble")
		held.ManualHold = true
		finder := &fakeFinder{units: map[uint]availability.Unit{
			1: unit(1, "Marble"),
			2: held,
		}}
		builder := NewViewBuilder(finder, grouping.NewEngine(4))

		result, err := builder.BuildView(context.Background(), testShare(
			model.GalleryImage{ID: 10, LotID: 1, Sequence: 1},
			model.GalleryImage{ID: 11, LotID: 2, Sequence: 2},
		))
		if err != nil {
			t.Fatalf("BuildView: %v", err)
		}
		if len(result.Categories) != 1 || len(result.Categories[0].Cards) != 1 {
			t.Fatalf("expected exactly one card, got %+v", result.Categories)
		}
		if result.Categories[0].Cards[0].Item.ImageID != 10 {
			t.Fatalf("wrong card survived filtering")
		}
	})

	t.Run("image with unresolvable lot is skipped", func(t *testing.T) {
		finder := &fakeFinder{units: map[uint]availability.Unit{}}
		builder := NewViewBuilder(finder, grouping.NewEngine(4))

		result, err := builder.BuildView(context.Background(), testShare(
			model.GalleryImage{ID: 10, LotID: 99},
		))
		if err != nil {
			t.Fatalf("BuildView: %v", err)
		}
		if len(result.Categories) != 0 {
			t.Fatalf("expected empty view, got %+v", result.Categories)
		}
	})

	t.Run("display fields", func(t *testing.T) {
		finder := &fakeFinder{units: map[uint]availability.Unit{1: unit(1, "Granite")}}
		builder := NewViewBuilder(finder, grouping.NewEngine(4))

		result, err := builder.BuildView(context.Background(), testShare(
			model.GalleryImage{ID: 10, LotID: 1, Sequence: 5},
		))
		if err != nil {
			t.Fatalf("BuildView: %v", err)
		}
		item := result.Categories[0].Cards[0].Item
		if item.Name != "LOT" {
			t.Fatalf("expected lot name fallback, got %q", item.Name)
		}
		if item.Dimensions != "3.00 x 1.50 m" {
			t.Fatalf("unexpected dimensions %q", item.Dimensions)
		}
		if item.Area != 4.5 {
			t.Fatalf("expected area 4.5, got %v", item.Area)
		}
		if item.URL != "/gallery/image/tok-1/10" {
			t.Fatalf("unexpected image url %q", item.URL)
		}
		if !item.IsLarge {
			t.Fatalf("sequence multiple of 5 must be a large tile")
		}
	})

	t.Run("resolves every image fresh", func(t *testing.T) {
		finder := &fakeFinder{units: map[uint]availability.Unit{1: unit(1, "Marble")}}
		builder := NewViewBuilder(finder, grouping.NewEngine(4))

		share := testShare(
			model.GalleryImage{ID: 10, LotID: 1},
			model.GalleryImage{ID: 11, LotID: 1},
		)
		if _, err := builder.BuildView(context.Background(), share); err != nil {
			t.Fatalf("BuildView: %v", err)
		}
		if finder.calls != 2 {
			t.Fatalf("expected one ledger read per image, got %d", finder.calls)
		}
	})
}
