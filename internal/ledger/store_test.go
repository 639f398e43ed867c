package ledger

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"gallery-service/internal/availability"
	"gallery-service/internal/clock"
	"gallery-service/internal/model"
	"gallery-service/internal/reservation"
	"gallery-service/internal/testutil"
)

func TestStore(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	t.Run("ShareByToken", func(t *testing.T) {
		testutil.TruncateAll(t, db)

		share, err := store.ShareByToken(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if share != nil {
			t.Fatalf("expected nil share for unknown token")
		}

		lotID := testutil.SeedLot(t, db, 1, "Marble", "M-001", 1)
		images := []model.GalleryImage{
			{Sequence: 2, LotID: lotID},
			{Sequence: 1, LotID: lotID},
		}
		created := model.GalleryShare{
			Name:           "CAT/0001",
			AccessToken:    "tok-1",
			CompanyID:      1,
			CustomerID:     7,
			ExpirationDate: time.Now().Add(time.Hour),
			Images:         images,
		}
		if err := db.Create(&created).Error; err != nil {
			t.Fatalf("seed share: %v", err)
		}

		share, err = store.ShareByToken(ctx, "tok-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if share == nil || share.Name != "CAT/0001" {
			t.Fatalf("unexpected share: %+v", share)
		}
		if len(share.Images) != 2 || share.Images[0].Sequence != 1 {
			t.Fatalf("images must come back in sequence order: %+v", share.Images)
		}
	})

	t.Run("CreateShare dedupes the selection", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		lotID := testutil.SeedLot(t, db, 1, "Marble", "M-005", 1)

		image := model.GalleryImage{Sequence: 1, LotID: lotID}
		if err := db.Create(&image).Error; err != nil {
			t.Fatalf("seed image: %v", err)
		}

		share := &model.GalleryShare{
			AccessToken:    "tok-dup",
			CompanyID:      1,
			CustomerID:     7,
			ExpirationDate: time.Now().Add(time.Hour),
		}
		if err := store.CreateShare(ctx, share, []uint{image.ID, image.ID}); err != nil {
			t.Fatalf("duplicated selection must be accepted: %v", err)
		}
		if !strings.HasPrefix(share.Name, "CAT/") {
			t.Fatalf("expected CAT reference, got %q", share.Name)
		}

		got, err := store.ShareByToken(ctx, "tok-dup")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got.Images) != 1 {
			t.Fatalf("expected one image on the share, got %+v", got)
		}

		unknown := &model.GalleryShare{
			AccessToken:    "tok-bad",
			CompanyID:      1,
			CustomerID:     7,
			ExpirationDate: time.Now().Add(time.Hour),
		}
		if err := store.CreateShare(ctx, unknown, []uint{image.ID, 9999}); err == nil {
			t.Fatalf("unknown image id must be rejected")
		}
	})

	t.Run("UnitByLot", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		lotID := testutil.SeedLot(t, db, 1, "Granite", "G-001", 2)

		unit, err := store.UnitByLot(ctx, lotID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if unit.LotID != lotID || unit.CategoryName != "Granite" || unit.FreeQuantity != 2 {
			t.Fatalf("unexpected unit: %+v", unit)
		}
		if !availability.Offerable(unit, 1) {
			t.Fatalf("seeded unit must be offerable")
		}

		crossCompany, err := store.UnitByLot(ctx, lotID, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability.Offerable(crossCompany, 2) {
			t.Fatalf("unit must not resolve outside its company scope")
		}
	})

	t.Run("CreateHoldOrder", func(t *testing.T) {
		testutil.TruncateAll(t, db)

		err := store.CreateHoldOrder(ctx, &model.HoldOrder{CompanyID: 1, CustomerID: 7, Currency: "USD", State: model.OrderStateDraft})
		if err == nil {
			t.Fatalf("zero-line order must be rejected")
		}

		lotID := testutil.SeedLot(t, db, 1, "Marble", "M-002", 1)
		order := &model.HoldOrder{
			CompanyID:  1,
			CustomerID: 7,
			Currency:   "USD",
			State:      model.OrderStateDraft,
			Lines:      []model.HoldLine{{LotID: lotID, ProductID: 1, Quantity: 1, UnitPrice: 100}},
		}
		if err := store.CreateHoldOrder(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}
		if !strings.HasPrefix(order.Name, "RES/") {
			t.Fatalf("expected RES reference, got %q", order.Name)
		}
	})

	t.Run("ConfirmHoldOrder flips the quant", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		lotID := testutil.SeedLot(t, db, 1, "Marble", "M-003", 1)

		order := &model.HoldOrder{
			CompanyID:  1,
			CustomerID: 7,
			Currency:   "USD",
			State:      model.OrderStateDraft,
			Lines:      []model.HoldLine{{LotID: lotID, ProductID: 1, Quantity: 1, UnitPrice: 100}},
		}
		if err := store.CreateHoldOrder(ctx, order); err != nil {
			t.Fatalf("create order: %v", err)
		}
		if err := store.ConfirmHoldOrder(ctx, order); err != nil {
			t.Fatalf("confirm order: %v", err)
		}

		unit, err := store.UnitByLot(ctx, lotID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability.Offerable(unit, 1) {
			t.Fatalf("confirmed unit must no longer be offerable")
		}

		// A second confirmation attempt must fail: the quant is taken.
		again := &model.HoldOrder{
			CompanyID:  1,
			CustomerID: 8,
			Currency:   "USD",
			State:      model.OrderStateDraft,
			Lines:      []model.HoldLine{{LotID: lotID, ProductID: 1, Quantity: 1, UnitPrice: 100}},
		}
		if err := store.CreateHoldOrder(ctx, again); err != nil {
			t.Fatalf("create order: %v", err)
		}
		if err := store.ConfirmHoldOrder(ctx, again); err == nil {
			t.Fatalf("confirming an already-held quant must fail")
		}
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		lotID := testutil.SeedLot(t, db, 1, "Marble", "M-004", 1)

		sentinel := errors.New("boom")
		err := store.WithTx(ctx, func(txCtx context.Context) error {
			order := &model.HoldOrder{
				CompanyID:  1,
				CustomerID: 7,
				Currency:   "USD",
				State:      model.OrderStateDraft,
				Lines:      []model.HoldLine{{LotID: lotID, ProductID: 1, Quantity: 1, UnitPrice: 100}},
			}
			if err := store.CreateHoldOrder(txCtx, order); err != nil {
				return err
			}
			if err := store.ConfirmHoldOrder(txCtx, order); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}

		var count int64
		if err := db.Model(&model.HoldOrder{}).Count(&count).Error; err != nil {
			t.Fatalf("count orders: %v", err)
		}
		if count != 0 {
			t.Fatalf("rolled-back order still present")
		}
		unit, err := store.UnitByLot(ctx, lotID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !availability.Offerable(unit, 1) {
			t.Fatalf("quant mutation must roll back with the order")
		}
	})
}

// TestConcurrentReservations drives the full reservation engine against the
// real store: two submissions racing for the same lot, exactly one winner.
func TestConcurrentReservations(t *testing.T) {
	db := testutil.NewTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	testutil.TruncateAll(t, db)
	lotID := testutil.SeedLot(t, db, 1, "Marble", "M-100", 1)

	share := model.GalleryShare{
		Name:           "CAT/0100",
		AccessToken:    "race-tok",
		CompanyID:      1,
		CustomerID:     7,
		ExpirationDate: time.Now().Add(time.Hour),
	}
	if err := db.Create(&share).Error; err != nil {
		t.Fatalf("seed share: %v", err)
	}

	svc := reservation.NewService(store, clock.NewSystem())
	cart := []reservation.CartItem{{LotRef: reservation.Ref(strconv.FormatUint(uint64(lotID), 10))}}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Reserve(ctx, "race-tok", cart)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, reservation.ErrUnitUnavailable):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected one winner and one conflict, got %d/%d", successes, conflicts)
	}

	var count int64
	if err := db.Model(&model.HoldOrder{}).Where("state = ?", model.OrderStateConfirmed).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one confirmed order, got %d", count)
	}
}
