package availability

import (
	"testing"

	"gallery-service/internal/model"
)

func offerableUnit() Unit {
	return Unit{
		LotID:        10,
		QuantID:      100,
		CompanyID:    1,
		LocationKind: model.LocationInternal,
		FreeQuantity: 1,
	}
}

func TestOfferable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Unit)
		company uint
		want    bool
	}{
		{"free internal unit", func(u *Unit) {}, 1, true},
		{"zero free quantity", func(u *Unit) { u.FreeQuantity = 0 }, 1, false},
		{"negative free quantity", func(u *Unit) { u.FreeQuantity = -2 }, 1, false},
		{"already reserved", func(u *Unit) { u.ReservedQuantity = 1 }, 1, false},
		{"manual hold", func(u *Unit) { u.ManualHold = true }, 1, false},
		{"non-internal location", func(u *Unit) { u.LocationKind = model.LocationOther }, 1, false},
		{"wrong company", func(u *Unit) {}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := offerableUnit()
			tt.mutate(&u)
			if got := Offerable(u, tt.company); got != tt.want {
				t.Fatalf("Offerable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOfferableIsPure(t *testing.T) {
	t.Parallel()

	u := offerableUnit()
	first := Offerable(u, 1)
	for i := 0; i < 10; i++ {
		if Offerable(u, 1) != first {
			t.Fatalf("Offerable changed result on identical input")
		}
	}
}

func TestArea(t *testing.T) {
	t.Parallel()

	t.Run("uses dimensions when both present", func(t *testing.T) {
		u := offerableUnit()
		u.Height = 3.2
		u.Width = 1.8
		if got, want := Area(u), 3.2*1.8; got != want {
			t.Fatalf("Area() = %v, want %v", got, want)
		}
	})

	t.Run("falls back to free quantity", func(t *testing.T) {
		u := offerableUnit()
		u.FreeQuantity = 7
		u.Height = 3.2 // width missing
		if got := Area(u); got != 7 {
			t.Fatalf("Area() = %v, want 7", got)
		}
	})

	t.Run("fallback never affects the predicate", func(t *testing.T) {
		u := offerableUnit()
		u.Height = 0
		u.Width = 0
		if !Offerable(u, 1) {
			t.Fatalf("unit without dimensions must still be offerable")
		}
	})
}
