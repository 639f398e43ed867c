// Package availability decides which inventory units may be shown and
// reserved. The Offerable predicate is the single source of truth shared by
// the render path and the reservation path; any divergence between the two
// causes either phantom cards or double bookings.
package availability

import (
	"context"

	"gallery-service/internal/model"
)

// Unit is a read-only view of one slab: its lot, its ledger quant and the
// product fields needed for display and pricing.
type Unit struct {
	LotID            uint
	QuantID          uint
	ProductID        uint
	CompanyID        uint
	LotName          string
	CategoryName     string
	BlockName        string
	LocationKind     string
	FreeQuantity     float64
	ReservedQuantity float64
	ManualHold       bool
	Height           float64
	Width            float64
	UnitPrice        float64
	ListPrice        float64
}

// Finder resolves the current unit state for a lot, scoped to one company.
// Implementations must read fresh state on every call; caching across
// requests is not allowed.
type Finder interface {
	UnitByLot(ctx context.Context, lotID, companyID uint) (Unit, error)
}

// Offerable reports whether a unit can be shown and reserved right now.
// A unit is offerable when it sits in an internal location, has free stock,
// carries no reservation, no manual hold, and belongs to the given company.
func Offerable(u Unit, companyID uint) bool {
	return u.LocationKind == model.LocationInternal &&
		u.FreeQuantity > 0 &&
		u.ReservedQuantity == 0 &&
		!u.ManualHold &&
		u.CompanyID == companyID
}

// Area returns the display area of a unit in square meters. When both
// dimensions are known it is height times width; otherwise the free quantity
// stands in as a proxy. Display heuristic only, never part of Offerable.
func Area(u Unit) float64 {
	if u.Height > 0 && u.Width > 0 {
		return u.Height * u.Width
	}
	return u.FreeQuantity
}
