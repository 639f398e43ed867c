package reservation

import (
	"errors"
	"fmt"
)

var (
	ErrShareNotFound   = errors.New("gallery link not found")
	ErrShareExpired    = errors.New("gallery link expired")
	ErrEmptyCart       = errors.New("empty or invalid cart")
	ErrUnitUnavailable = errors.New("unit no longer available")
	ErrOrderCreate     = errors.New("hold order creation failed")
	ErrOrderConfirm    = errors.New("hold order confirmation failed")
)

// UnitUnavailableError identifies which lot failed the fresh availability
// re-check. errors.Is(err, ErrUnitUnavailable) matches it.
type UnitUnavailableError struct {
	LotRef uint
}

func (e *UnitUnavailableError) Error() string {
	return fmt.Sprintf("lot %d is no longer available", e.LotRef)
}

func (e *UnitUnavailableError) Unwrap() error {
	return ErrUnitUnavailable
}
