// Package reservation converts a submitted cart into an exclusive, durable
// hold against the live inventory, whole-or-nothing: one stale item rejects
// the entire submission.
package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gallery-service/internal/availability"
	"gallery-service/internal/clock"
	"gallery-service/internal/model"

	"go.uber.org/zap"
)

// Store is the write-side contract with the inventory ledger and order
// subsystem. UnitByLotForUpdate must lock the underlying quant row for the
// duration of the transaction so the availability re-check happens-after any
// concurrent reservation's commit. ConfirmHoldOrder is the sole trigger for
// inventory mutation.
type Store interface {
	ShareByToken(ctx context.Context, token string) (*model.GalleryShare, error)
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	UnitByLotForUpdate(ctx context.Context, lotID, companyID uint) (availability.Unit, error)
	CreateHoldOrder(ctx context.Context, order *model.HoldOrder) error
	ConfirmHoldOrder(ctx context.Context, order *model.HoldOrder) error
}

// Ref is a unit reference from the client cart. Browsers send these either
// as JSON numbers or as strings depending on the widget; both decode to the
// textual form and pass through the same sanitization.
type Ref string

func (r *Ref) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = Ref(n.String())
	return nil
}

// CartItem is one candidate unit from the client cart.
type CartItem struct {
	ImageRef Ref    `json:"id"`
	QuantRef Ref    `json:"quant_id"`
	LotRef   Ref    `json:"lot_id"`
	Name     string `json:"name"`
	LotName  string `json:"lot_name"`
}

// Confirmation is returned to the anonymous client on success.
type Confirmation struct {
	OrderName string
	Message   string
	Lines     int
}

type Service struct {
	store    Store
	clock    clock.Clock
	currency string
	log      *zap.Logger
}

type Option func(*Service)

// WithCurrency overrides the currency placed on new hold orders.
func WithCurrency(currency string) Option {
	return func(s *Service) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithLogger overrides the logger used for server-side reconciliation logs.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(store Store, clk clock.Clock, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		clock:    clk,
		currency: "USD",
		log:      zap.L(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Reserve validates the link, re-checks every candidate unit against fresh
// ledger state under row locks, and creates and confirms a hold order in one
// transaction. Preconditions are checked in order and short-circuit.
func (s *Service) Reserve(ctx context.Context, token string, items []CartItem) (Confirmation, error) {
	share, err := s.store.ShareByToken(ctx, token)
	if err != nil {
		return Confirmation{}, err
	}
	if share == nil {
		return Confirmation{}, ErrShareNotFound
	}
	if share.IsExpired(s.clock.Now()) {
		return Confirmation{}, ErrShareExpired
	}

	lots := sanitizeCart(items)
	if len(lots) == 0 {
		return Confirmation{}, ErrEmptyCart
	}

	var conf Confirmation
	err = s.store.WithTx(ctx, func(txCtx context.Context) error {
		order := &model.HoldOrder{
			CompanyID:   share.CompanyID,
			CustomerID:  share.CustomerID,
			SalesUserID: share.SalesUserID,
			Currency:    s.currency,
			State:       model.OrderStateDraft,
		}

		for _, lotID := range lots {
			unit, err := s.store.UnitByLotForUpdate(txCtx, lotID, share.CompanyID)
			if err != nil {
				return err
			}
			if !availability.Offerable(unit, share.CompanyID) {
				return &UnitUnavailableError{LotRef: lotID}
			}

			// Per-line pricing: lot override first, list price fallback.
			price := unit.UnitPrice
			if price <= 0 {
				price = unit.ListPrice
			}

			order.Lines = append(order.Lines, model.HoldLine{
				LotID:       unit.LotID,
				ProductID:   unit.ProductID,
				Description: unit.LotName,
				Quantity:    unit.FreeQuantity,
				UnitPrice:   price,
			})
		}

		if err := s.store.CreateHoldOrder(txCtx, order); err != nil {
			return fmt.Errorf("%w: %v", ErrOrderCreate, err)
		}
		if err := s.store.ConfirmHoldOrder(txCtx, order); err != nil {
			// A created-but-unconfirmed order holds no inventory. The
			// transaction rolls it back, but log enough to reconcile in
			// case the store cannot.
			s.log.Error("hold order confirmation failed",
				zap.String("token", token),
				zap.String("order_name", order.Name),
				zap.Uints("lot_ids", lots),
				zap.Error(err))
			return fmt.Errorf("%w: %v", ErrOrderConfirm, err)
		}

		conf = Confirmation{
			OrderName: order.Name,
			Message:   "Reservation confirmed under reference " + order.Name + ".",
			Lines:     len(order.Lines),
		}
		return nil
	})
	if err != nil {
		return Confirmation{}, err
	}
	return conf, nil
}

// sanitizeCart drops entries whose lot reference is not a well-formed
// positive integer and deduplicates repeated references, preserving order.
func sanitizeCart(items []CartItem) []uint {
	seen := make(map[uint]bool, len(items))
	lots := make([]uint, 0, len(items))
	for _, item := range items {
		ref := strings.TrimSpace(string(item.LotRef))
		id, err := strconv.ParseUint(ref, 10, 32)
		if err != nil || id == 0 {
			continue
		}
		lotID := uint(id)
		if seen[lotID] {
			continue
		}
		seen[lotID] = true
		lots = append(lots, lotID)
	}
	return lots
}
