package ledger

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Skotchmaster/ecommerce_api/internal/access"
	"github.com/Skotchmaster/ecommerce_api/internal/domain"
	"github.com/Skotchmaster/ecommerce_api/internal/models"
)

const tracerName = "github.com/Skotchmaster/ecommerce_api/internal/ledger"

// Tx is the view of the store inside one atomic unit.
type Tx interface {
	Product(ctx context.Context, id uint) (*models.Product, error)
	Order(ctx context.Context, id uint) (*models.Order, error)
	// Apply writes plan. A row whose version moved since it was read fails
	// with domain.ErrConflict. Apply fills in the ID of an inserted order and
	// the new Version of an updated one.
	Apply(ctx context.Context, plan Plan) error
}

// Store runs fn in one atomic unit. Nothing fn wrote is visible if it returns an error.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Ledger keeps product stock and orders consistent. It holds no state of its own.
type Ledger struct {
	Store  Store
	Policy access.Policy
	Now    func() time.Time
}

func New(store Store, policy access.Policy) *Ledger {
	return &Ledger{
		Store:  store,
		Policy: policy,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *Ledger) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// PlaceOrder deducts stock and creates the order in one unit. A zero
// UserID is replaced by the caller's actor id.
func (l *Ledger) PlaceOrder(ctx context.Context, claim access.Claim, req PlaceRequest) (order *models.Order, err error) {
	ctx, span := l.start(ctx, "ledger.PlaceOrder",
		attribute.Int64("product.id", int64(req.ProductID)),
		attribute.Int("order.quantity", req.Quantity),
	)
	defer func() { finish(span, err) }()

	if err := l.Policy.Authorize(claim, access.OpPlaceOrder, nil); err != nil {
		return nil, err
	}
	if req.UserID == 0 && claim.ActorID != nil {
		req.UserID = *claim.ActorID
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	err = l.Store.Atomic(ctx, func(tx Tx) error {
		product, err := tx.Product(ctx, req.ProductID)
		if err != nil {
			return err
		}
		plan, err := PlanPlace(req, *product, l.Now())
		if err != nil {
			return err
		}
		if err := tx.Apply(ctx, plan); err != nil {
			return err
		}
		order = plan.Insert
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	return order, nil
}

// UpdateOrder patches an order, moving stock when its product or quantity changes.
func (l *Ledger) UpdateOrder(ctx context.Context, claim access.Claim, orderID uint, patch Patch) (order *models.Order, err error) {
	ctx, span := l.start(ctx, "ledger.UpdateOrder",
		attribute.Int64("order.id", int64(orderID)),
		attribute.Int64("product.id", int64(patch.ProductID)),
		attribute.Int("order.quantity", patch.Quantity),
	)
	defer func() { finish(span, err) }()

	if err := patch.validate(); err != nil {
		return nil, err
	}

	err = l.Store.Atomic(ctx, func(tx Tx) error {
		current, err := tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		if err := l.Policy.Authorize(claim, access.OpUpdateOrder, &current.UserID); err != nil {
			return err
		}

		targetID, _ := patch.target(*current)
		products, err := loadProducts(ctx, tx, current.ProductID, targetID)
		if err != nil {
			return err
		}

		plan, err := PlanUpdate(*current, patch, products)
		if err != nil {
			return err
		}
		if err := tx.Apply(ctx, plan); err != nil {
			return err
		}
		order = plan.Update
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes the order and returns its quantity to the product.
// It returns the deleted order.
func (l *Ledger) DeleteOrder(ctx context.Context, claim access.Claim, orderID uint) (order *models.Order, err error) {
	ctx, span := l.start(ctx, "ledger.DeleteOrder", attribute.Int64("order.id", int64(orderID)))
	defer func() { finish(span, err) }()

	err = l.Store.Atomic(ctx, func(tx Tx) error {
		current, err := tx.Order(ctx, orderID)
		if err != nil {
			return err
		}
		if err := l.Policy.Authorize(claim, access.OpDeleteOrder, &current.UserID); err != nil {
			return err
		}

		products, err := loadProducts(ctx, tx, current.ProductID)
		if err != nil {
			return err
		}

		plan := PlanDelete(*current, products)
		if err := tx.Apply(ctx, plan); err != nil {
			return err
		}
		order = plan.Delete
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// loadProducts reads each distinct id once. Missing products are left out.
func loadProducts(ctx context.Context, tx Tx, ids ...uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		p, err := tx.Product(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = *p
	}
	return out, nil
}
