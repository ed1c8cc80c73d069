package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events *events.BestEffort
}

// buildItem prices one order line from the product's list price in the requested currency.
func buildItem(ctx context.Context, r *repo.GormRepo, productID uuid.UUID, quantity int, currency string) (models.OrderItem, error) {
	if productID == uuid.Nil {
		return models.OrderItem{}, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if quantity <= 0 {
		return models.OrderItem{}, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	cur, err := normCurrency(currency)
	if err != nil {
		return models.OrderItem{}, err
	}
	p, err := r.GetProduct(ctx, productID)
	if err != nil {
		return models.OrderItem{}, notFound(err, "product")
	}
	if p.Status != models.ProductApproved {
		return models.OrderItem{}, fmt.Errorf("%w: product %s is not available", ErrValidation, p.ID)
	}
	price, ok := p.PriceIn(cur)
	if !ok {
		return models.OrderItem{}, fmt.Errorf("%w: product %s has no %s price", ErrValidation, p.ID, cur)
	}
	return models.OrderItem{
		ProductID:         p.ID,
		SellerID:          p.SellerID,
		ProductName:       p.Name,
		Quantity:          quantity,
		EstimateCurrency:  cur,
		UnitPriceEstimate: price,
		Currency:          cur,
	}, nil
}

func requireBuyer(actor Actor) error {
	if actor.Role != roles.Buyer {
		return fmt.Errorf("%w: only buyers place orders", ErrForbidden)
	}
	return nil
}

func (s *OrderService) CreateOrder(ctx context.Context, actor Actor, req transport.CreateOrderRequest) (*models.Order, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	item, err := buildItem(ctx, s.Repo, req.ProductID, req.Quantity, req.Currency)
	if err != nil {
		return nil, err
	}
	order := &models.Order{
		BuyerID:   actor.ID,
		Status:    models.OrderPending,
		PriceMode: models.PriceEstimate,
		Notes:     strings.TrimSpace(req.Notes),
		Items:     []models.OrderItem{item},
	}
	if _, err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	s.placed(ctx, order)
	return order, nil
}

// CreateDraftOrder stores one DRAFT order with every line and the shared destination.
func (s *OrderService) CreateDraftOrder(ctx context.Context, actor Actor, req transport.CreateDraftOrderRequest) (*models.Order, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	var order *models.Order
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = createDraft(ctx, tx, actor.ID, req.Items, req.Destination, req.Notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.placed(ctx, order)
	return order, nil
}

func createDraft(ctx context.Context, r *repo.GormRepo, buyerID uuid.UUID, lines []transport.DraftItem, dest transport.Destination, notes string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		it, err := buildItem(ctx, r, l.ProductID, l.Quantity, l.Currency)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	order := &models.Order{
		BuyerID:               buyerID,
		Status:                models.OrderDraft,
		PriceMode:             models.PriceEstimate,
		DestinationCountry:    strings.TrimSpace(dest.Country),
		DestinationState:      strings.TrimSpace(dest.State),
		DestinationCity:       strings.TrimSpace(dest.City),
		DestinationAddress:    strings.TrimSpace(dest.Address),
		DestinationPostalCode: strings.TrimSpace(dest.PostalCode),
		Incoterm:              strings.ToUpper(strings.TrimSpace(dest.Incoterm)),
		Notes:                 strings.TrimSpace(notes),
		Items:                 items,
	}
	return r.CreateOrder(ctx, order)
}

func (s *OrderService) placed(ctx context.Context, o *models.Order) {
	s.Events.Emit(ctx, events.TopicTrading, events.OrderCreated, o.ID.String(), events.OrderPlaced{
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		Status:    string(o.Status),
		SellerIDs: o.SellerIDs(),
		ItemCount: len(o.Items),
		Notes:     o.Notes,
	})
}

func canView(actor Actor, o *models.Order) bool {
	if actor.Staff() || o.BuyerID == actor.ID {
		return true
	}
	if actor.Role == roles.Seller {
		for _, it := range o.Items {
			if it.SellerID == actor.ID {
				return true
			}
		}
	}
	return false
}

func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if !canView(actor, o) {
		return nil, fmt.Errorf("%w: order belongs to another buyer", ErrForbidden)
	}
	return o, nil
}

// ListOrders scopes the listing by role: buyers see their own orders, sellers see
// orders that contain their products and trading staff see everything.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, status models.OrderStatus, offset, limit int) (int64, []models.Order, error) {
	f := repo.OrderFilter{Status: status}
	switch {
	case actor.Staff():
	case actor.Role == roles.Seller:
		f.SellerID = &actor.ID
	default:
		f.BuyerID = &actor.ID
	}
	return s.Repo.ListOrders(ctx, f, offset, limit)
}

// SetFixedPrices records admin-confirmed unit prices and switches the order to FIXED pricing.
// Everything happens in one transaction so an order is never left half priced.
func (s *OrderService) SetFixedPrices(ctx context.Context, actor Actor, id uuid.UUID, req transport.SetFixedPricesRequest) (*models.Order, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: trading admin only", ErrForbidden)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items required", ErrValidation)
	}

	var (
		order *models.Order
		from  models.OrderStatus
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.LockOrder(ctx, id)
		if err != nil {
			return notFound(err, "order")
		}
		if !order.Status.Priceable() {
			return fmt.Errorf("%w: order is %s", ErrConflict, order.Status)
		}
		from = order.Status

		byID := make(map[uuid.UUID]int, len(order.Items))
		for i, it := range order.Items {
			byID[it.ID] = i
		}
		done := make(map[uuid.UUID]bool, len(req.Items))
		for _, in := range req.Items {
			idx, ok := byID[in.ItemID]
			if !ok {
				return fmt.Errorf("%w: item %s is not part of the order", ErrValidation, in.ItemID)
			}
			if done[in.ItemID] {
				return fmt.Errorf("%w: item %s listed twice", ErrValidation, in.ItemID)
			}
			if in.FixedUnitPrice.IsNegative() {
				return fmt.Errorf("%w: fixed_unit_price must be >= 0", ErrValidation)
			}
			cur := order.Items[idx].EstimateCurrency
			if in.Currency != "" {
				if cur, err = normCurrency(in.Currency); err != nil {
					return err
				}
			}
			done[in.ItemID] = true

			it := &order.Items[idx]
			it.FixedUnitPrice.Decimal = in.FixedUnitPrice
			it.FixedUnitPrice.Valid = true
			it.Currency = cur
			if err := tx.SaveOrderItem(ctx, it); err != nil {
				return err
			}
		}

		order.PriceMode = models.PriceFixed
		if order.Status.CanTransition(models.OrderPriceSet) {
			order.Status = models.OrderPriceSet
		}
		if err := tx.SaveOrder(ctx, order); err != nil {
			return err
		}
		order.Totals = order.ComputeTotals()
		return nil
	})
	if err != nil {
		return nil, err
	}

	totals := make([]events.CurrencyAmount, 0, len(order.Totals))
	for _, t := range order.Totals {
		totals = append(totals, events.CurrencyAmount{Currency: t.Currency, Amount: t.Amount})
	}
	s.Events.Emit(ctx, events.TopicTrading, events.OrderPricesFixed, order.ID.String(), events.OrderPriced{
		OrderID: order.ID,
		BuyerID: order.BuyerID,
		Totals:  totals,
	})
	if from != order.Status {
		s.transitioned(ctx, actor, order, from)
	}
	return order, nil
}

// buyerMoves are the transitions a buyer may make on their own order.
var buyerMoves = map[models.OrderStatus]bool{
	models.OrderConfirmed: true,
	models.OrderCancelled: true,
	models.OrderCompleted: true,
}

func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	var (
		order *models.Order
		from  models.OrderStatus
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.LockOrder(ctx, id)
		if err != nil {
			return notFound(err, "order")
		}
		switch {
		case actor.Staff():
		case order.BuyerID == actor.ID && buyerMoves[to]:
		default:
			return fmt.Errorf("%w: cannot move order to %s", ErrForbidden, to)
		}
		if !order.Status.CanTransition(to) {
			return fmt.Errorf("%w: order cannot go from %s to %s", ErrConflict, order.Status, to)
		}
		from = order.Status
		order.Status = to
		return tx.SaveOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.transitioned(ctx, actor, order, from)
	return order, nil
}

func (s *OrderService) transitioned(ctx context.Context, actor Actor, o *models.Order, from models.OrderStatus) {
	s.Events.Emit(ctx, events.TopicTrading, events.OrderStatusChanged, o.ID.String(), events.OrderTransition{
		OrderID: o.ID,
		BuyerID: o.BuyerID,
		ActorID: actor.ID,
		From:    string(from),
		To:      string(o.Status),
	})
}
