package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type CartService struct {
	Repo   *repo.GormRepo
	Orders *OrderService
}

func (s *CartService) GetCart(ctx context.Context, actor Actor) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, actor.ID)
}

func (s *CartService) AddToCart(ctx context.Context, actor Actor, req transport.AddToCartRequest) (*models.CartItem, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	// validates the product, its status and the currency the same way checkout will
	line, err := buildItem(ctx, s.Repo, req.ProductID, req.Quantity, req.Currency)
	if err != nil {
		return nil, err
	}
	item := &models.CartItem{
		UserID:    actor.ID,
		ProductID: line.ProductID,
		Currency:  line.EstimateCurrency,
		Quantity:  req.Quantity,
	}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) SetQuantity(ctx context.Context, actor Actor, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	item, err := s.Repo.SetCartQuantity(ctx, actor.ID, itemID, quantity)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, actor Actor, itemID uuid.UUID) error {
	if err := s.Repo.DeleteCartItem(ctx, actor.ID, itemID); err != nil {
		return notFound(err, "cart item")
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, actor Actor) error {
	return s.Repo.ClearCart(ctx, actor.ID)
}

// Checkout turns the cart into one DRAFT order and empties the cart in the same transaction.
func (s *CartService) Checkout(ctx context.Context, actor Actor, req transport.CheckoutRequest) (*models.Order, error) {
	if err := requireBuyer(actor); err != nil {
		return nil, err
	}
	var order *models.Order
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCart(ctx, actor.ID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}
		lines := make([]transport.DraftItem, 0, len(cart))
		for _, c := range cart {
			lines = append(lines, transport.DraftItem{ProductID: c.ProductID, Quantity: c.Quantity, Currency: c.Currency})
		}
		if order, err = createDraft(ctx, tx, actor.ID, lines, req.Destination, req.Notes); err != nil {
			return err
		}
		return tx.ClearCart(ctx, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	s.Orders.placed(ctx, order)
	return order, nil
}
