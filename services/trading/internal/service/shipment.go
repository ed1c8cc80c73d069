package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type ShipmentService struct {
	Repo   *repo.GormRepo
	Events *events.BestEffort
}

func (s *ShipmentService) CreateShipment(ctx context.Context, actor Actor, req transport.CreateShipmentRequest) (*models.Shipment, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: trading admin only", ErrForbidden)
	}
	method := models.ShipmentMethod(strings.ToUpper(strings.TrimSpace(req.Method)))
	if !method.Valid() {
		return nil, fmt.Errorf("%w: method must be AIR, SEA or EXPRESS", ErrValidation)
	}

	var (
		sh    *models.Shipment
		order *models.Order
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		order, err = tx.LockOrder(ctx, req.OrderID)
		if err != nil {
			return notFound(err, "order")
		}
		if order.Status != models.OrderConfirmed {
			return fmt.Errorf("%w: order is %s, shipments need a CONFIRMED order", ErrConflict, order.Status)
		}
		if _, err := tx.ShipmentByOrder(ctx, order.ID); err == nil {
			return fmt.Errorf("%w: order already has a shipment", ErrConflict)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sh = &models.Shipment{OrderID: order.ID, Method: method, Status: models.ShipmentPending}
		if err := tx.CreateShipment(ctx, sh); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: order already has a shipment", ErrConflict)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.ShipmentCreated, sh, order.BuyerID)
	return sh, nil
}

// UpdateShipment edits carrier and tracking data. Sea freight pricing is only accepted on SEA shipments.
func (s *ShipmentService) UpdateShipment(ctx context.Context, actor Actor, id uuid.UUID, req transport.PatchShipmentRequest) (*models.Shipment, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: trading admin only", ErrForbidden)
	}

	var sh *models.Shipment
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		sh, err = tx.LockShipment(ctx, id)
		if err != nil {
			return notFound(err, "shipment")
		}

		if req.Carrier != nil {
			sh.Carrier = strings.TrimSpace(*req.Carrier)
		}
		if req.TrackingNumber != nil {
			sh.TrackingNumber = strings.TrimSpace(*req.TrackingNumber)
		}
		if req.TrackingURL != nil {
			sh.TrackingURL = strings.TrimSpace(*req.TrackingURL)
		}
		if err := applySeaPricing(sh, req); err != nil {
			return err
		}
		return tx.SaveShipment(ctx, sh)
	})
	if err != nil {
		return nil, err
	}
	return sh, nil
}

func applySeaPricing(sh *models.Shipment, req transport.PatchShipmentRequest) error {
	touched := req.SeaPricingMode != nil || req.ContainerType != nil || req.CBMVolume != nil ||
		req.FreightCost != nil || req.FreightCurrency != nil
	if !touched {
		return nil
	}
	if sh.Method != models.MethodSea {
		return fmt.Errorf("%w: sea freight pricing only applies to SEA shipments", ErrValidation)
	}

	if req.SeaPricingMode != nil {
		mode := models.SeaPricingMode(strings.ToUpper(strings.TrimSpace(*req.SeaPricingMode)))
		if mode != models.SeaByCBM && mode != models.SeaByContainer {
			return fmt.Errorf("%w: sea_pricing_mode must be CBM or CONTAINER", ErrValidation)
		}
		sh.SeaPricingMode = mode
	}
	if req.ContainerType != nil {
		ct := strings.ToUpper(strings.TrimSpace(*req.ContainerType))
		if !slices.Contains(models.ContainerTypes, ct) {
			return fmt.Errorf("%w: container_type must be one of %s", ErrValidation, strings.Join(models.ContainerTypes, ", "))
		}
		sh.ContainerType = ct
	}
	if req.CBMVolume != nil {
		if !req.CBMVolume.IsPositive() {
			return fmt.Errorf("%w: cbm_volume must be > 0", ErrValidation)
		}
		sh.CBMVolume.Decimal, sh.CBMVolume.Valid = *req.CBMVolume, true
	}
	if req.FreightCost != nil {
		if req.FreightCost.IsNegative() {
			return fmt.Errorf("%w: freight_cost must be >= 0", ErrValidation)
		}
		sh.FreightCost.Decimal, sh.FreightCost.Valid = *req.FreightCost, true
	}
	if req.FreightCurrency != nil {
		cur, err := normCurrency(*req.FreightCurrency)
		if err != nil {
			return err
		}
		sh.FreightCurrency = cur
	}

	switch sh.SeaPricingMode {
	case models.SeaByCBM:
		sh.ContainerType = ""
	case models.SeaByContainer:
		sh.CBMVolume.Valid = false
	}
	if sh.FreightCost.Valid && sh.FreightCurrency == "" {
		return fmt.Errorf("%w: freight_currency required with freight_cost", ErrValidation)
	}
	return nil
}

// UpdateShipmentStatus moves PENDING -> IN_TRANSIT -> DELIVERED. Going in transit also
// marks a CONFIRMED order as SHIPPED, in the same transaction.
func (s *ShipmentService) UpdateShipmentStatus(ctx context.Context, actor Actor, id uuid.UUID, to models.ShipmentStatus) (*models.Shipment, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: trading admin only", ErrForbidden)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown shipment status %q", ErrValidation, to)
	}

	var (
		sh          *models.Shipment
		order       *models.Order
		orderMoved  bool
		orderBefore models.OrderStatus
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		sh, err = tx.LockShipment(ctx, id)
		if err != nil {
			return notFound(err, "shipment")
		}
		if !sh.Status.CanTransition(to) {
			return fmt.Errorf("%w: shipment cannot go from %s to %s", ErrConflict, sh.Status, to)
		}
		order, err = tx.LockOrder(ctx, sh.OrderID)
		if err != nil {
			return notFound(err, "order")
		}
		if order.Status == models.OrderCancelled {
			return fmt.Errorf("%w: order %s is cancelled", ErrConflict, order.ID)
		}

		now := time.Now().UTC()
		sh.Status = to
		switch to {
		case models.ShipmentInTransit:
			sh.ShippedAt = &now
			if order.Status == models.OrderConfirmed {
				orderBefore = order.Status
				order.Status = models.OrderShipped
				orderMoved = true
				if err := tx.SaveOrder(ctx, order); err != nil {
					return err
				}
			}
		case models.ShipmentDelivered:
			sh.DeliveredAt = &now
		}
		return tx.SaveShipment(ctx, sh)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, events.ShipmentUpdated, sh, order.BuyerID)
	if orderMoved {
		s.Events.Emit(ctx, events.TopicTrading, events.OrderStatusChanged, order.ID.String(), events.OrderTransition{
			OrderID: order.ID,
			BuyerID: order.BuyerID,
			ActorID: actor.ID,
			From:    string(orderBefore),
			To:      string(order.Status),
		})
	}
	return sh, nil
}

func (s *ShipmentService) GetShipment(ctx context.Context, actor Actor, id uuid.UUID) (*models.Shipment, error) {
	sh, err := s.Repo.GetShipment(ctx, id)
	if err != nil {
		return nil, notFound(err, "shipment")
	}
	if err := s.authorizeView(ctx, actor, sh.OrderID); err != nil {
		return nil, err
	}
	return sh, nil
}

func (s *ShipmentService) ShipmentForOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Shipment, error) {
	if err := s.authorizeView(ctx, actor, orderID); err != nil {
		return nil, err
	}
	sh, err := s.Repo.ShipmentByOrder(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "shipment")
	}
	return sh, nil
}

func (s *ShipmentService) authorizeView(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return notFound(err, "order")
	}
	if !canView(actor, o) {
		return fmt.Errorf("%w: order belongs to another buyer", ErrForbidden)
	}
	return nil
}

func (s *ShipmentService) changed(ctx context.Context, eventType string, sh *models.Shipment, buyerID uuid.UUID) {
	s.Events.Emit(ctx, events.TopicTrading, eventType, sh.OrderID.String(), events.ShipmentChanged{
		ShipmentID:     sh.ID,
		OrderID:        sh.OrderID,
		BuyerID:        buyerID,
		Method:         string(sh.Method),
		Status:         string(sh.Status),
		TrackingNumber: sh.TrackingNumber,
	})
}
