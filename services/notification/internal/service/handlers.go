package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/services/notification/internal/models"
)

// Router maps every event that concerns a user to stored notifications.
func (s *NotificationService) Router() *events.Router {
	return events.NewRouter("notification").
		On(events.UserRegistered, handle(s, userRegistered)).
		On(events.KYCReviewed, handle(s, kycReviewed)).
		On(events.ProductApproved, handle(s, productModerated)).
		On(events.ProductRejected, handle(s, productModerated)).
		On(events.OrderCreated, handle(s, orderPlaced)).
		On(events.OrderPricesFixed, handle(s, orderPriced)).
		On(events.OrderStatusChanged, handle(s, orderTransition)).
		On(events.ShipmentCreated, handle(s, shipmentChanged)).
		On(events.ShipmentUpdated, handle(s, shipmentChanged)).
		On(events.ProjectApproved, handle(s, projectReviewed)).
		On(events.ProjectRejected, handle(s, projectReviewed)).
		On(events.ProjectFunded, handle(s, projectReviewed)).
		On(events.InvestmentConfirmed, handle(s, investmentReviewed)).
		On(events.InvestmentRejected, handle(s, investmentReviewed)).
		On(events.DividendDistributed, handle(s, dividendIssued)).
		On(events.ReportPublished, handle(s, reportIssued)).
		On(events.SubscriptionActivated, handle(s, subscriptionChanged)).
		On(events.SubscriptionExpired, handle(s, subscriptionChanged))
}

func handle[T any](s *NotificationService, build func(events.Envelope, T) []models.Notification) events.HandlerFunc {
	return func(ctx context.Context, env events.Envelope) error {
		p, err := events.DecodePayload[T](env)
		if err != nil {
			// a payload that cannot be decoded will not decode on redelivery either
			return nil
		}
		return s.store(ctx, build(env, p))
	}
}

func one(env events.Envelope, userID uuid.UUID, title, body, link string) []models.Notification {
	if userID == uuid.Nil {
		return nil
	}
	return []models.Notification{note(env.EventID, env.EventType, env.Payload, userID, title, body, link)}
}

func userRegistered(env events.Envelope, p events.UserChanged) []models.Notification {
	return one(env, p.UserID, "Welcome to tradefund", "Your "+strings.ToLower(p.Role)+" account is ready.", "/profile")
}

func kycReviewed(env events.Envelope, p events.UserChanged) []models.Notification {
	return one(env, p.UserID, "KYC "+strings.ToLower(p.Status), "Your identity verification is "+strings.ToLower(p.Status)+".", "/profile/kyc")
}

func productModerated(env events.Envelope, p events.ProductModerated) []models.Notification {
	body := fmt.Sprintf("%q is now %s.", p.Name, strings.ToLower(p.Status))
	if p.Reason != "" {
		body += " Reason: " + p.Reason
	}
	return one(env, p.SellerID, "Product "+strings.ToLower(p.Status), body, "/trading/products/"+p.ProductID.String())
}

func orderPlaced(env events.Envelope, p events.OrderPlaced) []models.Notification {
	link := "/trading/orders/" + p.OrderID.String()
	out := one(env, p.BuyerID, "Order received", fmt.Sprintf("Your order with %d item(s) is waiting for pricing.", p.ItemCount), link)
	for _, seller := range p.SellerIDs {
		out = append(out, one(env, seller, "New order", "A buyer ordered your products.", link)...)
	}
	return out
}

func orderPriced(env events.Envelope, p events.OrderPriced) []models.Notification {
	parts := make([]string, 0, len(p.Totals))
	for _, t := range p.Totals {
		parts = append(parts, t.Amount.StringFixed(2)+" "+t.Currency)
	}
	return one(env, p.BuyerID, "Order price set", "Confirmed total: "+strings.Join(parts, " + "), "/trading/orders/"+p.OrderID.String())
}

func orderTransition(env events.Envelope, p events.OrderTransition) []models.Notification {
	if p.ActorID == p.BuyerID {
		return nil
	}
	return one(env, p.BuyerID, "Order "+strings.ToLower(p.To), fmt.Sprintf("Your order moved from %s to %s.", p.From, p.To), "/trading/orders/"+p.OrderID.String())
}

func shipmentChanged(env events.Envelope, p events.ShipmentChanged) []models.Notification {
	body := fmt.Sprintf("%s shipment is %s.", p.Method, strings.ToLower(strings.ReplaceAll(p.Status, "_", " ")))
	if p.TrackingNumber != "" {
		body += " Tracking: " + p.TrackingNumber
	}
	return one(env, p.BuyerID, "Shipment update", body, "/trading/orders/"+p.OrderID.String())
}

func projectReviewed(env events.Envelope, p events.ProjectReviewed) []models.Notification {
	body := fmt.Sprintf("%q is now %s.", p.Title, strings.ToLower(strings.ReplaceAll(p.Status, "_", " ")))
	if p.Reason != "" {
		body += " Reason: " + p.Reason
	}
	return one(env, p.OwnerID, "Project "+strings.ToLower(p.Status), body, "/investment/projects/"+p.ProjectID.String())
}

func investmentReviewed(env events.Envelope, p events.InvestmentReviewed) []models.Notification {
	link := "/investment/projects/" + p.ProjectID.String()
	amount := p.Amount.StringFixed(2) + " " + p.Currency
	out := one(env, p.InvestorID, "Investment "+strings.ToLower(p.Status), "Your investment of "+amount+" is "+strings.ToLower(p.Status)+".", link)
	if p.Status == "CONFIRMED" {
		out = append(out, one(env, p.OwnerID, "New investment", amount+" was confirmed for your project.", link)...)
	}
	return out
}

func dividendIssued(env events.Envelope, p events.DividendIssued) []models.Notification {
	out := make([]models.Notification, 0, len(p.Payouts))
	for _, po := range p.Payouts {
		out = append(out, one(env, po.InvestorID, "Dividend paid",
			fmt.Sprintf("You received %s %s for %s.", po.Amount.StringFixed(2), p.Currency, p.Period),
			"/investment/projects/"+p.ProjectID.String())...)
	}
	return out
}

func reportIssued(env events.Envelope, p events.ReportIssued) []models.Notification {
	out := make([]models.Notification, 0, len(p.InvestorIDs))
	for _, id := range p.InvestorIDs {
		out = append(out, one(env, id, "New financial report", p.Title, "/investment/projects/"+p.ProjectID.String())...)
	}
	return out
}

func subscriptionChanged(env events.Envelope, p events.SubscriptionChanged) []models.Notification {
	body := fmt.Sprintf("Your %s subscription is %s.", p.PlanCode, strings.ToLower(p.Status))
	if p.ExpiresAt != nil && p.Status == "ACTIVE" {
		body += " Valid until " + p.ExpiresAt.Format("2006-01-02") + "."
	}
	return one(env, p.UserID, "Subscription "+strings.ToLower(p.Status), body, "/billing/subscription")
}
