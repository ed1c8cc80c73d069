package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/models"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/repo"
	"github.com/Skotchmaster/tradefund/services/dashboard/internal/transport"
)

const (
	DefaultMonths = 12
	MaxMonths     = 36
	topProducts   = 5
)

// Order states that count as sales. Earlier states are still open quotes.
var (
	soldStatuses = []string{"CONFIRMED", "SHIPPED", "COMPLETED"}
	openStatuses = []string{"DRAFT", "PENDING", "PRICE_SET"}
)

type DashboardService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

func (s *DashboardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Months clamps a requested trend length.
func Months(n int) (int, error) {
	switch {
	case n == 0:
		return DefaultMonths, nil
	case n < 1 || n > MaxMonths:
		return 0, fmt.Errorf("%w: months must be between 1 and %d", ErrValidation, MaxMonths)
	}
	return n, nil
}

func isSold(status string) bool { return slices.Contains(soldStatuses, status) }
func isOpen(status string) bool { return slices.Contains(openStatuses, status) }

func orderTotals(o models.Order) sums {
	out := sums{}
	for _, it := range o.Items {
		cur, amt := it.Line(o.PriceMode)
		out.add(cur, amt)
	}
	return out
}

func (s *DashboardService) Investor(ctx context.Context, investorID uuid.UUID, months int) (*transport.InvestorDashboard, error) {
	invs, err := s.Repo.InvestmentsByInvestor(ctx, investorID)
	if err != nil {
		return nil, err
	}
	payouts, err := s.Repo.PayoutsByInvestor(ctx, investorID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	statuses := make([]string, 0, len(invs))
	backed := map[uuid.UUID]bool{}
	confirmed, pending := sums{}, sums{}
	trend := newWindow(now, months)
	for _, inv := range invs {
		statuses = append(statuses, inv.Status)
		switch inv.Status {
		case "CONFIRMED":
			backed[inv.ProjectID] = true
			confirmed.add(inv.Currency, inv.Amount)
			trend.add(inv.CreatedAt, inv.Currency, inv.Amount)
		case "PENDING":
			pending.add(inv.Currency, inv.Amount)
		}
	}

	received := sums{}
	divTrend := newWindow(now, months)
	for _, p := range payouts {
		received.add(p.Currency, p.Amount)
		divTrend.add(p.CreatedAt, p.Currency, p.Amount)
	}

	return &transport.InvestorDashboard{
		InvestmentsByStatus: countStrings(statuses),
		ProjectsBacked:      len(backed),
		Invested:            confirmed.list(),
		PendingInvested:     pending.list(),
		DividendsReceived:   received.list(),
		MonthlyInvested:     trend.series(),
		MonthlyDividends:    divTrend.series(),
	}, nil
}

func (s *DashboardService) Owner(ctx context.Context, ownerID uuid.UUID, months int) (*transport.OwnerDashboard, error) {
	projects, err := s.Repo.ProjectsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(projects))
	statuses := make([]string, 0, len(projects))
	raised, target := sums{}, sums{}
	progress := make([]transport.ProjectProgress, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
		statuses = append(statuses, p.Status)
		raised.add(p.Currency, p.RaisedAmount)
		if p.Status != "DRAFT" && p.Status != "REJECTED" {
			target.add(p.Currency, p.TargetAmount)
		}
		progress = append(progress, transport.ProjectProgress{
			ID:       p.ID.String(),
			Title:    p.Title,
			Status:   p.Status,
			Currency: p.Currency,
			Target:   p.TargetAmount,
			Raised:   p.RaisedAmount,
			Percent:  percent(p.RaisedAmount, p.TargetAmount),
		})
	}

	invs, err := s.Repo.InvestmentsForProjects(ctx, ids)
	if err != nil {
		return nil, err
	}
	payouts, err := s.Repo.PayoutsForProjects(ctx, ids)
	if err != nil {
		return nil, err
	}

	investors := map[uuid.UUID]bool{}
	pendingN := 0
	trend := newWindow(s.now(), months)
	for _, inv := range invs {
		switch inv.Status {
		case "CONFIRMED":
			investors[inv.InvestorID] = true
			trend.add(inv.CreatedAt, inv.Currency, inv.Amount)
		case "PENDING":
			pendingN++
		}
	}
	paid := sums{}
	for _, p := range payouts {
		paid.add(p.Currency, p.Amount)
	}

	return &transport.OwnerDashboard{
		ProjectsByStatus:   countStrings(statuses),
		Raised:             raised.list(),
		Target:             target.list(),
		Investors:          len(investors),
		PendingInvestments: pendingN,
		DividendsPaid:      paid.list(),
		MonthlyRaised:      trend.series(),
		Projects:           progress,
	}, nil
}

func (s *DashboardService) Buyer(ctx context.Context, buyerID uuid.UUID, months int) (*transport.BuyerDashboard, error) {
	orders, err := s.Repo.OrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	statuses := make([]string, 0, len(orders))
	spend, open := sums{}, sums{}
	trend := newWindow(s.now(), months)
	for _, o := range orders {
		statuses = append(statuses, o.Status)
		totals := orderTotals(o)
		switch {
		case isSold(o.Status):
			for cur, amt := range totals {
				spend.add(cur, amt)
			}
		case isOpen(o.Status):
			for cur, amt := range totals {
				open.add(cur, amt)
			}
		}
		if o.Status != "CANCELLED" {
			trend.addTotals(o.CreatedAt, totals)
		}
	}
	return &transport.BuyerDashboard{
		OrdersByStatus: countStrings(statuses),
		Spend:          spend.list(),
		OpenValue:      open.list(),
		MonthlyOrders:  trend.series(),
	}, nil
}

func (s *DashboardService) Seller(ctx context.Context, sellerID uuid.UUID, months int) (*transport.SellerDashboard, error) {
	products, err := s.Repo.CountBy(ctx, &models.Product{}, "status", "seller_id = ?", sellerID)
	if err != nil {
		return nil, err
	}
	lines, err := s.Repo.SellerLines(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	type productAgg struct {
		name    string
		units   int64
		revenue sums
	}
	orders := map[uuid.UUID]bool{}
	perProduct := map[uuid.UUID]*productAgg{}
	revenue := sums{}
	var units int64
	trend := newWindow(s.now(), months)
	for _, l := range lines {
		if l.OrderStatus == "CANCELLED" {
			continue
		}
		orders[l.OrderID] = true
		if !isSold(l.OrderStatus) {
			continue
		}
		cur, amt := l.Item().Line(l.PriceMode)
		revenue.add(cur, amt)
		units += int64(l.Quantity)
		trend.add(l.OrderCreatedAt, cur, amt)

		agg, ok := perProduct[l.ProductID]
		if !ok {
			agg = &productAgg{name: l.ProductName, revenue: sums{}}
			perProduct[l.ProductID] = agg
		}
		agg.units += int64(l.Quantity)
		agg.revenue.add(cur, amt)
	}

	top := make([]transport.ProductSales, 0, len(perProduct))
	for id, agg := range perProduct {
		top = append(top, transport.ProductSales{ProductID: id.String(), Name: agg.name, Units: agg.units, Revenue: agg.revenue.list()})
	}
	sort.Slice(top, func(a, b int) bool {
		if top[a].Units != top[b].Units {
			return top[a].Units > top[b].Units
		}
		return top[a].Name < top[b].Name
	})
	if len(top) > topProducts {
		top = top[:topProducts]
	}

	return &transport.SellerDashboard{
		ProductsByStatus: products,
		Orders:           len(orders),
		UnitsSold:        units,
		Revenue:          revenue.list(),
		MonthlyRevenue:   trend.series(),
		TopProducts:      top,
	}, nil
}

func (s *DashboardService) TradingAdmin(ctx context.Context, months int) (*transport.TradingAdminDashboard, error) {
	out := &transport.TradingAdminDashboard{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.UsersByRole, err = s.Repo.CountBy(gctx, &models.User{}, "role", "role IN ?", []string{roles.Buyer, roles.Seller})
		return err
	})
	g.Go(func() (err error) {
		out.ProductsByStatus, err = s.Repo.CountBy(gctx, &models.Product{}, "status", "")
		return err
	})
	g.Go(func() (err error) {
		out.OrdersByStatus, err = s.Repo.CountBy(gctx, &models.Order{}, "status", "")
		return err
	})
	var sold []models.Order
	g.Go(func() (err error) {
		sold, err = s.Repo.OrdersByStatus(gctx, soldStatuses)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.AwaitingPrice = out.OrdersByStatus["DRAFT"] + out.OrdersByStatus["PENDING"]
	gmv := sums{}
	trend := newWindow(s.now(), months)
	for _, o := range sold {
		totals := orderTotals(o)
		for cur, amt := range totals {
			gmv.add(cur, amt)
		}
		trend.addTotals(o.CreatedAt, totals)
	}
	out.GMV = gmv.list()
	out.MonthlyGMV = trend.series()
	return out, nil
}

func (s *DashboardService) InvestmentAdmin(ctx context.Context, months int) (*transport.InvestmentAdminDashboard, error) {
	out := &transport.InvestmentAdminDashboard{}
	var (
		projects  []models.Project
		confirmed []models.Investment
		payouts   []models.DividendPayout
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.UsersByRole, err = s.Repo.CountBy(gctx, &models.User{}, "role", "role IN ?", []string{roles.Investor, roles.ProjectOwner})
		return err
	})
	g.Go(func() (err error) {
		out.InvestmentsByStatus, err = s.Repo.CountBy(gctx, &models.Investment{}, "status", "")
		return err
	})
	g.Go(func() (err error) {
		projects, err = s.Repo.Projects(gctx)
		return err
	})
	g.Go(func() (err error) {
		confirmed, err = s.Repo.InvestmentsByStatus(gctx, "CONFIRMED")
		return err
	})
	g.Go(func() (err error) {
		payouts, err = s.Repo.Payouts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	statuses := make([]string, 0, len(projects))
	raised := sums{}
	for _, p := range projects {
		statuses = append(statuses, p.Status)
		raised.add(p.Currency, p.RaisedAmount)
	}
	distributed := sums{}
	for _, p := range payouts {
		distributed.add(p.Currency, p.Amount)
	}
	trend := newWindow(s.now(), months)
	for _, inv := range confirmed {
		trend.add(inv.CreatedAt, inv.Currency, inv.Amount)
	}

	out.ProjectsByStatus = countStrings(statuses)
	out.Raised = raised.list()
	out.DividendsDistributed = distributed.list()
	out.MonthlyInvestments = trend.series()
	return out, nil
}

func (s *DashboardService) Billing(ctx context.Context, months int) (*transport.BillingDashboard, error) {
	out := &transport.BillingDashboard{}
	var paid []models.Payment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.SubscriptionsByStatus, err = s.Repo.CountBy(gctx, &models.Subscription{}, "status", "")
		return err
	})
	g.Go(func() (err error) {
		out.PaymentsByStatus, err = s.Repo.CountBy(gctx, &models.Payment{}, "status", "")
		return err
	})
	g.Go(func() (err error) {
		paid, err = s.Repo.PaymentsByStatus(gctx, "PAID")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	revenue := sums{}
	type providerAgg struct {
		n       int
		revenue sums
	}
	providers := map[string]*providerAgg{}
	trend := newWindow(s.now(), months)
	for _, p := range paid {
		revenue.add(p.Currency, p.Amount)
		agg, ok := providers[p.Provider]
		if !ok {
			agg = &providerAgg{revenue: sums{}}
			providers[p.Provider] = agg
		}
		agg.n++
		agg.revenue.add(p.Currency, p.Amount)

		at := p.CreatedAt
		if p.PaidAt != nil {
			at = *p.PaidAt
		}
		trend.add(at, p.Currency, p.Amount)
	}

	out.Revenue = revenue.list()
	out.ByProvider = make([]transport.ProviderRevenue, 0, len(providers))
	for name, agg := range providers {
		out.ByProvider = append(out.ByProvider, transport.ProviderRevenue{Provider: name, Payments: agg.n, Revenue: agg.revenue.list()})
	}
	sort.Slice(out.ByProvider, func(a, b int) bool { return out.ByProvider[a].Provider < out.ByProvider[b].Provider })
	out.MonthlyRevenue = trend.series()
	return out, nil
}

func (s *DashboardService) Overview(ctx context.Context, months int) (*transport.Overview, error) {
	trading, err := s.TradingAdmin(ctx, months)
	if err != nil {
		return nil, err
	}
	investment, err := s.InvestmentAdmin(ctx, months)
	if err != nil {
		return nil, err
	}
	billing, err := s.Billing(ctx, months)
	if err != nil {
		return nil, err
	}
	return &transport.Overview{Trading: trading, Investment: investment, Billing: billing}, nil
}
