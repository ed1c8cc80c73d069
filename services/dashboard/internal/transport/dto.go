package transport

import "github.com/shopspring/decimal"

// Amounts are always kept per currency; there is no conversion between them.
type CurrencyAmount struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// MonthPoint is one calendar month (YYYY-MM, UTC) of a trend series.
type MonthPoint struct {
	Month  string           `json:"month"`
	Count  int              `json:"count"`
	Totals []CurrencyAmount `json:"totals"`
}

type InvestorDashboard struct {
	InvestmentsByStatus map[string]int64 `json:"investments_by_status"`
	ProjectsBacked      int              `json:"projects_backed"`
	Invested            []CurrencyAmount `json:"invested"`
	PendingInvested     []CurrencyAmount `json:"pending_invested"`
	DividendsReceived   []CurrencyAmount `json:"dividends_received"`
	MonthlyInvested     []MonthPoint     `json:"monthly_invested"`
	MonthlyDividends    []MonthPoint     `json:"monthly_dividends"`
}

type ProjectProgress struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Status   string          `json:"status"`
	Currency string          `json:"currency"`
	Target   decimal.Decimal `json:"target"`
	Raised   decimal.Decimal `json:"raised"`
	Percent  decimal.Decimal `json:"percent"`
}

type OwnerDashboard struct {
	ProjectsByStatus   map[string]int64  `json:"projects_by_status"`
	Raised             []CurrencyAmount  `json:"raised"`
	Target             []CurrencyAmount  `json:"target"`
	Investors          int               `json:"investors"`
	PendingInvestments int               `json:"pending_investments"`
	DividendsPaid      []CurrencyAmount  `json:"dividends_paid"`
	MonthlyRaised      []MonthPoint      `json:"monthly_raised"`
	Projects           []ProjectProgress `json:"projects"`
}

type BuyerDashboard struct {
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	Spend          []CurrencyAmount `json:"spend"`
	OpenValue      []CurrencyAmount `json:"open_value"`
	MonthlyOrders  []MonthPoint     `json:"monthly_orders"`
}

type ProductSales struct {
	ProductID string           `json:"product_id"`
	Name      string           `json:"name"`
	Units     int64            `json:"units"`
	Revenue   []CurrencyAmount `json:"revenue"`
}

type SellerDashboard struct {
	ProductsByStatus map[string]int64 `json:"products_by_status"`
	Orders           int              `json:"orders"`
	UnitsSold        int64            `json:"units_sold"`
	Revenue          []CurrencyAmount `json:"revenue"`
	MonthlyRevenue   []MonthPoint     `json:"monthly_revenue"`
	TopProducts      []ProductSales   `json:"top_products"`
}

type TradingAdminDashboard struct {
	UsersByRole      map[string]int64 `json:"users_by_role"`
	ProductsByStatus map[string]int64 `json:"products_by_status"`
	OrdersByStatus   map[string]int64 `json:"orders_by_status"`
	AwaitingPrice    int64            `json:"awaiting_price"`
	GMV              []CurrencyAmount `json:"gmv"`
	MonthlyGMV       []MonthPoint     `json:"monthly_gmv"`
}

type InvestmentAdminDashboard struct {
	UsersByRole          map[string]int64 `json:"users_by_role"`
	ProjectsByStatus     map[string]int64 `json:"projects_by_status"`
	InvestmentsByStatus  map[string]int64 `json:"investments_by_status"`
	Raised               []CurrencyAmount `json:"raised"`
	DividendsDistributed []CurrencyAmount `json:"dividends_distributed"`
	MonthlyInvestments   []MonthPoint     `json:"monthly_investments"`
}

type ProviderRevenue struct {
	Provider string           `json:"provider"`
	Payments int              `json:"payments"`
	Revenue  []CurrencyAmount `json:"revenue"`
}

type BillingDashboard struct {
	SubscriptionsByStatus map[string]int64  `json:"subscriptions_by_status"`
	PaymentsByStatus      map[string]int64  `json:"payments_by_status"`
	Revenue               []CurrencyAmount  `json:"revenue"`
	ByProvider            []ProviderRevenue `json:"by_provider"`
	MonthlyRevenue        []MonthPoint      `json:"monthly_revenue"`
}

// Overview is what a super admin sees on the landing page.
type Overview struct {
	Trading    *TradingAdminDashboard    `json:"trading"`
	Investment *InvestmentAdminDashboard `json:"investment"`
	Billing    *BillingDashboard         `json:"billing"`
}
