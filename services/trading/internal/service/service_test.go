package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/pkg/testutil"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]bool
	fail    error
}

func (f *fakeIndex) Index(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = true
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, nil, f.fail
	}
	ids := make([]uuid.UUID, 0, len(f.indexed))
	for id := range f.indexed {
		ids = append(ids, id)
	}
	return int64(len(ids)), ids, nil
}

type env struct {
	catalog   *CatalogService
	orders    *OrderService
	shipments *ShipmentService
	sellers   *SellerService
	cart      *CartService
	index     *fakeIndex
	pub       *events.MemoryPublisher

	seller, otherSeller, buyer, otherBuyer, admin Actor
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t, models.All()...)
	r := &repo.GormRepo{DB: db}
	pub := &events.MemoryPublisher{}
	fx := events.NewBestEffort(pub, "trading")
	idx := &fakeIndex{indexed: map[uuid.UUID]bool{}}
	orders := &OrderService{Repo: r, Events: fx}
	return &env{
		catalog:     &CatalogService{Repo: r, Index: idx, Events: fx},
		orders:      orders,
		shipments:   &ShipmentService{Repo: r, Events: fx},
		sellers:     &SellerService{Repo: r},
		cart:        &CartService{Repo: r, Orders: orders},
		index:       idx,
		pub:         pub,
		seller:      Actor{ID: uuid.New(), Role: roles.Seller},
		otherSeller: Actor{ID: uuid.New(), Role: roles.Seller},
		buyer:       Actor{ID: uuid.New(), Role: roles.Buyer},
		otherBuyer:  Actor{ID: uuid.New(), Role: roles.Buyer},
		admin:       Actor{ID: uuid.New(), Role: roles.TradingAdmin},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (e *env) approvedProduct(t *testing.T, name string) *models.Product {
	t.Helper()
	ctx := context.Background()
	p, err := e.catalog.CreateProduct(ctx, e.seller, transport.CreateProductRequest{
		Name: name,
		Prices: []transport.PriceInput{
			{Currency: "IDR", Amount: dec("100000")},
			{Currency: "usd", Amount: dec("10")},
		},
	})
	require.NoError(t, err)
	p, err = e.catalog.ApproveProduct(ctx, e.admin, p.ID)
	require.NoError(t, err)
	return p
}

func TestCatalog_CreateProduct_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  transport.CreateProductRequest
	}{
		{"no name", transport.CreateProductRequest{Prices: []transport.PriceInput{{Currency: "USD", Amount: dec("1")}}}},
		{"no prices", transport.CreateProductRequest{Name: "x"}},
		{"negative price", transport.CreateProductRequest{Name: "x", Prices: []transport.PriceInput{{Currency: "USD", Amount: dec("-1")}}}},
		{"bad currency", transport.CreateProductRequest{Name: "x", Prices: []transport.PriceInput{{Currency: "DOLLAR", Amount: dec("1")}}}},
		{"duplicate currency", transport.CreateProductRequest{Name: "x", Prices: []transport.PriceInput{
			{Currency: "USD", Amount: dec("1")}, {Currency: "usd", Amount: dec("2")},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.catalog.CreateProduct(ctx, e.seller, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := e.catalog.CreateProduct(ctx, e.buyer, transport.CreateProductRequest{Name: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCatalog_ApproveListsAndRejectExcludesPermanently(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	approved := e.approvedProduct(t, "Coffee beans")
	assert.Equal(t, models.ProductApproved, approved.Status)
	assert.True(t, e.index.indexed[approved.ID])

	_, err := e.catalog.ApproveProduct(ctx, e.admin, approved.ID)
	assert.ErrorIs(t, err, ErrConflict, "approving twice")

	rejected, err := e.catalog.CreateProduct(ctx, e.seller, transport.CreateProductRequest{
		Name: "Cocoa", Prices: []transport.PriceInput{{Currency: "USD", Amount: dec("3")}},
	})
	require.NoError(t, err)
	_, err = e.catalog.RejectProduct(ctx, e.admin, rejected.ID, "")
	assert.ErrorIs(t, err, ErrValidation, "reason required")
	_, err = e.catalog.RejectProduct(ctx, e.admin, rejected.ID, "blurry photos")
	require.NoError(t, err)
	_, err = e.catalog.ApproveProduct(ctx, e.admin, rejected.ID)
	assert.ErrorIs(t, err, ErrConflict)

	total, items, err := e.catalog.ListApproved(ctx, nil, 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, approved.ID, items[0].ID)
	assert.Len(t, items[0].Prices, 2)

	_, err = e.catalog.GetProduct(ctx, Actor{}, rejected.ID)
	assert.ErrorIs(t, err, ErrNotFound, "anonymous viewers only see approved products")
	got, err := e.catalog.GetProduct(ctx, e.seller, rejected.ID)
	require.NoError(t, err)
	assert.Equal(t, "blurry photos", got.RejectReason)

	assert.Equal(t, []string{
		events.ProductSubmitted, events.ProductApproved, events.ProductSubmitted, events.ProductRejected,
	}, e.pub.Types())
}

func TestCatalog_ModerationIsStaffOnly(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p, err := e.catalog.CreateProduct(ctx, e.seller, transport.CreateProductRequest{
		Name: "Tea", Prices: []transport.PriceInput{{Currency: "USD", Amount: dec("1")}},
	})
	require.NoError(t, err)

	_, err = e.catalog.ApproveProduct(ctx, e.seller, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, _, err = e.catalog.ListForModeration(ctx, e.buyer, "", 0, 10)
	assert.ErrorIs(t, err, ErrForbidden)

	total, items, err := e.catalog.ListForModeration(ctx, Actor{ID: uuid.New(), Role: roles.SuperAdmin}, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p.ID, items[0].ID)
}

func TestCatalog_UpdateProduct_OwnershipAndResubmission(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Rice")

	name := "Jasmine rice"
	_, err := e.catalog.UpdateProduct(ctx, e.otherSeller, p.ID, transport.PatchProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrForbidden)
	err = e.catalog.DeleteProduct(ctx, e.otherSeller, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	prices := []transport.PriceInput{{Currency: "EUR", Amount: dec("8")}}
	got, err := e.catalog.UpdateProduct(ctx, e.seller, p.ID, transport.PatchProductRequest{Name: &name, Prices: &prices})
	require.NoError(t, err)
	assert.Equal(t, "Jasmine rice", got.Name)
	assert.Equal(t, models.ProductPending, got.Status, "edits send approved products back to review")
	assert.False(t, e.index.indexed[p.ID])

	reloaded, err := e.catalog.GetProduct(ctx, e.seller, p.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Prices, 1)
	assert.Equal(t, "EUR", reloaded.Prices[0].Currency)

	_, err = e.catalog.UpdateProduct(ctx, e.seller, uuid.New(), transport.PatchProductRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.catalog.DeleteProduct(ctx, e.seller, p.ID))
	_, err = e.catalog.GetProduct(ctx, e.seller, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_Search_FallsBackWhenIndexFails(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Arabica coffee")
	e.approvedProduct(t, "Green tea")

	total, items, err := e.catalog.Search(ctx, "coffee", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total, "the fake index returns everything it holds")
	assert.Len(t, items, 2)

	e.index.mu.Lock()
	e.index.fail = errors.New("es down")
	e.index.mu.Unlock()

	total, items, err = e.catalog.Search(ctx, "COFFEE", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, p.ID, items[0].ID)
}

func TestOrder_CreateOrder_RequiresApprovedProductAndCurrency(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Nutmeg")

	_, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "EUR"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 0, Currency: "USD"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: uuid.New(), Quantity: 1, Currency: "USD"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.orders.CreateOrder(ctx, e.seller, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "USD"})
	assert.ErrorIs(t, err, ErrForbidden)

	pending, err := e.catalog.CreateProduct(ctx, e.seller, transport.CreateProductRequest{
		Name: "Pending", Prices: []transport.PriceInput{{Currency: "USD", Amount: dec("1")}},
	})
	require.NoError(t, err)
	_, err = e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: pending.ID, Quantity: 1, Currency: "USD"})
	assert.ErrorIs(t, err, ErrValidation)

	o, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 2, Currency: "idr", Notes: "urgent"})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, models.PriceEstimate, o.PriceMode)
	assert.True(t, o.TotalIn("IDR").Equal(dec("200000")))
	assert.Equal(t, events.OrderCreated, e.pub.Types()[len(e.pub.Types())-1])
}

func TestOrder_EndToEndFixedPricing(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Cinnamon")

	o, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 3, Currency: "USD"})
	require.NoError(t, err)
	assert.True(t, o.TotalIn("USD").Equal(dec("30")))

	_, err = e.orders.SetFixedPrices(ctx, e.buyer, o.ID, transport.SetFixedPricesRequest{
		Items: []transport.FixedPriceInput{{ItemID: o.Items[0].ID, FixedUnitPrice: dec("9"), Currency: "USD"}},
	})
	assert.ErrorIs(t, err, ErrForbidden)

	priced, err := e.orders.SetFixedPrices(ctx, e.admin, o.ID, transport.SetFixedPricesRequest{
		Items: []transport.FixedPriceInput{{ItemID: o.Items[0].ID, FixedUnitPrice: dec("9"), Currency: "USD"}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriceFixed, priced.PriceMode)
	assert.Equal(t, models.OrderPriceSet, priced.Status)
	assert.True(t, priced.TotalIn("USD").Equal(dec("27")))

	reloaded, err := e.orders.GetOrder(ctx, e.buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriceFixed, reloaded.PriceMode)
	assert.True(t, reloaded.TotalIn("USD").Equal(dec("27")))
	assert.True(t, reloaded.Items[0].UnitPriceEstimate.Equal(dec("10")), "estimate stays readable")
	require.True(t, reloaded.Items[0].FixedUnitPrice.Valid)
	assert.True(t, reloaded.Items[0].FixedUnitPrice.Decimal.Equal(dec("9")))

	types := e.pub.Types()
	assert.Contains(t, types, events.OrderPricesFixed)
	assert.Contains(t, types, events.OrderStatusChanged)
}

func TestOrder_SetFixedPrices_Validation(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Pepper")
	o, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "USD"})
	require.NoError(t, err)
	item := o.Items[0].ID

	tests := []struct {
		name  string
		items []transport.FixedPriceInput
	}{
		{"empty", nil},
		{"foreign item", []transport.FixedPriceInput{{ItemID: uuid.New(), FixedUnitPrice: dec("1")}}},
		{"negative", []transport.FixedPriceInput{{ItemID: item, FixedUnitPrice: dec("-1")}}},
		{"duplicate", []transport.FixedPriceInput{{ItemID: item, FixedUnitPrice: dec("1")}, {ItemID: item, FixedUnitPrice: dec("2")}}},
		{"bad currency", []transport.FixedPriceInput{{ItemID: item, FixedUnitPrice: dec("1"), Currency: "US"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.orders.SetFixedPrices(ctx, e.admin, o.ID, transport.SetFixedPricesRequest{Items: tt.items})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	unchanged, err := e.orders.GetOrder(ctx, e.admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriceEstimate, unchanged.PriceMode, "failed calls leave nothing behind")
	assert.False(t, unchanged.Items[0].FixedUnitPrice.Valid)

	_, err = e.orders.UpdateStatus(ctx, e.buyer, o.ID, models.OrderCancelled)
	require.NoError(t, err)
	_, err = e.orders.SetFixedPrices(ctx, e.admin, o.ID, transport.SetFixedPricesRequest{
		Items: []transport.FixedPriceInput{{ItemID: item, FixedUnitPrice: dec("1")}},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrder_DraftOrderTotalsPerCurrency(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	a := e.approvedProduct(t, "Cloves")
	b := e.approvedProduct(t, "Vanilla")

	o, err := e.orders.CreateDraftOrder(ctx, e.buyer, transport.CreateDraftOrderRequest{
		Items: []transport.DraftItem{
			{ProductID: a.ID, Quantity: 2, Currency: "USD"},
			{ProductID: b.ID, Quantity: 1, Currency: "IDR"},
			{ProductID: b.ID, Quantity: 4, Currency: "USD"},
		},
		Destination: transport.Destination{Country: "SG", City: "Singapore", Incoterm: "cif"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderDraft, o.Status)
	assert.Equal(t, "CIF", o.Incoterm)
	assert.Len(t, o.Items, 3)
	assert.True(t, o.TotalIn("USD").Equal(dec("60")))
	assert.True(t, o.TotalIn("IDR").Equal(dec("100000")))

	_, err = e.orders.CreateDraftOrder(ctx, e.buyer, transport.CreateDraftOrderRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrder_StatusTransitionsAndRoles(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Ginger")
	o, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "USD"})
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, e.otherBuyer, o.ID, models.OrderConfirmed)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.orders.GetOrder(ctx, e.otherBuyer, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.orders.UpdateStatus(ctx, e.buyer, o.ID, models.OrderShipped)
	assert.ErrorIs(t, err, ErrForbidden, "buyers cannot ship")
	_, err = e.orders.UpdateStatus(ctx, e.admin, o.ID, models.OrderCompleted)
	assert.ErrorIs(t, err, ErrConflict, "no skipping ahead")
	_, err = e.orders.UpdateStatus(ctx, e.admin, o.ID, models.OrderStatus("LOST"))
	assert.ErrorIs(t, err, ErrValidation)

	got, err := e.orders.UpdateStatus(ctx, e.buyer, o.ID, models.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, got.Status)

	got, err = e.orders.UpdateStatus(ctx, e.admin, o.ID, models.OrderShipped)
	require.NoError(t, err)
	got, err = e.orders.UpdateStatus(ctx, e.buyer, o.ID, models.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, got.Status)

	_, err = e.orders.UpdateStatus(ctx, e.admin, o.ID, models.OrderCancelled)
	assert.ErrorIs(t, err, ErrConflict, "completed is terminal")
}

func TestOrder_ListOrdersScopedByRole(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Salt")
	_, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "USD"})
	require.NoError(t, err)
	_, err = e.orders.CreateOrder(ctx, e.otherBuyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "USD"})
	require.NoError(t, err)

	total, _, err := e.orders.ListOrders(ctx, e.buyer, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	total, _, err = e.orders.ListOrders(ctx, e.seller, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	total, _, err = e.orders.ListOrders(ctx, e.otherSeller, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	total, items, err := e.orders.ListOrders(ctx, e.admin, models.OrderPending, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.True(t, items[0].TotalIn("USD").Equal(dec("10")), "totals are computed on list reads")
}

func confirmedOrder(t *testing.T, e *env) *models.Order {
	t.Helper()
	ctx := context.Background()
	p := e.approvedProduct(t, "Container goods")
	o, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 5, Currency: "USD"})
	require.NoError(t, err)
	o, err = e.orders.UpdateStatus(ctx, e.buyer, o.ID, models.OrderConfirmed)
	require.NoError(t, err)
	return o
}

func TestShipment_CreateRequiresConfirmedOrderOnce(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Chairs")
	pending, err := e.orders.CreateOrder(ctx, e.buyer, transport.CreateOrderRequest{ProductID: p.ID, Quantity: 1, Currency: "USD"})
	require.NoError(t, err)

	_, err = e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: pending.ID, Method: "AIR"})
	assert.ErrorIs(t, err, ErrConflict)

	o := confirmedOrder(t, e)
	_, err = e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: o.ID, Method: "TRAIN"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.shipments.CreateShipment(ctx, e.buyer, transport.CreateShipmentRequest{OrderID: o.ID, Method: "AIR"})
	assert.ErrorIs(t, err, ErrForbidden)

	sh, err := e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: o.ID, Method: "sea"})
	require.NoError(t, err)
	assert.Equal(t, models.MethodSea, sh.Method)
	assert.Equal(t, models.ShipmentPending, sh.Status)

	_, err = e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: o.ID, Method: "AIR"})
	assert.ErrorIs(t, err, ErrConflict)
}

func strp(s string) *string { return &s }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestShipment_SeaPricingOnlyForSea(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	air, err := e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: confirmedOrder(t, e).ID, Method: "AIR"})
	require.NoError(t, err)
	_, err = e.shipments.UpdateShipment(ctx, e.admin, air.ID, transport.PatchShipmentRequest{ContainerType: strp("40HC")})
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := e.shipments.UpdateShipment(ctx, e.admin, air.ID, transport.PatchShipmentRequest{
		Carrier: strp("DHL"), TrackingNumber: strp("JD0001"),
	})
	require.NoError(t, err)
	assert.Equal(t, "DHL", updated.Carrier)

	sea, err := e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: confirmedOrder(t, e).ID, Method: "SEA"})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  transport.PatchShipmentRequest
	}{
		{"bad mode", transport.PatchShipmentRequest{SeaPricingMode: strp("WEIGHT")}},
		{"bad container", transport.PatchShipmentRequest{ContainerType: strp("10FT")}},
		{"zero cbm", transport.PatchShipmentRequest{CBMVolume: decp("0")}},
		{"negative freight", transport.PatchShipmentRequest{FreightCost: decp("-5"), FreightCurrency: strp("USD")}},
		{"freight without currency", transport.PatchShipmentRequest{FreightCost: decp("500")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.shipments.UpdateShipment(ctx, e.admin, sea.ID, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	got, err := e.shipments.UpdateShipment(ctx, e.admin, sea.ID, transport.PatchShipmentRequest{
		SeaPricingMode:  strp("container"),
		ContainerType:   strp("40hc"),
		FreightCost:     decp("1800"),
		FreightCurrency: strp("usd"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SeaByContainer, got.SeaPricingMode)
	assert.Equal(t, "40HC", got.ContainerType)
	assert.Equal(t, "USD", got.FreightCurrency)
	assert.True(t, got.FreightCost.Decimal.Equal(dec("1800")))

	got, err = e.shipments.UpdateShipment(ctx, e.admin, sea.ID, transport.PatchShipmentRequest{
		SeaPricingMode: strp("CBM"), CBMVolume: decp("12.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "", got.ContainerType, "switching to CBM drops the container type")
	assert.True(t, got.CBMVolume.Decimal.Equal(dec("12.5")))
}

func TestShipment_StatusMovesOrderToShipped(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	o := confirmedOrder(t, e)
	sh, err := e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: o.ID, Method: "EXPRESS"})
	require.NoError(t, err)

	_, err = e.shipments.UpdateShipmentStatus(ctx, e.admin, sh.ID, models.ShipmentDelivered)
	assert.ErrorIs(t, err, ErrConflict, "cannot skip IN_TRANSIT")

	sh, err = e.shipments.UpdateShipmentStatus(ctx, e.admin, sh.ID, models.ShipmentInTransit)
	require.NoError(t, err)
	assert.NotNil(t, sh.ShippedAt)

	got, err := e.orders.GetOrder(ctx, e.buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)

	sh, err = e.shipments.UpdateShipmentStatus(ctx, e.admin, sh.ID, models.ShipmentDelivered)
	require.NoError(t, err)
	assert.NotNil(t, sh.DeliveredAt)

	viewed, err := e.shipments.ShipmentForOrder(ctx, e.buyer, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentDelivered, viewed.Status)
	_, err = e.shipments.GetShipment(ctx, e.otherBuyer, sh.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestShipment_StatusRejectsUnknownAndCancelledOrders(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	o := confirmedOrder(t, e)
	sh, err := e.shipments.CreateShipment(ctx, e.admin, transport.CreateShipmentRequest{OrderID: o.ID, Method: "AIR"})
	require.NoError(t, err)

	_, err = e.shipments.UpdateShipmentStatus(ctx, e.admin, sh.ID, models.ShipmentStatus("LOST"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.orders.UpdateStatus(ctx, e.admin, o.ID, models.OrderCancelled)
	require.NoError(t, err)

	_, err = e.shipments.UpdateShipmentStatus(ctx, e.admin, sh.ID, models.ShipmentInTransit)
	assert.ErrorIs(t, err, ErrConflict)

	got, err := e.shipments.GetShipment(ctx, e.admin, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShipmentPending, got.Status)
	assert.Nil(t, got.ShippedAt)
}

func TestSeller_UpsertProfile(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()

	_, err := e.sellers.UpsertProfile(ctx, e.buyer, transport.SellerProfileRequest{CompanyName: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = e.sellers.UpsertProfile(ctx, e.seller, transport.SellerProfileRequest{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.sellers.GetProfile(ctx, e.seller.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := e.sellers.UpsertProfile(ctx, e.seller, transport.SellerProfileRequest{CompanyName: "PT Rempah", Country: "ID"})
	require.NoError(t, err)
	second, err := e.sellers.UpsertProfile(ctx, e.seller, transport.SellerProfileRequest{CompanyName: "PT Rempah Jaya", Country: "ID"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "PT Rempah Jaya", second.CompanyName)
}

func TestCart_CheckoutBuildsDraftAndClearsCart(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Candlenut")

	_, err := e.cart.Checkout(ctx, e.buyer, transport.CheckoutRequest{})
	assert.ErrorIs(t, err, ErrValidation, "empty cart")

	_, err = e.cart.AddToCart(ctx, e.buyer, transport.AddToCartRequest{ProductID: p.ID, Currency: "JPY", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.cart.AddToCart(ctx, e.buyer, transport.AddToCartRequest{ProductID: p.ID, Currency: "USD", Quantity: 2})
	require.NoError(t, err)
	line, err := e.cart.AddToCart(ctx, e.buyer, transport.AddToCartRequest{ProductID: p.ID, Currency: "USD", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity, "same product and currency merges")
	_, err = e.cart.AddToCart(ctx, e.buyer, transport.AddToCartRequest{ProductID: p.ID, Currency: "IDR", Quantity: 1})
	require.NoError(t, err)

	o, err := e.cart.Checkout(ctx, e.buyer, transport.CheckoutRequest{Destination: transport.Destination{Country: "AU"}})
	require.NoError(t, err)
	assert.Equal(t, models.OrderDraft, o.Status)
	assert.Len(t, o.Items, 2)
	assert.True(t, o.TotalIn("USD").Equal(dec("30")))
	assert.True(t, o.TotalIn("IDR").Equal(dec("100000")))

	items, err := e.cart.GetCart(ctx, e.buyer)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCart_CheckoutRollsBackOnInvalidLine(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	ctx := context.Background()
	p := e.approvedProduct(t, "Turmeric")

	_, err := e.cart.AddToCart(ctx, e.buyer, transport.AddToCartRequest{ProductID: p.ID, Currency: "USD", Quantity: 1})
	require.NoError(t, err)

	name := "Turmeric powder"
	_, err = e.catalog.UpdateProduct(ctx, e.seller, p.ID, transport.PatchProductRequest{Name: &name})
	require.NoError(t, err)

	_, err = e.cart.Checkout(ctx, e.buyer, transport.CheckoutRequest{})
	assert.ErrorIs(t, err, ErrValidation, "product went back to review")

	items, err := e.cart.GetCart(ctx, e.buyer)
	require.NoError(t, err)
	assert.Len(t, items, 1, "cart is untouched")
}
