package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/tradefund/pkg/authclient"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	authmw "github.com/Skotchmaster/tradefund/pkg/middleware/auth"
	"github.com/Skotchmaster/tradefund/pkg/roles"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	OrderHandler    *OrderHTTP
	ShipmentHandler *ShipmentHTTP
	SellerHandler   *SellerHTTP
	CartHandler     *CartHTTP
	JWTSecret       []byte
	AuthClient      *authclient.Client
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	metrics.Register(e)

	authMW := authmw.NewAutoRefreshMiddleware(d.JWTSecret, d.AuthClient)
	seller := authMW.RequireRoles(roles.Seller)
	sellerOrStaff := authMW.RequireRoles(append([]string{roles.Seller}, roles.TradingStaff...)...)
	buyer := authMW.RequireRoles(roles.Buyer)
	staff := authMW.RequireRoles(roles.TradingStaff...)

	t := e.Group("/trading")

	products := t.Group("/products")
	products.GET("", d.CatalogHandler.ListApproved)
	products.GET("/search", d.CatalogHandler.Search)
	products.GET("/mine", d.CatalogHandler.ListMine, seller)
	products.GET("/:id", d.CatalogHandler.GetProduct, authMW.OptionalAuth)
	products.POST("", d.CatalogHandler.CreateProduct, seller)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct, sellerOrStaff)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, sellerOrStaff)

	orders := t.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, buyer)
	orders.POST("/draft", d.OrderHandler.CreateDraftOrder, buyer)
	orders.GET("", d.OrderHandler.ListOrders, authMW.RequireAuth)
	orders.GET("/:id", d.OrderHandler.GetOrder, authMW.RequireAuth)
	orders.GET("/:id/shipment", d.OrderHandler.GetShipment, authMW.RequireAuth)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus, authMW.RequireAuth)
	orders.PUT("/:id/fixed-prices", d.OrderHandler.SetFixedPrices, staff)

	shipments := t.Group("/shipments")
	shipments.POST("", d.ShipmentHandler.CreateShipment, staff)
	shipments.GET("/:id", d.ShipmentHandler.GetShipment, authMW.RequireAuth)
	shipments.PATCH("/:id", d.ShipmentHandler.PatchShipment, staff)
	shipments.PATCH("/:id/status", d.ShipmentHandler.UpdateStatus, staff)

	t.GET("/seller-profile", d.SellerHandler.GetMine, seller)
	t.PUT("/seller-profile", d.SellerHandler.PutMine, seller)
	t.GET("/sellers/:id/profile", d.SellerHandler.GetPublic)

	cart := t.Group("/cart")
	cart.GET("", d.CartHandler.GetCart, buyer)
	cart.DELETE("", d.CartHandler.ClearCart, buyer)
	cart.POST("/items", d.CartHandler.AddToCart, buyer)
	cart.PATCH("/items/:id", d.CartHandler.SetQuantity, buyer)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem, buyer)
	cart.POST("/checkout", d.CartHandler.Checkout, buyer)

	admin := t.Group("/admin")
	admin.GET("/products", d.CatalogHandler.ListForModeration, staff)
	admin.POST("/products/:id/approve", d.CatalogHandler.ApproveProduct, staff)
	admin.POST("/products/:id/reject", d.CatalogHandler.RejectProduct, staff)
}
