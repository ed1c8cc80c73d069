package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PriceInput struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

type CreateProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Unit          string          `json:"unit"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	VolumeCBM     decimal.Decimal `json:"volume_cbm"`
	CoverImageURL string          `json:"cover_image_url"`
	PreviewImages []string        `json:"preview_images"`
	Prices        []PriceInput    `json:"prices"`
}

type PatchProductRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Unit          *string          `json:"unit"`
	WeightKg      *decimal.Decimal `json:"weight_kg"`
	VolumeCBM     *decimal.Decimal `json:"volume_cbm"`
	CoverImageURL *string          `json:"cover_image_url"`
	PreviewImages *[]string        `json:"preview_images"`
	Prices        *[]PriceInput    `json:"prices"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type CreateOrderRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Currency  string    `json:"currency"`
	Notes     string    `json:"notes"`
}

type Destination struct {
	Country    string `json:"country"`
	State      string `json:"state"`
	City       string `json:"city"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	Incoterm   string `json:"incoterm"`
}

type DraftItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Currency  string    `json:"currency"`
}

type CreateDraftOrderRequest struct {
	Items       []DraftItem `json:"items"`
	Destination Destination `json:"destination"`
	Notes       string      `json:"notes"`
}

type FixedPriceInput struct {
	ItemID         uuid.UUID       `json:"item_id"`
	FixedUnitPrice decimal.Decimal `json:"fixed_unit_price"`
	Currency       string          `json:"currency"`
}

type SetFixedPricesRequest struct {
	Items []FixedPriceInput `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateShipmentRequest struct {
	OrderID uuid.UUID `json:"order_id"`
	Method  string    `json:"method"`
}

type PatchShipmentRequest struct {
	Carrier         *string          `json:"carrier"`
	TrackingNumber  *string          `json:"tracking_number"`
	TrackingURL     *string          `json:"tracking_url"`
	SeaPricingMode  *string          `json:"sea_pricing_mode"`
	ContainerType   *string          `json:"container_type"`
	CBMVolume       *decimal.Decimal `json:"cbm_volume"`
	FreightCost     *decimal.Decimal `json:"freight_cost"`
	FreightCurrency *string          `json:"freight_currency"`
}

type SellerProfileRequest struct {
	CompanyName       string `json:"company_name"`
	LogoURL           string `json:"logo_url"`
	Description       string `json:"description"`
	Country           string `json:"country"`
	Address           string `json:"address"`
	CompanyProfileURL string `json:"company_profile_url"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Currency  string    `json:"currency"`
	Quantity  int       `json:"quantity"`
}

type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutRequest struct {
	Destination Destination `json:"destination"`
	Notes       string      `json:"notes"`
}
