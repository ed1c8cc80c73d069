package transport

type SubscribeRequest struct {
	PlanCode string `json:"plan_code"`
	Provider string `json:"provider"`
}

// CallbackRequest is what a payment provider posts once a checkout settles.
type CallbackRequest struct {
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status"`
}
