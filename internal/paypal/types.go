package paypal

const (
	IntentCapture      = "CAPTURE"
	ShippingNoShipping = "NO_SHIPPING"

	relApprove     = "approve"
	relPayerAction = "payer-action"
)

// OrderRequest is the body of POST /v2/checkout/orders.
type OrderRequest struct {
	Intent             string             `json:"intent"`
	PurchaseUnits      []PurchaseUnit     `json:"purchase_units"`
	ApplicationContext ApplicationContext `json:"application_context"`
}

type PurchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	Description string `json:"description,omitempty"`
	Amount      Amount `json:"amount"`
}

type Amount struct {
	CurrencyCode string     `json:"currency_code"`
	Value        string     `json:"value"`
	Breakdown    *Breakdown `json:"breakdown,omitempty"`
}

type Money struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type Breakdown struct {
	ItemTotal Money `json:"item_total"`
	TaxTotal  Money `json:"tax_total"`
}

type ApplicationContext struct {
	CancelURL          string `json:"cancel_url"`
	ReturnURL          string `json:"return_url"`
	BrandName          string `json:"brand_name,omitempty"`
	ShippingPreference string `json:"shipping_preference,omitempty"`
}

// Order is the subset of the provider's order representation we read.
type Order struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []Link `json:"links"`
}

type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method,omitempty"`
}

// ApprovalURL returns the link the buyer must visit to approve the order.
// The link is looked up by relation; its position in Links is not stable.
func (o Order) ApprovalURL() (string, bool) {
	for _, l := range o.Links {
		if (l.Rel == relApprove || l.Rel == relPayerAction) && l.Href != "" {
			return l.Href, true
		}
	}

	return "", false
}

// Response is any HTTP answer from the provider, successful or not.
type Response struct {
	StatusCode int
	Result     Order
	DebugID    string
	Raw        []byte
}

// OK reports a 200 or 201 answer.
func (r *Response) OK() bool {
	return r != nil && (r.StatusCode == 200 || r.StatusCode == 201)
}
