package dto

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SubscribeRequest struct {
	FirstName string `form:"first_name" validate:"required"`
	LastName  string `form:"last_name" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	PlanID    uint   `form:"plan_id" validate:"required"`
	Phone     string `form:"phone"`
	Address   string `form:"address"`
	City      string `form:"city"`
}

// Notification carries the url-encoded fields PayHere posts to the notify
// URL. Everything stays a string until the signature has been verified.
type Notification struct {
	MerchantID      string `form:"merchant_id"`
	OrderID         string `form:"order_id"`
	PayhereAmount   string `form:"payhere_amount"`
	PayhereCurrency string `form:"payhere_currency"`
	StatusCode      string `form:"status_code"`
	Md5Sig          string `form:"md5sig"`
	SubscriptionID  string `form:"subscription_id"`
}

// FormField keeps the checkout form fields ordered the way the provider
// documents them.
type FormField struct {
	Name  string
	Value string
}

type CheckoutRedirect struct {
	CheckoutURL string
	OrderID     string
	Fields      []FormField
}

type WebhookAck struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type DataResponse struct {
	Msg       string `json:"msg"`
	QuotaLeft int64  `json:"quota_left"`
}
