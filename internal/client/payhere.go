package client

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"payhere-integration-demo/internal/config"

	"github.com/shopspring/decimal"
)

// PayhereClient implements the PayHere merchant wire contract. The provider
// has no server-side API: checkout is a signed browser form POST and payment
// outcomes arrive on the notify URL, so this client only computes and checks
// the keyed digests both directions.
type PayhereClient interface {
	MerchantID() string
	CheckoutURL() string

	// CheckoutHash signs an outbound checkout request:
	// UPPER(md5(merchant_id + order_id + amount_2dp + currency + UPPER(md5(secret)))).
	CheckoutHash(orderID string, amount decimal.Decimal, currency string) string

	// VerifyNotificationSig recomputes the inbound digest over the claimed
	// fields exactly as received and compares it against md5sig in constant
	// time, case-insensitively. On false, no other field may be trusted.
	VerifyNotificationSig(orderID, amount, currency, statusCode, md5sig string) bool
}

type payhereClientImpl struct {
	merchantID   string
	checkoutURL  string
	hashedSecret string // UPPER(md5(merchant_secret)), precomputed
}

func NewPayhereClient(payhereCfg *config.PayHere) PayhereClient {
	return &payhereClientImpl{
		merchantID:   payhereCfg.MerchantID,
		checkoutURL:  payhereCfg.CheckoutURL(),
		hashedSecret: md5Upper(payhereCfg.MerchantSecret),
	}
}

func (c *payhereClientImpl) MerchantID() string {
	return c.merchantID
}

func (c *payhereClientImpl) CheckoutURL() string {
	return c.checkoutURL
}

func (c *payhereClientImpl) CheckoutHash(orderID string, amount decimal.Decimal, currency string) string {
	return md5Upper(c.merchantID + orderID + FormatAmount(amount) + currency + c.hashedSecret)
}

func (c *payhereClientImpl) VerifyNotificationSig(orderID, amount, currency, statusCode, md5sig string) bool {
	local := md5Upper(c.merchantID + orderID + amount + currency + statusCode + c.hashedSecret)
	claimed := strings.ToUpper(md5sig)
	return subtle.ConstantTimeCompare([]byte(local), []byte(claimed)) == 1
}

// FormatAmount renders an amount with exactly two decimal places, e.g.
// "1000.00". PayHere signs over this exact string; any other rendering
// invalidates the digest.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}
