package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GatewayConfig carries the PayPal legacy checkout settings.
type GatewayConfig struct {
	Business   string
	GatewayURL string
	BaseURL    string
}

// BuildGatewayForm assembles the hidden form fields for a PayPal _xclick
// checkout. The custom field encodes user and plan so the webhook can map
// the capture back to an account.
func BuildGatewayForm(cfg GatewayConfig, userID int64, plan Plan, now time.Time) map[string]string {
	base := strings.TrimRight(cfg.BaseURL, "/")
	return map[string]string{
		"cmd":           "_xclick",
		"business":      cfg.Business,
		"item_name":     fmt.Sprintf("Contanube - Plan %s (1 mes)", plan.Name),
		"item_number":   plan.ID + "_monthly",
		"amount":        strconv.FormatFloat(plan.Price, 'f', -1, 64),
		"currency_code": plan.Currency,
		"return":        base + "/?payment=success&plan=" + plan.ID,
		"cancel_return": base + "/?payment=cancelled",
		"notify_url":    base + WebhookPath,
		"custom":        fmt.Sprintf("user_%d_plan_%s_onetime_%d", userID, plan.ID, now.UnixMilli()),
	}
}
