package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contanube/contanube/internal/billing"
	_ "github.com/contanube/contanube/testing"
)

func TestBuildGatewayForm(t *testing.T) {
	cfg := billing.GatewayConfig{
		Business:   "pagos@contanube.example",
		GatewayURL: "https://www.paypal.com/cgi-bin/webscr",
		BaseURL:    "https://app.contanube.example/",
	}
	now := time.UnixMilli(1714500000000)
	plan := billing.PlanByID("medium")

	fields := billing.BuildGatewayForm(cfg, 42, plan, now)

	assert.Equal(t, "_xclick", fields["cmd"])
	assert.Equal(t, "pagos@contanube.example", fields["business"])
	assert.Equal(t, "Contanube - Plan Medio (1 mes)", fields["item_name"])
	assert.Equal(t, "medium_monthly", fields["item_number"])
	assert.Equal(t, "25", fields["amount"])
	assert.Equal(t, "EUR", fields["currency_code"])
	assert.Equal(t, "https://app.contanube.example/?payment=success&plan=medium", fields["return"])
	assert.Equal(t, "https://app.contanube.example/?payment=cancelled", fields["cancel_return"])
	assert.Equal(t, "https://app.contanube.example"+billing.WebhookPath, fields["notify_url"])
	assert.Equal(t, "user_42_plan_medium_onetime_1714500000000", fields["custom"])
}

func TestParseCustomID(t *testing.T) {
	userID, planID, err := billing.ParseCustomID("user_42_plan_medium_onetime_1714500000000")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "medium", planID)

	_, _, err = billing.ParseCustomID("not_a_custom_id")
	assert.Error(t, err)
	_, _, err = billing.ParseCustomID("user_abc_plan_medium_onetime_1")
	assert.Error(t, err)
	_, _, err = billing.ParseCustomID("")
	assert.Error(t, err)
}

func TestCustomIDRoundTrip(t *testing.T) {
	cfg := billing.GatewayConfig{BaseURL: "http://localhost:8080"}
	now := time.Now()
	fields := billing.BuildGatewayForm(cfg, 7, billing.PlanByID("premium"), now)

	userID, planID, err := billing.ParseCustomID(fields["custom"])
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.Equal(t, "premium", planID)
}
