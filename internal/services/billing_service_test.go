package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/config"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

const webhookTestSecret = "whsec_test_secret"

func newTestBillingService(db *fakeDB) *BillingService {
	cfg := &config.Config{
		StripeWebhookSecret: webhookTestSecret,
		FrontendURL:         "https://app.example.com",
		SoloMonthlyPriceID:  "price_solo",
		EntMonthlyPriceID:   "price_ent_month",
		EntYearlyPriceID:    "price_ent_year",
	}
	return NewBillingService(db, cfg, zap.NewNop())
}

// signPayload produces a Stripe-Signature header value for the payload, the
// same scheme ConstructEvent verifies.
func signPayload(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookTestSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func webhookPayload(eventType, object string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","api_version":%q,"type":%q,"data":{"object":%s}}`,
		stripe.APIVersion, eventType, object))
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	svc := newTestBillingService(newFakeDB())

	payload := webhookPayload("customer.subscription.updated", `{"id":"sub_1"}`)
	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, apperrors.ErrBadSignature)
}

func TestWebhookIgnoresUnknownEvent(t *testing.T) {
	svc := newTestBillingService(newFakeDB())

	payload := webhookPayload("invoice.finalized", `{"id":"in_1"}`)
	err := svc.HandleWebhook(context.Background(), payload, signPayload(payload))
	assert.NoError(t, err)
}

func TestWebhookCheckoutCompletedLinksCustomer(t *testing.T) {
	db := newFakeDB()
	db.addUser(&models.User{ID: testUser, Email: "founder@example.com"})
	svc := newTestBillingService(db)

	payload := webhookPayload("checkout.session.completed",
		fmt.Sprintf(`{"id":"cs_1","client_reference_id":%q,"customer":"cus_123"}`, testUser))
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, signPayload(payload)))

	user, err := db.GetUserByID(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", user.StripeCustomerID)
}

func TestWebhookCheckoutCompletedUnknownUserIsIgnored(t *testing.T) {
	db := newFakeDB()
	svc := newTestBillingService(db)

	payload := webhookPayload("checkout.session.completed",
		`{"id":"cs_1","client_reference_id":"nobody","customer":"cus_123"}`)
	assert.NoError(t, svc.HandleWebhook(context.Background(), payload, signPayload(payload)))
}

func TestWebhookSubscriptionUpdatedMirrorsUser(t *testing.T) {
	db := newFakeDB()
	db.addUser(&models.User{ID: testUser, StripeCustomerID: "cus_123"})
	svc := newTestBillingService(db)

	periodEnd := time.Now().Add(30 * 24 * time.Hour).Unix()
	payload := webhookPayload("customer.subscription.updated", fmt.Sprintf(
		`{"id":"sub_1","status":"active","customer":"cus_123","current_period_end":%d,"items":{"data":[{"price":{"id":"price_solo"}}]}}`,
		periodEnd))
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, signPayload(payload)))

	user, err := db.GetUserByID(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "sub_1", user.StripeSubscriptionID)
	assert.Equal(t, "active", user.SubscriptionStatus)
	assert.Equal(t, "solo_monthly", user.SubscriptionPlan)
	require.NotNil(t, user.CurrentPeriodEnd)
	assert.Equal(t, periodEnd, user.CurrentPeriodEnd.Unix())
}

func TestWebhookSubscriptionDeletedClearsMirror(t *testing.T) {
	db := newFakeDB()
	db.addUser(&models.User{
		ID: testUser, StripeCustomerID: "cus_123", StripeSubscriptionID: "sub_1",
		SubscriptionPlan: "solo_monthly", SubscriptionStatus: "active",
	})
	svc := newTestBillingService(db)

	payload := webhookPayload("customer.subscription.deleted",
		`{"id":"sub_1","status":"canceled","customer":"cus_123"}`)
	require.NoError(t, svc.HandleWebhook(context.Background(), payload, signPayload(payload)))

	user, err := db.GetUserByID(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, "canceled", user.SubscriptionStatus)
	assert.Equal(t, "cus_123", user.StripeCustomerID)
	assert.Empty(t, user.StripeSubscriptionID)
}
