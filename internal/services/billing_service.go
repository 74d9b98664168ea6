package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v76"
	portalsession "github.com/stripe/stripe-go/v76/billingportal/session"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/subscription"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/config"
	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// Plan is one purchasable subscription tier.
type Plan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Interval string `json:"interval"`
	PriceID  string `json:"-"`
}

// SubscriptionStatus is the billing view of a user returned to clients.
type SubscriptionStatus struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	TrialEnd         *time.Time `json:"trial_end,omitempty"`
}

// BillingService fronts the payment provider. User rows only mirror provider
// state; every mutation flows through checkout or webhook events.
type BillingService struct {
	db            core.DbClient
	logger        *zap.Logger
	frontendURL   string
	webhookSecret string
	plans         []Plan
}

func NewBillingService(db core.DbClient, cfg *config.Config, logger *zap.Logger) *BillingService {
	stripe.Key = cfg.StripeSecretKey
	return &BillingService{
		db:            db,
		logger:        logger.Named("billing"),
		frontendURL:   cfg.FrontendURL,
		webhookSecret: cfg.StripeWebhookSecret,
		plans: []Plan{
			{ID: "solo_monthly", Name: "Solo", Interval: "month", PriceID: cfg.SoloMonthlyPriceID},
			{ID: "enterprise_monthly", Name: "Enterprise", Interval: "month", PriceID: cfg.EntMonthlyPriceID},
			{ID: "enterprise_yearly", Name: "Enterprise", Interval: "year", PriceID: cfg.EntYearlyPriceID},
		},
	}
}

func (s *BillingService) ListPlans() []Plan {
	return s.plans
}

func (s *BillingService) planByID(id string) *Plan {
	for i := range s.plans {
		if s.plans[i].ID == id {
			return &s.plans[i]
		}
	}
	return nil
}

func (s *BillingService) planByPriceID(priceID string) string {
	for _, p := range s.plans {
		if p.PriceID == priceID {
			return p.ID
		}
	}
	return ""
}

// ensureCustomer returns the user's provider customer id, creating the
// customer on first use.
func (s *BillingService) ensureCustomer(ctx context.Context, user *models.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}
	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.FirstName + " " + user.LastName),
		Metadata: map[string]string{
			"user_id": user.ID,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := s.db.SetStripeCustomerID(ctx, user.ID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a subscription checkout and returns the hosted
// payment page URL.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID, planID string) (string, error) {
	plan := s.planByID(planID)
	if plan == nil || plan.PriceID == "" {
		return "", fmt.Errorf("%w: unknown plan %q", apperrors.ErrNotFound, planID)
	}

	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperrors.ErrNotFound
	}

	custID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	sess, err := session.New(&stripe.CheckoutSessionParams{
		Customer:          stripe.String(custID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(user.ID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(plan.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(s.frontendURL + "/billing/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.frontendURL + "/billing/cancelled"),
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession returns a URL to the provider's self-service portal.
func (s *BillingService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil || user.StripeCustomerID == "" {
		return "", apperrors.ErrNotFound
	}

	sess, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(s.frontendURL + "/billing"),
	})
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return sess.URL, nil
}

// CancelSubscription flags the subscription to end at the period boundary.
// The mirror is updated by the subsequent webhook, not here.
func (s *BillingService) CancelSubscription(ctx context.Context, userID string) error {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.StripeSubscriptionID == "" {
		return apperrors.ErrNotFound
	}

	_, err = subscription.Update(user.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}

// GetStatus reports the mirrored subscription state.
func (s *BillingService) GetStatus(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.ErrNotFound
	}

	status := user.SubscriptionStatus
	if status == "" {
		status = "none"
	}
	return &SubscriptionStatus{
		Plan:             user.SubscriptionPlan,
		Status:           status,
		CurrentPeriodEnd: user.CurrentPeriodEnd,
		TrialEnd:         user.TrialEnd,
	}, nil
}

// HandleWebhook verifies and applies one provider event. Unknown event types
// are acknowledged and ignored.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBadSignature, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			return fmt.Errorf("decode checkout event: %w", err)
		}
		return s.applyCheckout(ctx, &cs)

	case "customer.subscription.created", "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription event: %w", err)
		}
		return s.applySubscription(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription event: %w", err)
		}
		return s.clearSubscription(ctx, &sub)

	case "invoice.payment_failed":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("decode invoice event: %w", err)
		}
		return s.markPastDue(ctx, &inv)

	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}
}

// applyCheckout links the provider customer to the user who completed the
// checkout, identified by the client_reference_id set when the session was
// created. The subscription mirror itself arrives on the subscription events.
func (s *BillingService) applyCheckout(ctx context.Context, cs *stripe.CheckoutSession) error {
	if cs.ClientReferenceID == "" || cs.Customer == nil {
		return nil
	}
	user, err := s.db.GetUserByID(ctx, cs.ClientReferenceID)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Warn("checkout completed for unknown user",
			zap.String("user_id", cs.ClientReferenceID))
		return nil
	}
	if user.StripeCustomerID == cs.Customer.ID {
		return nil
	}

	s.logger.Info("checkout completed",
		zap.String("user_id", user.ID),
		zap.String("customer_id", cs.Customer.ID))
	return s.db.SetStripeCustomerID(ctx, user.ID, cs.Customer.ID)
}

func (s *BillingService) userForCustomer(ctx context.Context, customerID string) (*models.User, error) {
	if customerID == "" {
		return nil, nil
	}
	return s.db.GetUserByStripeCustomerID(ctx, customerID)
}

func (s *BillingService) applySubscription(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil {
		return fmt.Errorf("subscription %s has no customer", sub.ID)
	}
	user, err := s.userForCustomer(ctx, sub.Customer.ID)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.Warn("webhook for unknown customer", zap.String("customer_id", sub.Customer.ID))
		return nil
	}

	planID := ""
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		planID = s.planByPriceID(sub.Items.Data[0].Price.ID)
	}

	mirror := core.BillingMirror{
		StripeCustomerID:     stripe.String(sub.Customer.ID),
		StripeSubscriptionID: stripe.String(sub.ID),
		SubscriptionStatus:   stripe.String(string(sub.Status)),
	}
	if planID != "" {
		mirror.SubscriptionPlan = stripe.String(planID)
	}
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		mirror.CurrentPeriodEnd = &t
	}
	if sub.TrialEnd > 0 {
		t := time.Unix(sub.TrialEnd, 0).UTC()
		mirror.TrialEnd = &t
	}

	s.logger.Info("subscription mirrored",
		zap.String("user_id", user.ID),
		zap.String("subscription_id", sub.ID),
		zap.String("status", string(sub.Status)))
	return s.db.UpdateUserBilling(ctx, user.ID, mirror)
}

func (s *BillingService) clearSubscription(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.db.GetUserByStripeSubscriptionID(ctx, sub.ID)
	if err != nil {
		return err
	}
	if user == nil && sub.Customer != nil {
		user, err = s.userForCustomer(ctx, sub.Customer.ID)
		if err != nil {
			return err
		}
	}
	if user == nil {
		s.logger.Warn("deletion webhook for unknown subscription", zap.String("subscription_id", sub.ID))
		return nil
	}

	mirror := core.BillingMirror{
		StripeCustomerID:   stripe.String(user.StripeCustomerID),
		SubscriptionStatus: stripe.String("canceled"),
	}
	s.logger.Info("subscription cleared", zap.String("user_id", user.ID))
	return s.db.UpdateUserBilling(ctx, user.ID, mirror)
}

func (s *BillingService) markPastDue(ctx context.Context, inv *stripe.Invoice) error {
	if inv.Customer == nil {
		return nil
	}
	user, err := s.userForCustomer(ctx, inv.Customer.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	mirror := core.BillingMirror{
		StripeCustomerID:   stripe.String(user.StripeCustomerID),
		SubscriptionStatus: stripe.String("past_due"),
		CurrentPeriodEnd:   user.CurrentPeriodEnd,
		TrialEnd:           user.TrialEnd,
	}
	if user.StripeSubscriptionID != "" {
		mirror.StripeSubscriptionID = stripe.String(user.StripeSubscriptionID)
	}
	if user.SubscriptionPlan != "" {
		mirror.SubscriptionPlan = stripe.String(user.SubscriptionPlan)
	}
	s.logger.Warn("payment failed, marking past due", zap.String("user_id", user.ID))
	return s.db.UpdateUserBilling(ctx, user.ID, mirror)
}
