package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/contanube/contanube/jobs"
)

// ErrNotPurchasable is returned when checkout is attempted on a plan
// without a price, such as the free tier.
var ErrNotPurchasable = errors.New("billing: plan cannot be purchased")

// TaskEnqueuer is the slice of the asynq client the service needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Checkout is the prepared gateway hand-off for a paid plan.
type Checkout struct {
	Plan       Plan              `json:"plan"`
	GatewayURL string            `json:"gatewayUrl"`
	Fields     map[string]string `json:"fields"`
	PaymentID  string            `json:"paymentId"`
}

// Service prepares checkouts and schedules the demo payment confirmation.
type Service struct {
	gateway      GatewayConfig
	confirmDelay time.Duration
	enqueuer     TaskEnqueuer
	logger       *slog.Logger
	now          func() time.Time
}

// NewService constructs a Service. confirmDelay is how long after checkout
// the demo confirmation task fires.
func NewService(gateway GatewayConfig, confirmDelay time.Duration, enqueuer TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{
		gateway:      gateway,
		confirmDelay: confirmDelay,
		enqueuer:     enqueuer,
		logger:       logger,
		now:          time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// StartCheckout builds the gateway form for a paid plan and schedules the
// demo confirmation. No real capture happens: after confirmDelay the queued
// task activates the subscription unconditionally.
func (s *Service) StartCheckout(ctx context.Context, userID int64, planID string) (*Checkout, error) {
	plan := PlanByID(planID)
	if plan.Price <= 0 {
		return nil, ErrNotPurchasable
	}

	now := s.now()
	paymentID := fmt.Sprintf("PAYPAL_%d", now.UnixMilli())
	fields := BuildGatewayForm(s.gateway, userID, plan, now)

	task, err := jobs.NewPaymentConfirmTask(jobs.PaymentConfirmPayload{
		UserID:    userID,
		PlanID:    plan.ID,
		PaymentID: paymentID,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.enqueuer.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault), asynq.ProcessIn(s.confirmDelay)); err != nil {
		return nil, err
	}

	s.logger.Info("checkout started",
		slog.Int64("user_id", userID),
		slog.String("plan", plan.ID),
		slog.String("payment_id", paymentID))

	return &Checkout{
		Plan:       plan,
		GatewayURL: s.gateway.GatewayURL,
		Fields:     fields,
		PaymentID:  paymentID,
	}, nil
}
