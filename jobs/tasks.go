package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypePaymentConfirm is the task type for confirming a demo payment.
	TaskTypePaymentConfirm = "billing:confirm_payment"
	// TaskTypeSubscriptionSweep is the task type for demoting lapsed subscriptions.
	TaskTypeSubscriptionSweep = "billing:expire_sweep"
)

// SubscriptionStore is the slice of the account service the worker needs.
type SubscriptionStore interface {
	ActivateSubscription(ctx context.Context, userID int64, planID, paymentID string) error
	DowngradeExpired(ctx context.Context) (int64, error)
}

// PaymentConfirmPayload describes a pending payment confirmation.
type PaymentConfirmPayload struct {
	UserID    int64  `json:"userId"`
	PlanID    string `json:"planId"`
	PaymentID string `json:"paymentId"`
}

// NewPaymentConfirmTask constructs an Asynq task.
func NewPaymentConfirmTask(payload PaymentConfirmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypePaymentConfirm, data), nil
}

// NewSubscriptionSweepTask constructs an Asynq task with no payload.
func NewSubscriptionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSubscriptionSweep, nil)
}

// NewPaymentConfirmHandler processes TaskTypePaymentConfirm tasks. In demo
// mode checkout enqueues this task with a short delay instead of waiting for
// a gateway notification, so it activates the subscription unconditionally.
func NewPaymentConfirmHandler(store SubscriptionStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload PaymentConfirmPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.UserID == 0 || payload.PlanID == "" {
			return asynq.SkipRetry
		}
		if err := store.ActivateSubscription(ctx, payload.UserID, payload.PlanID, payload.PaymentID); err != nil {
			return err
		}
		logger.Info("subscription activated",
			slog.Int64("user_id", payload.UserID),
			slog.String("plan", payload.PlanID),
			slog.String("payment_id", payload.PaymentID))
		return nil
	}
}

// NewSubscriptionSweepHandler processes TaskTypeSubscriptionSweep tasks.
func NewSubscriptionSweepHandler(store SubscriptionStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		demoted, err := store.DowngradeExpired(ctx)
		if err != nil {
			return err
		}
		if demoted > 0 {
			logger.Info("expired subscriptions demoted", slog.Int64("count", demoted))
		}
		return nil
	}
}
