package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/contanube/contanube/internal/platform/httpx"
)

// WebhookPath is the full request path of the gateway notification
// endpoint. It is exempt from CSRF checks.
const WebhookPath = "/billing/webhook/paypal"

// SubscriptionActivator is the slice of the account service the webhook
// needs to react to confirmed captures.
type SubscriptionActivator interface {
	ActivateSubscription(ctx context.Context, userID int64, planID, paymentID string) error
}

// CurrentUserFunc resolves the authenticated user ID from a request.
type CurrentUserFunc func(r *http.Request) (int64, bool)

// Handler wires HTTP endpoints for plans, checkout and the gateway webhook.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	verifier    *WebhookVerifier
	subs        SubscriptionActivator
	currentUser CurrentUserFunc
	receiver    string
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance. receiver is the merchant
// account webhook captures must be paid to.
func NewHandler(logger *slog.Logger, service *Service, verifier *WebhookVerifier, subs SubscriptionActivator, currentUser CurrentUserFunc, receiver string) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		verifier:    verifier,
		subs:        subs,
		currentUser: currentUser,
		receiver:    receiver,
		validator:   validator.New(),
	}
}

// MountRoutes registers billing routes on the provided router. requireUser
// guards the checkout endpoint; plans and the webhook stay public.
func (h *Handler) MountRoutes(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.Get("/plans", h.handlePlans)
	r.With(requireUser).Post("/checkout", h.handleCheckout)
	r.Post("/webhook/paypal", h.handleWebhook)
}

func (h *Handler) handlePlans(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"plans": Plans()})
}

type checkoutRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "inicia sesión para continuar")
		return
	}

	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cuerpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "planId es obligatorio")
		return
	}

	checkout, err := h.service.StartCheckout(r.Context(), userID, req.PlanID)
	if err != nil {
		if errors.Is(err, ErrNotPurchasable) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "este plan no requiere pago")
			return
		}
		h.logger.Error("start checkout", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudo iniciar el pago")
		return
	}
	httpx.JSON(w, http.StatusOK, checkout)
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cuerpo ilegible")
		return
	}

	valid, err := h.verifier.Verify(r.Context(), r.Header, body)
	if err != nil || !valid {
		if err != nil {
			h.logger.Warn("webhook verification", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "webhook no válido")
		return
	}

	event, err := DecodeWebhookEvent(body)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "evento ilegible")
		return
	}

	switch event.EventType {
	case EventPaymentCaptureCompleted:
		if h.receiver != "" && event.Resource.ReceiverAccount() != h.receiver {
			h.logger.Warn("webhook receiver mismatch", slog.String("receiver", event.Resource.ReceiverAccount()))
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "receptor no coincide")
			return
		}
		userID, planID, err := ParseCustomID(event.Resource.CustomID)
		if err != nil {
			h.logger.Warn("webhook custom id", slog.Any("error", err))
			break
		}
		if err := h.subs.ActivateSubscription(r.Context(), userID, planID, event.Resource.ID); err != nil {
			h.logger.Error("activate subscription", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudo activar la suscripción")
			return
		}
		h.logger.Info("payment capture completed",
			slog.Int64("user_id", userID),
			slog.String("plan", planID),
			slog.String("payment_id", event.Resource.ID))
	case EventPaymentCaptureDenied, EventPaymentCaptureRefunded:
		h.logger.Info("payment capture reversed",
			slog.String("event", event.EventType),
			slog.String("payment_id", event.Resource.ID))
	default:
		h.logger.Debug("webhook event ignored", slog.String("event", event.EventType))
	}

	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
