package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/contanube/contanube/internal/auth"
	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/platform/httpx"
	"github.com/contanube/contanube/internal/shared"
)

// Handler wires HTTP endpoints for the transaction ledger. Every route
// expects an authenticated user in the request context.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/transactions", h.handleProcess)
	r.Get("/transactions", h.handleList)
	r.Delete("/transactions/{id}", h.handleRemove)
	r.Get("/journal", h.handleJournal)
	r.Get("/journal/export.csv", h.handleExport)
}

type processRequest struct {
	Company string `json:"company" validate:"required"`
	Text    string `json:"text" validate:"required"`
}

type processResponse struct {
	Accepted      int                   `json:"accepted"`
	Total         int                   `json:"total"`
	QuotaExceeded bool                  `json:"quotaExceeded"`
	Transactions  []Transaction         `json:"transactions"`
	Notifications []shared.FlashMessage `json:"notifications,omitempty"`
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	plan := billing.PlanByID(user.Plan)
	if !billing.HasAccess(user.Plan, user.SubscriptionStatus, billing.PlanFree) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "tu suscripción no está activa")
		return
	}

	var req processRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cuerpo JSON inválido")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "Por favor completa el nombre de la empresa y las transacciones")
		return
	}

	result, err := h.service.ProcessBatch(r.Context(), sess.ID, plan, BatchInput{
		Company: req.Company,
		Text:    req.Text,
	})
	if err != nil {
		if errors.Is(err, ErrMissingInput) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "Por favor completa el nombre de la empresa y las transacciones")
			return
		}
		h.logger.Error("process batch", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudieron procesar las transacciones")
		return
	}

	switch {
	case result.QuotaExceeded && result.Accepted == 0:
		sess.AddFlash(shared.FlashMessage{
			Kind:    "warning",
			Message: fmt.Sprintf("Has alcanzado el límite de %d transacciones de tu plan %s. Actualiza tu plan para continuar.", plan.TransactionLimit, plan.Name),
		})
	case result.QuotaExceeded:
		sess.AddFlash(shared.FlashMessage{
			Kind:    "warning",
			Message: fmt.Sprintf("Se procesaron %d transacciones. Límite alcanzado.", result.Accepted),
		})
	case result.Accepted > 0:
		sess.AddFlash(shared.FlashMessage{
			Kind:    "success",
			Message: fmt.Sprintf("Se procesaron %d transacciones con IA ✨", result.Accepted),
		})
	default:
		sess.AddFlash(shared.FlashMessage{
			Kind:    "warning",
			Message: "No se encontraron transacciones válidas.",
		})
	}

	txns, err := h.service.List(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudieron cargar las transacciones")
		return
	}

	httpx.JSON(w, http.StatusOK, processResponse{
		Accepted:      result.Accepted,
		Total:         result.Total,
		QuotaExceeded: result.QuotaExceeded,
		Transactions:  txns,
		Notifications: sess.PopFlashes(),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	txns, err := h.service.List(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudieron cargar las transacciones")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.service.Remove(r.Context(), sess.ID, id); err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "transacción no encontrada")
			return
		}
		h.logger.Error("remove transaction", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudo eliminar la transacción")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) handleJournal(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Journal(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("generate journal", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudo generar el diario")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Journal(r.Context(), sess.ID)
	if err != nil {
		h.logger.Error("generate journal", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "no se pudo generar el diario")
		return
	}

	company := ""
	if txns, err := h.service.List(r.Context(), sess.ID); err == nil && len(txns) > 0 {
		company = txns[0].Company
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(company)+`"`)
	if err := WriteJournalCSV(w, entries); err != nil {
		h.logger.Error("write journal csv", slog.Any("error", err))
	}
}

// requireSession pulls the authenticated user and live session out of the
// request context.
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (*auth.User, *shared.Session, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "inicia sesión para continuar")
		return nil, nil, false
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "sesión no disponible")
		return nil, nil, false
	}
	return user, sess, true
}
