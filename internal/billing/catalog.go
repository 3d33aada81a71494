// Package billing holds the static subscription catalog and the demo PayPal
// payment flow.
package billing

// UnlimitedTransactions marks a plan without a transaction quota.
const UnlimitedTransactions = -1

// Subscription status values carried on a user account.
const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
)

// Plan is a static catalog entry. Plans are read-only reference data, not
// user-owned records.
type Plan struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Currency         string   `json:"currency"`
	Features         []string `json:"features"`
	TransactionLimit int      `json:"transactionLimit"`
	Color            string   `json:"color"`
	Recommended      bool     `json:"recommended,omitempty"`
	PayPalPlanID     string   `json:"paypalPlanId,omitempty"`
}

// Unlimited reports whether the plan carries no transaction quota.
func (p Plan) Unlimited() bool {
	return p.TransactionLimit == UnlimitedTransactions
}

// Allows reports whether the plan permits storing count transactions.
func (p Plan) Allows(count int) bool {
	return p.Unlimited() || count <= p.TransactionLimit
}

// PlanFree is the identifier every account starts on and falls back to.
const PlanFree = "free"

var catalog = []Plan{
	{
		ID:       PlanFree,
		Name:     "Gratuito",
		Price:    0,
		Currency: "EUR",
		Features: []string{
			"Hasta 5 transacciones por mes",
			"Extracción básica de datos",
			"Exportación a CSV",
			"Soporte por email",
		},
		TransactionLimit: 5,
		Color:            "bg-gray-100 border-gray-300 text-gray-800",
	},
	{
		ID:       "medium",
		Name:     "Medio",
		Price:    25,
		Currency: "EUR",
		Features: []string{
			"Hasta 100 transacciones por mes",
			"IA avanzada con precisión mejorada",
			"Exportación a CSV y Excel",
			"Detección automática de clientes",
			"Soporte prioritario",
		},
		TransactionLimit: 100,
		Color:            "bg-blue-100 border-blue-300 text-blue-800",
		Recommended:      true,
		PayPalPlanID:     "P-5ML4271244454362WXNWU5NQ",
	},
	{
		ID:       "premium",
		Name:     "Premium",
		Price:    50,
		Currency: "EUR",
		Features: []string{
			"Transacciones ilimitadas",
			"IA súper inteligente V2.0",
			"Exportación a múltiples formatos",
			"Integración con software contable",
			"Asistente contable personalizado",
			"Soporte 24/7",
		},
		TransactionLimit: UnlimitedTransactions,
		Color:            "bg-yellow-100 border-yellow-300 text-yellow-800",
		PayPalPlanID:     "P-1GJ4568789604323MXNWU5NQ",
	},
}

var planLevels = map[string]int{
	PlanFree:  0,
	"medium":  1,
	"premium": 2,
}

// Plans returns the catalog. Callers receive a copy and cannot mutate the
// reference data.
func Plans() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}

// PlanByID resolves a plan identifier, falling back to the free plan for
// unknown or empty identifiers.
func PlanByID(id string) Plan {
	for _, plan := range catalog {
		if plan.ID == id {
			return plan
		}
	}
	return catalog[0]
}

// HasAccess reports whether an account on the given plan with the given
// subscription status reaches the required plan level.
func HasAccess(planID, status, requiredPlanID string) bool {
	if status != StatusActive {
		return false
	}
	return planLevels[PlanByID(planID).ID] >= planLevels[PlanByID(requiredPlanID).ID]
}
