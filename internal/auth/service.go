package auth

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/shared"
)

// Service wraps account and subscription business rules.
type Service struct {
	repo               Repository
	subscriptionLength time.Duration
	now                func() time.Time
}

// NewService constructs a Service. subscriptionLength is how long a paid
// subscription stays active after payment confirmation.
func NewService(repo Repository, subscriptionLength time.Duration) *Service {
	return &Service{
		repo:               repo,
		subscriptionLength: subscriptionLength,
		now:                time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Authenticate validates email/password credentials and returns the
// effective user, with a lapsed paid subscription already demoted.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.effective(ctx, user)
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Company  string
}

// Register creates a new account. Every account starts on the free plan.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, User{
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		Name:               strings.TrimSpace(input.Name),
		Company:            strings.TrimSpace(input.Company),
		PasswordHash:       string(hash),
		Plan:               billing.PlanFree,
		SubscriptionStatus: billing.StatusActive,
	})
}

// UserByID loads the effective user for a session.
func (s *Service) UserByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.effective(ctx, user)
}

// ActivateSubscription switches the account to the given plan for one
// subscription period.
func (s *Service) ActivateSubscription(ctx context.Context, userID int64, planID, paymentID string) error {
	plan := billing.PlanByID(planID)
	end := s.now().Add(s.subscriptionLength)
	return s.repo.UpdateSubscription(ctx, userID, plan.ID, billing.StatusActive, &end, paymentID)
}

// DowngradeExpired demotes every account whose paid subscription has lapsed
// and reports how many were touched.
func (s *Service) DowngradeExpired(ctx context.Context) (int64, error) {
	return s.repo.DowngradeExpired(ctx, s.now())
}

// RegisterSession persists the session metadata.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// effective applies the subscription expiry rule: a paid plan past its end
// date is demoted to free/expired, and the demotion is persisted so the next
// load observes it too.
func (s *Service) effective(ctx context.Context, user *User) (*User, error) {
	if user.Plan == billing.PlanFree || user.SubscriptionStatus != billing.StatusActive {
		return user, nil
	}
	if user.SubscriptionEnd == nil || user.SubscriptionEnd.After(s.now()) {
		return user, nil
	}
	if err := s.repo.UpdateSubscription(ctx, user.ID, billing.PlanFree, billing.StatusExpired, user.SubscriptionEnd, user.PaymentID); err != nil {
		return nil, err
	}
	demoted := *user
	demoted.Plan = billing.PlanFree
	demoted.SubscriptionStatus = billing.StatusExpired
	return &demoted, nil
}
