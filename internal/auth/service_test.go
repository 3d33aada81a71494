package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/contanube/contanube/internal/auth"
	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/shared"
	_ "github.com/contanube/contanube/testing"
)

type stubRepo struct {
	users  map[int64]*auth.User
	nextID int64
}

func newStubRepo() *stubRepo {
	return &stubRepo{users: make(map[int64]*auth.User), nextID: 1}
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *stubRepo) CreateUser(ctx context.Context, user auth.User) (*auth.User, error) {
	if _, err := s.FindByEmail(ctx, user.Email); err == nil {
		return nil, shared.ErrEmailTaken
	}
	user.ID = s.nextID
	user.IsActive = true
	s.nextID++
	s.users[user.ID] = &user
	copied := user
	return &copied, nil
}

func (s *stubRepo) UpdateSubscription(ctx context.Context, userID int64, plan, status string, end *time.Time, paymentID string) error {
	u, ok := s.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.Plan = plan
	u.SubscriptionStatus = status
	u.SubscriptionEnd = end
	u.PaymentID = paymentID
	return nil
}

func (s *stubRepo) DowngradeExpired(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	for _, u := range s.users {
		if u.Plan != billing.PlanFree && u.SubscriptionStatus == billing.StatusActive && u.SubscriptionEnd != nil && u.SubscriptionEnd.Before(now) {
			u.Plan = billing.PlanFree
			u.SubscriptionStatus = billing.StatusExpired
			count++
		}
	}
	return count, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func seedUser(t *testing.T, repo *stubRepo, email, password, plan string, end *time.Time) *auth.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user, err := repo.CreateUser(context.Background(), auth.User{
		Email:              email,
		Name:               "Tester",
		Company:            "Test SRL",
		PasswordHash:       string(hashed),
		Plan:               plan,
		SubscriptionStatus: billing.StatusActive,
		SubscriptionEnd:    end,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestAuthenticate(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)
	service := auth.NewService(repo, 720*time.Hour)

	user, err := service.Authenticate(context.Background(), "  DEMO@test.com ", "123456")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "demo@test.com" {
		t.Fatalf("email = %q", user.Email)
	}

	if _, err := service.Authenticate(context.Background(), "demo@test.com", "wrong"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.Authenticate(context.Background(), "ghost@test.com", "123456"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := newStubRepo()
	user := seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)
	repo.users[user.ID].IsActive = false
	service := auth.NewService(repo, 720*time.Hour)

	if _, err := service.Authenticate(context.Background(), "demo@test.com", "123456"); !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister(t *testing.T) {
	repo := newStubRepo()
	service := auth.NewService(repo, 720*time.Hour)

	user, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    " Nuevo@Test.com ",
		Password: "123456",
		Name:     "Nuevo Usuario",
		Company:  "Nueva SRL",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "nuevo@test.com" {
		t.Fatalf("email = %q, want lowercased", user.Email)
	}
	if user.Plan != billing.PlanFree || user.SubscriptionStatus != billing.StatusActive {
		t.Fatalf("new account plan=%q status=%q", user.Plan, user.SubscriptionStatus)
	}

	if _, err := service.Register(context.Background(), auth.RegisterInput{
		Email:    "nuevo@test.com",
		Password: "123456",
		Name:     "Otro",
		Company:  "Otra SRL",
	}); !errors.Is(err, shared.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestExpiredSubscriptionDemotedOnLoad(t *testing.T) {
	repo := newStubRepo()
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	user := seedUser(t, repo, "premium@test.com", "123456", "premium", &end)

	service := auth.NewService(repo, 720*time.Hour)
	service.WithNow(func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) })

	loaded, err := service.UserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("user by id: %v", err)
	}
	if loaded.Plan != billing.PlanFree || loaded.SubscriptionStatus != billing.StatusExpired {
		t.Fatalf("expected demotion to free/expired, got plan=%q status=%q", loaded.Plan, loaded.SubscriptionStatus)
	}

	// The demotion is persisted, not just applied to the returned value.
	stored := repo.users[user.ID]
	if stored.Plan != billing.PlanFree || stored.SubscriptionStatus != billing.StatusExpired {
		t.Fatalf("demotion not persisted: plan=%q status=%q", stored.Plan, stored.SubscriptionStatus)
	}
}

func TestActiveSubscriptionUntouched(t *testing.T) {
	repo := newStubRepo()
	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	user := seedUser(t, repo, "premium@test.com", "123456", "premium", &end)

	service := auth.NewService(repo, 720*time.Hour)
	service.WithNow(func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) })

	loaded, err := service.UserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("user by id: %v", err)
	}
	if loaded.Plan != "premium" || loaded.SubscriptionStatus != billing.StatusActive {
		t.Fatalf("active subscription altered: plan=%q status=%q", loaded.Plan, loaded.SubscriptionStatus)
	}
}

func TestActivateSubscription(t *testing.T) {
	repo := newStubRepo()
	user := seedUser(t, repo, "demo@test.com", "123456", billing.PlanFree, nil)

	service := auth.NewService(repo, 720*time.Hour)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	service.WithNow(func() time.Time { return now })

	if err := service.ActivateSubscription(context.Background(), user.ID, "medium", "PAYPAL_1"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.Plan != "medium" || stored.SubscriptionStatus != billing.StatusActive {
		t.Fatalf("plan=%q status=%q", stored.Plan, stored.SubscriptionStatus)
	}
	if stored.PaymentID != "PAYPAL_1" {
		t.Fatalf("payment id = %q", stored.PaymentID)
	}
	want := now.Add(720 * time.Hour)
	if stored.SubscriptionEnd == nil || !stored.SubscriptionEnd.Equal(want) {
		t.Fatalf("subscription end = %v, want %v", stored.SubscriptionEnd, want)
	}
}

func TestDowngradeExpiredSweep(t *testing.T) {
	repo := newStubRepo()
	past := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	lapsed := seedUser(t, repo, "lapsed@test.com", "123456", "medium", &past)
	current := seedUser(t, repo, "current@test.com", "123456", "premium", &future)

	service := auth.NewService(repo, 720*time.Hour)
	service.WithNow(func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) })

	demoted, err := service.DowngradeExpired(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if demoted != 1 {
		t.Fatalf("demoted = %d, want 1", demoted)
	}
	if repo.users[lapsed.ID].Plan != billing.PlanFree {
		t.Fatalf("lapsed account not demoted")
	}
	if repo.users[current.ID].Plan != "premium" {
		t.Fatalf("current account wrongly demoted")
	}
}
