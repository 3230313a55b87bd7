package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/mallbilling/internal/users"
	pkgAuth "github.com/angelmondragon/mallbilling/pkg/auth"
	"github.com/angelmondragon/mallbilling/pkg/auth/session"
	"github.com/angelmondragon/mallbilling/pkg/config"
	"github.com/angelmondragon/mallbilling/pkg/db/models"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	pkgerrors "github.com/angelmondragon/mallbilling/pkg/errors"
	"github.com/angelmondragon/mallbilling/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testJWT = config.JWTConfig{Secret: "secret", Issuer: "mallbilling", ExpirationMinutes: 30}
	testPwd = config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

type stubUsers struct {
	byName    map[string]*models.User
	createErr error
	lastLogin time.Time
}

func newStubUsers(list ...*models.User) *stubUsers {
	s := &stubUsers{byName: map[string]*models.User{}}
	for _, u := range list {
		s.byName[u.Username] = u
	}
	return s
}

func (s *stubUsers) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	u := dto.ToModel()
	u.ID = uuid.New()
	s.byName[u.Username] = u
	return u, nil
}

func (s *stubUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := s.byName[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLogin = at
	return nil
}

type stubSessions struct {
	tokens  map[string]string
	revoked []string
}

func (s *stubSessions) Issue(ctx context.Context, accessID string) (string, error) {
	tok := "refresh-" + accessID
	s.tokens[accessID] = tok
	return tok, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.tokens[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	id := "rotated-" + oldAccessID
	tok, _ := s.Issue(ctx, id)
	return id, tok, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.tokens, accessID)
	return nil
}

type stubCarts struct{ reset []uuid.UUID }

func (s *stubCarts) Reset(ctx context.Context, ownerID uuid.UUID) error {
	s.reset = append(s.reset, ownerID)
	return nil
}

func mustUser(t *testing.T, name, password string, role enums.Role) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, testPwd)
	require.NoError(t, err)
	return &models.User{ID: uuid.New(), Username: name, PasswordHash: hash, Role: role, IsActive: true}
}

func buildService(t *testing.T, repo *stubUsers) (Service, *stubSessions, *stubCarts) {
	t.Helper()
	sessions := &stubSessions{tokens: map[string]string{}}
	carts := &stubCarts{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		Carts:          carts,
		JWTConfig:      testJWT,
		PasswordConfig: testPwd,
		Now:            func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, sessions, carts
}

func TestLoginIssuesTokensWithRole(t *testing.T) {
	cashier := mustUser(t, "cashier", "cashier123", enums.RoleCashier)
	repo := newStubUsers(cashier)
	svc, sessions, _ := buildService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: " cashier ", Password: "cashier123"})
	require.NoError(t, err)
	require.Equal(t, "cashier", resp.User.Username)
	require.False(t, repo.lastLogin.IsZero())

	claims, err := pkgAuth.ParseAccessTokenAllowExpired(testJWT, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, enums.RoleCashier, claims.Role)
	require.Equal(t, cashier.ID, claims.UserID)
	require.Equal(t, sessions.tokens[claims.ID], resp.RefreshToken)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	inactive := mustUser(t, "gone", "pw123456", enums.RoleCashier)
	inactive.IsActive = false
	svc, _, _ := buildService(t, newStubUsers(mustUser(t, "admin", "admin123", enums.RoleAdmin), inactive))

	for _, req := range []LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "nobody", Password: "admin123"},
		{Username: "", Password: "admin123"},
		{Username: "gone", Password: "pw123456"},
	} {
		_, err := svc.Login(context.Background(), req)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "%+v -> %v", req, err)
		require.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())
	}
}

func TestRegisterDefaultsRoleAndDetectsDuplicates(t *testing.T) {
	repo := newStubUsers()
	svc, _, _ := buildService(t, repo)

	dto, err := svc.Register(context.Background(), RegisterRequest{Username: "newbie", Password: "secret1", Role: "owner"})
	require.NoError(t, err)
	require.Equal(t, enums.RoleCashier, dto.Role)

	ok, err := security.VerifyPassword("secret1", repo.byName["newbie"].PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username"`)
	_, err = svc.Register(context.Background(), RegisterRequest{Username: "newbie", Password: "secret1"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestRefreshRotatesSession(t *testing.T) {
	admin := mustUser(t, "admin", "admin123", enums.RoleAdmin)
	svc, sessions, _ := buildService(t, newStubUsers(admin))

	login, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	pair, err := svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	claims, err := pkgAuth.ParseAccessTokenAllowExpired(testJWT, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, sessions.tokens[claims.ID], pair.RefreshToken)

	_, err = svc.Refresh(context.Background(), login.AccessToken, login.RefreshToken)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesAndClearsCart(t *testing.T) {
	cashier := mustUser(t, "cashier", "cashier123", enums.RoleCashier)
	svc, sessions, carts := buildService(t, newStubUsers(cashier))

	login, err := svc.Login(context.Background(), LoginRequest{Username: "cashier", Password: "cashier123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.AccessToken))
	require.Len(t, sessions.revoked, 1)
	require.Equal(t, []uuid.UUID{cashier.ID}, carts.reset)

	err = svc.Logout(context.Background(), "not-a-jwt")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: newStubUsers()})
	require.Error(t, err)
}
