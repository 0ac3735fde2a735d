package user

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"logipro/internal/authz"
	"logipro/internal/config"
	"logipro/internal/domain/identity"
	domainUser "logipro/internal/domain/user"
	infraIdentity "logipro/internal/infrastructure/identity"
	"logipro/internal/infrastructure/memory"
	"logipro/internal/mocks"
	appErrors "logipro/pkg/errors"
	"logipro/pkg/utils"
)

const testPassword = "Str0ng!Pass"

func testConfig() *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpiryHours: 1, RefreshExpiryHours: 24}}
}

func newTestService(t *testing.T, verifier identity.Verifier) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewService(store.Users(), store.RefreshTokens(), verifier, testConfig()), store
}

func seedUser(t *testing.T, store *memory.Store, email string, role authz.Role, active bool) *domainUser.User {
	t.Helper()
	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)
	u := &domainUser.User{Email: email, PasswordHashed: hash, FullName: "Test User", Role: role, IsActive: active}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestLogin(t *testing.T) {
	svc, store := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()
	seedUser(t, store, "dispatch@logipro.test", authz.RoleManager, true)
	seedUser(t, store, "gone@logipro.test", authz.RoleDriver, false)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "Dispatch@Logipro.test", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.User.Role)
	assert.NotNil(t, resp.User.LastLoginAt)

	claims, err := utils.ValidateAccessToken(resp.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "dispatch@logipro.test", Password: "wrong"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@logipro.test", Password: testPassword})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "gone@logipro.test", Password: testPassword})
	assert.Equal(t, http.StatusForbidden, appErrors.HTTPStatus(err))
}

func TestExchangeIdentityTokenCreatesCustomerOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	svc, store := newTestService(t, verifier)
	ctx := context.Background()

	verifier.EXPECT().Verify(gomock.Any(), "good-token").
		Return(&identity.Identity{SubjectID: "fb-123", Email: "Ann@Example.com", DisplayName: "Ann"}, nil).
		Times(2)

	first, err := svc.ExchangeIdentityToken(ctx, &IdentityTokenRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.Equal(t, "customer", first.User.Role)
	assert.Equal(t, "ann@example.com", first.User.Email)

	second, err := svc.ExchangeIdentityToken(ctx, &IdentityTokenRequest{IDToken: "good-token"})
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)

	customer := authz.RoleCustomer
	_, total, err := store.Users().List(ctx, &domainUser.Filter{Role: &customer})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestExchangeIdentityTokenProviderErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	svc, _ := newTestService(t, verifier)
	ctx := context.Background()

	verifier.EXPECT().Verify(gomock.Any(), "forged").Return(nil, identity.ErrInvalidToken)
	_, err := svc.ExchangeIdentityToken(ctx, &IdentityTokenRequest{IDToken: "forged"})
	assert.Equal(t, http.StatusUnauthorized, appErrors.HTTPStatus(err))

	verifier.EXPECT().Verify(gomock.Any(), "any").Return(nil, identity.ErrUnavailable)
	_, err = svc.ExchangeIdentityToken(ctx, &IdentityTokenRequest{IDToken: "any"})
	assert.Equal(t, http.StatusServiceUnavailable, appErrors.HTTPStatus(err))

	_, err = svc.ExchangeIdentityToken(ctx, &IdentityTokenRequest{})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
}

func TestExchangeIdentityTokenEmailTakenByStaff(t *testing.T) {
	ctrl := gomock.NewController(t)
	verifier := mocks.NewMockVerifier(ctrl)
	svc, store := newTestService(t, verifier)
	seedUser(t, store, "ops@logipro.test", authz.RoleAdmin, true)

	verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).
		Return(&identity.Identity{SubjectID: "fb-9", Email: "ops@logipro.test"}, nil)

	_, err := svc.ExchangeIdentityToken(context.Background(), &IdentityTokenRequest{IDToken: "t"})
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))
}

func TestRefreshTokenRotates(t *testing.T) {
	svc, store := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()
	seedUser(t, store, "driver@logipro.test", authz.RoleDriver, true)

	login, err := svc.Login(ctx, &LoginRequest{Email: "driver@logipro.test", Password: testPassword})
	require.NoError(t, err)

	pair, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestRevokeTokenRequiresOwner(t *testing.T) {
	svc, store := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()
	u := seedUser(t, store, "mgr@logipro.test", authz.RoleManager, true)

	login, err := svc.Login(ctx, &LoginRequest{Email: "mgr@logipro.test", Password: testPassword})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RevokeToken(ctx, uuid.New(), login.RefreshToken), appErrors.ErrInvalidToken)
	require.NoError(t, svc.RevokeToken(ctx, u.ID, login.RefreshToken))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestCreateStaffUser(t *testing.T) {
	svc, _ := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()
	admin := authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	manager := authz.Principal{UserID: uuid.New(), Role: authz.RoleManager}

	req := &CreateUserRequest{Email: "new.driver@logipro.test", Password: testPassword, FullName: "New Driver", Role: "driver"}
	created, err := svc.CreateStaffUser(ctx, manager, req)
	require.NoError(t, err)
	assert.Equal(t, "driver", created.Role)

	_, err = svc.CreateStaffUser(ctx, manager, req)
	assert.Equal(t, http.StatusConflict, appErrors.HTTPStatus(err))

	_, err = svc.CreateStaffUser(ctx, manager, &CreateUserRequest{Email: "root@logipro.test", Password: testPassword, FullName: "Root", Role: "admin"})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	_, err = svc.CreateStaffUser(ctx, admin, &CreateUserRequest{Email: "c@logipro.test", Password: testPassword, FullName: "Cust", Role: "customer"})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	_, err = svc.CreateStaffUser(ctx, admin, &CreateUserRequest{Email: "weak@logipro.test", Password: "alllowercase", FullName: "Weak", Role: "manager"})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, store := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()
	u := seedUser(t, store, "ops@logipro.test", authz.RoleAdmin, true)

	login, err := svc.Login(ctx, &LoginRequest{Email: "ops@logipro.test", Password: testPassword})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, &ChangePasswordRequest{OldPassword: "nope", NewPassword: "N3w!Passw0rd", ConfirmPassword: "N3w!Passw0rd"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, &ChangePasswordRequest{OldPassword: testPassword, NewPassword: "N3w!Passw0rd", ConfirmPassword: "N3w!Passw0rd"}))

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ops@logipro.test", Password: "N3w!Passw0rd"})
	assert.NoError(t, err)
}

func TestUpdateProfileAndList(t *testing.T) {
	svc, store := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()
	u := seedUser(t, store, "d1@logipro.test", authz.RoleDriver, true)
	seedUser(t, store, "d2@logipro.test", authz.RoleDriver, true)
	seedUser(t, store, "m@logipro.test", authz.RoleManager, true)

	name := "  Dana Driver "
	badPhone := "call me"
	phone := "+61 400 111 222"
	updated, err := svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Dana Driver", updated.FullName)

	_, err = svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{PhoneNumber: &badPhone})
	assert.Equal(t, http.StatusBadRequest, appErrors.HTTPStatus(err))

	updated, err = svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{PhoneNumber: &phone})
	require.NoError(t, err)
	require.NotNil(t, updated.PhoneNumber)
	assert.Equal(t, "+61 400 111 222", *updated.PhoneNumber)

	role := "driver"
	page, err := svc.ListUsers(ctx, &ListUsersRequest{Role: &role, PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Len(t, page.Items, 1)
}

func TestGetProfileStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockRepository(ctrl)
	tokens := mocks.NewMockRefreshTokenRepository(ctrl)
	svc := NewService(users, tokens, infraIdentity.Disabled{}, testConfig())

	boom := errors.New("connection reset")
	users.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, http.StatusInternalServerError, appErrors.HTTPStatus(err))
}

func TestTokenCleanup(t *testing.T) {
	ctrl := gomock.NewController(t)
	tokens := mocks.NewMockRefreshTokenRepository(ctrl)
	svc := NewService(mocks.NewMockRepository(ctrl), tokens, infraIdentity.Disabled{}, testConfig())

	tokens.EXPECT().DeleteExpired(gomock.Any(), 24*time.Hour).Return(int64(3), nil)
	svc.CleanupExpiredTokens(context.Background(), 24*time.Hour)

	c := cron.New()
	_, err := svc.ScheduleTokenCleanup(c, "@hourly", time.Hour)
	assert.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = svc.ScheduleTokenCleanup(c, "not a schedule", time.Hour)
	assert.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	svc, store := newTestService(t, infraIdentity.Disabled{})
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	assert.Error(t, svc.EnsureAdmin(ctx, "root@logipro.test", "short"))

	require.NoError(t, svc.EnsureAdmin(ctx, "Root@logipro.test", testPassword))
	require.NoError(t, svc.EnsureAdmin(ctx, "root@logipro.test", "ignored-on-second-run"))

	admin, err := store.Users().GetByEmail(ctx, "root@logipro.test")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleAdmin, admin.Role)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "root@logipro.test", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.User.Role)
}
