package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bakery-storefront/internal/auth"
	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/example/bakery-storefront/internal/infrastructure/store/mocks"
)

const testSecret = "test-secret-key-long-enough-for-hs256"

func newTestAuthenticator(adminEmails ...string) (*Authenticator, *auth.JWTVerifier, *mocks.MockUserStore) {
	verifier := auth.NewJWTVerifier(testSecret, 15*time.Minute)
	store := mocks.NewMockUserStore()
	return NewAuthenticator(verifier, user.NewService(store), adminEmails), verifier, store
}

func okHandler(captured **user.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFromContext(r.Context()); ok && captured != nil {
			*captured = u
		}
		w.WriteHeader(http.StatusOK)
	})
}

// ============================================
// RequireAuth Tests
// ============================================

func TestRequireAuth_ValidToken(t *testing.T) {
	authn, verifier, _ := newTestAuthenticator()

	token, err := verifier.GenerateToken("subject-123", "+919876543210", "test@example.com")
	require.NoError(t, err)

	var captured *user.User
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "subject-123", captured.SubjectID)
	assert.Equal(t, "9876543210", captured.Phone)
	assert.Equal(t, "test@example.com", captured.Email)
}

func TestRequireAuth_FirstLoginCreatesAccount(t *testing.T) {
	authn, verifier, store := newTestAuthenticator()

	token, err := verifier.GenerateToken("new-subject", "+919876543210", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	var captured *user.User
	authn.RequireAuth(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)

	stored, err := store.GetBySubject(context.Background(), "new-subject")
	require.NoError(t, err)
	assert.Equal(t, captured.ID, stored.ID)
	assert.True(t, stored.IsActive)
}

func TestRequireAuth_NoToken(t *testing.T) {
	authn, _, _ := newTestAuthenticator()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	authn.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required")
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	authn, _, _ := newTestAuthenticator()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	authn.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid or expired token")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	expired := auth.NewJWTVerifier(testSecret, -time.Minute)
	token, err := expired.GenerateToken("subject-123", "", "")
	require.NoError(t, err)

	authn, _, _ := newTestAuthenticator()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_WrongSignature(t *testing.T) {
	other := auth.NewJWTVerifier("a-completely-different-signing-secret", 15*time.Minute)
	token, err := other.GenerateToken("subject-123", "", "")
	require.NoError(t, err)

	authn, _, _ := newTestAuthenticator()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_DeactivatedAccount(t *testing.T) {
	authn, verifier, store := newTestAuthenticator()

	store.Add(&user.User{
		ID:        "user-1",
		SubjectID: "subject-123",
		IsActive:  false,
	})

	token, err := verifier.GenerateToken("subject-123", "", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Account is deactivated")
}

// ============================================
// OptionalAuth Tests
// ============================================

func TestOptionalAuth_ValidToken(t *testing.T) {
	authn, verifier, _ := newTestAuthenticator()

	token, err := verifier.GenerateToken("subject-123", "", "test@example.com")
	require.NoError(t, err)

	var captured *user.User
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.OptionalAuth(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "subject-123", captured.SubjectID)
}

func TestOptionalAuth_NoToken(t *testing.T) {
	authn, _, _ := newTestAuthenticator()

	var captured *user.User
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	rec := httptest.NewRecorder()

	authn.OptionalAuth(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
}

func TestOptionalAuth_InvalidTokenIgnored(t *testing.T) {
	authn, _, _ := newTestAuthenticator()

	var captured *user.User
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()

	authn.OptionalAuth(okHandler(&captured)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, captured)
}

// ============================================
// RequireAdmin Tests
// ============================================

func TestRequireAdmin_Allowed(t *testing.T) {
	authn, verifier, _ := newTestAuthenticator("admin@example.com")

	token, err := verifier.GenerateToken("admin-subject", "", "admin@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(authn.RequireAdmin(okHandler(nil))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_CaseInsensitiveEmail(t *testing.T) {
	authn, verifier, _ := newTestAuthenticator("Admin@Example.com")

	token, err := verifier.GenerateToken("admin-subject", "", "admin@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(authn.RequireAdmin(okHandler(nil))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_Forbidden(t *testing.T) {
	authn, verifier, _ := newTestAuthenticator("admin@example.com")

	token, err := verifier.GenerateToken("customer-subject", "", "customer@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(authn.RequireAdmin(okHandler(nil))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Admin access required")
}

func TestRequireAdmin_NoEmail(t *testing.T) {
	authn, verifier, _ := newTestAuthenticator("admin@example.com")

	token, err := verifier.GenerateToken("phone-only-subject", "+919876543210", "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	authn.RequireAuth(authn.RequireAdmin(okHandler(nil))).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_WithoutAuth(t *testing.T) {
	authn, _, _ := newTestAuthenticator("admin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()

	authn.RequireAdmin(okHandler(nil)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Helper Tests
// ============================================

func TestExtractToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, ExtractToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", ExtractToken(req))

	req.Header.Set("Authorization", "Basic abc123")
	assert.Empty(t, ExtractToken(req))
}

func TestUserFromContext(t *testing.T) {
	u := &user.User{ID: "user-1"}
	ctx := context.WithValue(context.Background(), UserContextKey, u)

	got, ok := UserFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, u, got)

	got, ok = UserFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}
