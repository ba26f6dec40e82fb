package user_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/bakery-storefront/internal/domain/user"
	"github.com/example/bakery-storefront/internal/infrastructure/store/mocks"
)

func strPtr(s string) *string { return &s }

// ============================================
// EnsureUser Tests
// ============================================

func TestEnsureUser_FirstLogin(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	u, created, err := svc.EnsureUser(context.Background(), user.Identity{
		SubjectID: "subject-1",
		Phone:     "+919876543210",
		Email:     "test@example.com",
	}, nil)
	require.NoError(t, err)

	assert.True(t, created)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "subject-1", u.SubjectID)
	assert.Equal(t, "9876543210", u.Phone)
	assert.Equal(t, "test@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.True(t, u.Preferences.Notifications)
	assert.Equal(t, "en", u.Preferences.Language)
	assert.False(t, u.LastLoginAt.IsZero())
}

func TestEnsureUser_ExistingAccount(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	first, _, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, nil)
	require.NoError(t, err)

	second, created, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, nil)
	require.NoError(t, err)

	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestEnsureUser_AppliesProfileOnFirstLogin(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	u, created, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, &user.ProfileUpdate{
		Name:  strPtr("Priya"),
		Email: strPtr("Priya@Example.com"),
	})
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "Priya", u.Name)
	assert.Equal(t, "priya@example.com", u.Email)
}

func TestEnsureUser_WrappedNotFoundStillCreates(t *testing.T) {
	store := mocks.NewMockUserStore()
	store.GetBySubjectErr = fmt.Errorf("query user by subject: %w", user.ErrNotFound)
	svc := user.NewService(store)

	u, created, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, nil)
	require.NoError(t, err)

	assert.True(t, created)
	assert.Equal(t, "subject-1", u.SubjectID)
}

// ============================================
// UpdateProfile Tests
// ============================================

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	u, _, err := svc.EnsureUser(context.Background(), user.Identity{
		SubjectID: "subject-1",
		Email:     "old@example.com",
	}, nil)
	require.NoError(t, err)

	dob := time.Date(1995, 6, 12, 0, 0, 0, 0, time.UTC)
	marketing := true
	updated, err := svc.UpdateProfile(context.Background(), u.ID, user.ProfileUpdate{
		Name:        strPtr("Priya"),
		DateOfBirth: &dob,
		Marketing:   &marketing,
	})
	require.NoError(t, err)

	assert.Equal(t, "Priya", updated.Name)
	// Untouched fields keep their values.
	assert.Equal(t, "old@example.com", updated.Email)
	require.NotNil(t, updated.DateOfBirth)
	assert.Equal(t, dob, *updated.DateOfBirth)
	assert.True(t, updated.Preferences.Marketing)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc := user.NewService(mocks.NewMockUserStore())

	_, err := svc.UpdateProfile(context.Background(), "missing", user.ProfileUpdate{})

	assert.ErrorIs(t, err, user.ErrNotFound)
}

// ============================================
// Address Book Tests
// ============================================

func TestAddAddress_AssignsIDAndPersists(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	u, _, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, nil)
	require.NoError(t, err)

	updated, err := svc.AddAddress(context.Background(), u.ID, user.Address{
		Type:    user.AddressHome,
		Name:    "Priya",
		Street:  "MG Road",
		Pincode: "560001",
		City:    "Bengaluru",
		State:   "Karnataka",
	})
	require.NoError(t, err)

	require.Len(t, updated.Addresses, 1)
	assert.NotEmpty(t, updated.Addresses[0].ID)
	assert.True(t, updated.Addresses[0].IsDefault)

	stored, err := store.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Addresses, 1)
}

func TestUpdateAddress_UnknownAddress(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	u, _, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateAddress(context.Background(), u.ID, "missing", user.Address{})

	assert.ErrorIs(t, err, user.ErrAddressNotFound)
}

func TestRemoveAddress_Persists(t *testing.T) {
	store := mocks.NewMockUserStore()
	svc := user.NewService(store)

	u, _, err := svc.EnsureUser(context.Background(), user.Identity{SubjectID: "subject-1"}, nil)
	require.NoError(t, err)

	withAddr, err := svc.AddAddress(context.Background(), u.ID, user.Address{City: "Bengaluru"})
	require.NoError(t, err)

	updated, err := svc.RemoveAddress(context.Background(), u.ID, withAddr.Addresses[0].ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Addresses)
}
