package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Identity is the verified subject handed over by the token verifier.
type Identity struct {
	SubjectID string
	Phone     string
	Email     string
}

// ProfileUpdate carries the optional profile fields a caller may change.
// Nil pointers leave the current value untouched.
type ProfileUpdate struct {
	Name          *string    `json:"name,omitempty"`
	Email         *string    `json:"email,omitempty"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Notifications *bool      `json:"notifications,omitempty"`
	Marketing     *bool      `json:"marketing,omitempty"`
	Language      *string    `json:"language,omitempty"`
}

// Store is the persistence surface the user service needs.
type Store interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetBySubject(ctx context.Context, subjectID string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// EnsureUser finds the account for a verified identity, creating it on first
// login. Phone numbers arrive from the provider with a +91 prefix which is
// not stored. Returns the user and whether it was newly created.
func (s *Service) EnsureUser(ctx context.Context, id Identity, update *ProfileUpdate) (*User, bool, error) {
	u, err := s.store.GetBySubject(ctx, id.SubjectID)
	if err == nil {
		u.LastLoginAt = time.Now()
		if update != nil {
			applyProfileUpdate(u, update)
		}
		if err := s.store.Update(ctx, u); err != nil {
			return nil, false, err
		}
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	now := time.Now()
	u = &User{
		ID:        uuid.New().String(),
		SubjectID: id.SubjectID,
		Phone:     strings.TrimPrefix(id.Phone, "+91"),
		Email:     id.Email,
		Preferences: Preferences{
			Notifications: true,
			Language:      "en",
		},
		IsActive:    true,
		LastLoginAt: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if update != nil {
		applyProfileUpdate(u, update)
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// UpdateProfile applies the given partial update to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*User, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	applyProfileUpdate(u, &update)
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func applyProfileUpdate(u *User, update *ProfileUpdate) {
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = strings.ToLower(*update.Email)
	}
	if update.DateOfBirth != nil {
		u.DateOfBirth = update.DateOfBirth
	}
	if update.Notifications != nil {
		u.Preferences.Notifications = *update.Notifications
	}
	if update.Marketing != nil {
		u.Preferences.Marketing = *update.Marketing
	}
	if update.Language != nil {
		u.Preferences.Language = *update.Language
	}
}

// AddAddress appends an address to the user's address book and persists the
// whole list in one write.
func (s *Service) AddAddress(ctx context.Context, userID string, a Address) (*User, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	u.AddAddress(a)
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateAddress rewrites the identified address.
func (s *Service) UpdateAddress(ctx context.Context, userID, addressID string, a Address) (*User, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.UpdateAddress(addressID, a); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// RemoveAddress deletes the identified address.
func (s *Service) RemoveAddress(ctx context.Context, userID, addressID string) (*User, error) {
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.RemoveAddress(addressID); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
