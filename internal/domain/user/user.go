package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrAddressNotFound = errors.New("address not found")
	ErrPhoneTaken      = errors.New("phone number already registered")
)

type AddressType string

const (
	AddressHome  AddressType = "home"
	AddressWork  AddressType = "work"
	AddressOther AddressType = "other"
)

type Address struct {
	ID          string      `json:"id"`
	Type        AddressType `json:"type"`
	Name        string      `json:"name"`
	Phone       string      `json:"phone"`
	Street      string      `json:"street"`
	HouseNumber string      `json:"houseNumber"`
	Landmark    string      `json:"landmark,omitempty"`
	Pincode     string      `json:"pincode"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	IsDefault   bool        `json:"isDefault"`
}

type Preferences struct {
	Notifications bool   `json:"notifications"`
	Marketing     bool   `json:"marketing"`
	Language      string `json:"language"`
}

// User is an account keyed by the identity provider's subject id.
type User struct {
	ID            string      `json:"id"`
	SubjectID     string      `json:"subjectId"`
	Phone         string      `json:"phone"`
	Name          string      `json:"name,omitempty"`
	Email         string      `json:"email,omitempty"`
	DateOfBirth   *time.Time  `json:"dateOfBirth,omitempty"`
	Addresses     []Address   `json:"addresses"`
	Preferences   Preferences `json:"preferences"`
	LoyaltyPoints int         `json:"loyaltyPoints"`
	IsActive      bool        `json:"isActive"`
	LastLoginAt   time.Time   `json:"lastLoginAt"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// DefaultAddress returns the default address, falling back to the first one.
func (u *User) DefaultAddress() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].IsDefault {
			return &u.Addresses[i]
		}
	}
	if len(u.Addresses) > 0 {
		return &u.Addresses[0]
	}
	return nil
}

// normalizeDefaults makes the address list hold exactly one default entry
// whenever it is non-empty: the first flagged default wins, and a list with no
// default promotes its first address. Runs before every address list write.
func normalizeDefaults(addresses []Address) {
	if len(addresses) == 0 {
		return
	}
	seen := false
	for i := range addresses {
		if addresses[i].IsDefault {
			if seen {
				addresses[i].IsDefault = false
			}
			seen = true
		}
	}
	if !seen {
		addresses[0].IsDefault = true
	}
}

// AddAddress appends an address. The first address, or one explicitly flagged
// default, becomes the sole default.
func (u *User) AddAddress(a Address) {
	if len(u.Addresses) == 0 || a.IsDefault {
		for i := range u.Addresses {
			u.Addresses[i].IsDefault = false
		}
		a.IsDefault = true
	}
	u.Addresses = append(u.Addresses, a)
	normalizeDefaults(u.Addresses)
}

// UpdateAddress replaces the fields of the address with the given id. Setting
// it default clears the flag on every other address.
func (u *User) UpdateAddress(id string, updated Address) error {
	idx := -1
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAddressNotFound
	}
	if updated.IsDefault {
		for i := range u.Addresses {
			if i != idx {
				u.Addresses[i].IsDefault = false
			}
		}
	}
	updated.ID = id
	u.Addresses[idx] = updated
	normalizeDefaults(u.Addresses)
	return nil
}

// RemoveAddress deletes the address with the given id. If it was the default,
// the first remaining address becomes the default.
func (u *User) RemoveAddress(id string) error {
	idx := -1
	for i := range u.Addresses {
		if u.Addresses[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrAddressNotFound
	}
	wasDefault := u.Addresses[idx].IsDefault
	u.Addresses = append(u.Addresses[:idx], u.Addresses[idx+1:]...)
	if wasDefault && len(u.Addresses) > 0 {
		u.Addresses[0].IsDefault = true
	}
	normalizeDefaults(u.Addresses)
	return nil
}
