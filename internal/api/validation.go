package api

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/example/bakery-storefront/internal/domain/order"
	"github.com/example/bakery-storefront/internal/domain/user"
)

const (
	maxNotesLen   = 500
	maxCommentLen = 1000
)

// Indian mobile numbers: ten digits starting 6-9. A +91 prefix is stripped
// before matching.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

var pincodePattern = regexp.MustCompile(`^\d{6}$`)

func validPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimPrefix(phone, "+91"))
}

func validateAddress(a user.Address) []FieldError {
	var errs []FieldError
	if a.Type != "" && a.Type != user.AddressHome && a.Type != user.AddressWork && a.Type != user.AddressOther {
		errs = append(errs, FieldError{Field: "type", Message: "type must be home, work or other"})
	}
	if strings.TrimSpace(a.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if !validPhone(a.Phone) {
		errs = append(errs, FieldError{Field: "phone", Message: "phone must be a valid 10-digit mobile number"})
	}
	if strings.TrimSpace(a.HouseNumber) == "" {
		errs = append(errs, FieldError{Field: "houseNumber", Message: "houseNumber is required"})
	}
	if strings.TrimSpace(a.Street) == "" {
		errs = append(errs, FieldError{Field: "street", Message: "street is required"})
	}
	if !pincodePattern.MatchString(a.Pincode) {
		errs = append(errs, FieldError{Field: "pincode", Message: "pincode must be 6 digits"})
	}
	if strings.TrimSpace(a.City) == "" {
		errs = append(errs, FieldError{Field: "city", Message: "city is required"})
	}
	if strings.TrimSpace(a.State) == "" {
		errs = append(errs, FieldError{Field: "state", Message: "state is required"})
	}
	return errs
}

func validatePlaceOrder(req placeOrderRequest) []FieldError {
	var errs []FieldError
	if len(req.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Message: "order must contain at least one item"})
	}
	for i, line := range req.Items {
		if line.ProductID == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "productId is required"})
		}
		if line.Quantity < 1 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "quantity must be at least 1"})
		}
	}
	errs = append(errs, prefixFields("deliveryAddress.", validateAddress(req.DeliveryAddress))...)
	if !order.ValidPaymentMethod(req.PaymentMethod) {
		errs = append(errs, FieldError{Field: "paymentMethod", Message: "paymentMethod must be cod, online or wallet"})
	}
	if len(req.Notes) > maxNotesLen {
		errs = append(errs, FieldError{Field: "notes", Message: fmt.Sprintf("notes must be at most %d characters", maxNotesLen)})
	}
	return errs
}

func validateRating(r order.Rating) []FieldError {
	var errs []FieldError
	for _, score := range []struct {
		field string
		value int
	}{
		{"overall", r.Overall},
		{"food", r.Food},
		{"delivery", r.Delivery},
	} {
		if score.value < 1 || score.value > 5 {
			errs = append(errs, FieldError{Field: score.field, Message: "score must be between 1 and 5"})
		}
	}
	if len(r.Comment) > maxCommentLen {
		errs = append(errs, FieldError{Field: "comment", Message: fmt.Sprintf("comment must be at most %d characters", maxCommentLen)})
	}
	return errs
}

func prefixFields(prefix string, errs []FieldError) []FieldError {
	for i := range errs {
		errs[i].Field = prefix + errs[i].Field
	}
	return errs
}
