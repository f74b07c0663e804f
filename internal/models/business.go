package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type AddressKind int

const (
	AddressNone AddressKind = iota
	AddressPlainText
	AddressStructured
)

// Address is either a free-text line or a structured street/city/postal code
// triple. The backend sends both shapes in the same field.
type Address struct {
	Kind       AddressKind
	Text       string
	Street     string
	City       string
	PostalCode string
}

type structuredAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

func PlainTextAddress(text string) Address {
	return Address{Kind: AddressPlainText, Text: text}
}

func StructuredAddress(street, city, postalCode string) Address {
	return Address{Kind: AddressStructured, Street: street, City: city, PostalCode: postalCode}
}

// Format renders the address on a single line.
func (a Address) Format() string {
	switch a.Kind {
	case AddressPlainText:
		return strings.TrimSpace(a.Text)
	case AddressStructured:
		var parts []string
		for _, p := range []string{a.Street, strings.TrimSpace(a.PostalCode + " " + a.City)} {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func (a Address) String() string { return a.Format() }

func (a *Address) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Address{}
		return nil
	}
	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = PlainTextAddress(text)
		return nil
	case '{':
		var s structuredAddress
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = StructuredAddress(s.Street, s.City, s.PostalCode)
		return nil
	default:
		return fmt.Errorf("address must be a string or an object, got %s", string(data))
	}
}

func (a Address) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AddressPlainText:
		return json.Marshal(a.Text)
	case AddressStructured:
		return json.Marshal(structuredAddress{Street: a.Street, City: a.City, PostalCode: a.PostalCode})
	default:
		return []byte("null"), nil
	}
}

// Business is a service-provider tenant with its own services, staff and shifts.
type Business struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Address     Address `json:"address"`
	Phone       string  `json:"phone,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`

	// Filled client-side from the reviews endpoint.
	Rating      float64 `json:"-"`
	ReviewCount int     `json:"-"`
}

type BusinessUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Address     *Address `json:"address,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
}

type Review struct {
	ID         string `json:"id"`
	BusinessID string `json:"businessId"`
	UserID     string `json:"userId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
}

// AverageRating returns the mean rating and the number of reviews.
func AverageRating(reviews []Review) (float64, int) {
	if len(reviews) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}

type Favorite struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	BusinessID string    `json:"businessId"`
	Business   *Business `json:"business,omitempty"`
}
