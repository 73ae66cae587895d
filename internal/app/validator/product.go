// Package validator checks candidate product payloads. Values usually come
// from form fields, so every rule works on strings.
package validator

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Mode int

const (
	// ModeCreate requires every product field.
	ModeCreate Mode = iota
	// ModeUpdate checks only the fields that are present.
	ModeUpdate
)

const (
	FieldName        = "name"
	FieldBrand       = "brand"
	FieldCategory    = "category"
	FieldPrice       = "price"
	FieldDescription = "description"
)

// ProductFields lists the client-writable product fields in rule order.
var ProductFields = []string{FieldName, FieldBrand, FieldCategory, FieldPrice, FieldDescription}

type rule func(value string) (string, bool)

var productRules = map[string]rule{
	FieldName:        minLength(2),
	FieldBrand:       minLength(2),
	FieldCategory:    minLength(2),
	FieldPrice:       positiveNumber,
	FieldDescription: minLength(10),
}

// ValidateProduct returns a field -> message map for every failing field.
// An empty map means the payload is valid.
func ValidateProduct(fields map[string]string, mode Mode) map[string]string {
	errs := make(map[string]string)
	for _, name := range ProductFields {
		value, present := fields[name]
		if !present {
			if mode == ModeCreate {
				errs[name] = "is required"
			}
			continue
		}
		if msg, ok := productRules[name](strings.TrimSpace(value)); !ok {
			errs[name] = msg
		}
	}
	return errs
}

func minLength(n int) rule {
	msg := "must be at least " + strconv.Itoa(n) + " characters"
	return func(value string) (string, bool) {
		if value == "" {
			return "is required", false
		}
		if utf8.RuneCountInString(value) < n {
			return msg, false
		}
		return "", true
	}
}

func positiveNumber(value string) (string, bool) {
	if value == "" {
		return "is required", false
	}
	price, err := ParsePrice(value)
	if err != nil {
		return "must be a number", false
	}
	if price <= 0 {
		return "must be greater than 0", false
	}
	return "", true
}

// ParsePrice coerces a price field to a finite float.
func ParsePrice(value string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, strconv.ErrSyntax
	}
	return price, nil
}
