package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"catalog_api/internal/domain/model"
)

const (
	usersKey    = "user"
	productsKey = "products"
)

// Document is the whole database file. Collections other than users and
// products are kept verbatim so a rewrite never drops them.
type Document struct {
	Users    []model.User
	Products []model.Product

	extra map[string]json.RawMessage
}

type userRecord struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// productRecord reads a stored product. Records written by json-server's
// generic PATCH route may hold the price as a string.
type productRecord struct {
	model.Product
	Price lenientPrice `json:"price"`
}

type lenientPrice float64

func (p *lenientPrice) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price %q is not a number", s)
		}
		*p = lenientPrice(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = lenientPrice(v)
	return nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.extra)+2)
	for k, v := range d.extra {
		out[k] = v
	}

	users := make([]userRecord, 0, len(d.Users))
	for _, u := range d.Users {
		users = append(users, userRecord{ID: u.ID, Name: u.Name, Password: u.HashedPassword, Role: u.Role})
	}
	out[usersKey] = users

	products := d.Products
	if products == nil {
		products = []model.Product{}
	}
	out[productsKey] = products

	return json.Marshal(out)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	d.Users, d.Products = nil, nil
	if usersRaw, ok := raw[usersKey]; ok {
		var users []userRecord
		if err := json.Unmarshal(usersRaw, &users); err != nil {
			return fmt.Errorf("decode %q collection: %w", usersKey, err)
		}
		for _, u := range users {
			d.Users = append(d.Users, model.User{ID: u.ID, Name: u.Name, HashedPassword: u.Password, Role: u.Role})
		}
		delete(raw, usersKey)
	}
	if productsRaw, ok := raw[productsKey]; ok {
		var products []productRecord
		if err := json.Unmarshal(productsRaw, &products); err != nil {
			return fmt.Errorf("decode %q collection: %w", productsKey, err)
		}
		for _, p := range products {
			product := p.Product
			product.Price = float64(p.Price)
			d.Products = append(d.Products, product)
		}
		delete(raw, productsKey)
	}
	d.extra = raw
	return nil
}

// NextProductID returns max(id)+1, the way json-server numbers new records.
func (d *Document) NextProductID() int {
	next := 1
	for _, p := range d.Products {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

func (d *Document) ProductIndex(id int) int {
	for i, p := range d.Products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) UserIndex(id int) int {
	for i, u := range d.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
