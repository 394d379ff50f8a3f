// Package shared holds types used by every ERP resource.
package shared

import (
	"strconv"
	"strings"
)

// ID identifies a server-side record
type ID = int64

// Endpoints derives the REST paths of one resource from its base path,
// following the API convention GET_ALL, GET_BY_ID, ADD, UPDATE, DELETE.
type Endpoints struct {
	base string
}

// NewEndpoints creates endpoints rooted at base, e.g. "/erp/accounts/budgets"
func NewEndpoints(base string) Endpoints {
	return Endpoints{base: "/" + strings.Trim(base, "/")}
}

// Base returns the collection path
func (e Endpoints) Base() string {
	return e.base
}

// GetAll lists the collection
func (e Endpoints) GetAll() string {
	return e.base
}

// GetByID addresses one record
func (e Endpoints) GetByID(id ID) string {
	return e.base + "/" + strconv.FormatInt(id, 10)
}

// Add creates a record
func (e Endpoints) Add() string {
	return e.base + "/add"
}

// Update modifies a record
func (e Endpoints) Update(id ID) string {
	return e.GetByID(id) + "/update"
}

// Delete removes a record
func (e Endpoints) Delete(id ID) string {
	return e.GetByID(id) + "/delete"
}

// ParseID parses a record ID given on a command line or in a path
func ParseID(s string) (ID, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
