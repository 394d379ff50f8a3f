package handler

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/interfaces/http/dto"
	"github.com/erp/client/internal/interfaces/http/mockdb"
)

// CRUD serves the five conventional endpoints of one resource backed by a
// mock table. In is the create/update body.
type CRUD[T any, In any] struct {
	BaseHandler

	// Label names one record in messages, e.g. "Budget"
	Label string
	Table *mockdb.Table[T]
	// Build creates the row for a new record
	Build func(id shared.ID, in In) T
	// Apply merges an update into row
	Apply func(row T, in In) T
	// Check returns a non-empty message to reject in; id is 0 on create
	Check func(id shared.ID, in In) string
}

// Register mounts the resource routes. Write routes run behind guards.
func (h *CRUD[T, In]) Register(r gin.IRoutes, e shared.Endpoints, guards ...gin.HandlerFunc) {
	guarded := func(final gin.HandlerFunc) []gin.HandlerFunc {
		return append(slices.Clone(guards), final)
	}
	r.GET(e.GetAll(), h.List)
	r.GET(e.Base()+"/:id", h.Get)
	r.POST(e.Add(), guarded(h.Add)...)
	r.PUT(e.Base()+"/:id/update", guarded(h.Update)...)
	r.DELETE(e.Base()+"/:id/delete", guarded(h.Delete)...)
}

// List returns every record
func (h *CRUD[T, In]) List(c *gin.Context) {
	h.Success(c, "", h.Table.List())
}

// Get returns one record
func (h *CRUD[T, In]) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	row, found := h.Table.Get(id)
	if !found {
		h.NotFound(c, h.Label+" not found")
		return
	}
	h.Success(c, "", row)
}

// Add creates a record
func (h *CRUD[T, In]) Add(c *gin.Context) {
	var in In
	if !h.bind(c, &in) {
		return
	}
	if msg := h.check(0, in); msg != "" {
		h.Reject(c, dto.ErrCodeConflict, msg)
		return
	}
	row := h.Table.Insert(func(id shared.ID) T { return h.Build(id, in) })
	h.Success(c, h.Label+" created successfully", row)
}

// Update modifies a record
func (h *CRUD[T, In]) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var in In
	if !h.bind(c, &in) {
		return
	}
	if _, found := h.Table.Get(id); !found {
		h.NotFound(c, h.Label+" not found")
		return
	}
	if msg := h.check(id, in); msg != "" {
		h.Reject(c, dto.ErrCodeConflict, msg)
		return
	}
	row, found := h.Table.Update(id, func(row T) T { return h.Apply(row, in) })
	if !found {
		h.NotFound(c, h.Label+" not found")
		return
	}
	h.Success(c, h.Label+" updated successfully", row)
}

// Delete removes a record
func (h *CRUD[T, In]) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if !h.Table.Delete(id) {
		h.NotFound(c, h.Label+" not found")
		return
	}
	h.Success(c, h.Label+" deleted successfully", nil)
}

func (h *CRUD[T, In]) check(id shared.ID, in In) string {
	if h.Check == nil {
		return ""
	}
	return h.Check(id, in)
}
