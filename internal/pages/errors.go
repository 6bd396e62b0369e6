// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package pages

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a page lookup matches no row.
	ErrNotFound = errors.New("page not found")

	// ErrCycle matches any *CycleError via errors.Is.
	ErrCycle = errors.New("page cannot be its own ancestor")
)

// CycleError reports a reparent that would make a page its own ancestor.
type CycleError struct {
	PageID   uuid.UUID
	ParentID uuid.UUID
}

func (e *CycleError) Error() string {
	if e.PageID == e.ParentID {
		return fmt.Sprintf("page %s cannot be its own parent", e.PageID)
	}
	return fmt.Sprintf("page %s cannot be moved under its descendant %s", e.PageID, e.ParentID)
}

// Is lets errors.Is(err, ErrCycle) match.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
