// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)      → parses requests, writes responses
//	Service (Business layer)  → validates, enforces access rules, orchestrates
//	Repository (Data layer)   → reads/writes to the database
//
// Every service method receives the caller's auth.Identity explicitly. The
// middleware has already verified it; services only decide what that
// identity may see or change.
//
// ORDER OF CHECKS (same in every method):
//  1. input validation     → apperror.ErrValidation, the store is never touched
//  2. identity required?   → apperror.ErrUnauthorized
//  3. existence/ownership  → apperror.ErrNotFound / apperror.ErrForbidden
//  4. the write itself     → apperror.ErrConflict on uniqueness
//
// Anything else coming back from the store is wrapped as apperror.ErrInternal
// with the cause attached for the logs.
package service

import (
	"context"
	"time"

	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/model"
)

// VolcanoLookup is the slice of VolcanoService the content services need:
// an existence check before writing against a volcano.
type VolcanoLookup interface {
	Exists(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64, caller auth.Identity) (*model.Volcano, error)
}

var _ VolcanoLookup = (*VolcanoService)(nil)

const msgUnauthorized = "Authorization header ('Bearer token') not found"

// clock lets tests pin "now".
type clock func() time.Time

func systemClock() time.Time { return time.Now() }

// fieldsFor maps the caller's visibility to the volcano projection.
func fieldsFor(caller auth.Identity) model.VolcanoFields {
	if auth.VisibilityFor(caller) == auth.Public {
		return model.RestrictedFields
	}
	return model.AllFields
}
