package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/splitpool/internal/auth"
	"github.com/mmynk/splitpool/internal/calculator"
	"github.com/mmynk/splitpool/internal/ledger"
	"github.com/mmynk/splitpool/internal/middleware"
)

var errAuthRequired = errors.New("authentication required")

// Metadata keys carrying the two amounts of a split mismatch.
const (
	SplitExpectedKey = "Split-Expected"
	SplitComputedKey = "Split-Computed"
)

// toConnectError maps a ledger error onto a Connect status code.
func toConnectError(err error) error {
	var (
		validation *ledger.ValidationError
		notFound   *ledger.NotFoundError
		conflict   *ledger.ConflictError
		forbidden  *ledger.ForbiddenError
	)
	switch {
	case errors.As(err, &validation):
		connectErr := connect.NewError(connect.CodeInvalidArgument, err)
		var mismatch *calculator.MismatchError
		if errors.As(err, &mismatch) {
			connectErr.Meta().Set(SplitExpectedKey, mismatch.Expected.StringFixed(2))
			connectErr.Meta().Set(SplitComputedKey, mismatch.Computed.StringFixed(2))
		}
		return connectErr
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &conflict):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &forbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, fmt.Errorf("internal error: %w", err))
	}
}

// requireMember returns the authenticated member id set by middleware.RequireAuth.
func requireMember(ctx context.Context) (string, error) {
	memberID := middleware.GetMemberID(ctx)
	if memberID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errAuthRequired)
	}
	return memberID, nil
}

// authError maps authenticator errors onto Connect codes.
func authError(err error) error {
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrMissingName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
