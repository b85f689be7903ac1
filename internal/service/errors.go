// Package service implements the settleup.v1 Connect services on top of the
// ledger and storage layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

var errNotMember = errors.New("caller is not a member of the group")

// toConnectError maps domain errors to Connect codes. Anything unrecognized
// is an internal failure and is logged at error level.
func toConnectError(ctx context.Context, op string, err error) error {
	var (
		validation *models.ValidationError
		notFound   *models.NotFoundError
		transition *models.InvalidStatusTransitionError
		connectErr *connect.Error
	)
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &transition):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	slog.ErrorContext(ctx, op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
}

func requirePositiveID(field string, id int64) error {
	if id <= 0 {
		return connect.NewError(connect.CodeInvalidArgument, models.NewValidationError(field, "required"))
	}
	return nil
}

// requireMember checks that the authenticated caller belongs to the group.
func requireMember(ctx context.Context, store storage.Store, groupID int64) error {
	callerID := middleware.GetUserID(ctx)
	if callerID == 0 {
		return connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(callerID) {
		return connect.NewError(connect.CodePermissionDenied, errNotMember)
	}
	return nil
}
