// Package service implements the Connect services and the balance read path.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/MichealAPI/payly/internal/auth"
	"github.com/MichealAPI/payly/internal/middleware"
	"github.com/MichealAPI/payly/internal/models"
	"github.com/MichealAPI/payly/internal/rpc"
	"github.com/MichealAPI/payly/internal/storage"
)

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrNotMember       = errors.New("not a member of this group")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrForbidden       = errors.New("operation not permitted")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// connectError maps service and storage errors onto Connect codes.
func connectError(err error) *connect.Error {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, ErrGroupNotFound), errors.Is(err, ErrUserNotFound), errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// caller returns the authenticated user ID set by middleware.RequireAuth.
func caller(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalidArgument("group_id required")
	}
	group, err := store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, groupID)
	}
	if err != nil {
		return nil, err
	}
	if !group.HasMember(userID) {
		return nil, ErrNotMember
	}
	return group, nil
}

// usersByEmail resolves registered users, failing on the first unknown address.
func usersByEmail(ctx context.Context, store storage.Store, emails []string) ([]string, error) {
	ids := make([]string, 0, len(emails))
	for _, email := range emails {
		user, err := store.GetUserByEmail(ctx, auth.NormalizeEmail(email))
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		ids = append(ids, user.ID)
	}
	return ids, nil
}

func toUser(u *models.User) *rpc.User {
	return &rpc.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// groupMessage resolves member IDs into users. Members whose account no longer
// exists are listed by ID only.
func groupMessage(ctx context.Context, store storage.Store, group *models.Group) (*rpc.Group, error) {
	users, err := store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, err
	}

	members := make([]*rpc.User, len(group.Members))
	for i, id := range group.Members {
		if u, ok := users[id]; ok {
			members[i] = toUser(u)
		} else {
			slog.Warn("Group member without account", "group_id", group.ID, "user_id", id)
			members[i] = &rpc.User{ID: id, DisplayName: id}
		}
	}

	return &rpc.Group{
		ID:        group.ID,
		Name:      group.Name,
		Currency:  group.Currency,
		Members:   members,
		CreatedBy: group.CreatedBy,
		CreatedAt: group.CreatedAt,
	}, nil
}
