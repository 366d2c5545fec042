package services_test

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "go.hackfix.me/crudkit/app/errors"
	"go.hackfix.me/crudkit/authz"
	"go.hackfix.me/crudkit/crud"
	"go.hackfix.me/crudkit/db"
	"go.hackfix.me/crudkit/db/models"
	"go.hackfix.me/crudkit/db/types"
	"go.hackfix.me/crudkit/resource/services"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func timeNowFn() time.Time {
	return timeNow
}

func newTestHandlers(t *testing.T, opts ...services.Option) *services.Handlers {
	t.Helper()

	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(t.Context(),
		fmt.Sprintf("file:crudkit-%x?mode=memory&cache=shared", rndName), timeNowFn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	logger := slog.New(slog.DiscardHandler)
	require.NoError(t, d.Init("test", logger))

	h, err := services.NewHandlers(d, logger, opts...)
	require.NoError(t, err)

	return h
}

func newCaller(t *testing.T, user string, roles ...string) *authz.Caller {
	t.Helper()
	c, err := authz.NewCaller(user, roles...)
	require.NoError(t, err)
	return c
}

func TestResourceLifecycle(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t, services.WithDefaultMaxAccessDuration(30*time.Minute))
	admin := newCaller(t, "root", authz.RoleAdmin)
	ctx := t.Context()

	created, err := h.Create()(ctx, crud.Payload{"name": "web", "port": float64(80)}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.Service{
		ID: 1, CreatedAt: timeNow, UpdatedAt: timeNow,
		Name: "web", Port: 80, MaxAccessDuration: 30 * time.Minute,
	}, created)

	_, err = h.Create()(ctx, crud.Payload{
		"name": "db", "port": "5432", "max_access_duration": "2h", "description": " Postgres ",
	}, admin)
	require.NoError(t, err)

	got, err := h.Detail()(ctx, 2, admin)
	require.NoError(t, err)
	assert.Equal(t, "db", got.Name)
	assert.Equal(t, "Postgres", got.Description)
	assert.Equal(t, uint16(5432), got.Port)
	assert.Equal(t, 2*time.Hour, got.MaxAccessDuration)

	updated, err := h.Update()(ctx, 1, crud.Payload{"port": 8080}, admin)
	require.NoError(t, err)
	assert.Equal(t, "web", updated.Name)
	assert.Equal(t, uint16(8080), updated.Port)
	assert.Equal(t, 30*time.Minute, updated.MaxAccessDuration)

	list, err := h.List()(ctx, crud.Payload{}, admin)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "db", list[0].Name)
	assert.Equal(t, "web", list[1].Name)

	list, err = h.List()(ctx, crud.Payload{"name": "w*"}, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "web", list[0].Name)

	list, err = h.List()(ctx, crud.Payload{"order": "-port", "limit": 1}, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "web", list[0].Name)

	deleted, err := h.Delete()(ctx, 1, admin)
	require.NoError(t, err)
	assert.Equal(t, "web", deleted.Name)

	_, err = h.Detail()(ctx, 1, admin)
	require.ErrorAs(t, err, &types.NoResultError{})
	assert.EqualError(t, err, "service with ID 1 doesn't exist")
}

func TestResourceErrors(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t)
	admin := newCaller(t, "root", authz.RoleAdmin)
	viewer := newCaller(t, "guest", authz.RoleViewer)
	operator := newCaller(t, "ops", authz.RoleOperator)
	ctx := t.Context()

	_, err := h.Create()(ctx, crud.Payload{"name": "web", "port": 80}, admin)
	require.NoError(t, err)

	tests := []struct {
		name   string
		call   func() error
		expErr any
		expMsg string
	}{
		{
			name: "err/duplicate",
			call: func() error {
				_, err := h.Create()(ctx, crud.Payload{"name": "web", "port": 81}, admin)
				return err
			},
			expErr: &types.DuplicateError{},
			expMsg: "service with name 'web' already exists",
		},
		{
			name: "err/missing_port",
			call: func() error {
				_, err := h.Create()(ctx, crud.Payload{"name": "api"}, admin)
				return err
			},
			expErr: &types.InvalidInputError{},
			expMsg: "service port is required",
		},
		{
			name: "err/unknown_field",
			call: func() error {
				_, err := h.Create()(ctx, crud.Payload{"name": "api", "port": 1, "owner": "x"}, admin)
				return err
			},
			expErr: &types.InvalidInputError{},
			expMsg: "unknown field 'owner'",
		},
		{
			name: "err/viewer_create",
			call: func() error {
				_, err := h.Create()(ctx, crud.Payload{"name": "api", "port": 1}, viewer)
				return err
			},
			expErr: &aerrors.PermissionError{},
			expMsg: "user 'guest' is not allowed to create services/api",
		},
		{
			name: "err/operator_delete",
			call: func() error {
				_, err := h.Delete()(ctx, 1, operator)
				return err
			},
			expErr: &aerrors.PermissionError{},
			expMsg: "user 'ops' is not allowed to delete services/web",
		},
		{
			name: "err/nil_caller",
			call: func() error {
				_, err := h.List()(ctx, crud.Payload{}, nil)
				return err
			},
			expErr: &aerrors.PermissionError{},
			expMsg: "user '' is not allowed to read services/*",
		},
		{
			name: "err/update_not_found",
			call: func() error {
				_, err := h.Update()(ctx, 42, crud.Payload{"port": 1}, admin)
				return err
			},
			expErr: &types.NoResultError{},
			expMsg: "service with ID 42 doesn't exist",
		},
		{
			name: "err/invalid_order",
			call: func() error {
				_, err := h.List()(ctx, crud.Payload{"order": "password"}, viewer)
				return err
			},
			expErr: &types.InvalidInputError{},
			expMsg: "invalid order 'password'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorAs(t, err, tt.expErr)
			assert.EqualError(t, err, tt.expMsg)
		})
	}

	t.Run("ok/viewer_detail", func(t *testing.T) {
		got, err := h.Detail()(ctx, 1, viewer)
		require.NoError(t, err)
		assert.Equal(t, "web", got.Name)
	})

	t.Run("ok/operator_update", func(t *testing.T) {
		got, err := h.Update()(ctx, 1, crud.Payload{"description": "frontend"}, operator)
		require.NoError(t, err)
		assert.Equal(t, "frontend", got.Description)
	})
}

func TestResourceCompact(t *testing.T) {
	t.Parallel()

	h := newTestHandlers(t)
	admin := newCaller(t, "root", authz.RoleAdmin)

	_, err := h.Create()(t.Context(), crud.Payload{"name": "web", "port": 80, "description": "x"}, admin)
	require.NoError(t, err)

	// Handler-level option.
	got, err := h.Detail(crud.Options{"compact": true})(t.Context(), 1, admin)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.IsZero())
	assert.Empty(t, got.Description)

	// Caller fields win over handler-level options.
	admin.Extra["compact"] = false
	got, err = h.Detail(crud.Options{"compact": true})(t.Context(), 1, admin)
	require.NoError(t, err)
	assert.True(t, timeNow.Equal(got.CreatedAt))
	assert.Equal(t, "x", got.Description)
}
