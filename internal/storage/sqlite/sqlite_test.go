package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/studytracker/internal/models"
	"github.com/mmynk/studytracker/internal/storage"
)

// newTestStore opens a migrated store backed by a file in a temp dir.
// A file is used rather than :memory: so pooled connections share one database.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func ptr[T any](v T) *T {
	return &v
}

func TestMigrations(t *testing.T) {
	store := newTestStore(t)

	version, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != 4 {
		t.Errorf("Expected schema version 4, got %d", version)
	}

	t.Run("reopening an existing database is a no-op", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reopen.db")
		first, err := New(path)
		if err != nil {
			t.Fatalf("first open failed: %v", err)
		}
		first.Close()

		second, err := New(path)
		if err != nil {
			t.Fatalf("second open failed: %v", err)
		}
		defer second.Close()

		if err := second.Ping(context.Background()); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	admin := &models.User{Username: "admin", PasswordHash: "hash", Role: models.RoleAdmin, Approved: true}
	if err := store.CreateUser(ctx, admin); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	pending := &models.User{Username: "bob", PasswordHash: "hash", Role: models.RoleUser}
	if err := store.CreateUser(ctx, pending); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("CreateUser assigns IDs", func(t *testing.T) {
		if admin.ID == 0 || pending.ID == 0 {
			t.Fatalf("Expected IDs to be assigned, got %d and %d", admin.ID, pending.ID)
		}
		if admin.ID == pending.ID {
			t.Error("Expected distinct IDs")
		}
	})

	t.Run("duplicate username is a conflict", func(t *testing.T) {
		err := store.CreateUser(ctx, &models.User{Username: "bob", PasswordHash: "x", Role: models.RoleUser})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("GetUserByUsername round-trips fields", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "admin")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if got.ID != admin.ID || got.Role != models.RoleAdmin || !got.Approved || got.PasswordHash != "hash" {
			t.Errorf("Unexpected user: %+v", got)
		}
		if got.CreatedAt == "" {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		if _, err := store.GetUserByUsername(ctx, "nobody"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByID(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ApproveUser", func(t *testing.T) {
		if err := store.ApproveUser(ctx, pending.ID); err != nil {
			t.Fatalf("ApproveUser failed: %v", err)
		}
		got, err := store.GetUserByID(ctx, pending.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if !got.Approved {
			t.Error("Expected user to be approved")
		}

		if err := store.ApproveUser(ctx, pending.ID); !errors.Is(err, storage.ErrAlreadyApproved) {
			t.Errorf("Expected ErrAlreadyApproved, got %v", err)
		}
		if err := store.ApproveUser(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListUsers orders by username", func(t *testing.T) {
		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 2 {
			t.Fatalf("Expected 2 users, got %d", len(users))
		}
		if users[0].Username != "admin" || users[1].Username != "bob" {
			t.Errorf("Unexpected order: %s, %s", users[0].Username, users[1].Username)
		}
	})

	t.Run("demoting the only admin is rejected", func(t *testing.T) {
		err := store.UpdateUser(ctx, admin.ID, models.UserUpdate{Role: ptr(models.RoleUser)})
		if !errors.Is(err, storage.ErrLastAdmin) {
			t.Fatalf("Expected ErrLastAdmin, got %v", err)
		}
		got, _ := store.GetUserByID(ctx, admin.ID)
		if got.Role != models.RoleAdmin {
			t.Error("Expected role to be unchanged")
		}
	})

	t.Run("demotion succeeds once another admin exists", func(t *testing.T) {
		if err := store.UpdateUser(ctx, pending.ID, models.UserUpdate{Role: ptr(models.RoleAdmin)}); err != nil {
			t.Fatalf("promote failed: %v", err)
		}
		if err := store.UpdateUser(ctx, admin.ID, models.UserUpdate{Role: ptr(models.RoleUser)}); err != nil {
			t.Fatalf("demote failed: %v", err)
		}
		got, _ := store.GetUserByID(ctx, admin.ID)
		if got.Role != models.RoleUser {
			t.Errorf("Expected role user, got %s", got.Role)
		}
	})

	t.Run("rename to a taken username is a conflict", func(t *testing.T) {
		err := store.UpdateUser(ctx, admin.ID, models.UserUpdate{Username: ptr("bob")})
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("UpdateUser on unknown id", func(t *testing.T) {
		err := store.UpdateUser(ctx, 9999, models.UserUpdate{Username: ptr("ghost")})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteUser", func(t *testing.T) {
		if err := store.DeleteUser(ctx, admin.ID); err != nil {
			t.Fatalf("DeleteUser failed: %v", err)
		}
		if err := store.DeleteUser(ctx, admin.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})
}
