package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	user := createTestUser(t, repo, "alice", RoleReporter, true)

	if user.ID == "" {
		t.Fatal("Create() did not assign an ID")
	}

	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Username != "alice" {
		t.Errorf("Username = %q, want %q", byID.Username, "alice")
	}
	if byID.Role != RoleReporter {
		t.Errorf("Role = %q, want %q", byID.Role, RoleReporter)
	}
	if !byID.IsActive {
		t.Error("IsActive = false, want true")
	}

	byName, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("GetByUsername().ID = %q, want %q", byName.ID, user.ID)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository(testDB(t))

	createTestUser(t, repo, "alice", RoleReporter, true)

	dup := &User{Username: "alice", PasswordHash: "x", Role: RoleReporter, IsActive: true}
	err := repo.Create(context.Background(), dup)
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create() duplicate error = %v, want ErrUsernameExists", err)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByID(ctx, "usr-none"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID() error = %v, want ErrUserNotFound", err)
	}
	if err := repo.Delete(ctx, "usr-none"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Delete() error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	user := createTestUser(t, repo, "bob", RoleReporter, true)

	user.Role = RoleAdmin
	user.IsActive = false
	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	updated, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if updated.Role != RoleAdmin {
		t.Errorf("Role = %q, want %q", updated.Role, RoleAdmin)
	}
	if updated.IsActive {
		t.Error("IsActive = true, want false after update")
	}
}

func TestUserRepository_ListAndCount(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("List() on empty db = %d users, want 0", len(users))
	}

	createTestUser(t, repo, "alice", RoleReporter, true)
	createTestUser(t, repo, "bob", RoleAdmin, true)

	users, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Errorf("List() = %d users, want 2", len(users))
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}
