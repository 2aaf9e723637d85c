package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/omnidash/omnidash/internal/model"
)

func newUser(email string) model.User {
	return model.User{
		ID:    "user-" + email,
		Email: email,
		Name:  "Test User",
	}
}

func TestStore_PutAndGet(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	got, err := s.Get("alice@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", got.Email)
	}
}

func TestStore_GetMissing(t *testing.T) {
	t.Parallel()

	s := New()

	_, err := s.Get("nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	got, err := s.Get("alice@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	// Mutating the returned value must not affect the stored record.
	got.Name = "Mallory"

	again, err := s.Get("alice@example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Name != "Test User" {
		t.Errorf("stored record was mutated through a returned copy: %s", again.Name)
	}
}

func TestStore_PutIfAbsent(t *testing.T) {
	t.Parallel()

	s := New()

	if err := s.PutIfAbsent(newUser("alice@example.com")); err != nil {
		t.Fatalf("first PutIfAbsent failed: %v", err)
	}

	second := newUser("alice@example.com")
	second.ID = "other-id"
	err := s.PutIfAbsent(second)
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// The first record must have won.
	got, _ := s.Get("alice@example.com")
	if got.ID != "user-alice@example.com" {
		t.Errorf("expected first record to be kept, got id %s", got.ID)
	}
}

func TestStore_Contains(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	if !s.Contains("alice@example.com") {
		t.Error("expected Contains true for stored email")
	}
	if s.Contains("bob@example.com") {
		t.Error("expected Contains false for missing email")
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	if err := s.Delete("alice@example.com"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Contains("alice@example.com") {
		t.Error("record still present after Delete")
	}
	if err := s.Delete("alice@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	updated, err := s.Update("alice@example.com", func(u *model.User) error {
		u.Bio = "hello"
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Bio != "hello" {
		t.Errorf("expected updated bio, got %q", updated.Bio)
	}

	got, _ := s.Get("alice@example.com")
	if got.Bio != "hello" {
		t.Errorf("update not written back, bio %q", got.Bio)
	}
}

func TestStore_UpdateRelocatesKey(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	updated, err := s.Update("alice@example.com", func(u *model.User) error {
		u.Email = "alice2@example.com"
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Email != "alice2@example.com" {
		t.Errorf("unexpected email after update: %s", updated.Email)
	}

	if s.Contains("alice@example.com") {
		t.Error("old email key still resolvable after relocation")
	}

	got, err := s.Get("alice2@example.com")
	if err != nil {
		t.Fatalf("new email key not resolvable: %v", err)
	}
	if got.ID != "user-alice@example.com" {
		t.Errorf("relocated record changed identity: %s", got.ID)
	}
}

func TestStore_UpdateRejectsTakenKey(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))
	s.Put(newUser("bob@example.com"))

	_, err := s.Update("alice@example.com", func(u *model.User) error {
		u.Email = "bob@example.com"
		return nil
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Both records must be untouched.
	if !s.Contains("alice@example.com") {
		t.Error("original record lost after failed relocation")
	}
	bob, _ := s.Get("bob@example.com")
	if bob.ID != "user-bob@example.com" {
		t.Errorf("target record was clobbered: %s", bob.ID)
	}
}

func TestStore_UpdateFnErrorAborts(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("alice@example.com"))

	wantErr := errors.New("validation failed")
	_, err := s.Update("alice@example.com", func(u *model.User) error {
		u.Bio = "should not stick"
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error to propagate, got %v", err)
	}

	got, _ := s.Get("alice@example.com")
	if got.Bio != "" {
		t.Errorf("aborted update leaked changes: %q", got.Bio)
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	t.Parallel()

	s := New()

	_, err := s.Update("nobody@example.com", func(u *model.User) error { return nil })
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := New()
	s.Put(newUser("shared@example.com"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Put(newUser(fmt.Sprintf("user%d@example.com", i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Update("shared@example.com", func(u *model.User) error {
				u.Bio = fmt.Sprintf("edit %d", i)
				return nil
			})
		}(i)
	}
	wg.Wait()

	if got := s.Len(); got != 51 {
		t.Errorf("expected 51 records, got %d", got)
	}
	if !s.Contains("shared@example.com") {
		t.Error("shared record lost under concurrent access")
	}
}
