// Package store provides the in-memory credential store.
//
// Records live for the process lifetime only; there is no persistence and no
// eviction. All access goes through a single mutex so read-modify-write
// sequences (registration, profile edits, photo uploads) observe a consistent
// view, including the key relocation performed when an edit changes the email.
package store

import (
	"errors"
	"sync"

	"github.com/omnidash/omnidash/internal/model"
)

// Store errors.
var (
	// ErrUserNotFound indicates no record exists under the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the target email is already a store key.
	ErrEmailTaken = errors.New("email already taken")
)

// Store is a mutex-guarded mapping from email address to user record.
// Callers always receive copies; mutations must go through Put or Update.
type Store struct {
	mu    sync.RWMutex
	users map[string]model.User
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users: make(map[string]model.User),
	}
}

// Get returns a copy of the record stored under email.
func (s *Store) Get(email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

// Contains reports whether a record exists under email.
func (s *Store) Contains(email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[email]
	return ok
}

// Put stores the record under user.Email, overwriting any existing entry.
func (s *Store) Put(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.Email] = user
}

// PutIfAbsent stores the record under user.Email only if the key is free.
// Returns ErrEmailTaken otherwise. The check and the insert happen under
// one lock, so concurrent registrations for the same email cannot both win.
func (s *Store) PutIfAbsent(user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return ErrEmailTaken
	}
	s.users[user.Email] = user
	return nil
}

// Delete removes the record stored under email.
func (s *Store) Delete(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, email)
	return nil
}

// Update runs fn against the record stored under email inside a single
// critical section and writes the result back. If fn changes the record's
// email, the old key is removed and the new one inserted atomically from the
// caller's perspective; the relocation fails with ErrEmailTaken when another
// record already owns the target key. An error returned by fn aborts the
// update and leaves the store untouched.
//
// Returns a copy of the updated record.
func (s *Store) Update(email string, fn func(u *model.User) error) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[email]
	if !ok {
		return model.User{}, ErrUserNotFound
	}

	if err := fn(&u); err != nil {
		return model.User{}, err
	}

	if u.Email != email {
		if _, taken := s.users[u.Email]; taken {
			return model.User{}, ErrEmailTaken
		}
		delete(s.users, email)
	}
	s.users[u.Email] = u

	return u, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users)
}
