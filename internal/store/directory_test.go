package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestInMemoryPostStore_Exists(t *testing.T) {
	s := NewInMemoryPostStore()
	ctx := context.Background()

	ok, err := s.Exists(ctx, 1)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatal("expected unknown post to not exist")
	}

	s.AddPost(1)
	ok, _ = s.Exists(ctx, 1)
	if !ok {
		t.Fatal("expected post 1 to exist")
	}

	// Soft-deleted posts reject new comments.
	s.RemovePost(1)
	ok, _ = s.Exists(ctx, 1)
	if ok {
		t.Fatal("expected removed post to not exist")
	}
}

func TestInMemoryUserStore_GetAuthor(t *testing.T) {
	s := NewInMemoryUserStore()
	ctx := context.Background()

	id := uuid.New()
	s.AddUser(Author{ID: id, Name: "alice"})

	a, err := s.GetAuthor(ctx, id)
	if err != nil {
		t.Fatalf("get author: %v", err)
	}
	if a.Name != "alice" {
		t.Fatalf("expected 'alice', got %q", a.Name)
	}

	if _, err := s.GetAuthor(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestInMemoryUserStore_GetAuthors_SkipsMissing(t *testing.T) {
	s := NewInMemoryUserStore()
	ctx := context.Background()

	a, b := uuid.New(), uuid.New()
	s.AddUser(Author{ID: a, Name: "alice"})

	got, err := s.GetAuthors(ctx, []uuid.UUID{a, b})
	if err != nil {
		t.Fatalf("get authors: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 resolved author, got %d", len(got))
	}
	if got[a].Name != "alice" {
		t.Fatalf("expected 'alice', got %q", got[a].Name)
	}
	if _, ok := got[b]; ok {
		t.Fatal("missing author must be absent from the map, not zero-valued")
	}
}
