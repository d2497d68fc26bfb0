package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

var (
	testUserA = uuid.New()
	testUserB = uuid.New()
)

func TestInMemoryCommentStore_Create(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	c, err := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "hello", ContentHTML: "<p>hello</p>"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if c.Content != "hello" {
		t.Fatalf("expected content 'hello', got %q", c.Content)
	}
	if c.CreatedAt.IsZero() || c.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
	if c.IsDeleted {
		t.Fatal("new comment must not be deleted")
	}
}

func TestInMemoryCommentStore_GetByID(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	c, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "x"})

	got, err := s.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != c.ID {
		t.Fatalf("expected id %d, got %d", c.ID, got.ID)
	}

	if _, err := s.GetByID(ctx, 9999); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestInMemoryCommentStore_RootsByPost_NewestFirst(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	first, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "first"})
	second, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserB, Content: "second"})
	// A reply must never show up among roots.
	pid := first.ID
	_, _ = s.Create(ctx, Comment{PostID: 1, UserID: testUserB, ParentCommentID: &pid, Content: "reply", NestingLevel: 1})
	// Another post's root is invisible here.
	_, _ = s.Create(ctx, Comment{PostID: 2, UserID: testUserA, Content: "elsewhere"})

	roots, err := s.RootsByPost(ctx, 1, 20, 0)
	if err != nil {
		t.Fatalf("roots: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != second.ID || roots[1].ID != first.ID {
		t.Fatalf("expected newest-first [%d %d], got [%d %d]", second.ID, first.ID, roots[0].ID, roots[1].ID)
	}
}

func TestInMemoryCommentStore_RootsByPost_Pagination(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		c, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "c"})
		ids = append(ids, c.ID)
	}

	page1, err := s.RootsByPost(ctx, 1, 2, 0)
	if err != nil {
		t.Fatalf("page1: %v", err)
	}
	page2, err := s.RootsByPost(ctx, 1, 2, 2)
	if err != nil {
		t.Fatalf("page2: %v", err)
	}
	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("expected 2+2 roots, got %d+%d", len(page1), len(page2))
	}
	// Newest first: page1 holds the last two created.
	if page1[0].ID != ids[4] || page1[1].ID != ids[3] {
		t.Fatalf("unexpected page1 order: [%d %d]", page1[0].ID, page1[1].ID)
	}
	if page2[0].ID != ids[2] || page2[1].ID != ids[1] {
		t.Fatalf("unexpected page2 order: [%d %d]", page2[0].ID, page2[1].ID)
	}

	empty, err := s.RootsByPost(ctx, 1, 2, 10)
	if err != nil {
		t.Fatalf("offset past end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d", len(empty))
	}
}

func TestInMemoryCommentStore_RepliesByParents_OldestFirst(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	root1, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "root1"})
	root2, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "root2"})

	p1, p2 := root1.ID, root2.ID
	r1, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserB, ParentCommentID: &p1, Content: "r1", NestingLevel: 1})
	r2, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserB, ParentCommentID: &p1, Content: "r2", NestingLevel: 1})
	r3, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserB, ParentCommentID: &p2, Content: "r3", NestingLevel: 1})

	replies, err := s.RepliesByParents(ctx, []int64{p1, p2})
	if err != nil {
		t.Fatalf("replies: %v", err)
	}
	if len(replies) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(replies))
	}
	// Oldest first across the batch.
	if replies[0].ID != r1.ID || replies[1].ID != r2.ID || replies[2].ID != r3.ID {
		t.Fatalf("unexpected reply order: [%d %d %d]", replies[0].ID, replies[1].ID, replies[2].ID)
	}

	none, err := s.RepliesByParents(ctx, nil)
	if err != nil {
		t.Fatalf("empty parents: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no replies for empty parent set, got %d", len(none))
	}
}

func TestInMemoryCommentStore_CountByPost_ExcludesDeleted(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	a, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "a"})
	_, _ = s.Create(ctx, Comment{PostID: 1, UserID: testUserB, Content: "b"})
	_, _ = s.Create(ctx, Comment{PostID: 2, UserID: testUserA, Content: "other post"})

	n, err := s.CountByPost(ctx, 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}

	if err := s.SoftDelete(ctx, a.ID, testUserA); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	n, _ = s.CountByPost(ctx, 1)
	if n != 1 {
		t.Fatalf("expected 1 after delete, got %d", n)
	}
}

func TestInMemoryCommentStore_SoftDelete(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	c, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "will delete", ContentHTML: "<p>will delete</p>"})

	if err := s.SoftDelete(ctx, c.ID, testUserB); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// The row survives with its content replaced.
	got, err := s.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if !got.IsDeleted {
		t.Fatal("expected is_deleted")
	}
	if got.Content != SoftDeleteMark || got.ContentHTML != SoftDeleteMarkHTML {
		t.Fatalf("expected deletion mark, got %q / %q", got.Content, got.ContentHTML)
	}
	if got.DeletedBy == nil || *got.DeletedBy != testUserB {
		t.Fatal("expected deleted_by to record the deleter")
	}
	if got.DeletedAt == nil {
		t.Fatal("expected deleted_at to be set")
	}

	// Gone from roots.
	roots, _ := s.RootsByPost(ctx, 1, 20, 0)
	if len(roots) != 0 {
		t.Fatalf("expected deleted comment out of roots, got %d", len(roots))
	}

	// Double delete fails.
	if err := s.SoftDelete(ctx, c.ID, testUserB); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound for double delete, got %v", err)
	}
	// Unknown id fails.
	if err := s.SoftDelete(ctx, 9999, testUserB); !errors.Is(err, ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound for unknown id, got %v", err)
	}
}

func TestInMemoryCommentStore_DeletedReplyHiddenButOrphanVisible(t *testing.T) {
	s := NewInMemoryCommentStore()
	ctx := context.Background()

	root, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, Content: "root"})
	pid := root.ID
	mid, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserB, ParentCommentID: &pid, Content: "mid", NestingLevel: 1})
	mpid := mid.ID
	leaf, _ := s.Create(ctx, Comment{PostID: 1, UserID: testUserA, ParentCommentID: &mpid, Content: "leaf", NestingLevel: 2})

	if err := s.SoftDelete(ctx, mid.ID, testUserB); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// The deleted mid-level reply is filtered out...
	replies, _ := s.RepliesByParents(ctx, []int64{root.ID})
	if len(replies) != 0 {
		t.Fatalf("expected deleted reply hidden, got %d", len(replies))
	}
	// ...but its child is still reachable under the deleted parent's id.
	orphans, _ := s.RepliesByParents(ctx, []int64{mid.ID})
	if len(orphans) != 1 || orphans[0].ID != leaf.ID {
		t.Fatalf("expected orphaned leaf under deleted parent, got %v", orphans)
	}
}
