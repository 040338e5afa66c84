package memory

import (
	"context"
	"testing"

	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

func TestDocPutGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.DocGet(ctx, "missing"); err != nil || ok {
		t.Fatalf("DocGet on missing key = (%v, %v)", ok, err)
	}

	if err := s.DocPut(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("DocPut: %v", err)
	}
	v, ok, err := s.DocGet(ctx, "k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("DocGet = (%q, %v, %v), want (v, true, nil)", v, ok, err)
	}
}

func TestZRangeFIFOAtEqualPrice(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.ZAdd(ctx, "book", 100, "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.ZAdd(ctx, "book", 100, "second"); err != nil {
		t.Fatal(err)
	}
	if err := s.ZAdd(ctx, "book", 99, "cheaper"); err != nil {
		t.Fatal(err)
	}

	asc, err := s.ZRangeAsc(ctx, "book")
	if err != nil {
		t.Fatal(err)
	}
	wantAsc := []string{"cheaper", "first", "second"}
	assertMemberOrder(t, asc, wantAsc)

	desc, err := s.ZRangeDesc(ctx, "book")
	if err != nil {
		t.Fatal(err)
	}
	// Price descending, but ties at 100 stay in insertion (FIFO) order.
	wantDesc := []string{"first", "second", "cheaper"}
	assertMemberOrder(t, desc, wantDesc)
}

func TestZRem(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.ZAdd(ctx, "book", 100, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.ZAdd(ctx, "book", 100, "b"); err != nil {
		t.Fatal(err)
	}
	if err := s.ZRem(ctx, "book", "a"); err != nil {
		t.Fatal(err)
	}
	entries, err := s.ZRangeAsc(ctx, "book")
	if err != nil {
		t.Fatal(err)
	}
	assertMemberOrder(t, entries, []string{"b"})

	// Removing again is a no-op, not an error.
	if err := s.ZRem(ctx, "book", "a"); err != nil {
		t.Fatalf("ZRem on absent member returned error: %v", err)
	}
}

func TestTagSets(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.SAdd(ctx, "tag", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.SAdd(ctx, "tag", "x"); err != nil {
		t.Fatal(err)
	}
	members, err := s.SMembers(ctx, "tag")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0] != "x" {
		t.Fatalf("SMembers = %v, want [x]", members)
	}
}

func TestScanPrefix(t *testing.T) {
	s := New()
	ctx := context.Background()

	_ = s.DocPut(ctx, "bonds:trades:1", []byte("a"))
	_ = s.DocPut(ctx, "bonds:trades:2", []byte("b"))
	_ = s.DocPut(ctx, "bonds:orders:1", []byte("c"))

	keys, err := s.ScanPrefix(ctx, "bonds:trades:")
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 {
		t.Fatalf("ScanPrefix returned %d keys, want 2: %v", len(keys), keys)
	}
}

func assertMemberOrder(t *testing.T, got []storage.Entry, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i, e := range got {
		if e.Member != want[i] {
			t.Fatalf("entry %d = %q, want %q (full: %+v)", i, e.Member, want[i], got)
		}
	}
}
