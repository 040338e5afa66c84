// Package memory is an in-process storage.Store, for tests and for an
// in-memory deployment as an alternative to Redis. The price-ordered
// multiset is a skiplist of price levels, each a FIFO queue
// (container/list per price level).
package memory

import (
	"container/list"
	"context"
	"sync"

	"github.com/huandu/skiplist"

	"github.com/liquidbond/matchingledger/internal/bonds/storage"
)

// Store is a goroutine-safe in-memory storage.Store.
type Store struct {
	mu   sync.Mutex
	docs map[string][]byte
	sets map[string]map[string]struct{}
	// books maps a bookKey to a skiplist keyed by price (float64), each
	// value a *list.List of members in insertion order.
	books map[string]*skiplist.SkipList
	// index maps bookKey -> member -> the *list.Element holding it, plus
	// the price it was filed under, so ZRem is one skiplist lookup plus an
	// O(1) list removal instead of a scan.
	index map[string]map[string]memberLocation
}

type memberLocation struct {
	price float64
	elem  *list.Element
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		docs:  make(map[string][]byte),
		sets:  make(map[string]map[string]struct{}),
		books: make(map[string]*skiplist.SkipList),
		index: make(map[string]map[string]memberLocation),
	}
}

func (s *Store) DocPut(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.docs[key] = cp
	return nil
}

func (s *Store) DocGet(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.docs[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func float64Less(a, b interface{}) int {
	x, y := a.(float64), b.(float64)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func (s *Store) bookLocked(bookKey string) *skiplist.SkipList {
	book, ok := s.books[bookKey]
	if !ok {
		book = skiplist.New(skiplist.LessThanFunc(float64Less))
		s.books[bookKey] = book
	}
	return book
}

func (s *Store) ZAdd(_ context.Context, bookKey string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := s.bookLocked(bookKey)
	var level *list.List
	if elem := book.Get(score); elem != nil {
		level = elem.Value.(*list.List)
	} else {
		level = list.New()
		book.Set(score, level)
	}
	e := level.PushBack(member)

	byMember, ok := s.index[bookKey]
	if !ok {
		byMember = make(map[string]memberLocation)
		s.index[bookKey] = byMember
	}
	byMember[member] = memberLocation{price: score, elem: e}
	return nil
}

func (s *Store) ZRem(_ context.Context, bookKey string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byMember, ok := s.index[bookKey]
	if !ok {
		return nil
	}
	loc, ok := byMember[member]
	if !ok {
		return nil
	}
	delete(byMember, member)

	book, ok := s.books[bookKey]
	if !ok {
		return nil
	}
	elem := book.Get(loc.price)
	if elem == nil {
		return nil
	}
	level := elem.Value.(*list.List)
	level.Remove(loc.elem)
	if level.Len() == 0 {
		book.Remove(loc.price)
	}
	return nil
}

func (s *Store) rangeLocked(bookKey string, ascending bool) []storage.Entry {
	book, ok := s.books[bookKey]
	if !ok {
		return nil
	}
	var entries []storage.Entry
	walk := func(elem *skiplist.Element) *skiplist.Element {
		if ascending {
			return elem.Next()
		}
		return elem.Prev()
	}
	var elem *skiplist.Element
	if ascending {
		elem = book.Front()
	} else {
		elem = book.Back()
	}
	for ; elem != nil; elem = walk(elem) {
		price := elem.Key().(float64)
		level := elem.Value.(*list.List)
		for node := level.Front(); node != nil; node = node.Next() {
			entries = append(entries, storage.Entry{Score: price, Member: node.Value.(string)})
		}
	}
	return entries
}

func (s *Store) ZRangeAsc(_ context.Context, bookKey string) ([]storage.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeLocked(bookKey, true), nil
}

func (s *Store) ZRangeDesc(_ context.Context, bookKey string) ([]storage.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rangeLocked(bookKey, false), nil
}

func (s *Store) SAdd(_ context.Context, tagKey string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[tagKey]
	if !ok {
		set = make(map[string]struct{})
		s.sets[tagKey] = set
	}
	set[member] = struct{}{}
	return nil
}

func (s *Store) SMembers(_ context.Context, tagKey string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[tagKey]
	if !ok {
		return nil, nil
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) ScanPrefix(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.docs {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

var _ storage.Store = (*Store)(nil)
