package repository

import (
	"hash/fnv"
	"sync"

	"github.com/okian/scorecard/internal/domain/model"
)

// Ranked is a score record with its position in the ranking.
// Equal scores share a rank; the next distinct score skips ahead.
type Ranked struct {
	Rank int `json:"rank"`
	model.ScoreRecord
}

// RankIndex orders score records by score DESC, then key ASC.
//
// One treap holds every record and one treap per entity type serves filtered
// listings. Subtree sizes make counting and offset seeks O(log n) expected.
type RankIndex struct {
	mu     sync.RWMutex
	all    *node
	byType map[string]*node
	byKey  map[string]model.ScoreRecord
}

type node struct {
	key   string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

// NewRankIndex returns an empty index.
func NewRankIndex() *RankIndex {
	return &RankIndex{
		byType: make(map[string]*node),
		byKey:  make(map[string]model.ScoreRecord),
	}
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// before reports whether (aScore, aKey) ranks ahead of (bScore, bKey).
func before(aScore int, aKey string, bScore int, bKey string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aKey < bKey
}

// priority derives a stable pseudo-random heap priority from the key.
func priority(key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return h.Sum64()
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, key string, score int) *node {
	if n == nil {
		return &node{key: key, score: score, prio: priority(key), size: 1}
	}
	if before(score, key, n.score, n.key) {
		n.left = insert(n.left, key, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func remove(n *node, key string, score int) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && key == n.key:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = remove(n.right, key, score)
		} else {
			n = rotateLeft(n)
			n.left = remove(n.left, key, score)
		}
	case before(score, key, n.score, n.key):
		n.left = remove(n.left, key, score)
	default:
		n.right = remove(n.right, key, score)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes score strictly higher than score.
func countAbove(n *node, score int) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += nsize(n.left) + 1
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collect appends up to limit keys in rank order, skipping the first skip.
func collect(n *node, skip, limit int, out *[]string) {
	if n == nil || len(*out) >= limit {
		return
	}
	ls := nsize(n.left)
	if skip < ls {
		collect(n.left, skip, limit, out)
	}
	if len(*out) >= limit {
		return
	}
	if skip <= ls {
		*out = append(*out, n.key)
	}
	collect(n.right, max(skip-ls-1, 0), limit, out)
}

// Upsert inserts rec or replaces the record stored under the same key.
func (ix *RankIndex) Upsert(rec model.ScoreRecord) { //nolint:gocritic // hugeParam
	key := rec.Key()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if old, ok := ix.byKey[key]; ok {
		ix.all = remove(ix.all, key, old.Score)
		ix.byType[old.EntityType] = remove(ix.byType[old.EntityType], key, old.Score)
	}
	ix.byKey[key] = rec
	ix.all = insert(ix.all, key, rec.Score)
	ix.byType[rec.EntityType] = insert(ix.byType[rec.EntityType], key, rec.Score)
}

// Get returns the record stored under key.
func (ix *RankIndex) Get(key string) (model.ScoreRecord, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	rec, ok := ix.byKey[key]
	return rec, ok
}

// Rank returns the overall position of key.
func (ix *RankIndex) Rank(key string) (Ranked, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	rec, ok := ix.byKey[key]
	if !ok {
		return Ranked{}, ErrNotFound
	}
	return Ranked{Rank: countAbove(ix.all, rec.Score) + 1, ScoreRecord: rec}, nil
}

// Page returns records with score >= minScore, optionally limited to one
// entity type, in rank order starting at offset. The second result is the
// number of records matching the filter.
func (ix *RankIndex) Page(entityType string, minScore, offset, limit int) ([]Ranked, int, error) {
	if limit < 1 {
		return nil, 0, ErrInvalidLimit
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	root := ix.all
	if entityType != "" {
		root = ix.byType[entityType]
	}
	total := countAbove(root, minScore-1)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []Ranked{}, total, nil
	}

	keys := make([]string, 0, min(limit, total-offset))
	collect(root, offset, min(limit, total-offset), &keys)

	out := make([]Ranked, 0, len(keys))
	for _, k := range keys {
		rec := ix.byKey[k]
		out = append(out, Ranked{Rank: countAbove(root, rec.Score) + 1, ScoreRecord: rec})
	}
	return out, total, nil
}

// Len returns the number of indexed records.
func (ix *RankIndex) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byKey)
}
