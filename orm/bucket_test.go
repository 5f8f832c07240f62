package orm

import (
	"bytes"
	"testing"

	"github.com/covault/covault/store"
)

func TestBucketSaveGet(t *testing.T) {
	db := store.MemStore()
	b := NewCounterBucket("cntr")

	// missing reads return nil
	obj, err := b.Get(db, []byte("unknown"))
	if err != nil {
		t.Fatalf("get: %+v", err)
	}
	if obj != nil {
		t.Fatal("expected no object")
	}

	if err := b.Save(db, NewCounter([]byte("one"), 7)); err != nil {
		t.Fatalf("save: %+v", err)
	}

	count, err := b.GetCount(db, []byte("one"))
	if err != nil {
		t.Fatalf("get count: %+v", err)
	}
	if count != 7 {
		t.Fatalf("unexpected count: %d", count)
	}

	// invalid models are rejected
	if err := b.Save(db, NewCounter([]byte("bad"), -2)); err == nil {
		t.Fatal("negative counter saved")
	}

	// deletes remove the value
	if err := b.Delete(db, []byte("one")); err != nil {
		t.Fatalf("delete: %+v", err)
	}
	if count, _ := b.GetCount(db, []byte("one")); count != 0 {
		t.Fatalf("deleted counter still present: %d", count)
	}
}

func TestBucketPrefixIsolation(t *testing.T) {
	db := store.MemStore()
	a := NewCounterBucket("aaa")
	b := NewCounterBucket("bbb")

	if err := a.Save(db, NewCounter([]byte("k"), 1)); err != nil {
		t.Fatalf("save: %+v", err)
	}
	if err := b.Save(db, NewCounter([]byte("k"), 2)); err != nil {
		t.Fatalf("save: %+v", err)
	}

	ac, _ := a.GetCount(db, []byte("k"))
	bc, _ := b.GetCount(db, []byte("k"))
	if ac != 1 || bc != 2 {
		t.Fatalf("buckets share key space: %d, %d", ac, bc)
	}
}

// evenIndexer indexes all counters by parity of their count
func evenIndexer(obj Object) ([]byte, error) {
	cntr := obj.Value().(*Counter)
	if cntr.Count%2 == 0 {
		return []byte("even"), nil
	}
	return []byte("odd"), nil
}

func TestBucketIndex(t *testing.T) {
	db := store.MemStore()
	b := NewCounterBucket("cntr")
	b.Bucket = b.WithIndex("parity", evenIndexer, false)

	for i, key := range []string{"a", "b", "c"} {
		if err := b.Save(db, NewCounter([]byte(key), int64(i))); err != nil {
			t.Fatalf("save %s: %+v", key, err)
		}
	}

	evens, err := b.GetIndexed(db, "parity", []byte("even"))
	if err != nil {
		t.Fatalf("query index: %+v", err)
	}
	if len(evens) != 2 {
		t.Fatalf("unexpected match count: %d", len(evens))
	}

	// moving an object between index values updates the index
	if err := b.Save(db, NewCounter([]byte("a"), 1)); err != nil {
		t.Fatalf("update: %+v", err)
	}
	evens, err = b.GetIndexed(db, "parity", []byte("even"))
	if err != nil {
		t.Fatalf("query index: %+v", err)
	}
	if len(evens) != 1 {
		t.Fatalf("index not updated: %d matches", len(evens))
	}
	odds, err := b.GetIndexed(db, "parity", []byte("odd"))
	if err != nil {
		t.Fatalf("query index: %+v", err)
	}
	if len(odds) != 2 {
		t.Fatalf("index not updated: %d matches", len(odds))
	}

	// deleting removes from the index
	if err := b.Delete(db, []byte("c")); err != nil {
		t.Fatalf("delete: %+v", err)
	}
	evens, err = b.GetIndexed(db, "parity", []byte("even"))
	if err != nil {
		t.Fatalf("query index: %+v", err)
	}
	if len(evens) != 0 {
		t.Fatalf("deleted object still indexed: %d matches", len(evens))
	}

	// unknown index names error
	if _, err := b.GetIndexed(db, "nonsense", []byte("even")); !ErrInvalidIndex.Is(err) {
		t.Fatalf("unexpected error: %+v", err)
	}
}

func TestBucketUniqueIndex(t *testing.T) {
	db := store.MemStore()
	b := NewCounterBucket("cntr")
	b.Bucket = b.WithIndex("parity", evenIndexer, true)

	if err := b.Save(db, NewCounter([]byte("a"), 2)); err != nil {
		t.Fatalf("save: %+v", err)
	}
	// second even counter violates uniqueness
	if err := b.Save(db, NewCounter([]byte("b"), 4)); err == nil {
		t.Fatal("unique index violated")
	}
	// odd value is fine
	if err := b.Save(db, NewCounter([]byte("b"), 3)); err != nil {
		t.Fatalf("save: %+v", err)
	}
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewCounterBucket("cntr")

	if err := b.Save(db, NewCounter([]byte("hit"), 5)); err != nil {
		t.Fatalf("save: %+v", err)
	}

	models, err := b.Query(db, "", []byte("hit"))
	if err != nil {
		t.Fatalf("query: %+v", err)
	}
	if len(models) != 1 {
		t.Fatalf("unexpected result count: %d", len(models))
	}
	if !bytes.Equal(models[0].Key, b.DBKey([]byte("hit"))) {
		t.Fatalf("unexpected key: %q", models[0].Key)
	}

	models, err = b.Query(db, "", []byte("miss"))
	if err != nil {
		t.Fatalf("query: %+v", err)
	}
	if len(models) != 0 {
		t.Fatalf("miss returned data: %v", models)
	}

	models, err = b.Query(db, "prefix", []byte("h"))
	if err != nil {
		t.Fatalf("prefix query: %+v", err)
	}
	if len(models) != 1 {
		t.Fatalf("unexpected result count: %d", len(models))
	}
}
