package orm

import "github.com/covault/covault"

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr covault.Iterator) []covault.Model {
	defer itr.Close()

	res := []covault.Model{}
	for ; itr.Valid(); itr.Next() {
		mod := covault.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		}
		res = append(res, mod)
	}
	return res
}

// queryPrefix returns all models with the given key prefix
func queryPrefix(db covault.ReadOnlyKVStore, prefix []byte) []covault.Model {
	itr := db.Iterator(prefixRange(prefix))
	return ConsumeIterator(itr)
}

// prefixRange turns a prefix into (start, end) to create
// and iterator over all keys with this prefix.
//
// In the case of a maximal prefix (all 0xff), the end is nil,
// meaning no upper bound.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}
