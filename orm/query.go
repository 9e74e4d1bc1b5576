package orm

import (
	"github.com/iov-one/lockswap"
	"github.com/iov-one/lockswap/errors"
)

// queryPrefix returns all entries which key starts with given prefix.
func queryPrefix(db lockswap.ReadOnlyKVStore, prefix []byte) ([]lockswap.Model, error) {
	it, err := db.Iterator(prefixRange(prefix))
	if err != nil {
		return nil, err
	}
	return consumeIterator(it)
}

// consumeIterator will read all remaining data into an
// array and release the iterator
func consumeIterator(it lockswap.Iterator) ([]lockswap.Model, error) {
	defer it.Release()

	var res []lockswap.Model
	for {
		key, value, err := it.Next()
		switch {
		case err == nil:
			res = append(res, lockswap.Pair(key, value))
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, err
		}
	}
}

// prefixRange turns a prefix into a (start, end) range. The end is nil if
// the prefix consists only of 0xFF bytes.
func prefixRange(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return nil, nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xFF {
			end[i]++
			return prefix, end[:i+1]
		}
	}
	return prefix, nil
}

// RegisterQuery exposes the raw store under "/". Keys are full database
// keys, including the bucket prefix.
func RegisterQuery(qr lockswap.QueryRouter) {
	qr.Register("/", rawQuery{})
}

type rawQuery struct{}

func (rawQuery) Query(db lockswap.ReadOnlyKVStore, mod string, data []byte) ([]lockswap.Model, error) {
	switch mod {
	case lockswap.KeyQueryMod:
		value, err := db.Get(data)
		if err != nil || value == nil {
			return nil, err
		}
		return []lockswap.Model{lockswap.Pair(data, value)}, nil
	case lockswap.PrefixQueryMod:
		return queryPrefix(db, data)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidInput, "unknown query mod %q", mod)
	}
}
