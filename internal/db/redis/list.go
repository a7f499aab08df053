package redis

import (
	"context"

	"github.com/jobgenie/jobgenie/internal/db"
)

// LPush prepends a value to the list at key.
func (s *Store) LPush(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Lpush().Key(key).Element(string(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLPush, Err: err}
	}
	return nil
}

// LRange returns list elements between start and stop inclusive.
// With LPush insertion this yields reverse insertion order.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	strs, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	out := make([][]byte, len(strs))
	for i, v := range strs {
		out[i] = []byte(v)
	}
	return out, nil
}

// LLen returns the length of the list at key. Missing keys count as empty.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return n, nil
}
