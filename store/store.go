package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/wurp/go-privacypass/ec"
)

const (
	currentTokenKey = "current_token"
	freeTokenKey    = "free_token"
	tokenKeyPrefix  = "token_"
)

// ErrNotEnoughTokens is returned when the FIFO queue has no unconsumed
// tokens left.
var ErrNotEnoughTokens = errors.New("store: not enough tokens")

// ErrAlreadySpent is returned by StoreSpent when a token has already been
// redeemed once.
var ErrAlreadySpent = errors.New("store: token already spent")

// Store is the FIFO token ledger plus spent-token set. It layers its own
// mutex over Backend so callers get atomic add/pop/spend semantics
// regardless of the backend's own concurrency guarantees.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps backend in a Store.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Close releases the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) getCounter(key string) (int64, error) {
	v, err := s.backend.Get([]byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		if key == freeTokenKey {
			return -1, nil
		}
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint32(v)), nil
}

func (s *Store) putCounter(key string, n int64) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(n))
	return s.backend.Put([]byte(key), buf)
}

// AddToken appends a freshly issued (token, signed point) pair to the end
// of the FIFO queue.
func (s *Store) AddToken(token []byte, signed *ec.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextNum, err := s.getCounter(freeTokenKey)
	if err != nil {
		return err
	}
	nextNum++

	val := make([]byte, 4+len(token)+len(signed.CompressedBytes()))
	binary.LittleEndian.PutUint32(val[:4], uint32(len(token)))
	copy(val[4:], token)
	copy(val[4+len(token):], signed.CompressedBytes())

	key := fmt.Sprintf("%s%d", tokenKeyPrefix, nextNum)
	if err := s.backend.Put([]byte(key), val); err != nil {
		return err
	}

	return s.putCounter(freeTokenKey, nextNum)
}

func decodeTokenRecord(raw []byte) ([]byte, *ec.Point, error) {
	if len(raw) < 4 {
		return nil, nil, errors.New("store: corrupt token record")
	}
	tokenLen := binary.LittleEndian.Uint32(raw[:4])
	pos := 4
	token := raw[pos : pos+int(tokenLen)]
	pos += int(tokenLen)

	p, err := ec.PointFromBytes(raw[pos:])
	if err != nil {
		return nil, nil, err
	}
	return token, p, nil
}

// PopNextToken dequeues and returns the oldest unconsumed (token, signed
// point) pair, advancing the FIFO cursor.
func (s *Store) PopNextToken() ([]byte, *ec.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getCounter(currentTokenKey)
	if err != nil {
		return nil, nil, err
	}
	next, err := s.getCounter(freeTokenKey)
	if err != nil {
		return nil, nil, err
	}
	if current > next {
		return nil, nil, ErrNotEnoughTokens
	}

	key := fmt.Sprintf("%s%d", tokenKeyPrefix, current)
	raw, err := s.backend.Get([]byte(key))
	if err != nil {
		return nil, nil, err
	}

	token, p, err := decodeTokenRecord(raw)
	if err != nil {
		return nil, nil, err
	}

	if err := s.putCounter(currentTokenKey, current+1); err != nil {
		return nil, nil, err
	}

	return token, p, nil
}

// ListTokens returns every unconsumed (token, signed point) pair still in
// the FIFO queue, without advancing the cursor.
func (s *Store) ListTokens() ([][]byte, []*ec.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.getCounter(currentTokenKey)
	if err != nil {
		return nil, nil, err
	}
	next, err := s.getCounter(freeTokenKey)
	if err != nil {
		return nil, nil, err
	}
	if current > next {
		return nil, nil, ErrNotEnoughTokens
	}

	tokens := make([][]byte, 0, next-current+1)
	points := make([]*ec.Point, 0, next-current+1)
	for i := current; i <= next; i++ {
		key := fmt.Sprintf("%s%d", tokenKeyPrefix, i)
		raw, err := s.backend.Get([]byte(key))
		if err != nil {
			return nil, nil, err
		}
		token, p, err := decodeTokenRecord(raw)
		if err != nil {
			return nil, nil, err
		}
		tokens = append(tokens, token)
		points = append(points, p)
	}
	return tokens, points, nil
}

// StoreSpent marks token as redeemed, failing if it has already been
// spent once. The stored value is a single sentinel byte; the key itself
// is the raw token bytes, matching db.rs's store_spent.
func (s *Store) StoreSpent(token []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.backend.Get(token)
	if err == nil {
		return ErrAlreadySpent
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return err
	}

	return s.backend.Put(token, []byte{1})
}
