package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/shopfront/internal/db"
	"github.com/kailas-cloud/shopfront/internal/domain/product"
)

// mockKVStore is a map-backed store with injectable failures.
type mockKVStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	expires int
	failOp  string
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) fail(op string) error {
	if m.failOp == op {
		return &db.Error{Op: op, Err: fmt.Errorf("connection reset")}
	}
	return nil
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := m.fail(db.OpGet); err != nil {
		return nil, err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.fail(db.OpSet); err != nil {
		return err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, key string) error {
	if err := m.fail(db.OpDel); err != nil {
		return err
	}
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

func (m *mockKVStore) Expire(_ context.Context, key string, ttl time.Duration, _ bool) error {
	if err := m.fail(db.OpExpire); err != nil {
		return err
	}
	m.expires++
	m.ttls[key] = ttl
	return nil
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	}
}

var (
	apple = product.Product{ProductID: "apple", Name: "Apple", Price: 1.25}
	pear  = product.Product{ProductID: "pear", Name: "Pear", Price: 2}
)
