// Package staticdata persists small node-scoped values, such as the id of
// the webhook subscription a trigger registered, across process restarts.
package staticdata

import (
	"context"
	"fmt"
	"sync"
)

// Store is a node-scoped key-value store.
type Store interface {
	// Get returns the value and whether it was present.
	Get(ctx context.Context, nodeID, key string) (string, bool, error)
	Set(ctx context.Context, nodeID, key, value string) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, nodeID, key string) error
}

// NodeKey is the storage namespace for a node.
func NodeKey(nodeID string) string {
	return fmt.Sprintf("staticdata:node:%s", nodeID)
}

// NodeData binds a Store to one node.
type NodeData struct {
	store  Store
	nodeID string
}

// ForNode returns the static data of nodeID.
func ForNode(store Store, nodeID string) *NodeData {
	return &NodeData{store: store, nodeID: nodeID}
}

func (n *NodeData) NodeID() string { return n.nodeID }

func (n *NodeData) Get(ctx context.Context, key string) (string, bool, error) {
	return n.store.Get(ctx, n.nodeID, key)
}

func (n *NodeData) Set(ctx context.Context, key, value string) error {
	return n.store.Set(ctx, n.nodeID, key, value)
}

func (n *NodeData) Delete(ctx context.Context, key string) error {
	return n.store.Delete(ctx, n.nodeID, key)
}

// MemoryStore keeps data in process memory. Data is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, nodeID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[nodeID][key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, nodeID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	node, ok := m.data[nodeID]
	if !ok {
		node = make(map[string]string)
		m.data[nodeID] = node
	}
	node[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, nodeID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[nodeID], key)
	return nil
}
