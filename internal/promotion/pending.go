// File: internal/promotion/pending.go
package promotion

import (
	"fmt"

	"inzerio_backend/internal/platform/statestore"
)

const pendingKey = "topad_pending"

// PendingStore persists the single in-flight TOP activation per user. Writes
// go to both backing stores; a read succeeds if either side has the record.
type PendingStore struct {
	store statestore.Store
}

func NewPendingStore(store statestore.Store) *PendingStore {
	return &PendingStore{store: store}
}

func (p *PendingStore) key(userID string) string {
	return fmt.Sprintf("%s_%s", pendingKey, userID)
}

// Get returns the pending activation for userID, or (nil, nil) when none.
func (p *PendingStore) Get(userID string) (*PendingTopActivation, error) {
	var rec PendingTopActivation
	ok, err := p.store.Get(p.key(userID), &rec)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (p *PendingStore) Put(userID string, rec *PendingTopActivation) error {
	return p.store.Put(p.key(userID), rec)
}

func (p *PendingStore) Clear(userID string) error {
	return p.store.Delete(p.key(userID))
}
