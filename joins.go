package localplan

import (
	"fmt"
	"sync"

	"github.com/vectorq/localplan/operator"
)

// planTables holds the hash-join and cross-join build tables a single
// Plan() call allocates, keyed by join node id. The build-side sink
// (created at slice time, in the same Plan() call that later materializes
// the probe side) and the probe-side operator (created later, once per
// driver, by the materializer) must share the exact same table instance,
// so both sides of a join are wired through this per-plan registry rather
// than a package-level map — Plan() stays free of state shared across
// calls (spec.md §5).
type planTables struct {
	mu    sync.Mutex
	hash  map[string]*operator.HashTable
	cross map[string]*operator.CrossJoinTable
}

func newPlanTables() *planTables {
	return &planTables{hash: map[string]*operator.HashTable{}, cross: map[string]*operator.CrossJoinTable{}}
}

func (t *planTables) hashTableFor(nodeID string) *operator.HashTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tbl, ok := t.hash[nodeID]; ok {
		return tbl
	}
	tbl := operator.NewHashTable()
	t.hash[nodeID] = tbl
	return tbl
}

func (t *planTables) crossTableFor(nodeID string) *operator.CrossJoinTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tbl, ok := t.cross[nodeID]; ok {
		return tbl
	}
	tbl := operator.NewCrossJoinTable()
	t.cross[nodeID] = tbl
	return tbl
}

// errNoSuchDriverSlot reports a local-merge or local-partition channel
// missing for a driver id — a contract violation between the numDrivers
// callback and the channels actually allocated for that barrier.
func errNoSuchDriverSlot(driverID int) error {
	return fmt.Errorf("no source channel registered for driver id %d", driverID)
}
