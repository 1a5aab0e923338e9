// Package runtime provides the driver-side seams the local planner depends
// on but does not implement itself: the per-task registry of local-merge
// and merge-join sources, an exchange client, and a cooperative driver loop
// that actually runs a materialized pipeline. These correspond to the
// "Task (runtime)" and "DriverFactory::createDriver" entries of spec.md §6.
//
// The cooperative driver loop is new relative to the teacher repo, which
// never needed to *run* a pipeline of operators, only build up a pipeline
// of value transforms and apply it inline. It is grounded on the teacher's
// scatter.go goroutine-per-partition + limiter-channel pattern: a bounded
// number of driver instances run concurrently, exactly like scatter.go
// bounds concurrent partition workers.
package runtime

import (
	"fmt"
	"sync"

	"github.com/vectorq/localplan/operator"
)

type task struct {
	mu              sync.Mutex
	localMergeByID  map[int]chan operator.Row
	mergeJoinByNode map[string]*operator.MergeJoinSource
	partitionByNode map[string][]chan operator.Row
}

// NewTask returns a fresh, empty operator.Task registry. One Task exists
// per query.
func NewTask() operator.Task {
	return &task{
		localMergeByID:  map[int]chan operator.Row{},
		mergeJoinByNode: map[string]*operator.MergeJoinSource{},
		partitionByNode: map[string][]chan operator.Row{},
	}
}

func (t *task) CreateLocalMergeSources(n int, _ string, _ operator.Allocator) ([]chan operator.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	channels := make([]chan operator.Row, n)
	for i := 0; i < n; i++ {
		if _, exists := t.localMergeByID[i]; exists {
			return nil, fmt.Errorf("local-merge source for driver %d already registered", i)
		}
		ch := make(chan operator.Row, 16)
		t.localMergeByID[i] = ch
		channels[i] = ch
	}
	return channels, nil
}

func (t *task) GetLocalMergeSource(driverID int) (chan operator.Row, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.localMergeByID[driverID]
	return ch, ok
}

func (t *task) CreateMergeJoinSource(planNodeID string) (*operator.MergeJoinSource, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.mergeJoinByNode[planNodeID]; exists {
		return nil, fmt.Errorf("merge-join source for plan node %q already registered", planNodeID)
	}
	src := operator.NewMergeJoinSource()
	t.mergeJoinByNode[planNodeID] = src
	return src, nil
}

func (t *task) GetMergeJoinSource(planNodeID string) (*operator.MergeJoinSource, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	src, ok := t.mergeJoinByNode[planNodeID]
	return src, ok
}

// GetOrCreatePartitionChannels returns the N channels a local-partition
// node's write side (PartitionedOutput) and read siblings
// (LocalExchangeSource) rendezvous through, creating them on first use.
// Whichever driver — a writer instance or a reader instance — materializes
// first wins the creation; every later caller gets the same slice back.
// A second caller asking for a different n than the one already created is
// a planner-internal inconsistency (the read pipeline's maxDrivers changed
// between calls), reported as a missing-runtime-seam condition upstream.
func (t *task) GetOrCreatePartitionChannels(planNodeID string, n int) ([]chan operator.Row, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.partitionByNode[planNodeID]; ok {
		if len(existing) != n {
			return nil, fmt.Errorf("local-partition channels for node %q already created with n=%d, requested n=%d", planNodeID, len(existing), n)
		}
		return existing, nil
	}
	channels := make([]chan operator.Row, n)
	for i := range channels {
		channels[i] = make(chan operator.Row, 16)
	}
	t.partitionByNode[planNodeID] = channels
	return channels, nil
}

// ChannelExchangeClient is a minimal ExchangeClient backed by a channel,
// standing in for the real network exchange client spec.md §1 places out
// of scope.
type ChannelExchangeClient struct {
	pages chan operator.Row
}

// NewChannelExchangeClient returns a client that yields the given rows and
// then closes.
func NewChannelExchangeClient(rows []operator.Row) *ChannelExchangeClient {
	ch := make(chan operator.Row, len(rows))
	for _, r := range rows {
		ch <- r
	}
	close(ch)
	return &ChannelExchangeClient{pages: ch}
}

// Pages implements operator.ExchangeClient.
func (c *ChannelExchangeClient) Pages() <-chan operator.Row { return c.pages }

// NewDriverContext builds the per-driver-instance context operator
// constructors receive. pipelineID and numDrivers are only consulted by
// local-merge/local-partition operators and their sinks; other operators
// ignore them.
func NewDriverContext(driverID, pipelineID int, taskUniqueID string, task operator.Task, numDrivers func(pipelineID int) int) *operator.DriverContext {
	return &operator.DriverContext{
		DriverID:     driverID,
		PipelineID:   pipelineID,
		TaskUniqueID: taskUniqueID,
		Task:         task,
		NumDrivers:   numDrivers,
	}
}

// Driver owns one instance of a materialized pipeline and runs its
// operators cooperatively in the order they were assigned (spec.md §5's
// ordering guarantee: operators execute in pipeline order within a driver).
type Driver struct {
	Operators []operator.Operator
	// Output collects whatever the last operator's GetOutput yields, for
	// callers of a pipeline with no sink (the root factory when Plan's
	// caller passed a nil final consumer).
	Output []operator.Row
}

// NewDriver wraps an already-materialized operator sequence.
func NewDriver(ops []operator.Operator) *Driver {
	return &Driver{Operators: ops}
}

// noMoreInput is the optional capability an operator implements when it
// must know its input is complete before its own output is meaningful —
// streamingAggregation's trailing group is the one built-in example.
// Operators that don't need it (most of them) simply don't implement it.
type noMoreInput interface {
	NoMoreInput()
}

// Run drives the pipeline to completion one stage at a time: operator i is
// fully drained into operator i+1 via AddInput before operator i+1 is ever
// asked for its own output. This matches how the built-in operators are
// written — aggregation, sort and join operators buffer their whole input
// and only compute on the first GetOutput call — rather than interleaving
// a single row through every operator per step, which would ask those
// operators for output before they have seen all of their input.
func (d *Driver) Run() error {
	if len(d.Operators) == 0 {
		return nil
	}
	for i := 0; i < len(d.Operators)-1; i++ {
		current, next := d.Operators[i], d.Operators[i+1]
		for {
			row, ok := current.GetOutput()
			if !ok {
				break
			}
			next.AddInput(row)
		}
		if f, ok := next.(noMoreInput); ok {
			f.NoMoreInput()
		}
	}
	last := d.Operators[len(d.Operators)-1]
	d.Output = nil
	for {
		row, ok := last.GetOutput()
		if !ok {
			break
		}
		d.Output = append(d.Output, row)
	}
	return nil
}

// RunParallel instantiates numDrivers independent drivers from factory and
// runs them concurrently, bounded by a limiter channel exactly as the
// teacher's scatter.go bounds concurrent partition workers with
// `limiter <- struct{}{}` / `<-limiter`.
func RunParallel(build func(driverID int) (*Driver, error), numDrivers int) error {
	if numDrivers < 1 {
		numDrivers = 1
	}
	limiter := make(chan struct{}, numDrivers)
	errs := make(chan error, numDrivers)
	var wg sync.WaitGroup
	for i := 0; i < numDrivers; i++ {
		wg.Add(1)
		go func(driverID int) {
			limiter <- struct{}{}
			defer func() { <-limiter; wg.Done() }()
			d, err := build(driverID)
			if err != nil {
				errs <- err
				return
			}
			errs <- d.Run()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
