// Package operator provides the physical operator contract the local
// planner materializes driver factories against, plus a concrete set of
// built-in operators so the planner's tests have something real to drive.
// Real engines treat these as opaque collaborators (spec.md §1); we give
// them small, genuine bodies in the teacher's style of turning an abstract
// operation (IntermediateOperator.apply) into something that actually runs,
// rather than leaving every operator a stub.
package operator

import (
	"fmt"
	"sort"
	"sync"
)

// Row is the unit of data flowing between operators. Real engines pass
// columnar batches; a slice of columns-as-any is enough to exercise the
// pipeline-composition and fusion logic this package exists to support.
type Row []interface{}

// OperatorID identifies an operator's position within a driver. Ids are
// dense and monotonic within a driver: 0, 1, ..., operatorCount-1.
type OperatorID int32

// Allocator is the minimal seam onto the engine's memory pool; spec.md §1
// lists memory pools as an external collaborator referenced only through
// an interface.
type Allocator interface {
	Alloc(n int) []byte
}

// Task owns the auxiliary runtime structures keyed by plan-node / driver id
// that pipelines on either side of a local-merge, local-partition or
// merge-join barrier rendezvous through (spec.md §6's Task (runtime)
// interface). The concrete implementation lives in the sibling runtime
// package; it is declared here, rather than there, solely so DriverContext
// below can embed a reference to it without operator importing runtime.
//
// GetOrCreatePartitionChannels is not one of the four methods spec.md §6
// names explicitly, but it fills the same seam for local-partition that
// CreateLocalMergeSources/GetLocalMergeSource fill for local-merge: the
// write side (PartitionedOutput) and the N sibling read sides
// (LocalExchangeSource) must rendezvous on the same N channels, and
// whichever side's driver happens to materialize first should create them.
// See DESIGN.md.
type Task interface {
	CreateLocalMergeSources(n int, outputSchema string, allocator Allocator) ([]chan Row, error)
	GetLocalMergeSource(driverID int) (chan Row, bool)
	CreateMergeJoinSource(planNodeID string) (*MergeJoinSource, error)
	GetMergeJoinSource(planNodeID string) (*MergeJoinSource, bool)
	GetOrCreatePartitionChannels(planNodeID string, n int) ([]chan Row, error)
}

// DriverContext is the small bag of driver-scoped state an operator
// constructor may need: which driver instance this is (for partition
// routing), which pipeline it belongs to, the task-wide unique id (not read
// by AssignUniqueId, which takes its id from its plan node), the Task
// registry for local-merge/merge-join/
// local-partition handoffs, and the numDrivers callback spec.md §4.4 says
// the materializer consults to size a local-merge's channel array (and,
// here, a local-partition's channel array too — see DESIGN.md).
type DriverContext struct {
	DriverID     int
	PipelineID   int
	TaskUniqueID string
	Task         Task
	NumDrivers   func(pipelineID int) int
}

// Operator is the cooperative contract every physical operator satisfies.
// A driver calls AddInput/GetOutput in turn; Finished signals the operator
// will never produce more output (spec.md §5's "operators run
// cooperatively").
type Operator interface {
	ID() OperatorID
	Kind() string
	AddInput(Row)
	GetOutput() (Row, bool)
	Finished() bool
}

// Supplier defers operator construction until driver instantiation time —
// spec.md §3's OperatorSupplier.
type Supplier func(id OperatorID, ctx *DriverContext) (Operator, error)

// ExchangeClient is the narrow seam Exchange/MergeExchange operators read
// from; the real implementation lives in the runtime package and fetches
// data shipped from remote workers.
type ExchangeClient interface {
	Pages() <-chan Row
}

// base is embedded by every built-in operator below to avoid repeating the
// id/kind bookkeeping every constructor would otherwise need.
type base struct {
	id   OperatorID
	kind string
}

func (b base) ID() OperatorID { return b.id }
func (b base) Kind() string   { return b.kind }

// --- source-shaped operators -------------------------------------------------

type tableScan struct {
	base
	rows []Row
	pos  int
}

// NewTableScan returns an operator that emits the rows a connector split
// would have produced, in order.
func NewTableScan(id OperatorID, rows []Row) Operator {
	return &tableScan{base: base{id: id, kind: "TableScan"}, rows: rows}
}

func (t *tableScan) AddInput(Row) {}
func (t *tableScan) GetOutput() (Row, bool) {
	if t.pos >= len(t.rows) {
		return nil, false
	}
	r := t.rows[t.pos]
	t.pos++
	return r, true
}
func (t *tableScan) Finished() bool { return t.pos >= len(t.rows) }

type values struct {
	base
	rows []Row
	pos  int
}

// NewValues returns an operator over a fixed, in-memory row set.
func NewValues(id OperatorID, rows []Row) Operator {
	return &values{base: base{id: id, kind: "Values"}, rows: rows}
}

func (v *values) AddInput(Row) {}
func (v *values) GetOutput() (Row, bool) {
	if v.pos >= len(v.rows) {
		return nil, false
	}
	r := v.rows[v.pos]
	v.pos++
	return r, true
}
func (v *values) Finished() bool { return v.pos >= len(v.rows) }

// --- filter+project fusion --------------------------------------------------

// FilterProject is the single fusion the materializer recognizes (spec.md
// §4.4). Either Filter or Project may be nil, never both — the design note
// in spec.md §9 asks for an operator with "an optional filter and an
// optional projection, at least one present" rather than a null projection
// standing in for "no projection".
type FilterProject struct {
	base
	Filter  func(Row) bool
	Project func(Row) Row
	queue   []Row
}

// NewFilterProject builds the fused operator. Panics if neither filter nor
// project is supplied — that would not be a fusion, it would be a no-op the
// materializer should not have produced.
func NewFilterProject(id OperatorID, filter func(Row) bool, project func(Row) Row) *FilterProject {
	if filter == nil && project == nil {
		panic("operator: FilterProject requires a filter, a projection, or both")
	}
	return &FilterProject{base: base{id: id, kind: "FilterProject"}, Filter: filter, Project: project}
}

func (f *FilterProject) AddInput(r Row) { f.queue = append(f.queue, r) }

func (f *FilterProject) GetOutput() (Row, bool) {
	for len(f.queue) > 0 {
		r := f.queue[0]
		f.queue = f.queue[1:]
		if f.Filter != nil && !f.Filter(r) {
			continue
		}
		if f.Project != nil {
			r = f.Project(r)
		}
		return r, true
	}
	return nil, false
}

func (f *FilterProject) Finished() bool { return len(f.queue) == 0 }

// --- aggregation -------------------------------------------------------------

type hashAggregation struct {
	base
	keyOf  func(Row) string
	accum  func(acc Row, next Row) Row
	groups map[string]Row
	order  []string
	input  []Row
	pos    int
	built  bool
}

// NewHashAggregation groups rows by keyOf and folds each group with accum.
// The final-step / single-step case forces maxDrivers=1 upstream (spec.md
// §4.3); this constructor is shared by both steps.
func NewHashAggregation(id OperatorID, keyOf func(Row) string, accum func(acc, next Row) Row) Operator {
	return &hashAggregation{base: base{id: id, kind: "HashAggregation"}, keyOf: keyOf, accum: accum, groups: map[string]Row{}}
}

func (a *hashAggregation) AddInput(r Row) { a.input = append(a.input, r) }

func (a *hashAggregation) GetOutput() (Row, bool) {
	if !a.built {
		for _, r := range a.input {
			k := a.keyOf(r)
			if existing, ok := a.groups[k]; ok {
				a.groups[k] = a.accum(existing, r)
			} else {
				a.groups[k] = r
				a.order = append(a.order, k)
			}
		}
		a.built = true
	}
	if a.pos >= len(a.order) {
		return nil, false
	}
	k := a.order[a.pos]
	a.pos++
	return a.groups[k], true
}

func (a *hashAggregation) Finished() bool { return a.built && a.pos >= len(a.order) }

// NewStreamingAggregation is the pre-sorted, single-pass counterpart of
// hash aggregation: groups are emitted as soon as the key changes.
func NewStreamingAggregation(id OperatorID, keyOf func(Row) string, accum func(acc, next Row) Row) Operator {
	return &streamingAggregation{base: base{id: id, kind: "StreamingAggregation"}, keyOf: keyOf, accum: accum}
}

type streamingAggregation struct {
	base
	keyOf      func(Row) string
	accum      func(acc, next Row) Row
	currentKey string
	current    Row
	haveGroup  bool
	pending    []Row
	closed     bool
}

func (s *streamingAggregation) AddInput(r Row) {
	k := s.keyOf(r)
	if s.haveGroup && k == s.currentKey {
		s.current = s.accum(s.current, r)
		return
	}
	if s.haveGroup {
		s.pending = append(s.pending, s.current)
	}
	s.currentKey, s.current, s.haveGroup = k, r, true
}

func (s *streamingAggregation) GetOutput() (Row, bool) {
	if len(s.pending) > 0 {
		r := s.pending[0]
		s.pending = s.pending[1:]
		return r, true
	}
	return nil, false
}

func (s *streamingAggregation) Finished() bool { return s.closed && len(s.pending) == 0 }

// NoMoreInput flushes the trailing group that AddInput only ever moves to
// pending when a *different* key arrives — without this, the last group a
// sorted input produces would never surface. Driver calls this once a
// stage's upstream is fully drained, before pulling this operator's own
// output (see runtime.Driver.Run).
func (s *streamingAggregation) NoMoreInput() {
	if s.haveGroup {
		s.pending = append(s.pending, s.current)
		s.haveGroup = false
	}
	s.closed = true
}

// --- sort / limit / topn -----------------------------------------------------

type sortBuffer struct {
	base
	less   func(a, b Row) bool
	limit  int // 0 means unbounded (OrderBy)
	rows   []Row
	sorted bool
	pos    int
}

// NewOrderBy returns a full sort operator (partial or final, per spec.md
// §4.3's constraint table; the materializer doesn't need to know which).
func NewOrderBy(id OperatorID, less func(a, b Row) bool) Operator {
	return &sortBuffer{base: base{id: id, kind: "OrderBy"}, less: less}
}

// NewTopN returns a bounded sort: only the first n rows survive.
func NewTopN(id OperatorID, less func(a, b Row) bool, n int) Operator {
	return &sortBuffer{base: base{id: id, kind: "TopN"}, less: less, limit: n}
}

func (s *sortBuffer) AddInput(r Row) { s.rows = append(s.rows, r) }

func (s *sortBuffer) GetOutput() (Row, bool) {
	if !s.sorted {
		sort.SliceStable(s.rows, func(i, j int) bool { return s.less(s.rows[i], s.rows[j]) })
		if s.limit > 0 && len(s.rows) > s.limit {
			s.rows = s.rows[:s.limit]
		}
		s.sorted = true
	}
	if s.pos >= len(s.rows) {
		return nil, false
	}
	r := s.rows[s.pos]
	s.pos++
	return r, true
}

func (s *sortBuffer) Finished() bool { return s.sorted && s.pos >= len(s.rows) }

type limit struct {
	base
	n     int
	count int
	queue []Row
}

// NewLimit returns an operator that passes through at most n rows.
func NewLimit(id OperatorID, n int) Operator {
	return &limit{base: base{id: id, kind: "Limit"}, n: n}
}

func (l *limit) AddInput(r Row) {
	if l.count >= l.n {
		return
	}
	l.queue = append(l.queue, r)
}

func (l *limit) GetOutput() (Row, bool) {
	if l.count >= l.n || len(l.queue) == 0 {
		return nil, false
	}
	r := l.queue[0]
	l.queue = l.queue[1:]
	l.count++
	return r, true
}

func (l *limit) Finished() bool { return l.count >= l.n }

// --- joins --------------------------------------------------------------

// NewHashBuildSink returns the sink that terminates the build-side pipeline
// of a hash join (spec.md §4.2's Hash-build row). It writes every row it
// receives into the shared table that the matching HashProbe reads.
func NewHashBuildSink(id OperatorID, table *HashTable, keyOf func(Row) string) Operator {
	return &hashBuildSink{base: base{id: id, kind: "HashBuild"}, table: table, keyOf: keyOf}
}

// HashTable is the runtime structure shared between a HashBuild sink and its
// paired HashProbe operator, keyed by build-side join key.
type HashTable struct {
	mu   sync.Mutex
	rows map[string][]Row
}

// NewHashTable allocates an empty build-side hash table.
func NewHashTable() *HashTable { return &HashTable{rows: map[string][]Row{}} }

func (h *HashTable) put(key string, r Row) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows[key] = append(h.rows[key], r)
}

func (h *HashTable) get(key string) []Row {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rows[key]
}

type hashBuildSink struct {
	base
	table *HashTable
	keyOf func(Row) string
	done  bool
}

func (h *hashBuildSink) AddInput(r Row) { h.table.put(h.keyOf(r), r) }
func (h *hashBuildSink) GetOutput() (Row, bool) { return nil, false }
func (h *hashBuildSink) Finished() bool         { return h.done }

type hashProbe struct {
	base
	table  *HashTable
	keyOf  func(Row) string
	join   func(probe, build Row) Row
	input  []Row
	output []Row
	pos    int
	built  bool
}

// NewHashProbe returns the probe-side operator of a hash join: for each
// probe row it looks up matches in table and emits a joined row per match.
func NewHashProbe(id OperatorID, table *HashTable, keyOf func(Row) string, join func(probe, build Row) Row) Operator {
	return &hashProbe{base: base{id: id, kind: "HashProbe"}, table: table, keyOf: keyOf, join: join}
}

func (h *hashProbe) AddInput(r Row) { h.input = append(h.input, r) }

func (h *hashProbe) GetOutput() (Row, bool) {
	if !h.built {
		for _, probeRow := range h.input {
			for _, buildRow := range h.table.get(h.keyOf(probeRow)) {
				h.output = append(h.output, h.join(probeRow, buildRow))
			}
		}
		h.built = true
	}
	if h.pos >= len(h.output) {
		return nil, false
	}
	r := h.output[h.pos]
	h.pos++
	return r, true
}

func (h *hashProbe) Finished() bool { return h.built && h.pos >= len(h.output) }

// CrossJoinTable is the build-side row buffer shared by a CrossJoinBuild
// sink and its paired CrossJoinProbe.
type CrossJoinTable struct {
	mu   sync.Mutex
	rows []Row
}

// NewCrossJoinTable allocates an empty cross-join build buffer.
func NewCrossJoinTable() *CrossJoinTable { return &CrossJoinTable{} }

func (c *CrossJoinTable) put(r Row) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = append(c.rows, r)
}

func (c *CrossJoinTable) snapshot() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

type crossJoinBuildSink struct {
	base
	table *CrossJoinTable
}

// NewCrossJoinBuildSink returns the sink that terminates a cross join's
// build-side pipeline (spec.md §4.2's Cross-join row).
func NewCrossJoinBuildSink(id OperatorID, table *CrossJoinTable) Operator {
	return &crossJoinBuildSink{base: base{id: id, kind: "CrossJoinBuild"}, table: table}
}

func (c *crossJoinBuildSink) AddInput(r Row)          { c.table.put(r) }
func (c *crossJoinBuildSink) GetOutput() (Row, bool) { return nil, false }
func (c *crossJoinBuildSink) Finished() bool          { return true }

type crossJoinProbe struct {
	base
	table  *CrossJoinTable
	join   func(probe, build Row) Row
	input  []Row
	output []Row
	pos    int
	built  bool
}

// NewCrossJoinProbe returns the probe-side operator of a cross join: every
// probe row is paired with every buffered build row.
func NewCrossJoinProbe(id OperatorID, table *CrossJoinTable, join func(probe, build Row) Row) Operator {
	return &crossJoinProbe{base: base{id: id, kind: "CrossJoinProbe"}, table: table, join: join}
}

func (c *crossJoinProbe) AddInput(r Row) { c.input = append(c.input, r) }

func (c *crossJoinProbe) GetOutput() (Row, bool) {
	if !c.built {
		for _, probeRow := range c.input {
			for _, buildRow := range c.table.snapshot() {
				c.output = append(c.output, c.join(probeRow, buildRow))
			}
		}
		c.built = true
	}
	if c.pos >= len(c.output) {
		return nil, false
	}
	r := c.output[c.pos]
	c.pos++
	return r, true
}

func (c *crossJoinProbe) Finished() bool { return c.built && c.pos >= len(c.output) }

// --- exchange / partitioning -------------------------------------------------

type exchange struct {
	base
	client ExchangeClient
	done   bool
}

// NewExchange returns the operator reading from a remote exchange client.
func NewExchange(id OperatorID, client ExchangeClient) Operator {
	return &exchange{base: base{id: id, kind: "Exchange"}, client: client}
}

func (e *exchange) AddInput(Row) {}
func (e *exchange) GetOutput() (Row, bool) {
	r, ok := <-e.client.Pages()
	if !ok {
		e.done = true
	}
	return r, ok
}
func (e *exchange) Finished() bool { return e.done }

// NewMergeExchange returns a merge-exchange operator. Per the documented
// quirk in spec.md §9, the materializer passes this constructor the raw
// plan-node index rather than the fused-operator id; this constructor
// itself is agnostic to which counter produced its id.
func NewMergeExchange(id OperatorID, client ExchangeClient) Operator {
	op := NewExchange(id, client).(*exchange)
	op.kind = "MergeExchange"
	return op
}

type partitionedOutput struct {
	base
	partitionOf func(Row) int
	sinks       []func(Row)
	done        bool
}

// NewPartitionedOutput returns the terminal operator that routes each row to
// one of len(sinks) destinations via partitionOf. Used two ways: as the sink
// a local-partition parent attaches to each pipeline feeding it (real
// channel-backed sinks, one per sibling driver — see sinks.go), and as the
// direct materialization of a bare Partitioned-output plan node shipping a
// fragment's output to a paired Exchange elsewhere (spec.md §4.4's "row per
// destination task" sense, sinks is nil — the actual network transfer is out
// of scope, so rows are simply dropped).
func NewPartitionedOutput(id OperatorID, partitionOf func(Row) int, sinks []func(Row)) Operator {
	return &partitionedOutput{base: base{id: id, kind: "PartitionedOutput"}, partitionOf: partitionOf, sinks: sinks}
}

func (p *partitionedOutput) AddInput(r Row) {
	if len(p.sinks) == 0 {
		return
	}
	i := p.partitionOf(r) % len(p.sinks)
	if i < 0 {
		i += len(p.sinks)
	}
	p.sinks[i](r)
}
func (p *partitionedOutput) GetOutput() (Row, bool) { return nil, false }
func (p *partitionedOutput) Finished() bool         { return p.done }

type localExchangeSource struct {
	base
	channel <-chan Row
	done    bool
}

// NewLocalExchangeSource returns the read side of a local partition: the
// channel this driver was assigned by the matching PartitionedOutput.
func NewLocalExchangeSource(id OperatorID, channel <-chan Row) Operator {
	return &localExchangeSource{base: base{id: id, kind: "LocalExchangeSource"}, channel: channel}
}

func (l *localExchangeSource) AddInput(Row) {}
func (l *localExchangeSource) GetOutput() (Row, bool) {
	r, ok := <-l.channel
	if !ok {
		l.done = true
	}
	return r, ok
}
func (l *localExchangeSource) Finished() bool { return l.done }

// --- local-merge / merge-join -------------------------------------------------

type localMerge struct {
	base
	channels []<-chan Row
	buf      []Row
	less     func(a, b Row) bool
	drained  bool
}

// NewLocalMerge returns the operator atop a local-merge barrier: it
// k-way-merges the channels the runtime allocated for this pipeline, one
// per upstream driver (spec.md §4.4).
func NewLocalMerge(id OperatorID, channels []<-chan Row, less func(a, b Row) bool) Operator {
	return &localMerge{base: base{id: id, kind: "LocalMerge"}, channels: channels, less: less}
}

func (m *localMerge) AddInput(Row) {}

func (m *localMerge) GetOutput() (Row, bool) {
	if !m.drained {
		var wg sync.WaitGroup
		rows := make([][]Row, len(m.channels))
		wg.Add(len(m.channels))
		for i, ch := range m.channels {
			go func(i int, ch <-chan Row) {
				defer wg.Done()
				for r := range ch {
					rows[i] = append(rows[i], r)
				}
			}(i, ch)
		}
		wg.Wait()
		for _, part := range rows {
			m.buf = append(m.buf, part...)
		}
		if m.less != nil {
			sort.SliceStable(m.buf, func(i, j int) bool { return m.less(m.buf[i], m.buf[j]) })
		}
		m.drained = true
	}
	if len(m.buf) == 0 {
		return nil, false
	}
	r := m.buf[0]
	m.buf = m.buf[1:]
	return r, true
}

func (m *localMerge) Finished() bool { return m.drained && len(m.buf) == 0 }

// MergeJoinSource is the runtime-registered handoff a merge-join's
// secondary pipeline enqueues into (spec.md §4.2's Merge-join row).
type MergeJoinSource struct {
	mu   sync.Mutex
	rows []Row
}

// NewMergeJoinSource allocates an empty merge-join source.
func NewMergeJoinSource() *MergeJoinSource { return &MergeJoinSource{} }

// Enqueue appends a row produced by the secondary (non-primary) side.
func (s *MergeJoinSource) Enqueue(r Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, r)
}

func (s *MergeJoinSource) drain() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.rows
	s.rows = nil
	return out
}

type mergeJoin struct {
	base
	source *MergeJoinSource
	keyOf  func(Row) string
	join   func(primary, secondary Row) Row
	input  []Row
	output []Row
	pos    int
	built  bool
}

// NewMergeJoin returns the primary-side operator of a merge join; it reads
// its own pipeline's rows plus whatever the registered MergeJoinSource has
// accumulated from the secondary pipeline.
func NewMergeJoin(id OperatorID, source *MergeJoinSource, keyOf func(Row) string, join func(primary, secondary Row) Row) Operator {
	return &mergeJoin{base: base{id: id, kind: "MergeJoin"}, source: source, keyOf: keyOf, join: join}
}

func (m *mergeJoin) AddInput(r Row) { m.input = append(m.input, r) }

func (m *mergeJoin) GetOutput() (Row, bool) {
	if !m.built {
		secondary := map[string][]Row{}
		for _, r := range m.source.drain() {
			k := m.keyOf(r)
			secondary[k] = append(secondary[k], r)
		}
		for _, primaryRow := range m.input {
			for _, secondaryRow := range secondary[m.keyOf(primaryRow)] {
				m.output = append(m.output, m.join(primaryRow, secondaryRow))
			}
		}
		m.built = true
	}
	if m.pos >= len(m.output) {
		return nil, false
	}
	r := m.output[m.pos]
	m.pos++
	return r, true
}

func (m *mergeJoin) Finished() bool { return m.built && m.pos >= len(m.output) }

// --- misc ---------------------------------------------------------------

type unnest struct {
	base
	columnIndex int
	input       []Row
	output      []Row
	pos         int
	built       bool
}

// NewUnnest returns an operator that flattens the array-valued column at
// columnIndex into one output row per element.
func NewUnnest(id OperatorID, columnIndex int) Operator {
	return &unnest{base: base{id: id, kind: "Unnest"}, columnIndex: columnIndex}
}

func (u *unnest) AddInput(r Row) { u.input = append(u.input, r) }

func (u *unnest) GetOutput() (Row, bool) {
	if !u.built {
		for _, r := range u.input {
			elems, _ := r[u.columnIndex].([]interface{})
			for _, e := range elems {
				out := make(Row, len(r))
				copy(out, r)
				out[u.columnIndex] = e
				u.output = append(u.output, out)
			}
		}
		u.built = true
	}
	if u.pos >= len(u.output) {
		return nil, false
	}
	r := u.output[u.pos]
	u.pos++
	return r, true
}

func (u *unnest) Finished() bool { return u.built && u.pos >= len(u.output) }

type enforceSingleRow struct {
	base
	input []Row
	pos   int
	done  bool
}

// NewEnforceSingleRow returns an operator that panics if more than one row
// ever reaches it; scalar-subquery plans rely on this invariant.
func NewEnforceSingleRow(id OperatorID) Operator {
	return &enforceSingleRow{base: base{id: id, kind: "EnforceSingleRow"}}
}

func (e *enforceSingleRow) AddInput(r Row) { e.input = append(e.input, r) }

func (e *enforceSingleRow) GetOutput() (Row, bool) {
	if len(e.input) > 1 {
		panic(fmt.Sprintf("operator: EnforceSingleRow saw %d rows, expected at most 1", len(e.input)))
	}
	if e.pos >= len(e.input) {
		e.done = true
		return nil, false
	}
	r := e.input[e.pos]
	e.pos++
	return r, true
}

func (e *enforceSingleRow) Finished() bool { return e.done }

type assignUniqueID struct {
	base
	taskUniqueID string
	counter      *int64
	input        []Row
	pos          int
}

// NewAssignUniqueID returns an operator that appends a task-unique id,
// derived from taskUniqueID (the materializer passes the AssignUniqueId
// plan node's) and a shared counter, to every row it sees.
func NewAssignUniqueID(id OperatorID, taskUniqueID string, counter *int64) Operator {
	return &assignUniqueID{base: base{id: id, kind: "AssignUniqueId"}, taskUniqueID: taskUniqueID, counter: counter}
}

func (a *assignUniqueID) AddInput(r Row) { a.input = append(a.input, r) }

func (a *assignUniqueID) GetOutput() (Row, bool) {
	if a.pos >= len(a.input) {
		return nil, false
	}
	*a.counter++
	r := append(Row{}, a.input[a.pos]...)
	r = append(r, fmt.Sprintf("%s-%d", a.taskUniqueID, *a.counter))
	a.pos++
	return r, true
}

func (a *assignUniqueID) Finished() bool { return a.pos >= len(a.input) }

type tableWrite struct {
	base
	sink func(Row)
	done bool
}

// NewTableWrite returns an operator that forwards every row to sink and
// emits nothing downstream.
func NewTableWrite(id OperatorID, sink func(Row)) Operator {
	return &tableWrite{base: base{id: id, kind: "TableWrite"}, sink: sink}
}

func (t *tableWrite) AddInput(r Row)          { t.sink(r) }
func (t *tableWrite) GetOutput() (Row, bool) { return nil, false }
func (t *tableWrite) Finished() bool          { return t.done }

// CallbackSink wraps an arbitrary callback as a terminating operator — used
// for the Local-merge and Merge-join "enqueue into runtime source" sinks in
// spec.md §4.2's dispatch table. A caller of Plan may also return one from
// its final-consumer supplier; Plan itself does not add one.
type CallbackSink struct {
	base
	callback func(Row)
}

// NewCallbackSink returns a sink operator that forwards every row to callback.
func NewCallbackSink(id OperatorID, callback func(Row)) *CallbackSink {
	return &CallbackSink{base: base{id: id, kind: "CallbackSink"}, callback: callback}
}

func (c *CallbackSink) AddInput(r Row)          { c.callback(r) }
func (c *CallbackSink) GetOutput() (Row, bool) { return nil, false }
func (c *CallbackSink) Finished() bool          { return false }
