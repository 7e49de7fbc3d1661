package debugger

import (
	"sort"
	"sync"
	"time"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

// Profiler counts instruction hits and attributes wall-clock time between
// consecutive notifications to the earlier instruction. The last instruction
// before Report gets the time up to the Report call.
type Profiler struct {
	mu       sync.Mutex
	stats    map[profileKey]*instStats
	lastKey  profileKey
	lastTime time.Time
	hasLast  bool
}

type profileKey struct {
	block *ir.Block
	index int
}

type instStats struct {
	calls   int64
	elapsed time.Duration
	text    string
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{stats: make(map[profileKey]*instStats)}
}

func (p *Profiler) EnterInstruction(ctx Context, block *ir.Block, index int, _ []pipeline.Data) {
	now := time.Now()
	key := profileKey{block: block, index: index}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasLast {
		p.stats[p.lastKey].elapsed += now.Sub(p.lastTime)
	}
	st := p.stats[key]
	if st == nil {
		st = &instStats{text: ir.DisplayInstruction(block, index, ctx)}
		p.stats[key] = st
	}
	st.calls++
	p.lastKey = key
	p.lastTime = now
	p.hasLast = true
}

// Calls returns the hit count recorded for one instruction.
func (p *Profiler) Calls(block *ir.Block, index int) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st := p.stats[profileKey{block: block, index: index}]; st != nil {
		return st.calls
	}
	return 0
}

// Report returns the profile as a table with columns index, instruction,
// calls, and duration_ms, ordered by instruction index.
func (p *Profiler) Report(Context, span.Span) (any, error) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasLast {
		p.stats[p.lastKey].elapsed += now.Sub(p.lastTime)
		p.hasLast = false
	}

	keys := make([]profileKey, 0, len(p.stats))
	for k := range p.stats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].index != keys[j].index {
			return keys[i].index < keys[j].index
		}
		return p.stats[keys[i]].text < p.stats[keys[j]].text
	})

	indices := make([]any, len(keys))
	texts := make([]any, len(keys))
	calls := make([]any, len(keys))
	durations := make([]any, len(keys))
	for i, k := range keys {
		st := p.stats[k]
		indices[i] = int64(k.index)
		texts[i] = st.text
		calls[i] = st.calls
		durations[i] = float64(st.elapsed) / float64(time.Millisecond)
	}

	df := dataframe.NewDataFrame(
		dataframe.NewSeriesInt64("index", nil, indices...),
		dataframe.NewSeriesString("instruction", nil, texts...),
		dataframe.NewSeriesInt64("calls", nil, calls...),
		dataframe.NewSeriesFloat64("duration_ms", nil, durations...),
	)
	return df, nil
}
