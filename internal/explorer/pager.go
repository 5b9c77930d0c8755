package explorer

import "github.com/zjrosen/regview/internal/registry"

// DefaultBatchSize is how many rows a pager emits per pass.
const DefaultBatchSize = 100

const unbounded = -1

// Pager drains a Cursor in batches. It holds the cursor between passes so
// continuing never restarts the sequence.
type Pager struct {
	cursor    Cursor
	batch     int
	target    int
	rows      []registry.Target
	peeked    *registry.Target
	exhausted bool
	offered   bool
}

// NewPager wraps cursor. A non-positive batch uses DefaultBatchSize.
func NewPager(cursor Cursor, batch int) *Pager {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Pager{cursor: cursor, batch: batch, target: batch}
}

// Pull emits rows until the target is reached or the cursor runs dry and
// returns the rows emitted by this call.
func (p *Pager) Pull() []registry.Target {
	start := len(p.rows)
	for p.target == unbounded || len(p.rows) < p.target {
		t, ok := p.next()
		if !ok {
			break
		}
		p.rows = append(p.rows, t)
	}

	// Look one ahead so continuation is only offered when it yields rows.
	if !p.exhausted && p.target != unbounded && len(p.rows) == p.target {
		if t, ok := p.next(); ok {
			p.peeked = &t
			p.offered = true
		}
	}
	return p.rows[start:]
}

func (p *Pager) next() (registry.Target, bool) {
	if p.peeked != nil {
		t := *p.peeked
		p.peeked = nil
		return t, true
	}
	if p.exhausted {
		return registry.Target{}, false
	}
	t, ok := p.cursor.Next()
	if !ok {
		p.exhausted = true
	}
	return t, ok
}

// ShowMore raises the target by one batch and resumes. It does nothing
// unless continuation is on offer.
func (p *Pager) ShowMore() []registry.Target {
	if !p.offered {
		return nil
	}
	p.offered = false
	p.target += p.batch
	return p.Pull()
}

// ShowAll drains the rest of the cursor. It does nothing unless
// continuation is on offer.
func (p *Pager) ShowAll() []registry.Target {
	if !p.offered {
		return nil
	}
	p.offered = false
	p.target = unbounded
	return p.Pull()
}

// Offered reports whether show more / show all is available.
func (p *Pager) Offered() bool {
	return p.offered
}

// Rows returns every row emitted so far.
func (p *Pager) Rows() []registry.Target {
	return p.rows
}

// Len is the number of rows emitted so far.
func (p *Pager) Len() int {
	return len(p.rows)
}
