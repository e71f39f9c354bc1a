package diag

import "sync"

// Reporter is the minimal sink phases emit diagnostics into.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a Bag. It serializes concurrent reports.
type BagReporter struct {
	mu  sync.Mutex
	Bag *Bag
}

func NewBagReporter(b *Bag) *BagReporter {
	return &BagReporter{Bag: b}
}

func (r *BagReporter) Report(d Diagnostic) {
	if r == nil || r.Bag == nil {
		return
	}
	r.mu.Lock()
	r.Bag.Add(d)
	r.mu.Unlock()
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}
