package pipeline

// Progress reports the completion percentage of the running step. Reports
// are clamped to [0,100]; values lower than the last accepted one are
// ignored, as are reports after the step has finished. Each accepted
// report emits a snapshot.
//
// Progress is safe for concurrent use by goroutines of one step body.
type Progress struct {
	o     *Orchestrator
	index int
}

// Report sets the step's progress to pct.
func (p *Progress) Report(pct int) {
	if p == nil || p.o == nil {
		return
	}
	p.o.report(p.index, min(max(pct, 0), 100))
}

// Fraction reports done/total as a percentage. A zero total is ignored.
func (p *Progress) Fraction(done, total int) {
	if total <= 0 {
		return
	}
	p.Report(done * 100 / total)
}
