package canvas

// FrameScheduler defers work so it runs at most once per animation frame.
// Scheduling again before the frame fires must replace the pending work,
// never queue it.
type FrameScheduler interface {
	Schedule(fn func())
}

// CoalescingScheduler is a FrameScheduler driven by an external frame
// source (a ticker, a test). It keeps only the latest scheduled function.
type CoalescingScheduler struct {
	pending func()
}

func (s *CoalescingScheduler) Schedule(fn func()) {
	s.pending = fn
}

// Flush runs the pending work, if any. Called once per frame.
func (s *CoalescingScheduler) Flush() {
	if s.pending == nil {
		return
	}
	fn := s.pending
	s.pending = nil
	fn()
}

// Pending reports whether work is waiting for the next frame.
func (s *CoalescingScheduler) Pending() bool {
	return s.pending != nil
}

type panState int

const (
	panIdle panState = iota
	panDragging
)

// PanController is the two-state drag machine behind horizontal image
// panning. It accumulates pointer delta against the drag's starting
// offset, clamps through the current cover metrics, and coalesces
// recomputation to one per frame regardless of input event frequency.
//
// It is driven from a single goroutine (the event loop of the owning
// session); it holds no locks and no external resources.
type PanController struct {
	frames FrameScheduler
	clamp  func(float64) float64
	onPan  func(float64)

	state       panState
	startX      float64
	startOffset float64
	offset      float64
	pendingX    float64
}

// NewPanController builds a controller. clamp bounds a requested offset
// (normally CoverMetrics.ClampPan); onPan observes each applied offset and
// may be nil.
func NewPanController(frames FrameScheduler, clamp func(float64) float64, onPan func(float64)) *PanController {
	if clamp == nil {
		clamp = func(float64) float64 { return 0 }
	}
	return &PanController{
		frames: frames,
		clamp:  clamp,
		onPan:  onPan,
	}
}

// SetClamp swaps the clamp function when the image or container changes.
// The current offset is re-clamped so it never exceeds the new overflow.
func (p *PanController) SetClamp(clamp func(float64) float64) {
	if clamp == nil {
		clamp = func(float64) float64 { return 0 }
	}
	p.clamp = clamp
	p.offset = p.clamp(p.offset)
}

// Start begins a drag at pointer position x. Starting while already
// dragging restarts from the current offset.
func (p *PanController) Start(x float64) {
	p.state = panDragging
	p.startX = x
	p.startOffset = p.offset
}

// Move records the latest pointer position. The recomputation runs on the
// next frame; further moves before that frame overwrite the pending value.
func (p *PanController) Move(x float64) {
	if p.state != panDragging {
		return
	}
	p.pendingX = x
	p.frames.Schedule(p.applyPending)
}

func (p *PanController) applyPending() {
	if p.state != panDragging {
		return
	}
	dx := p.pendingX - p.startX
	p.offset = p.clamp(p.startOffset + dx)
	if p.onPan != nil {
		p.onPan(p.offset)
	}
}

// End finishes the drag. The last clamped offset persists until the next
// drag or a Reset.
func (p *PanController) End() {
	p.state = panIdle
}

// Cancel aborts an in-flight drag and discards its state; the offset
// resets to zero. Used when the section or map changes mid-drag.
func (p *PanController) Cancel() {
	p.state = panIdle
	p.Reset()
}

// Reset zeroes the offset, as on image change.
func (p *PanController) Reset() {
	p.offset = 0
	if p.onPan != nil {
		p.onPan(0)
	}
}

// Offset returns the current clamped pan offset in pixels.
func (p *PanController) Offset() float64 {
	return p.offset
}

// Dragging reports whether a drag is in progress.
func (p *PanController) Dragging() bool {
	return p.state == panDragging
}
