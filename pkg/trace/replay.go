package trace

// Frame is the state of a recorded search after one expansion.
type Frame struct {
	Index    int      `json:"index"`
	Current  string   `json:"current"`
	Expanded []string `json:"expanded"`
	Explored []Edge   `json:"explored_edges"`
	New      []Edge   `json:"new_edges"`
	Done     bool     `json:"done"`
	Found    bool     `json:"found"`
	Path     []string `json:"path,omitempty"`
}

// Replay steps through a finished Trace one expansion at a time.
// Frames share backing arrays with the replay's private copy of the trace
// and must be treated as read-only.
type Replay struct {
	t       Trace
	offsets []int // offsets[i] = explored edges before step i
	pos     int
}

// NewReplay validates t and prepares it for replay. The trace is copied.
func NewReplay(t Trace) (*Replay, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	r := &Replay{t: t.Clone(), offsets: make([]int, len(t.Relaxations)+1)}
	for i, n := range r.t.Relaxations {
		r.offsets[i+1] = r.offsets[i] + n
	}
	return r, nil
}

// Len returns the number of frames.
func (r *Replay) Len() int { return len(r.t.Expanded) }

// Pos returns the index of the next frame Next would return.
func (r *Replay) Pos() int { return r.pos }

// Next returns the next frame and advances. It reports false once every
// frame has been returned.
func (r *Replay) Next() (Frame, bool) {
	if r.pos >= r.Len() {
		return Frame{}, false
	}
	f := r.frame(r.pos)
	r.pos++
	return f, true
}

// Prev steps back one frame and returns it. It reports false at the start.
func (r *Replay) Prev() (Frame, bool) {
	if r.pos <= 1 {
		return Frame{}, false
	}
	r.pos--
	return r.frame(r.pos - 1), true
}

// Seek positions the replay so that frame i is the current frame, clamping
// i to the valid range, and returns it.
func (r *Replay) Seek(i int) Frame {
	if r.Len() == 0 {
		return Frame{}
	}
	i = max(0, min(i, r.Len()-1))
	r.pos = i + 1
	return r.frame(i)
}

// Reset rewinds to before the first frame.
func (r *Replay) Reset() { r.pos = 0 }

// Frames returns every frame in order without moving the cursor.
func (r *Replay) Frames() []Frame {
	out := make([]Frame, r.Len())
	for i := range out {
		out[i] = r.frame(i)
	}
	return out
}

func (r *Replay) frame(i int) Frame {
	lo, hi := r.offsets[i], r.offsets[i+1]
	f := Frame{
		Index:    i,
		Current:  r.t.Expanded[i],
		Expanded: r.t.Expanded[: i+1 : i+1],
		Explored: r.t.Explored[:hi:hi],
		New:      r.t.Explored[lo:hi:hi],
		Done:     i == r.Len()-1,
	}
	if f.Done && len(r.t.Path) > 0 {
		f.Found = true
		f.Path = r.t.Path
	}
	return f
}
