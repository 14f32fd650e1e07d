package player

import "sync"

// Command is the desired state of the client's audio element. The client
// polls it and applies whatever changed since the revision it last saw;
// actual outcomes (position, metadata, rejection) flow back as events.
type Command struct {
	Revision int64    `json:"revision"`
	Source   string   `json:"source"`
	Loop     bool     `json:"loop"`
	Playing  bool     `json:"playing"`
	SeekTo   *float64 `json:"seekTo,omitempty"`
	Volume   float64  `json:"volume"`
	Muted    bool     `json:"muted"`
}

// Element is the server-side mirror of one browser audio element. It
// implements Media by recording commands; Play never fails here because
// autoplay rejection is only knowable client-side and comes back as an
// error event.
type Element struct {
	mutex sync.Mutex
	cmd   Command
}

// NewElement creates an element mirror
func NewElement() *Element {
	return &Element{}
}

// Command returns the current desired state (thread-safe)
func (e *Element) Command() Command {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.cmd
}

// SetSource assigns a new source and clears any pending seek
func (e *Element) SetSource(url string) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cmd.Source = url
	e.cmd.SeekTo = nil
	e.cmd.Revision++
}

// SetLoop toggles looping
func (e *Element) SetLoop(loop bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cmd.Loop = loop
	e.cmd.Revision++
}

// Play marks the element as playing
func (e *Element) Play() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cmd.Playing = true
	e.cmd.Revision++
	return nil
}

// Pause marks the element as paused
func (e *Element) Pause() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cmd.Playing = false
	e.cmd.Revision++
}

// Seek records a pending jump to the given position
func (e *Element) Seek(seconds float64) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	target := seconds
	e.cmd.SeekTo = &target
	e.cmd.Revision++
}

// SetVolume records the desired volume level
func (e *Element) SetVolume(level float64) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cmd.Volume = level
	e.cmd.Revision++
}

// SetMuted records the desired mute flag
func (e *Element) SetMuted(muted bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.cmd.Muted = muted
	e.cmd.Revision++
}
