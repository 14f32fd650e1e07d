package player

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Media is the playable-media handle the controller drives. The real
// implementation mirrors the browser's audio element over the event
// endpoints; tests supply a fake.
type Media interface {
	SetSource(url string)
	SetLoop(loop bool)
	Play() error
	Pause()
	Seek(seconds float64)
	SetVolume(level float64)
	SetMuted(muted bool)
}

// State represents the current playback state
type State struct {
	Source      string    `json:"source"`
	IsPlaying   bool      `json:"isPlaying"`
	IsMuted     bool      `json:"isMuted"`
	Volume      float64   `json:"volume"`      // 0.0 to 1.0
	LastVolume  float64   `json:"lastVolume"`  // pre-mute volume, restored on unmute
	CurrentTime float64   `json:"currentTime"` // in seconds
	Duration    float64   `json:"duration"`    // in seconds
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Controller wraps one media handle with transport controls and keeps the
// progress state the client renders. Every clip plays as a seamless loop.
type Controller struct {
	media         Media
	state         State
	defaultVolume float64
	mutex         sync.RWMutex
	logger        *logrus.Logger
}

// NewController creates a controller around the given media handle
func NewController(media Media, defaultVolume float64, logger *logrus.Logger) *Controller {
	c := &Controller{
		media:         media,
		defaultVolume: defaultVolume,
		logger:        logger,
		state: State{
			Volume:    defaultVolume,
			UpdatedAt: time.Now(),
		},
	}
	media.SetVolume(defaultVolume)
	return c
}

// State returns a copy of the current playback state (thread-safe)
func (c *Controller) State() State {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.state
}

// LoadSource resets progress, assigns a new looping source, and attempts
// playback. A rejected play (autoplay policy) settles into a paused state
// instead of failing.
func (c *Controller) LoadSource(url string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state.Source = url
	c.state.CurrentTime = 0
	c.state.Duration = 0

	c.media.SetSource(url)
	c.media.SetLoop(true)
	c.media.Seek(0)

	if err := c.media.Play(); err != nil {
		c.logger.WithError(err).WithField("source", url).Debug("Playback start rejected, staying paused")
		c.state.IsPlaying = false
	} else {
		c.state.IsPlaying = true
	}
	c.touch()
}

// TogglePlayPause flips between playing and paused
func (c *Controller) TogglePlayPause() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state.IsPlaying {
		c.media.Pause()
		c.state.IsPlaying = false
	} else {
		if err := c.media.Play(); err != nil {
			c.logger.WithError(err).Debug("Playback start rejected")
		} else {
			c.state.IsPlaying = true
		}
	}
	c.touch()
}

// Seek jumps playback to a fractional position in [0,1] of total duration.
// A no-op while the duration is not yet known.
func (c *Controller) Seek(fraction float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state.Duration <= 0 {
		return
	}

	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	target := fraction * c.state.Duration
	c.media.Seek(target)
	c.state.CurrentTime = target
	c.touch()
}

// SetVolume adjusts the volume level, implicitly unmuting
func (c *Controller) SetVolume(level float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if level < 0 {
		level = 0
	} else if level > 1 {
		level = 1
	}

	if c.state.IsMuted {
		c.media.SetMuted(false)
		c.state.IsMuted = false
	}

	c.media.SetVolume(level)
	c.state.Volume = level
	c.touch()
}

// ToggleMute mutes, remembering the current volume, or unmutes, restoring
// it. A remembered volume of zero falls back to the default level.
func (c *Controller) ToggleMute() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state.IsMuted {
		restore := c.state.LastVolume
		if restore == 0 {
			restore = c.defaultVolume
		}
		c.media.SetMuted(false)
		c.media.SetVolume(restore)
		c.state.Volume = restore
		c.state.IsMuted = false
	} else {
		c.state.LastVolume = c.state.Volume
		c.media.SetMuted(true)
		c.state.IsMuted = true
	}
	c.touch()
}

// HandleTimeUpdate records the media-reported playback position
func (c *Controller) HandleTimeUpdate(currentTime float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state.CurrentTime = currentTime
	c.touch()
}

// HandleMetadata records the media-reported total duration
func (c *Controller) HandleMetadata(duration float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state.Duration = duration
	c.touch()
}

// HandleEnded loops seamlessly: seek back to zero and resume. A rejected
// resume falls back to a paused state.
func (c *Controller) HandleEnded() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.media.Seek(0)
	c.state.CurrentTime = 0

	if err := c.media.Play(); err != nil {
		c.logger.WithError(err).Debug("Loop resume rejected, pausing")
		c.state.IsPlaying = false
	} else {
		c.state.IsPlaying = true
	}
	c.touch()
}

// HandleError records a media error and settles into a paused state
func (c *Controller) HandleError(message string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.logger.WithFields(logrus.Fields{
		"source": c.state.Source,
		"error":  message,
	}).Warn("Media playback error")
	c.state.IsPlaying = false
	c.touch()
}

// touch must be called with the lock held
func (c *Controller) touch() {
	c.state.UpdatedAt = time.Now()
}
