// Package session tracks one browser session per visitor: its advisory
// acknowledgement, its selection machine, and its playback controller.
package session

import (
	"sync"
	"time"

	"aircheck/internal/catalog"
	"aircheck/internal/config"
	"aircheck/internal/player"
	"aircheck/internal/selection"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Session represents one client session
type Session struct {
	ID           string    `json:"id"`
	UserAgent    string    `json:"userAgent"`
	IPAddress    string    `json:"ipAddress"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	Acknowledged bool      `json:"acknowledged"`
}

// ClientSession bundles a session with the state it owns. The selection
// machine and playback controller live and die with the session; nothing
// about them is persisted.
type ClientSession struct {
	Session    *Session
	Recorder   *selection.Recorder
	Machine    *selection.Machine
	Element    *player.Element
	Controller *player.Controller
}

// Manager manages multiple client sessions
type Manager struct {
	sessions        map[string]*ClientSession
	catalog         *catalog.Catalog
	config          *config.Config
	logger          *logrus.Logger
	mutex           sync.RWMutex
	activityTimeout time.Duration
	done            chan struct{}
}

// NewManager creates a new session manager
func NewManager(cat *catalog.Catalog, cfg *config.Config, logger *logrus.Logger) *Manager {
	return &Manager{
		sessions:        make(map[string]*ClientSession),
		catalog:         cat,
		config:          cfg,
		logger:          logger,
		activityTimeout: 30 * time.Minute, // Sessions expire after 30 minutes of inactivity
		done:            make(chan struct{}),
	}
}

// CreateSession creates a new session with its own selection machine and
// playback controller. The machine stays uninitialized until the advisory
// notice is acknowledged.
func (sm *Manager) CreateSession(userAgent, ipAddress string) *ClientSession {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	recorder := selection.NewRecorder()
	element := player.NewElement()
	controller := player.NewController(element, sm.config.Content.DefaultVolume, sm.logger)
	machine := selection.NewMachine(sm.catalog, recorder, recorder, controller, sm.config.Content.StationZoom, sm.logger)

	cs := &ClientSession{
		Session: &Session{
			ID:           uuid.New().String(),
			UserAgent:    userAgent,
			IPAddress:    ipAddress,
			CreatedAt:    time.Now(),
			LastActivity: time.Now(),
		},
		Recorder:   recorder,
		Machine:    machine,
		Element:    element,
		Controller: controller,
	}

	sm.sessions[cs.Session.ID] = cs
	return cs
}

// GetSession retrieves a session by ID, refreshing its activity timestamp
func (sm *Manager) GetSession(sessionID string) (*ClientSession, bool) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	cs, exists := sm.sessions[sessionID]
	if !exists {
		return nil, false
	}
	cs.Session.LastActivity = time.Now()
	return cs, true
}

// Acknowledge clears the advisory gate for a session and kicks off its
// selection machine on the default date. Returns false for unknown sessions.
func (sm *Manager) Acknowledge(sessionID string) bool {
	sm.mutex.Lock()
	cs, exists := sm.sessions[sessionID]
	if !exists {
		sm.mutex.Unlock()
		return false
	}
	alreadyAcknowledged := cs.Session.Acknowledged
	cs.Session.Acknowledged = true
	cs.Session.LastActivity = time.Now()
	sm.mutex.Unlock()

	// Start outside the manager lock; it renders through the machine's ports.
	if !alreadyAcknowledged {
		cs.Machine.Start(sm.config.Sheets.DefaultDate)
	}
	return true
}

// Count returns the number of live sessions
func (sm *Manager) Count() int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	return len(sm.sessions)
}

// StartCleanup launches the background expiry loop
func (sm *Manager) StartCleanup() {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				sm.cleanupExpiredSessions()
			case <-sm.done:
				return
			}
		}
	}()
}

// StopCleanup terminates the expiry loop
func (sm *Manager) StopCleanup() {
	close(sm.done)
}

// cleanupExpiredSessions drops sessions past the inactivity timeout
func (sm *Manager) cleanupExpiredSessions() {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	cutoff := time.Now().Add(-sm.activityTimeout)
	for id, cs := range sm.sessions {
		if cs.Session.LastActivity.Before(cutoff) {
			delete(sm.sessions, id)
			sm.logger.WithField("session", id).Debug("Expired inactive session")
		}
	}
}
