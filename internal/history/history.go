// Package history keeps the versioned record of chart sessions. The
// in-memory list is authoritative; every mutation re-serializes the whole
// list into a durable blob, and write failures are logged but never surfaced
// to the mutating caller.
package history

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chartchat/internal/chart"
	"chartchat/internal/logger"
)

// MaxSessions bounds the store; the oldest session is evicted beyond it.
const MaxSessions = 10

// Version is one immutable snapshot of a chart set plus the request that
// produced it.
type Version struct {
	VersionID    string       `json:"versionId"`
	Timestamp    int64        `json:"timestamp"`
	Request      string       `json:"request"`
	Charts       []chart.Spec `json:"charts"`
	IsAdjustment bool         `json:"isAdjustment"`
}

// Session is one conversational thread of chart requests. Versions is
// append-only and never empty.
type Session struct {
	ID              string                      `json:"id"`
	OriginalRequest string                      `json:"originalRequest"`
	Timestamp       int64                       `json:"timestamp"`
	Versions        []Version                   `json:"versions"`
	Messages        []chart.ConversationMessage `json:"messages"`
}

// Store holds sessions most-recent-first (creation order, not last-touch
// order: AppendVersion bumps the timestamp but never moves the session).
type Store struct {
	mu       sync.Mutex
	sessions []Session
	blob     Blob

	now   func() time.Time
	newID func() string
}

// Open loads the persisted blob into a new store. A corrupt blob is
// discarded and the store starts empty; load never fails.
func Open(blob Blob) *Store {
	s := &Store{
		blob:  blob,
		now:   time.Now,
		newID: uuid.NewString,
	}
	s.load()
	return s
}

func (s *Store) load() {
	raw, err := s.blob.Get()
	if err != nil {
		logger.L.Warn("history blob read failed, starting empty", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}
	sessions, err := decodeSessions(raw)
	if err != nil {
		logger.L.Warn("corrupted history blob discarded", "error", err)
		if derr := s.blob.Delete(); derr != nil {
			logger.L.Warn("history blob delete failed", "error", derr)
		}
		return
	}
	s.sessions = sessions
}

// Sessions returns the session list most-recent-first.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Get returns one session by id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, true
		}
	}
	return Session{}, false
}

// CreateSession starts a new session with a single non-adjustment version,
// prepends it, evicts beyond MaxSessions and persists. Returns the new id.
func (s *Store) CreateSession(request string, charts []chart.Spec, messages []chart.ConversationMessage) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli()
	id := s.newID()
	if messages == nil {
		messages = []chart.ConversationMessage{}
	}
	sess := Session{
		ID:              id,
		OriginalRequest: request,
		Timestamp:       ts,
		Versions: []Version{{
			VersionID:    id + "-v1",
			Timestamp:    ts,
			Request:      request,
			Charts:       charts,
			IsAdjustment: false,
		}},
		Messages: messages,
	}

	s.sessions = append([]Session{sess}, s.sessions...)
	if len(s.sessions) > MaxSessions {
		s.sessions = s.sessions[:MaxSessions]
	}
	s.persistLocked()
	return id
}

// AppendVersion adds a version to an existing session, bumps the session
// timestamp and optionally replaces the transcript. An unknown id is a
// silent no-op.
func (s *Store) AppendVersion(id, request string, charts []chart.Spec, isAdjustment bool, messages []chart.ConversationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sessions {
		if s.sessions[i].ID != id {
			continue
		}
		ts := s.now().UnixMilli()
		ordinal := len(s.sessions[i].Versions) + 1
		s.sessions[i].Versions = append(s.sessions[i].Versions, Version{
			VersionID:    fmt.Sprintf("%s-v%d", id, ordinal),
			Timestamp:    ts,
			Request:      request,
			Charts:       charts,
			IsAdjustment: isAdjustment,
		})
		s.sessions[i].Timestamp = ts
		if messages != nil {
			s.sessions[i].Messages = messages
		}
		s.persistLocked()
		return
	}
	logger.L.Debug("append to unknown session ignored", "id", id)
}

// UpdateMessages replaces a session's transcript. Unknown id is a no-op.
func (s *Store) UpdateMessages(id string, messages []chart.ConversationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].Messages = messages
			s.persistLocked()
			return
		}
	}
}

// Remove deletes one session.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			s.persistLocked()
			return
		}
	}
}

// Clear deletes every session. This is a deliberate administrative
// operation, exposed on the store itself rather than as an ambient hook.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = nil
	s.persistLocked()
}

func (s *Store) persistLocked() {
	raw, err := json.Marshal(s.sessions)
	if err != nil {
		logger.L.Error("history serialization failed, in-memory state remains authoritative", "error", err)
		return
	}
	if err := s.blob.Set(raw); err != nil {
		logger.L.Error("history write failed, in-memory state remains authoritative", "error", err)
	}
}
