package history

import (
	"bytes"
	"encoding/json"

	"chartchat/internal/chart"
)

// legacySession is the pre-versioning persisted shape: one flat request with
// its chart set and no version list.
type legacySession struct {
	ID        string       `json:"id"`
	Request   string       `json:"request"`
	Charts    []chart.Spec `json:"charts"`
	Timestamp int64        `json:"timestamp"`
}

func decodeSessions(raw []byte) ([]Session, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	sessions := make([]Session, 0, len(elems))
	for _, e := range elems {
		sess, err := decodeSession(e)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// decodeSession discriminates the two persisted schemas. The presence of a
// versions array is the schema oracle: entries carrying it pass through
// unchanged, everything else is treated as legacy and migrated.
func decodeSession(raw json.RawMessage) (Session, error) {
	var probe struct {
		Versions json.RawMessage `json:"versions"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Session{}, err
	}
	if isJSONArray(probe.Versions) {
		var sess Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			return Session{}, err
		}
		return sess, nil
	}
	var old legacySession
	if err := json.Unmarshal(raw, &old); err != nil {
		return Session{}, err
	}
	return migrateLegacy(old), nil
}

// migrateLegacy is the pure unversioned→v1 transform. A migrated entry
// carries a versions array, so re-running the decode over its encoding is a
// pass-through: migration is idempotent end to end.
func migrateLegacy(old legacySession) Session {
	charts := old.Charts
	if charts == nil {
		charts = []chart.Spec{}
	}
	return Session{
		ID:              old.ID,
		OriginalRequest: old.Request,
		Timestamp:       old.Timestamp,
		Versions: []Version{{
			VersionID:    old.ID + "-v1",
			Timestamp:    old.Timestamp,
			Request:      old.Request,
			Charts:       charts,
			IsAdjustment: false,
		}},
		Messages: []chart.ConversationMessage{},
	}
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
