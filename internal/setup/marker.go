// Package setup persists one small marker file per interactive feature
// (roles menu, verify button, rules post). A marker's presence is the
// whole idempotency gate: the setup command refuses to run again until
// the file is deleted by hand.
package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const (
	FeatureRoles  = "roles"
	FeatureVerify = "verify"
	FeatureRules  = "rules"
)

// Marker records where a feature's message lives. The roles feature
// posts two menus, so it carries a second message id.
type Marker struct {
	MessageID      string `json:"message_id"`
	ChannelID      string `json:"channel_id"`
	ExtraMessageID string `json:"extra_message_id,omitempty"`
}

type Markers struct {
	dir string
}

func NewMarkers(dir string) *Markers {
	return &Markers{dir: dir}
}

func (m *Markers) path(feature string) string {
	return filepath.Join(m.dir, feature+"_message.json")
}

func (m *Markers) Exists(feature string) bool {
	_, err := os.Stat(m.path(feature))
	return err == nil
}

func (m *Markers) Load(feature string) (Marker, error) {
	data, err := os.ReadFile(m.path(feature))
	if err != nil {
		return Marker{}, err
	}
	var marker Marker
	if err := json.Unmarshal(data, &marker); err != nil {
		return Marker{}, err
	}
	return marker, nil
}

func (m *Markers) Save(feature string, marker Marker) error {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(marker)
	if err != nil {
		return err
	}
	return os.WriteFile(m.path(feature), data, 0o644)
}
