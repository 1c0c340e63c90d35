package refdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Override pins the consensus score of one review after manual correction.
type Override struct {
	ShowID string `json:"show_id"`
	Outlet string `json:"outlet"`
	Critic string `json:"critic"`
	Score  int    `json:"score"`
	Reason string `json:"reason"`
	Author string `json:"author"`
}

// KeyNormalizer canonicalizes override keys the same way reviews are keyed.
type KeyNormalizer interface {
	Outlet(raw string) string
	Critic(raw string) string
}

// Overrides is an indexed, read-only human override table.
type Overrides struct {
	entries []Override
	index   map[string]Override
}

// LoadOverrides reads a JSON override table. A missing file yields an empty table.
func LoadOverrides(path string, norm KeyNormalizer) (*Overrides, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return NewOverrides(nil, norm), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewOverrides(nil, norm), nil
		}
		return nil, fmt.Errorf("read overrides: %w", err)
	}
	entries, err := ParseOverrides(data)
	if err != nil {
		return nil, fmt.Errorf("parse overrides %s: %w", path, err)
	}
	return NewOverrides(entries, norm), nil
}

// NewOverrides indexes entries by (show, normalized outlet, normalized critic).
// Later entries replace earlier ones with the same key.
func NewOverrides(entries []Override, norm KeyNormalizer) *Overrides {
	o := &Overrides{
		entries: append([]Override(nil), entries...),
		index:   make(map[string]Override, len(entries)),
	}
	for _, entry := range o.entries {
		o.index[overrideKey(entry.ShowID, norm.Outlet(entry.Outlet), norm.Critic(entry.Critic))] = entry
	}
	return o
}

// Lookup finds the override for a normalized review identity.
func (o *Overrides) Lookup(showID, normOutlet, normCritic string) (Override, bool) {
	if o == nil || len(o.index) == 0 {
		return Override{}, false
	}
	entry, ok := o.index[overrideKey(showID, normOutlet, normCritic)]
	return entry, ok
}

// Len returns the number of entries loaded.
func (o *Overrides) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

func overrideKey(showID, outlet, critic string) string {
	return strings.TrimSpace(showID) + "\x00" + outlet + "\x00" + critic
}

// ParseOverrides accepts either a bare array or an object with an overrides field.
func ParseOverrides(data []byte) ([]Override, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var entries []Override
	if data[0] == '{' {
		var wrapper struct {
			Overrides []Override `json:"overrides"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		entries = wrapper.Overrides
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].ShowID = strings.TrimSpace(entries[i].ShowID)
		entries[i].Outlet = strings.TrimSpace(entries[i].Outlet)
		entries[i].Critic = strings.TrimSpace(entries[i].Critic)
		entries[i].Reason = strings.TrimSpace(entries[i].Reason)
		if entries[i].ShowID == "" || entries[i].Outlet == "" || entries[i].Critic == "" {
			return nil, fmt.Errorf("overrides[%d]: show_id, outlet and critic are required", i)
		}
		if entries[i].Score < 0 || entries[i].Score > 100 {
			return nil, fmt.Errorf("overrides[%d]: score %d outside 0-100", i, entries[i].Score)
		}
	}
	return entries, nil
}
