package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/2beens/lifedash/internal/store"

	"gopkg.in/yaml.v3"
)

const SettingsKey = "reminders:settings"

// Settings is the user-edited reminder configuration.
type Settings struct {
	Rules []Rule `json:"rules" yaml:"rules"`
	// Undecodable holds the rules that could not be decoded. The rest of
	// the document still loads.
	Undecodable []UndecodableRule `json:"-" yaml:"-"`
}

// UndecodableRule is a rule element whose fields did not match the Rule shape.
type UndecodableRule struct {
	Index int
	ID    string
	Kind  Kind
	Err   error
}

func (u UndecodableRule) Error() string {
	return fmt.Sprintf("decode rule #%d: %s", u.Index, u.Err)
}

// ruleHeader is decoded from a broken rule so it can still be reported by id.
type ruleHeader struct {
	ID   string `json:"id" yaml:"id"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rules []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Rules, s.Undecodable = nil, nil
	for i, element := range raw.Rules {
		var r Rule
		if err := json.Unmarshal(element, &r); err != nil {
			var h ruleHeader
			_ = json.Unmarshal(element, &h)
			s.Undecodable = append(s.Undecodable, UndecodableRule{Index: i, ID: h.ID, Kind: h.Kind, Err: err})
			continue
		}
		s.Rules = append(s.Rules, r)
	}
	return nil
}

func (s *Settings) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Rules []yaml.Node `yaml:"rules"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	s.Rules, s.Undecodable = nil, nil
	for i := range raw.Rules {
		node := &raw.Rules[i]
		var r Rule
		if err := node.Decode(&r); err != nil {
			var h ruleHeader
			_ = node.Decode(&h)
			s.Undecodable = append(s.Undecodable, UndecodableRule{Index: i, ID: h.ID, Kind: h.Kind, Err: err})
			continue
		}
		s.Rules = append(s.Rules, r)
	}
	return nil
}

// SortedRules returns a copy of the rules ordered by id.
func (s Settings) SortedRules() []Rule {
	rules := append([]Rule(nil), s.Rules...)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

type RuleStatus struct {
	Rule
	Error string `json:"error,omitempty"`
}

// Statuses pairs every rule with its validation error, if any. Undecodable
// rules are listed with their decode error.
func (s Settings) Statuses() []RuleStatus {
	statuses := make([]RuleStatus, 0, len(s.Rules)+len(s.Undecodable))
	for _, r := range s.Rules {
		st := RuleStatus{Rule: r}
		if err := r.Validate(); err != nil {
			st.Error = err.Error()
		}
		statuses = append(statuses, st)
	}
	for _, u := range s.Undecodable {
		statuses = append(statuses, RuleStatus{
			Rule:  Rule{ID: u.ID, Kind: u.Kind},
			Error: u.Error(),
		})
	}
	sort.SliceStable(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses
}

// StoreSettings reads the settings from the record store on every call, so
// edits take effect on the next pass without a restart.
type StoreSettings struct {
	store store.RecordStore
}

func NewStoreSettings(s store.RecordStore) *StoreSettings {
	return &StoreSettings{store: s}
}

func (s *StoreSettings) Load(ctx context.Context) (Settings, error) {
	var settings Settings
	if _, err := store.GetJSON(ctx, s.store, SettingsKey, &settings); err != nil {
		return Settings{}, fmt.Errorf("load reminder settings: %w", err)
	}
	return settings, nil
}

// StaticSettings always returns the same settings.
type StaticSettings Settings

func (s StaticSettings) Load(context.Context) (Settings, error) {
	return Settings(s), nil
}

// ParseSettings decodes settings from YAML or JSON, picked by the file extension.
func ParseSettings(fileName string, data []byte) (Settings, error) {
	var settings Settings
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse yaml settings: %w", err)
		}
	case ".json", "":
		if err := json.Unmarshal(data, &settings); err != nil {
			return Settings{}, fmt.Errorf("parse json settings: %w", err)
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings file type: %s", fileName)
	}
	return settings, nil
}
