package conversation

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed copy.yaml
var defaultCopy []byte

// Copy is the outbound message catalog.
type Copy struct {
	tmpl   map[string]*template.Template
	blurbs map[string]map[string]string
}

var requiredCopy = []string{
	"welcome",
	"persona_reprompt", "persona_locked", "persona_updated",
	"schedule_reprompt", "schedule_locked", "schedule_updated",
	"timezone_reprompt", "timezone_locked", "timezone_updated",
	"goal_reprompt", "goal_locked", "goal_updated",
	"people_reprompt", "setup_complete", "concluded",
	"settings_panel", "change_persona", "change_schedule", "change_location", "change_goal", "back_to_dashboard",
	"vault_header", "vault_item", "vault_empty", "goal_view", "urgent_view", "no_fires",
	"brief_header", "brief_empty", "people_header", "people_empty",
	"person_added", "person_format", "capture_ack", "empty_text", "help", "unknown_command",
}

// DefaultCopy parses the embedded catalog.
func DefaultCopy() (*Copy, error) {
	return ParseCopy(defaultCopy)
}

func ParseCopy(raw []byte) (*Copy, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse copy catalog: %w", err)
	}

	c := &Copy{
		tmpl:   make(map[string]*template.Template, len(doc)),
		blurbs: map[string]map[string]string{},
	}
	for key, v := range doc {
		switch val := v.(type) {
		case string:
			t, err := template.New(key).Option("missingkey=zero").Parse(val)
			if err != nil {
				return nil, fmt.Errorf("copy %q: %w", key, err)
			}
			c.tmpl[key] = t
		case map[string]any:
			group := make(map[string]string, len(val))
			for code, text := range val {
				group[code] = fmt.Sprint(text)
			}
			c.blurbs[key] = group
		default:
			return nil, fmt.Errorf("copy %q: unsupported value %T", key, v)
		}
	}

	var missing []string
	for _, key := range requiredCopy {
		if _, ok := c.tmpl[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("copy catalog missing keys: %v", missing)
	}
	return c, nil
}

// Render executes the named template. Unknown keys render as the key itself so a
// reply is still sent.
func (c *Copy) Render(key string, data any) string {
	t, ok := c.tmpl[key]
	if !ok {
		return key
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return key
	}
	return buf.String()
}

// Blurb returns the text for code within group, or fallback when absent.
func (c *Copy) Blurb(group, code, fallback string) string {
	if s, ok := c.blurbs[group][code]; ok {
		return s
	}
	return fallback
}
