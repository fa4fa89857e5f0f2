package conversation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/sprint-backend/internal/domain/assistant"
)

// labelCode pairs a case-sensitive label with the code it selects. Lists of
// labelCode are checked in order, so earlier labels win when several appear.
type labelCode struct {
	label string
	code  string
}

var personaLabels = []labelCode{
	{"Commander", "1"},
	{"Architect", "2"},
	{"Nurturer", "3"},
}

var scheduleLabels = []labelCode{
	{"Early", "1"},
	{"Standard", "2"},
	{"Late", "3"},
}

func matchLabel(text string, labels []labelCode) (string, bool) {
	for _, l := range labels {
		if strings.Contains(text, l.label) {
			return l.code, true
		}
	}
	return "", false
}

// ParsePersona maps text to a persona code. Commander beats Architect beats
// Nurturer regardless of where each appears in text.
func ParsePersona(text string) (string, bool) { return matchLabel(text, personaLabels) }

// ParseSchedule maps text to a schedule code. Early beats Standard beats Late.
func ParseSchedule(text string) (string, bool) { return matchLabel(text, scheduleLabels) }

var offsetPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// ParseTimezone returns the first signed decimal number in text, verbatim.
func ParseTimezone(text string) (string, bool) {
	m := offsetPattern.FindString(text)
	return m, m != ""
}

const minGoalRunes = 6

// ParseGoal accepts non-command text longer than five characters, unmodified.
func ParseGoal(text string) (string, bool) {
	if strings.HasPrefix(text, "/") || utf8.RuneCountInString(text) < minGoalRunes {
		return "", false
	}
	return text, true
}

var skipWords = map[string]struct{}{
	"skip": {},
	"none": {},
	"no":   {},
	"me":   {},
}

// IsSkip reports whether text declines the stakeholder step.
func IsSkip(text string) bool {
	_, ok := skipWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

var personPattern = regexp.MustCompile(`^(.*?)\((.*?)\)`)

// PersonInput is one parsed stakeholder.
type PersonInput struct {
	Name   string
	Role   string
	Weight int
}

// ParsePeople splits a "Name (Role), Name (Role)" list. Segments without a
// parenthesised role, or with nothing before it, keep the whole segment as the name.
func ParsePeople(text string) []PersonInput {
	var out []PersonInput
	for _, seg := range strings.Split(text, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		p := PersonInput{Name: seg, Role: assistant.DefaultPersonRole, Weight: assistant.DefaultStrategicWeight}
		if m := personPattern.FindStringSubmatch(seg); m != nil {
			if name := strings.TrimSpace(m[1]); name != "" {
				p.Name = name
			}
			if role := strings.TrimSpace(m[2]); role != "" {
				p.Role = role
			}
		}
		out = append(out, p)
	}
	return out
}

// ParsePersonCommand parses "/person Name | Weight". A missing or non-numeric
// weight becomes the default; the result is clamped to the allowed range.
func ParsePersonCommand(text string) (PersonInput, bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "/person"))
	if i := strings.IndexByte(rest, ' '); i >= 0 && strings.HasPrefix(rest, "@") {
		rest = strings.TrimSpace(rest[i:])
	}
	parts := strings.Split(rest, "|")
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return PersonInput{}, false
	}
	weight := assistant.DefaultStrategicWeight
	if len(parts) > 1 {
		if w, ok := parseDigits(strings.TrimSpace(parts[1])); ok {
			weight = w
		}
	}
	return PersonInput{
		Name:   name,
		Role:   assistant.DefaultPersonRole,
		Weight: assistant.ClampWeight(weight),
	}, true
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// overflow
		return assistant.MaxStrategicWeight, true
	}
	return n, true
}

var nameStrip = regexp.MustCompile("[*_`\\[\\]]")

const defaultUserName = "Leader"

// SanitizeName removes characters that would break Markdown rendering.
func SanitizeName(name string) string {
	name = strings.TrimSpace(nameStrip.ReplaceAllString(name, ""))
	if name == "" {
		return defaultUserName
	}
	return name
}

// FormatOffset renders an offset as GMT+N / GMT-N using the stored literal.
func FormatOffset(offset string) string {
	f, err := strconv.ParseFloat(offset, 64)
	if err != nil {
		return "GMT+5.5"
	}
	if f >= 0 && !strings.HasPrefix(offset, "+") {
		return "GMT+" + offset
	}
	return "GMT" + offset
}
