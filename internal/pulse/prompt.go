package pulse

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/sprint-backend/internal/domain/assistant"
)

type promptPerson struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type promptTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// PromptInput is the working set of one user.
type PromptInput struct {
	UserName string
	Persona  string
	Goal     string
	People   []*assistant.Person
	Tasks    []*assistant.Task
	Dumps    []*assistant.RawDump
}

var personaStyle = map[string]string{
	"1": "Commander (urgent, aggressive, execution first)",
	"2": "Architect (systems, logic, structure)",
	"3": "Nurturer (balanced, relationship focused)",
}

// BuildPrompt renders the briefing request. The model must answer with a single
// JSON object.
func BuildPrompt(in PromptInput) string {
	name := in.UserName
	if name == "" {
		name = "Leader"
	}
	goal := in.Goal
	if goal == "" {
		goal = "No Goal Set"
	}
	persona, ok := personaStyle[in.Persona]
	if !ok {
		persona = "balanced"
	}

	people := make([]promptPerson, 0, len(in.People))
	for _, p := range in.People {
		people = append(people, promptPerson{Name: p.Name, Role: p.Role})
	}
	tasks := make([]promptTask, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		tasks = append(tasks, promptTask{ID: t.ID.String(), Title: t.Title, Priority: t.Priority})
	}
	peopleJSON, _ := json.Marshal(people)
	tasksJSON, _ := json.Marshal(tasks)

	inputs := "None"
	if len(in.Dumps) > 0 {
		parts := make([]string, 0, len(in.Dumps))
		for _, d := range in.Dumps {
			parts = append(parts, d.Content)
		}
		inputs = strings.Join(parts, "\n---\n")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ROLE: Digital 2iC for %s.\n", name)
	fmt.Fprintf(&b, "PERSONA: %s\n", persona)
	fmt.Fprintf(&b, "Main Goal: %s\n", goal)
	fmt.Fprintf(&b, "STAKEHOLDERS: %s\n", peopleJSON)
	fmt.Fprintf(&b, "ACTIVE TASKS: %s\n", tasksJSON)
	fmt.Fprintf(&b, "NEW INPUTS: %s\n\n", inputs)
	b.WriteString(promptInstructions)
	return b.String()
}

const promptInstructions = `INSTRUCTIONS:
1. Address the user personally.
2. Use a high-density, scannable Markdown format. No long paragraphs.
3. Markdown safety: use ONLY single asterisks (*) for bold, never underscores, no nested formatting, and close every asterisk you open.
4. Structure: a short header, a greeting with progress, one or two sharp sentences in the persona's voice, then categorized lists (Work, Home, Ideas). Use 🔴 for urgent, 🟡 for important, ⚪ for chores and ideas.
5. Prioritize tasks involving stakeholders according to their roles.
6. Never display task ids to the user.
7. Add tasks found in the new inputs to "new_tasks".
8. If an input says a task was finished or closed, put that task's "id" from ACTIVE TASKS into "completed_task_ids".
9. Put pure ideas (not actionable yet) into "ideas".

OUTPUT JSON:
{
  "new_tasks": [{"title": "", "priority": "urgent|important|chore"}],
  "completed_task_ids": [],
  "ideas": [],
  "briefing": "The clean Markdown string."
}
`

// Output is the decoded model response.
type Output struct {
	NewTasks []struct {
		Title    string `json:"title"`
		Priority string `json:"priority"`
	} `json:"new_tasks"`
	CompletedTaskIDs []string `json:"completed_task_ids"`
	Briefing         string   `json:"briefing"`
	Ideas            []string `json:"ideas"`
}

// StripFences removes markdown code fences models like to wrap JSON in.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseOutput decodes model text into an Output. Anything that is not a JSON
// object is rejected.
func ParseOutput(raw string) (*Output, string, error) {
	clean := StripFences(raw)
	if !strings.HasPrefix(clean, "{") {
		return nil, clean, fmt.Errorf("not a JSON object")
	}
	var out Output
	if err := json.Unmarshal([]byte(clean), &out); err != nil {
		return nil, clean, err
	}
	return &out, clean, nil
}
