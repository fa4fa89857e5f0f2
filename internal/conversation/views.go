package conversation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/sprint-backend/internal/domain/assistant"
	"github.com/yungbote/sprint-backend/internal/messaging"
)

const (
	briefFetchLimit = 10
	briefShowLimit  = 5
	vaultLimit      = 5
)

func (r *router) main(text string) (reply, error) {
	return reply{text: text, keyboard: MainKeyboard(), next: StageActive}, nil
}

func (r *router) viewUrgent(ctx context.Context, t *turn) (reply, error) {
	fire, err := r.repos.Tasks.FirstTodoByPriority(t.dbc, t.in.UserID, assistant.PriorityUrgent)
	if err != nil {
		return reply{}, fmt.Errorf("load urgent task: %w", err)
	}
	if fire == nil {
		return r.main(r.copy.Render("no_fires", nil))
	}
	return r.main(r.copy.Render("urgent_view", map[string]any{"Title": fire.Title}))
}

func (r *router) viewBrief(ctx context.Context, t *turn) (reply, error) {
	tasks, err := r.repos.Tasks.ListTodo(t.dbc, t.in.UserID, briefFetchLimit)
	if err != nil {
		return reply{}, fmt.Errorf("load brief: %w", err)
	}
	if len(tasks) == 0 {
		return r.main(r.copy.Render("brief_empty", nil))
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority == assistant.PriorityUrgent && tasks[j].Priority != assistant.PriorityUrgent
	})
	if len(tasks) > briefShowLimit {
		tasks = tasks[:briefShowLimit]
	}
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		icon := "⚪"
		if task.Priority == assistant.PriorityUrgent {
			icon = "🔴"
		}
		lines = append(lines, icon+" "+task.Title)
	}
	return r.main(r.copy.Render("brief_header", nil) + "\n\n" + strings.Join(lines, "\n"))
}

func (r *router) viewPeople(ctx context.Context, t *turn) (reply, error) {
	people, err := r.repos.People.ListByUser(t.dbc, t.in.UserID)
	if err != nil {
		return reply{}, fmt.Errorf("load people: %w", err)
	}
	if len(people) == 0 {
		return r.main(r.copy.Render("people_empty", nil))
	}
	lines := make([]string, 0, len(people))
	for _, p := range people {
		lines = append(lines, fmt.Sprintf("• %s (%s)", p.Name, p.Role))
	}
	return r.main(r.copy.Render("people_header", nil) + "\n\n" + strings.Join(lines, "\n"))
}

func (r *router) viewVault(ctx context.Context, t *turn) (reply, error) {
	ideas, err := r.repos.Logs.ListRecentByType(t.dbc, t.in.UserID, assistant.LogEntryTypeIdeas, vaultLimit)
	if err != nil {
		return reply{}, fmt.Errorf("load vault: %w", err)
	}
	if len(ideas) == 0 {
		return r.main(r.copy.Render("vault_empty", nil))
	}
	items := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		items = append(items, r.copy.Render("vault_item", map[string]any{
			"Date":    idea.CreatedAt.UTC().Format("01/02/2006"),
			"Content": idea.Content,
		}))
	}
	return r.main(r.copy.Render("vault_header", nil) + "\n\n" + strings.Join(items, "\n\n"))
}

func (r *router) viewGoal(ctx context.Context, t *turn) (reply, error) {
	return r.main(r.copy.Render("goal_view", map[string]any{"Goal": t.cfg[assistant.KeyCurrentSeason]}))
}

func (r *router) viewHelp(ctx context.Context, t *turn) (reply, error) {
	return r.main(r.copy.Render("help", nil))
}

func (r *router) viewSettings(ctx context.Context, t *turn) (reply, error) {
	return reply{text: r.copy.Render("settings_panel", nil), keyboard: SettingsKeyboard(), next: StageActive}, nil
}

func (r *router) backToDashboard(ctx context.Context, t *turn) (reply, error) {
	return r.main(r.copy.Render("back_to_dashboard", nil))
}

// changeSetting deletes one setup key so the next message re-enters that step.
// Later keys are left alone.
func (r *router) changeSetting(key, copyKey string, keyboard func() *messaging.Keyboard) handler {
	return func(ctx context.Context, t *turn) (reply, error) {
		if err := r.repos.Config.Delete(t.dbc, t.in.UserID, key); err != nil {
			return reply{}, fmt.Errorf("clear %s: %w", key, err)
		}
		delete(t.cfg, key)
		return reply{text: r.copy.Render(copyKey, nil), keyboard: keyboard(), next: InferStage(t.cfg)}, nil
	}
}

func (r *router) addPerson(ctx context.Context, t *turn) (reply, error) {
	p, ok := ParsePersonCommand(t.in.Text)
	if !ok {
		return r.main(r.copy.Render("person_format", nil))
	}
	_, err := r.repos.People.Create(t.dbc, []*assistant.Person{{
		UserID:          t.in.UserID,
		Name:            p.Name,
		Role:            p.Role,
		StrategicWeight: p.Weight,
	}})
	if err != nil {
		return reply{}, fmt.Errorf("add person: %w", err)
	}
	return r.main(r.copy.Render("person_added", map[string]any{"Name": p.Name, "Weight": p.Weight}))
}
