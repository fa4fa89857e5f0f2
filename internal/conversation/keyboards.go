package conversation

import "github.com/yungbote/sprint-backend/internal/messaging"

// Dashboard and settings button labels. Incoming text equal to one of these is a
// command rather than a capture.
const (
	ButtonUrgent   = "🔴 Urgent"
	ButtonBrief    = "📋 Brief"
	ButtonPeople   = "👥 People"
	ButtonVault    = "🔓 Vault"
	ButtonGoal     = "🧭 Main Goal"
	ButtonSettings = "⚙️ Settings"

	ButtonChangePersona  = "🎭 Change Persona"
	ButtonChangeSchedule = "⏰ Change Schedule"
	ButtonChangeLocation = "📍 Change Location"
	ButtonChangeGoal     = "🎯 Change Goal"
	ButtonBack           = "🔙 Back to Dashboard"
)

func MainKeyboard() *messaging.Keyboard {
	return &messaging.Keyboard{
		Rows: [][]string{
			{ButtonUrgent, ButtonBrief},
			{ButtonPeople, ButtonVault},
			{ButtonGoal, ButtonSettings},
		},
		Resize:     true,
		Persistent: true,
	}
}

func PersonaKeyboard() *messaging.Keyboard {
	return &messaging.Keyboard{
		Rows:    [][]string{{"⚔️ Commander", "🏗️ Architect", "🌿 Nurturer"}},
		Resize:  true,
		OneTime: true,
	}
}

func ScheduleKeyboard() *messaging.Keyboard {
	return &messaging.Keyboard{
		Rows:    [][]string{{"🌅 Early", "☀️ Standard", "🌙 Late"}},
		Resize:  true,
		OneTime: true,
	}
}

func SettingsKeyboard() *messaging.Keyboard {
	return &messaging.Keyboard{
		Rows: [][]string{
			{ButtonChangePersona, ButtonChangeSchedule},
			{ButtonChangeLocation, ButtonChangeGoal},
			{ButtonBack},
		},
		Resize: true,
	}
}
