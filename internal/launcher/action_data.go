package launcher

import (
	"encoding/json"
	"fmt"
)

// ActionData represents data that can be executed when a launcher item is selected
type ActionData interface {
	Type() string
	ToJSON() ([]byte, error)
}

// SpawnAction starts an external program detached from the launcher.
type SpawnAction struct {
	Argv []string `json:"argv"`
}

func (a *SpawnAction) Type() string {
	return "spawn"
}

func (a *SpawnAction) ToJSON() ([]byte, error) {
	data := map[string]interface{}{
		"type": a.Type(),
		"argv": a.Argv,
	}
	return json.Marshal(data)
}

// ApplyThemeAction applies a stylesheet theme and makes it the default.
type ApplyThemeAction struct {
	Name string `json:"name"`
}

func (a *ApplyThemeAction) Type() string {
	return "apply_theme"
}

func (a *ApplyThemeAction) ToJSON() ([]byte, error) {
	data := map[string]interface{}{
		"type": a.Type(),
		"name": a.Name,
	}
	return json.Marshal(data)
}

// ShowHelpAction opens the help view.
type ShowHelpAction struct{}

func (a *ShowHelpAction) Type() string {
	return "show_help"
}

func (a *ShowHelpAction) ToJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"type": a.Type()})
}

// ParseActionData parses JSON data into the appropriate ActionData implementation
func ParseActionData(data []byte) (ActionData, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action data: %w", err)
	}

	actionType, ok := raw["type"].(string)
	if !ok {
		return nil, fmt.Errorf("action data missing type field")
	}

	switch actionType {
	case "spawn":
		var action SpawnAction
		if err := json.Unmarshal(data, &action); err != nil {
			return nil, fmt.Errorf("failed to parse spawn action: %w", err)
		}
		if len(action.Argv) == 0 {
			return nil, fmt.Errorf("spawn action has no argv")
		}
		return &action, nil

	case "apply_theme":
		var action ApplyThemeAction
		if err := json.Unmarshal(data, &action); err != nil {
			return nil, fmt.Errorf("failed to parse apply theme action: %w", err)
		}
		return &action, nil

	case "show_help":
		return &ShowHelpAction{}, nil

	default:
		return nil, fmt.Errorf("unknown action type: %s", actionType)
	}
}

// NewSpawnAction creates a new SpawnAction
func NewSpawnAction(argv []string) *SpawnAction {
	return &SpawnAction{Argv: argv}
}

// NewApplyThemeAction creates a new ApplyThemeAction
func NewApplyThemeAction(name string) *ApplyThemeAction {
	return &ApplyThemeAction{Name: name}
}
