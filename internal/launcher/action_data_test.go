package launcher

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSpawnAction(t *testing.T) {
	action := NewSpawnAction([]string{"systemctl", "poweroff"})

	if action.Type() != "spawn" {
		t.Errorf("Expected type 'spawn', got '%s'", action.Type())
	}

	data, err := action.ToJSON()
	if err != nil {
		t.Fatalf("Failed to marshal to JSON: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}

	if raw["type"] != "spawn" {
		t.Errorf("Expected type in JSON to be 'spawn', got '%v'", raw["type"])
	}
}

func TestParseActionData(t *testing.T) {
	testCases := []struct {
		name   string
		action ActionData
	}{
		{"spawn", NewSpawnAction([]string{"swaylock", "-f", "-c", "000000"})},
		{"apply theme", NewApplyThemeAction("dark")},
		{"show help", &ShowHelpAction{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := tc.action.ToJSON()
			if err != nil {
				t.Fatalf("Failed to marshal: %v", err)
			}

			parsed, err := ParseActionData(data)
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}

			if !reflect.DeepEqual(parsed, tc.action) {
				t.Errorf("Expected %#v, got %#v", tc.action, parsed)
			}
		})
	}
}

func TestParseActionDataErrors(t *testing.T) {
	inputs := []string{
		`not json`,
		`{"argv": ["ls"]}`,
		`{"type": "spawn", "argv": []}`,
		`{"type": "teleport"}`,
	}

	for _, input := range inputs {
		if _, err := ParseActionData([]byte(input)); err == nil {
			t.Errorf("Expected error for %s", input)
		}
	}
}
