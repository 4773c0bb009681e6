package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiff(t *testing.T) {
	ready := PhaseReady

	tests := []struct {
		name     string
		old      *NavigationState
		new      *NavigationState
		wantDiff *StateDiff // nil means we expect no diff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new: &NavigationState{
				CurrentStepID: "welcome",
				Phase:         PhaseReady,
			},
			wantDiff: &StateDiff{
				CurrentStepID: &[]string{"welcome"}[0],
				Phase:         &ready,
				Platform:      &[]string{""}[0],
			},
		},
		{
			name: "No Changes",
			old: &NavigationState{
				CurrentStepID: "welcome",
				Phase:         PhaseReady,
				History:       []string{"a"},
			},
			new: &NavigationState{
				CurrentStepID: "welcome",
				Phase:         PhaseReady,
				History:       []string{"a"},
			},
			wantDiff: nil,
		},
		{
			name: "Forward Navigation",
			old: &NavigationState{
				CurrentStepID: "welcome",
				Phase:         PhaseReady,
			},
			new: &NavigationState{
				CurrentStepID: "install",
				Phase:         PhaseReady,
				History:       []string{"welcome"},
			},
			wantDiff: &StateDiff{
				CurrentStepID: &[]string{"install"}[0],
				History:       []string{"welcome"},
			},
		},
		{
			name: "Restart Clears History",
			old: &NavigationState{
				CurrentStepID: "install",
				Phase:         PhaseReady,
				History:       []string{"welcome"},
			},
			new: &NavigationState{
				CurrentStepID: "welcome",
				Phase:         PhaseReady,
			},
			wantDiff: &StateDiff{
				CurrentStepID:  &[]string{"welcome"}[0],
				HistoryCleared: true,
			},
		},
		{
			name: "Platform Change",
			old:  &NavigationState{CurrentStepID: "a", Phase: PhaseReady},
			new:  &NavigationState{CurrentStepID: "a", Phase: PhaseReady, Platform: "mac"},
			wantDiff: &StateDiff{
				Platform: &[]string{"mac"}[0],
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if tt.wantDiff == nil {
				if got != nil {
					t.Errorf("Diff() = %+v, want nil", got)
				}
				return
			}

			if got == nil {
				t.Fatalf("Diff() = nil, want %+v", tt.wantDiff)
			}

			if !equalPtr(got.CurrentStepID, tt.wantDiff.CurrentStepID) {
				t.Errorf("Diff().CurrentStepID = %v, want %v", got.CurrentStepID, tt.wantDiff.CurrentStepID)
			}
			if !equalPtr(got.Phase, tt.wantDiff.Phase) {
				t.Errorf("Diff().Phase = %v, want %v", got.Phase, tt.wantDiff.Phase)
			}
			if !equalPtr(got.Platform, tt.wantDiff.Platform) {
				t.Errorf("Diff().Platform = %v, want %v", got.Platform, tt.wantDiff.Platform)
			}
			if !reflect.DeepEqual(got.History, tt.wantDiff.History) {
				t.Errorf("Diff().History = %v, want %v", got.History, tt.wantDiff.History)
			}
			if got.HistoryCleared != tt.wantDiff.HistoryCleared {
				t.Errorf("Diff().HistoryCleared = %v, want %v", got.HistoryCleared, tt.wantDiff.HistoryCleared)
			}
		})
	}
}

func TestDiffJSONSerialization(t *testing.T) {
	t.Run("Unchanged Fields Omitted", func(t *testing.T) {
		s1 := &NavigationState{CurrentStepID: "a", Phase: PhaseReady}
		s2 := &NavigationState{CurrentStepID: "b", Phase: PhaseReady}
		diff := Diff(s1, s2)
		if diff == nil {
			t.Fatal("Expected diff, got nil")
		}

		bytes, _ := json.Marshal(diff)
		if strings.Contains(string(bytes), `"phase"`) {
			t.Errorf("JSON should not contain 'phase' when unchanged, got: %s", string(bytes))
		}
		if !strings.Contains(string(bytes), `"current_step_id":"b"`) {
			t.Errorf("JSON should contain the new step, got: %s", string(bytes))
		}
	})
}

func TestStepNextSteps(t *testing.T) {
	step := Step{
		ID: "choose",
		Actions: []Action{
			{Label: "Mac", NextStep: "install"},
			{Label: "Windows", NextStep: "install"},
			{Label: "Docs", Type: ActionTypeExternalLink, URL: "https://example.com"},
			{Label: "Skip", NextStep: "done"},
		},
	}

	got := step.NextSteps()
	want := []string{"install", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NextSteps() = %v, want %v", got, want)
	}
}

func TestActionButton(t *testing.T) {
	b := ActionButton(Action{Label: "Continue", NextStep: "next", StartDisabled: true})
	if !b.Disabled || b.ID != "Continue" || b.Kind != ButtonAction {
		t.Errorf("unexpected button: %+v", b)
	}
	if !reflect.DeepEqual(b.Classes, []string{ClassActionButton, ClassActionDisabled}) {
		t.Errorf("unexpected classes: %v", b.Classes)
	}
	if b.Action == nil || b.Action.NextStep != "next" {
		t.Errorf("button should carry its action, got %+v", b.Action)
	}
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
