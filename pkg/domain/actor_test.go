package domain

import (
	"reflect"
	"testing"
)

func TestActor_StateNames(t *testing.T) {
	tests := []struct {
		name      string
		actor     Actor
		wantNames []string
		wantStart string
	}{
		{
			name:      "Implicit Single State",
			actor:     Actor{Name: "inert"},
			wantNames: []string{ImplicitState},
			wantStart: ImplicitState,
		},
		{
			name:      "Declared States Default Start",
			actor:     Actor{Name: "fsm", States: []string{"idle", "busy"}},
			wantNames: []string{"idle", "busy"},
			wantStart: "idle",
		},
		{
			name:      "Explicit Start",
			actor:     Actor{Name: "fsm", States: []string{"idle", "busy"}, Start: "busy"},
			wantNames: []string{"idle", "busy"},
			wantStart: "busy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.StateNames(); !reflect.DeepEqual(got, tt.wantNames) {
				t.Errorf("StateNames() = %v, want %v", got, tt.wantNames)
			}
			if got := tt.actor.StartState(); got != tt.wantStart {
				t.Errorf("StartState() = %v, want %v", got, tt.wantStart)
			}
		})
	}
}

func TestTransitionSet_EligibleIn(t *testing.T) {
	set := TransitionSet{
		{Name: "a", From: "idle"},
		{Name: "b"},
		{Name: "c", From: "busy"},
		{Name: "d", From: "idle"},
	}

	if got, want := set.EligibleIn("idle"), []int{0, 1, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("EligibleIn(idle) = %v, want %v", got, want)
	}
	if got, want := set.EligibleIn("busy"), []int{1, 2}; !reflect.DeepEqual(got, want) {
		t.Errorf("EligibleIn(busy) = %v, want %v", got, want)
	}
	if got := set.Label(2); got != "c" {
		t.Errorf("Label(2) = %q, want %q", got, "c")
	}
	if got := (TransitionSet{{}}).Label(0); got != "t0" {
		t.Errorf("Label(0) = %q, want %q", got, "t0")
	}
	if got := set.Label(-1); got != "stall" {
		t.Errorf("Label(-1) = %q, want %q", got, "stall")
	}
}

func TestCondition_String(t *testing.T) {
	cases := map[string]Condition{
		"x > 0":          Predicate("x > 0"),
		"a.has_data(2)":  InputAvailable("a", 2),
		"b.has_space(1)": OutputHasSpace("b", 1),
	}
	for want, c := range cases {
		if got := c.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
	if (Condition{Kind: "bogus"}).Kind.Valid() {
		t.Error("bogus kind must not be valid")
	}
}

func TestInstance_CloneIsIndependent(t *testing.T) {
	inst := NewInstance("adder", "idle")
	inst.Push("a", 1, 2)
	inst.Vars["sum"] = 3
	inst.Outputs["b"] = []any{9}

	clone := inst.Clone()
	clone.Inputs["a"] = clone.Inputs["a"][1:]
	clone.Vars["sum"] = 4
	clone.Outputs["b"] = append(clone.Outputs["b"], 10)
	clone.History = append(clone.History, "t0")

	if len(inst.Inputs["a"]) != 2 {
		t.Errorf("original inputs mutated: %v", inst.Inputs["a"])
	}
	if inst.Vars["sum"] != 3 {
		t.Errorf("original vars mutated: %v", inst.Vars["sum"])
	}
	if len(inst.Outputs["b"]) != 1 {
		t.Errorf("original outputs mutated: %v", inst.Outputs["b"])
	}
	if len(inst.History) != 0 {
		t.Errorf("original history mutated: %v", inst.History)
	}

	if got := inst.Drain("b"); !reflect.DeepEqual(got, []any{9}) {
		t.Errorf("Drain() = %v", got)
	}
	if _, ok := inst.Outputs["b"]; ok {
		t.Error("Drain must remove the port entry")
	}
}

func TestLifecycleHooks_Merge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnGraphBuilt: func(*GraphEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnGraphBuilt:  func(*GraphEvent) { calls = append(calls, "b") },
		OnStatePruned: func(*GraphEvent) { calls = append(calls, "pruned") },
	}

	merged := a.Merge(b)
	merged.OnGraphBuilt(&GraphEvent{})
	merged.OnStatePruned(&GraphEvent{})

	if want := []string{"a", "b", "pruned"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
	if merged.OnFire != nil {
		t.Error("OnFire should stay nil when neither side sets it")
	}
}
