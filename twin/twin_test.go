package twin

import "testing"

func TestQualifiedIDs(t *testing.T) {
	tests := []struct {
		id, over, fall string
		isOver         bool
	}{
		{"n:n", "n:!n", "n:n", false},
		{"n:!n", "n:!n", "n:n", true},
		{"z:7Q", "z:!7Q", "z:7Q", false},
		{"x:!v", "x:!v", "x:v", true},
	}
	for _, test := range tests {
		if got := Override(test.id); got != test.over {
			t.Errorf("override %s got %s want %s", test.id, got, test.over)
		}
		if got := Fallback(test.id); got != test.fall {
			t.Errorf("fallback %s got %s want %s", test.id, got, test.fall)
		}
		if got := IsOverride(test.id); got != test.isOver {
			t.Errorf("is override %s got %v want %v", test.id, got, test.isOver)
		}
	}
}

func TestElementFirst(t *testing.T) {
	el := &Element{Key: "k", Props: map[string][]string{
		"n:n":  {"Standard"},
		"n:!n": {"Renamed"},
		"n:c":  {"Walls"},
		"x:r":  {"xref-a", "xref-b"},
	}}
	if got := el.Name(); got != "Renamed" {
		t.Errorf("name got %s want override value", got)
	}
	if got := el.Category(); got != "Walls" {
		t.Errorf("category got %s want Walls", got)
	}
	// first present candidate wins, multi valued properties yield the head
	if got := el.First("x:p", "x:r"); got != "xref-a" {
		t.Errorf("first got %s want xref-a", got)
	}
	if got := el.First("x:p"); got != "" {
		t.Errorf("absent got %q want empty", got)
	}
}
