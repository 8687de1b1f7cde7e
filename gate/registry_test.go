package gate_test

import (
	"errors"
	"testing"

	"github.com/diewo77/go-adopt/gate"
)

func testRegistry(t *testing.T) *gate.Registry {
	t.Helper()
	reg, err := gate.NewRegistry(
		gate.ResourceDef{Type: "posts", Actions: gate.CRUD()},
		gate.ResourceDef{Type: "tags", Actions: []gate.Action{gate.ActionRead}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return reg
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		defs []gate.ResourceDef
	}{
		{"empty", nil},
		{"empty type", []gate.ResourceDef{{Type: "", Actions: gate.CRUD()}}},
		{"no actions", []gate.ResourceDef{{Type: "posts"}}},
		{"empty action", []gate.ResourceDef{{Type: "posts", Actions: []gate.Action{""}}}},
		{"duplicate type", []gate.ResourceDef{{Type: "posts", Actions: gate.CRUD()}, {Type: "posts", Actions: gate.CRUD()}}},
		{"duplicate action", []gate.ResourceDef{{Type: "posts", Actions: []gate.Action{gate.ActionRead, gate.ActionRead}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := gate.NewRegistry(tt.defs...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := testRegistry(t)

	if !reg.Has("posts", gate.ActionDelete) {
		t.Error("posts:delete should be declared")
	}
	if reg.Has("tags", gate.ActionDelete) {
		t.Error("tags:delete should not be declared")
	}
	if reg.Actions("unknown") != nil {
		t.Error("unknown type should have no actions")
	}
	if got := len(reg.Permissions()); got != 5 {
		t.Errorf("expected 5 permissions, got %d", got)
	}
	if types := reg.Types(); len(types) != 2 || types[0] != "posts" || types[1] != "tags" {
		t.Errorf("unexpected types %v", types)
	}
}

func TestRegistry_Validate_ReportsGapsAndExtras(t *testing.T) {
	reg := testRegistry(t)
	rules := gate.Rules{
		"posts": {
			gate.ActionCreate: gate.Allow,
			gate.ActionRead:   gate.Allow,
			gate.ActionUpdate: gate.Deny,
			// delete missing
		},
		"tags": {
			gate.ActionRead:   gate.Allow,
			gate.ActionDelete: gate.Allow, // not declared
		},
	}

	err := reg.Validate("editor", rules)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, gate.ErrMissingRule) {
		t.Errorf("expected ErrMissingRule in %v", err)
	}
	if !errors.Is(err, gate.ErrUndeclared) {
		t.Errorf("expected ErrUndeclared in %v", err)
	}
	var cfgErr *gate.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Role != "editor" {
		t.Errorf("expected *ConfigError for role editor, got %v", err)
	}
}

func TestRegistry_Build_FreezesRules(t *testing.T) {
	reg := testRegistry(t)
	rules := gate.Rules{
		"posts": {
			gate.ActionCreate: gate.Allow,
			gate.ActionRead:   gate.Allow,
			gate.ActionUpdate: gate.Allow,
			gate.ActionDelete: gate.Allow,
		},
		"tags": {gate.ActionRead: gate.Allow},
	}
	set, err := reg.Build("editor", rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutating the source map must not leak into the set.
	rules["posts"][gate.ActionDelete] = gate.Deny

	checker := gate.NewChecker(set)
	if !checker.Check("posts", gate.ActionDelete, nil) {
		t.Error("policy set should not observe later changes to its source rules")
	}
	if set.Len() != 5 {
		t.Errorf("expected 5 rules, got %d", set.Len())
	}
	if set.Role() != "editor" {
		t.Errorf("expected role 'editor', got '%s'", set.Role())
	}
}
