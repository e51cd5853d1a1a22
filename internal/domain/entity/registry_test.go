package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name  string
		types []*Type
	}{
		{"duplicate name", []*Type{NewType("a", "a"), NewType("a", "b")}},
		{"shared table", []*Type{NewType("a", "t"), NewType("b", "t")}},
		{"bad table", []*Type{NewType("a", "a; drop table x")}},
		{"bad column", []*Type{NewType("a", "a", Text("Name"))}},
		{"system column", []*Type{NewType("a", "a", Int("version"))}},
		{"duplicate column", []*Type{NewType("a", "a", Text("x"), Int("x"))}},
		{"empty name", []*Type{NewType("", "a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.types...)
			assert.Error(t, err)
		})
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := MustNewRegistry(NewType("a", "a"), NewType("b", "b"), NewType("c", "c"))

	assert.Equal(t, []string{"a", "b", "c"}, r.Names())

	all := r.Resolve(nil)
	assert.Len(t, all, 3)

	some := r.Resolve([]string{"c", "a", "unknown", "a"})
	require.Len(t, some, 2)
	assert.Equal(t, "a", some[0].Name)
	assert.Equal(t, "c", some[1].Name)

	assert.Empty(t, r.Resolve([]string{"unknown"}))
}

func TestStorymaster(t *testing.T) {
	r := Storymaster()

	assert.Len(t, r.Names(), 44)

	loc, ok := r.Lookup("location")
	require.True(t, ok)
	assert.Equal(t, "location_", loc.Table)

	actor, ok := r.Lookup("actor")
	require.True(t, ok)
	for _, name := range []string{"class_id", "background_id", "race_id", "sub_race_id", "strength", "charisma"} {
		_, ok := actor.Column(name)
		assert.True(t, ok, name)
	}

	notes, ok := r.Lookup("litography_notes")
	require.True(t, ok)
	col, ok := notes.Column("linked_node")
	require.True(t, ok)
	assert.True(t, col.Required)

	for _, name := range []string{"storyline", "setting", "location_city", "location_dungeon", "residents",
		"object_to_owner", "history_world_data", "litography_plot_section", "arc_point", "stat"} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, name)
	}

	_, ok = r.Lookup("user")
	assert.False(t, ok)
}
