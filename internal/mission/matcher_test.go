package mission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherShuttle(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	for _, requested := range []string{"STS-51", "STS51", "sts 51", "STS_51"} {
		t.Run(requested, func(t *testing.T) {
			t.Parallel()
			assert.True(t, m.Matches("STS-51", requested))
			assert.True(t, m.Matches("STS 51", requested))
			assert.True(t, m.Matches("sts51", requested))
			assert.False(t, m.Matches("STS-51-L", requested))
			assert.False(t, m.Matches("STS-5", requested))
			assert.False(t, m.Matches("STS-510", requested))
		})
	}
}

func TestMatcherFamilies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requested string
		title     string
		want      bool
	}{
		{name: "apollo", requested: "Apollo 11", title: "Apollo 11", want: true},
		{name: "apollo dash", requested: "Apollo-11", title: "Apollo 11", want: true},
		{name: "apollo wrong number", requested: "Apollo 11", title: "Apollo 1", want: false},
		{name: "apollo program page", requested: "Apollo 11", title: "Apollo program", want: false},
		{name: "gemini suffix", requested: "Gemini 6A", title: "Gemini 6A", want: true},
		{name: "gemini suffix dash", requested: "Gemini 6A", title: "Gemini-6A", want: true},
		{name: "gemini suffix case", requested: "Gemini 6A", title: "gemini 6a", want: true},
		{name: "gemini suffix required", requested: "Gemini 6A", title: "Gemini 6", want: false},
		{name: "gemini plain rejects suffix", requested: "Gemini 6", title: "Gemini 6A", want: false},
		{name: "mercury atlas short", requested: "MA-6", title: "Mercury-Atlas 6", want: true},
		{name: "mercury atlas long", requested: "Mercury-Atlas 9", title: "Mercury Atlas 9", want: true},
		{name: "mercury atlas wrong", requested: "MA-6", title: "Mercury-Atlas 7", want: false},
		{name: "soyuz pair", requested: "Soyuz 31/29", title: "Soyuz 31", want: true},
		{name: "soyuz pair second", requested: "Soyuz 31/29", title: "Soyuz 29", want: false},
		{name: "soyuz plain", requested: "Soyuz-11", title: "Soyuz 11", want: true},
		{name: "vostok", requested: "Vostok 1", title: "Vostok-1", want: true},
		{name: "voskhod", requested: "Voskhod 2", title: "Voskhod 2", want: true},
		{name: "shenzhou", requested: "Shenzhou 5", title: "Shenzhou_5", want: true},
		{name: "shenzhou wrong", requested: "Shenzhou 5", title: "Shenzhou 15", want: false},
		{name: "exact fallback", requested: "Crew Dragon Demo-2", title: "crew dragon demo-2", want: true},
		{name: "exact fallback trims", requested: " Skylab 2 ", title: "Skylab 2", want: true},
		{name: "exact fallback mismatch", requested: "Skylab 2", title: "Skylab 3", want: false},
	}

	m := NewMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, m.Matches(tt.title, tt.requested))
		})
	}
}

func TestMatcherRules(t *testing.T) {
	t.Parallel()

	m := NewMatcher()

	rules := m.Rules("Gemini 6A")
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{Family: FamilyGemini, Number: "6", Suffix: "A"}, rules[0])

	rules = m.Rules("Soyuz 31/29")
	require.Len(t, rules, 1)
	assert.Equal(t, Rule{Family: FamilySoyuz, Number: "31"}, rules[0])

	rules = m.Rules("MA-6")
	require.Len(t, rules, 1)
	assert.Equal(t, FamilyMercuryAtlas, rules[0].Family)

	assert.Empty(t, m.Rules("Skylab 2"))
}

func TestNeedsUpdate(t *testing.T) {
	t.Parallel()

	complete := map[string]string{}
	for _, col := range TargetColumns {
		complete[col] = "x"
	}
	get := func(values map[string]string) func(string) string {
		return func(col string) string { return values[col] }
	}

	assert.False(t, NeedsUpdate(get(complete), false))
	assert.True(t, NeedsUpdate(get(complete), true))

	partial := map[string]string{}
	for k, v := range complete {
		partial[k] = v
	}
	partial[ColumnRocket] = "  "
	assert.True(t, NeedsUpdate(get(partial), false))
}

func TestRecordColumnsCoversEveryOutputField(t *testing.T) {
	t.Parallel()

	cols := Record{SourceURL: "https://example.org"}.Columns()
	assert.Len(t, cols, len(TargetColumns)+1)
	assert.Equal(t, "https://example.org", cols[ColumnSourceURL])
	assert.Equal(t, ColumnMission, RequiredColumns()[0])
	assert.Equal(t, ColumnSourceURL, RequiredColumns()[len(RequiredColumns())-1])
}
