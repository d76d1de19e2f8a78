package catalog

import (
	"testing"

	"study_garden/internal/model"
	"study_garden/internal/random"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed indexes for WeightedIndex calls.
type scriptedSource struct {
	picks []int
	calls [][]int
}

func (s *scriptedSource) Intn(n int) int { return 0 }

func (s *scriptedSource) WeightedIndex(weights []int) int {
	s.calls = append(s.calls, append([]int(nil), weights...))
	p := s.picks[0]
	s.picks = s.picks[1:]
	return p
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantLen int
		wantErr bool
	}{
		{name: "default catalog", names: DefaultNames, wantLen: len(DefaultNames)},
		{name: "trims whitespace", names: []string{" Fern ", "Rose"}, wantLen: 2},
		{name: "empty catalog", names: nil, wantLen: 0},
		{name: "blank name", names: []string{"Fern", "  "}, wantErr: true},
		{name: "duplicate name", names: []string{"Fern", "Fern"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.names, random.NewSeeded(1))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, c.Len())
		})
	}
}

func TestNew_AssignsRarityOnce(t *testing.T) {
	src := &scriptedSource{picks: []int{0, 3, 1}}
	c, err := New([]string{"Fern", "Orchid", "Rose"}, src)
	require.NoError(t, err)

	assert.Equal(t, []model.CatalogEntry{
		{Name: "Fern", Rarity: model.RarityCommon},
		{Name: "Orchid", Rarity: model.RarityLegendary},
		{Name: "Rose", Rarity: model.RarityRare},
	}, c.Entries())
	for _, w := range src.calls {
		assert.Equal(t, []int{50, 30, 15, 5}, w)
	}

	// Repeated views never re-roll.
	assert.Equal(t, c.Entries(), c.Entries())
	assert.Len(t, src.calls, 3)
}

func TestCatalog_WeightedPickUsesDisplayRarity(t *testing.T) {
	src := &scriptedSource{picks: []int{0, 3, 1, 2}}
	c, err := New([]string{"Fern", "Orchid", "Rose"}, src)
	require.NoError(t, err)

	src.calls = nil
	entry, ok := c.WeightedPick(src)
	require.True(t, ok)
	assert.Equal(t, "Rose", entry.Name)
	assert.Equal(t, [][]int{{50, 5, 30}}, src.calls)
}

func TestCatalog_WeightedPickEmpty(t *testing.T) {
	c, err := New(nil, random.NewSeeded(1))
	require.NoError(t, err)

	_, ok := c.WeightedPick(random.NewSeeded(1))
	assert.False(t, ok)
}

func TestCatalog_Unowned(t *testing.T) {
	c, err := New([]string{"Fern", "Orchid", "Rose"}, random.NewSeeded(3))
	require.NoError(t, err)

	unowned := c.Unowned(map[string]struct{}{"Orchid": {}})
	require.Len(t, unowned, 2)
	assert.Equal(t, "Fern", unowned[0].Name)
	assert.Equal(t, "Rose", unowned[1].Name)

	all := c.Unowned(map[string]struct{}{"Fern": {}, "Orchid": {}, "Rose": {}})
	assert.Empty(t, all)
}

func TestCatalog_Lookup(t *testing.T) {
	c, err := New([]string{"Fern"}, random.NewSeeded(3))
	require.NoError(t, err)

	e, ok := c.Lookup("Fern")
	assert.True(t, ok)
	assert.True(t, e.Rarity.IsValid())

	_, ok = c.Lookup("Cactus")
	assert.False(t, ok)
}
