package catalog

import (
	"errors"
	"fmt"
	"strings"

	"study_garden/internal/model"
	"study_garden/internal/random"
)

var ErrEmptyName = errors.New("catalog entry name is required")

// DefaultNames is the built-in plant collection.
var DefaultNames = []string{
	"Fern",
	"Cactus",
	"Succulent",
	"Sunflower",
	"Tulip",
	"Lavender",
	"Rose",
	"Orchid",
	"Bamboo",
	"Bonsai",
	"Lotus",
	"Venus Flytrap",
	"Cherry Blossom",
	"Monstera",
	"Blue Spruce",
}

// Catalog is the immutable set of collectible rewards. Display rarities are
// drawn once in New and never change afterwards.
type Catalog struct {
	entries []model.CatalogEntry
	index   map[string]int
}

func New(names []string, rnd random.Source) (*Catalog, error) {
	c := &Catalog{
		entries: make([]model.CatalogEntry, 0, len(names)),
		index:   make(map[string]int, len(names)),
	}

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, ErrEmptyName
		}
		if _, exists := c.index[name]; exists {
			return nil, fmt.Errorf("duplicate catalog entry %q", name)
		}
		c.index[name] = len(c.entries)
		c.entries = append(c.entries, model.CatalogEntry{
			Name:   name,
			Rarity: DrawRarity(rnd),
		})
	}

	return c, nil
}

// DrawRarity picks a tier using the fixed tier weights.
func DrawRarity(rnd random.Source) model.Rarity {
	tiers := model.Rarities()
	weights := make([]int, len(tiers))
	for i, r := range tiers {
		weights[i] = r.Weight()
	}
	return tiers[rnd.WeightedIndex(weights)]
}

func (c *Catalog) Len() int {
	return len(c.entries)
}

func (c *Catalog) Entries() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Lookup(name string) (model.CatalogEntry, bool) {
	i, ok := c.index[name]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// WeightedPick selects one entry using each entry's display rarity weight, so
// rarer entries come up proportionally less often. Owned entries stay eligible.
func (c *Catalog) WeightedPick(rnd random.Source) (model.CatalogEntry, bool) {
	if len(c.entries) == 0 {
		return model.CatalogEntry{}, false
	}

	weights := make([]int, len(c.entries))
	for i, e := range c.entries {
		weights[i] = e.Rarity.Weight()
	}
	i := rnd.WeightedIndex(weights)
	if i < 0 {
		return model.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Unowned returns the entries whose names are not in owned, in catalog order.
func (c *Catalog) Unowned(owned map[string]struct{}) []model.CatalogEntry {
	var out []model.CatalogEntry
	for _, e := range c.entries {
		if _, ok := owned[e.Name]; !ok {
			out = append(out, e)
		}
	}
	return out
}
