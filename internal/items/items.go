// ABOUTME: Fixed vocabulary of collectible item kinds
// ABOUTME: Validates persisted item names against the build-time item list

package items

import (
	"fmt"
	"sort"
	"strings"
)

// Kind is the canonical upper-snake name of a collectible item kind.
type Kind string

// The collectible vocabulary. Fixed at build time; persisted rows naming
// anything outside this list are treated as invalid data, not errors.
var kinds = []Kind{
	"AMETHYST_SHARD",
	"ANCIENT_RELIC",
	"APPLE",
	"ARROW",
	"BLAZE_POWDER",
	"BONE",
	"BOOK",
	"BREAD",
	"BRICK",
	"BUCKET",
	"CACTUS",
	"CARROT",
	"CHARCOAL",
	"CLAY_BALL",
	"COAL",
	"COBBLESTONE",
	"COPPER_INGOT",
	"DIAMOND",
	"EGG",
	"EMERALD",
	"ENDER_PEARL",
	"FEATHER",
	"FLINT",
	"GLASS_BOTTLE",
	"GLOWSTONE_DUST",
	"GOLD_INGOT",
	"GOLD_NUGGET",
	"GUNPOWDER",
	"HONEYCOMB",
	"IRON_INGOT",
	"IRON_NUGGET",
	"LAPIS_LAZULI",
	"LEATHER",
	"MILK_BUCKET",
	"NETHERITE_SCRAP",
	"OAK_LOG",
	"OBSIDIAN",
	"PAPER",
	"PRISMARINE_SHARD",
	"PUMPKIN",
	"QUARTZ",
	"REDSTONE",
	"SADDLE",
	"SLIME_BALL",
	"SNOWBALL",
	"STRING",
	"SUGAR_CANE",
	"WHEAT",
}

var index = func() map[Kind]struct{} {
	m := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		m[k] = struct{}{}
	}
	return m
}()

// Valid reports whether name is a known item kind.
func Valid(name string) bool {
	_, ok := index[Kind(name)]
	return ok
}

// Parse converts a raw string into a Kind, or fails if it is not in the vocabulary.
func Parse(name string) (Kind, error) {
	if !Valid(name) {
		return "", fmt.Errorf("unknown item kind %q", name)
	}
	return Kind(name), nil
}

// All returns the full vocabulary in alphabetical order.
func All() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Count is the size of the vocabulary, used for completion percentages.
func Count() int {
	return len(kinds)
}

// DisplayName formats a kind for human output: OAK_LOG -> "Oak Log".
func DisplayName(k Kind) string {
	words := strings.Split(strings.ToLower(string(k)), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Set is an unordered collection of item kinds.
type Set map[Kind]struct{}

// NewSet builds a Set from the given kinds.
func NewSet(ks ...Kind) Set {
	s := make(Set, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

// Add inserts k into the set. Adding an existing kind is a no-op.
func (s Set) Add(k Kind) {
	s[k] = struct{}{}
}

// Contains reports whether k is in the set.
func (s Set) Contains(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Len returns the number of kinds in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the set's kinds in alphabetical order for deterministic iteration.
func (s Set) Sorted() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether two sets contain exactly the same kinds.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if _, ok := other[k]; !ok {
			return false
		}
	}
	return true
}
