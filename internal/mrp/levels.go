package mrp

import (
	"sort"

	"github.com/angelmondragon/mrpworks-backend/pkg/db/models"
	apperrors "github.com/angelmondragon/mrpworks-backend/pkg/errors"
)

// AssignLevels computes the low-level code for every part: the longest
// path from any top assembly down to the part. Every edge participates,
// active or not, so codes are stable across effectivity windows. Parts
// listed in stockParts that the BOM never mentions get level 0.
//
// The relaxation is a fixed-point loop seeded with the top assemblies
// (parents that are never children). A well-formed BOM settles within
// one pass per level of depth; a cycle keeps growing instead, so the
// loop is bounded at one pass more than the number of distinct parts
// and overrunning that bound reports the cycle.
func AssignLevels(edges []models.BomEdge, stockParts []string) (map[string]int, error) {
	levels := make(map[string]int)

	distinct := make(map[string]struct{})
	children := make(map[string]struct{})
	for _, e := range edges {
		distinct[e.ParentPart] = struct{}{}
		distinct[e.ChildPart] = struct{}{}
		children[e.ChildPart] = struct{}{}
	}
	// Seeding only from tops means a cycle with no path from any top
	// assembly never receives a candidate level: relaxation converges,
	// its members default to 0 below, and bad demand on them surfaces
	// later as an invariant violation rather than CyclicBOM here.
	for _, e := range edges {
		if _, isChild := children[e.ParentPart]; !isChild {
			levels[e.ParentPart] = 0
		}
	}

	maxPasses := len(distinct) + 1
	witness := ""
	for pass := 0; ; pass++ {
		if pass >= maxPasses {
			return nil, apperrors.CyclicBOM(witness)
		}
		changed := false
		for _, e := range edges {
			parentLevel, ok := levels[e.ParentPart]
			if !ok {
				continue
			}
			candidate := parentLevel + 1
			if current, ok := levels[e.ChildPart]; !ok || candidate > current {
				levels[e.ChildPart] = candidate
				witness = e.ChildPart
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	for _, part := range stockParts {
		if _, ok := levels[part]; !ok {
			levels[part] = 0
		}
	}
	return levels, nil
}

// partsByLevel groups parts per low-level code, each group sorted by part
// id ascending so downstream output is deterministic.
func partsByLevel(levels map[string]int) (map[int][]string, int) {
	grouped := make(map[int][]string)
	maxLevel := 0
	for part, llc := range levels {
		grouped[llc] = append(grouped[llc], part)
		if llc > maxLevel {
			maxLevel = llc
		}
	}
	for llc := range grouped {
		sort.Strings(grouped[llc])
	}
	return grouped, maxLevel
}

// levelRecords snapshots the level table with catalog attributes, ordered
// by level then part id.
func levelRecords(levels map[string]int, catalog *Catalog) []models.MrpLevel {
	grouped, maxLevel := partsByLevel(levels)
	records := make([]models.MrpLevel, 0, len(levels))
	for llc := 0; llc <= maxLevel; llc++ {
		for _, part := range grouped[llc] {
			attrs := catalog.Lookup(part)
			records = append(records, models.MrpLevel{
				Part:         part,
				LLC:          llc,
				LeadTimeDays: attrs.LeadTimeDays,
				PanSize:      attrs.PanSize,
				ShrinkFactor: attrs.ShrinkFactor,
				EOQ:          attrs.EOQ,
			})
		}
	}
	return records
}
