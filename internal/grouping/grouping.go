// Package grouping clusters offerable slabs into the two-level view the
// public gallery renders: product category first, then either an aggregated
// block card or individual slab cards.
package grouping

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Item is one offerable slab ready for display. All JSON fields are consumed
// by the client-side renderer.
type Item struct {
	ImageID    uint    `json:"id"`
	QuantID    uint    `json:"quant_id"`
	LotID      uint    `json:"lot_id"`
	Name       string  `json:"name"`
	LotName    string  `json:"lot_name"`
	Category   string  `json:"category"`
	BlockName  string  `json:"block_name,omitempty"`
	Dimensions string  `json:"dims,omitempty"`
	Area       float64 `json:"area"`
	URL        string  `json:"url"`
	Sequence   int     `json:"sequence"`
	IsLarge    bool    `json:"is_large"`
}

// Card is either a single slab or an aggregated block of slabs.
type Card struct {
	Kind string `json:"kind"` // "single" or "block"

	// Single card
	Item *Item `json:"item,omitempty"`

	// Block card. Cover carries the display fields of the first member.
	BlockID    string  `json:"block_id,omitempty"`
	BlockName  string  `json:"block_name,omitempty"`
	Count      int     `json:"count,omitempty"`
	TotalArea  float64 `json:"total_area,omitempty"`
	Cover      *Item   `json:"cover,omitempty"`
	MemberRefs []uint  `json:"member_refs,omitempty"`
}

// CategoryView is one category with its ordered cards. A slice keeps JSON
// output and client rendering order stable; a map would not.
type CategoryView struct {
	Category string `json:"category"`
	Cards    []Card `json:"cards"`
}

// Result is the render payload: the initial card view plus the member lists
// the client needs to drill into a block without another round-trip.
type Result struct {
	Categories   []CategoryView    `json:"initial_view"`
	BlockDetails map[string][]Item `json:"block_details"`
}

// Engine groups items using a configurable block threshold.
type Engine struct {
	threshold int
}

// NewEngine returns an engine aggregating blocks of at least threshold
// members. Values below 1 are clamped to 1.
func NewEngine(threshold int) Engine {
	if threshold < 1 {
		threshold = 1
	}
	return Engine{threshold: threshold}
}

// Threshold returns the configured block aggregation threshold.
func (e Engine) Threshold() int {
	return e.threshold
}

// slot preserves first-occurrence order inside a category. A labeled block
// accumulates members in one slot; unlabeled items each take their own.
type slot struct {
	label   string
	members []Item
}

// Group partitions items by (category, block label) in one pass and flattens
// the buckets deterministically. Labeled buckets reaching the threshold
// collapse into one block card; everything else is emitted as single cards
// in original order. Re-running on the same input yields an identical
// structure, including block ids.
func (e Engine) Group(items []Item) Result {
	type catState struct {
		slots    []slot
		labelIdx map[string]int
	}

	catOrder := make([]string, 0)
	cats := make(map[string]*catState)

	for _, item := range items {
		state, ok := cats[item.Category]
		if !ok {
			state = &catState{labelIdx: make(map[string]int)}
			cats[item.Category] = state
			catOrder = append(catOrder, item.Category)
		}

		label := normalizeBlock(item.BlockName)
		if label == "" {
			state.slots = append(state.slots, slot{members: []Item{item}})
			continue
		}
		if idx, seen := state.labelIdx[label]; seen {
			state.slots[idx].members = append(state.slots[idx].members, item)
			continue
		}
		state.labelIdx[label] = len(state.slots)
		state.slots = append(state.slots, slot{label: label, members: []Item{item}})
	}

	result := Result{
		Categories:   make([]CategoryView, 0, len(catOrder)),
		BlockDetails: make(map[string][]Item),
	}

	for _, category := range catOrder {
		view := CategoryView{Category: category}
		for _, s := range cats[category].slots {
			if s.label != "" && len(s.members) >= e.threshold {
				first := s.members[0]
				id := BlockID(s.label, first.ImageID)
				card := Card{
					Kind:       "block",
					BlockID:    id,
					BlockName:  s.label,
					Count:      len(s.members),
					Cover:      &first,
					MemberRefs: make([]uint, 0, len(s.members)),
				}
				for _, m := range s.members {
					card.TotalArea += m.Area
					card.MemberRefs = append(card.MemberRefs, m.ImageID)
				}
				result.BlockDetails[id] = s.members
				view.Cards = append(view.Cards, card)
				continue
			}
			for i := range s.members {
				item := s.members[i]
				view.Cards = append(view.Cards, Card{Kind: "single", Item: &item})
			}
		}
		result.Categories = append(result.Categories, view)
	}

	return result
}

// normalizeBlock maps empty, zero and whitespace-only labels to the
// "no block" sentinel (empty string). Those items are never aggregated.
func normalizeBlock(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" || trimmed == "0" {
		return ""
	}
	return trimmed
}

// BlockID derives a stable identifier for a block from its sanitized label
// and the first member's image id, so client drill-down references stay
// valid within one render.
func BlockID(label string, firstImageID uint) string {
	h := fnv.New32a()
	h.Write([]byte(sanitizeLabel(label)))
	return fmt.Sprintf("blk-%08x-%d", h.Sum32(), firstImageID)
}

func sanitizeLabel(label string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
