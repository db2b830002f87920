package game

import "sort"

// ChipDenomination is one face value in the table's chip catalog.
type ChipDenomination struct {
	Value    int64  `json:"value"`
	Label    string `json:"label"`
	Enabled  bool   `json:"enabled"`
	MinLevel int    `json:"min_level,omitempty"`
}

// ChipCatalog is the ordered set of denominations for a table. Conversion
// always works on a descending copy, so callers may hold it in any order.
type ChipCatalog []ChipDenomination

func (c ChipCatalog) sortedDesc() ChipCatalog {
	out := make(ChipCatalog, 0, len(c))
	for _, d := range c {
		if d.Enabled && d.Value > 0 {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}

type ChipStack struct {
	Denomination ChipDenomination `json:"denomination"`
	Count        int64            `json:"count"`
}

// ConvertChips greedily decomposes amount into chip stacks, largest
// denomination first. A non-zero remainder means the smallest enabled
// denomination does not divide the residual; that is caller-visible, not
// an error.
func ConvertChips(amount int64, catalog ChipCatalog) ([]ChipStack, int64) {
	remaining := amount
	var stacks []ChipStack
	for _, d := range catalog.sortedDesc() {
		if remaining <= 0 {
			break
		}
		count := remaining / d.Value
		if count == 0 {
			continue
		}
		stacks = append(stacks, ChipStack{Denomination: d, Count: count})
		remaining -= count * d.Value
	}
	return stacks, remaining
}

// LargestUsable returns the biggest enabled denomination not exceeding
// amount, or false if the amount is below the smallest denomination.
func LargestUsable(amount int64, catalog ChipCatalog) (ChipDenomination, bool) {
	for _, d := range catalog.sortedDesc() {
		if d.Value <= amount {
			return d, true
		}
	}
	return ChipDenomination{}, false
}
