package game

import "testing"

func testCatalog(values ...int64) ChipCatalog {
	cat := make(ChipCatalog, 0, len(values))
	for _, v := range values {
		cat = append(cat, ChipDenomination{Value: v, Enabled: true})
	}
	return cat
}

func TestConvertChipsGreedy(t *testing.T) {
	cat := testCatalog(1, 5, 10, 50, 100)
	stacks, remainder := ConvertChips(173, cat)
	if remainder != 0 {
		t.Fatalf("remainder = %d, want 0", remainder)
	}
	want := map[int64]int64{100: 1, 50: 1, 10: 2, 1: 3}
	var sum int64
	for _, s := range stacks {
		if want[s.Denomination.Value] != s.Count {
			t.Fatalf("denomination %d count = %d, want %d", s.Denomination.Value, s.Count, want[s.Denomination.Value])
		}
		sum += s.Denomination.Value * s.Count
	}
	if sum != 173 {
		t.Fatalf("stack sum = %d, want 173", sum)
	}
	if len(stacks) != len(want) {
		t.Fatalf("got %d stacks, want %d (no zero-count entries)", len(stacks), len(want))
	}
}

func TestConvertChipsRemainder(t *testing.T) {
	cat := testCatalog(5, 25, 100)
	stacks, remainder := ConvertChips(123, cat)
	if remainder != 3 {
		t.Fatalf("remainder = %d, want 3", remainder)
	}
	var sum int64
	for _, s := range stacks {
		sum += s.Denomination.Value * s.Count
	}
	if sum != 120 {
		t.Fatalf("stack sum = %d, want 120", sum)
	}
}

func TestConvertChipsSkipsDisabled(t *testing.T) {
	cat := ChipCatalog{
		{Value: 100, Enabled: false},
		{Value: 10, Enabled: true},
	}
	stacks, remainder := ConvertChips(230, cat)
	if remainder != 0 {
		t.Fatalf("remainder = %d, want 0", remainder)
	}
	if len(stacks) != 1 || stacks[0].Denomination.Value != 10 || stacks[0].Count != 23 {
		t.Fatalf("stacks = %+v, want 23x10", stacks)
	}
}

func TestConvertChipsUnorderedCatalog(t *testing.T) {
	cat := testCatalog(10, 100, 1, 50, 5)
	stacks, _ := ConvertChips(160, cat)
	if stacks[0].Denomination.Value != 100 {
		t.Fatalf("first stack denomination = %d, want 100", stacks[0].Denomination.Value)
	}
}

func TestLargestUsable(t *testing.T) {
	cat := testCatalog(1, 5, 10, 50, 100)
	d, ok := LargestUsable(73, cat)
	if !ok || d.Value != 50 {
		t.Fatalf("largest usable for 73 = %+v ok=%v, want 50", d, ok)
	}
	d, ok = LargestUsable(100, cat)
	if !ok || d.Value != 100 {
		t.Fatalf("largest usable for 100 = %+v ok=%v, want 100", d, ok)
	}
	if _, ok := LargestUsable(0, cat); ok {
		t.Fatal("amount below smallest denomination must report none")
	}
}

func TestConvertChipsZeroAmount(t *testing.T) {
	stacks, remainder := ConvertChips(0, testCatalog(1, 5))
	if len(stacks) != 0 || remainder != 0 {
		t.Fatalf("zero amount: stacks=%v remainder=%d", stacks, remainder)
	}
}
