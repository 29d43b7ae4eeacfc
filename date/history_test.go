package date

import (
	"testing"
	"time"
)

func TestHistoryAppendKeepsOrder(t *testing.T) {
	h := &History[float64]{}
	h.Append(New(2025, time.March, 3), 3.0)
	h.Append(New(2025, time.March, 1), 1.0)
	h.Append(New(2025, time.March, 2), 2.0)

	var got []float64
	for _, v := range h.Values() {
		got = append(got, v)
	}
	want := []float64{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values() = %v, want %v", got, want)
		}
	}
}

func TestHistoryAppendOverwrites(t *testing.T) {
	h := &History[float64]{}
	day := New(2025, time.March, 1)
	h.Append(day, 1.0)
	h.Append(day, 2.0)
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	if v, _ := h.Get(day); v != 2.0 {
		t.Errorf("Get() = %v, want 2.0 (last data wins)", v)
	}
}

func TestHistoryAsOf(t *testing.T) {
	h := &History[float64]{}
	h.Append(New(2025, time.March, 1), 1.0)
	h.Append(New(2025, time.March, 5), 5.0)

	if v, ok := h.AsOf(New(2025, time.March, 3)); !ok || v != 1.0 {
		t.Errorf("AsOf(mar 3) = %v, %v, want 1.0, true", v, ok)
	}
	if v, ok := h.AsOf(New(2025, time.March, 5)); !ok || v != 5.0 {
		t.Errorf("AsOf(mar 5) = %v, %v, want 5.0, true", v, ok)
	}
	if _, ok := h.AsOf(New(2025, time.February, 28)); ok {
		t.Error("AsOf before first point should report not found")
	}
}

func TestHistoryBetween(t *testing.T) {
	h := &History[float64]{}
	for i := 1; i <= 10; i++ {
		h.Append(New(2025, time.March, i), float64(i))
	}
	sub := h.Between(New(2025, time.March, 3), New(2025, time.March, 7))
	if sub.Len() != 5 {
		t.Fatalf("Between Len() = %d, want 5", sub.Len())
	}
	first, v := sub.First()
	if first != New(2025, time.March, 3) || v != 3 {
		t.Errorf("First() = %v, %v", first, v)
	}
}
