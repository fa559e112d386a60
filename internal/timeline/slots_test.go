package timeline

import (
	"errors"
	"math"
	"testing"

	"reelsmith/internal/services"
)

func images(n int) []MediaAsset {
	out := make([]MediaAsset, n)
	for i := range out {
		out[i] = MediaAsset{Path: string(rune('a'+i)) + ".jpg", Kind: AssetImage}
	}
	return out
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScheduleSlotsThreeImagesTenSeconds(t *testing.T) {
	slots, sched, err := ScheduleSlots(images(3), 10, 3, 0.5)
	if err != nil {
		t.Fatalf("ScheduleSlots: %v", err)
	}
	if sched.Count != 4 || len(slots) != 4 {
		t.Fatalf("count = %d (%d slots), want 4", sched.Count, len(slots))
	}
	if !approx(sched.DisplaySeconds, 2.875) {
		t.Fatalf("display = %v, want 2.875", sched.DisplaySeconds)
	}
	want := []float64{2.375, 4.75, 7.125}
	if len(sched.Offsets) != len(want) {
		t.Fatalf("offsets = %v", sched.Offsets)
	}
	for i := range want {
		if !approx(sched.Offsets[i], want[i]) {
			t.Fatalf("offset %d = %v, want %v", i, sched.Offsets[i], want[i])
		}
	}
	// Assets cycle in order.
	for i, wantPath := range []string{"a.jpg", "b.jpg", "c.jpg", "a.jpg"} {
		if slots[i].Asset.Path != wantPath || slots[i].Order != i {
			t.Fatalf("slot %d = %+v", i, slots[i])
		}
	}
}

func TestScheduleSlotsDurationFit(t *testing.T) {
	cases := []struct {
		target, nominal, transition float64
		assets                      int
	}{
		{10, 3, 0.5, 3},
		{0.2, 3, 0.5, 1},
		{59.3, 2.5, 0.75, 7},
		{30, 0.1, 0.5, 2},
		{12, 4, 0, 5},
		{7.5, 3, 0.5, 1},
	}
	for _, c := range cases {
		slots, sched, err := ScheduleSlots(images(c.assets), c.target, c.nominal, c.transition)
		if err != nil {
			t.Fatalf("%+v: %v", c, err)
		}
		if sched.Count < 1 || len(slots) != sched.Count {
			t.Fatalf("%+v: count %d", c, sched.Count)
		}
		var sum float64
		for _, s := range slots {
			sum += s.DisplaySeconds - c.transition
		}
		if got := sum + c.transition; math.Abs(got-c.target) > 1e-6 {
			t.Fatalf("%+v: rendered length %v, want %v", c, got, c.target)
		}
		if len(sched.Offsets) != sched.Count-1 {
			t.Fatalf("%+v: %d offsets for %d slots", c, len(sched.Offsets), sched.Count)
		}
	}
}

func TestScheduleSlotsSingleSlot(t *testing.T) {
	slots, sched, err := ScheduleSlots(images(2), 0.3, 3, 0.5)
	if err != nil {
		t.Fatalf("ScheduleSlots: %v", err)
	}
	if sched.Count != 1 || slots[0].DisplaySeconds != 0.3 || sched.Offsets != nil {
		t.Fatalf("unexpected single-slot schedule %+v", sched)
	}
}

func TestScheduleSlotsRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		assets     []MediaAsset
		target     float64
		transition float64
	}{
		{"no assets", nil, 10, 0.5},
		{"zero target", images(1), 0, 0.5},
		{"negative target", images(1), -3, 0.5},
		{"negative transition", images(1), 10, -0.5},
		{"nan transition", images(1), 10, math.NaN()},
	}
	for _, c := range cases {
		if _, _, err := ScheduleSlots(c.assets, c.target, 3, c.transition); !errors.Is(err, services.ErrInvalidTimelineInput) {
			t.Errorf("%s: err = %v, want ErrInvalidTimelineInput", c.name, err)
		}
	}
}

func TestSlotCountExactMultiple(t *testing.T) {
	// (10.5-0.5)/2.5 = 4 exactly.
	if got := SlotCount(10.5, 3, 0.5); got != 5 {
		t.Fatalf("SlotCount = %d, want 5", got)
	}
}

func TestSlotNeedsLoop(t *testing.T) {
	short, long := 1.5, 8.0
	tests := []struct {
		asset MediaAsset
		want  bool
	}{
		{MediaAsset{Kind: AssetImage}, false},
		{MediaAsset{Kind: AssetVideo}, false},
		{MediaAsset{Kind: AssetVideo, DurationSeconds: &short}, true},
		{MediaAsset{Kind: AssetVideo, DurationSeconds: &long}, false},
	}
	for _, tt := range tests {
		if got := (Slot{Asset: tt.asset, DisplaySeconds: 3}).NeedsLoop(); got != tt.want {
			t.Errorf("NeedsLoop(%v) = %v, want %v", tt.asset, got, tt.want)
		}
	}
}
