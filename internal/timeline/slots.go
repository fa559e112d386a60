package timeline

import (
	"fmt"
	"math"

	"reelsmith/internal/services"
)

// MinSlotOverhang is the least a slot may outlast its transition.
const MinSlotOverhang = 0.1

// Slot is one scheduled unit of visual content.
type Slot struct {
	Asset          MediaAsset
	DisplaySeconds float64
	Order          int
}

// Schedule summarizes the slot sequence.
type Schedule struct {
	Count             int
	DisplaySeconds    float64
	TransitionSeconds float64
	// Offsets[i] is where slot i+1 starts dissolving in; len = Count-1.
	Offsets      []float64
	TotalSeconds float64
}

// ScheduleSlots cycles assets into enough crossfaded slots to cover target
// seconds, then stretches every slot equally so the rendered sequence length
// equals target exactly.
func ScheduleSlots(assets []MediaAsset, target, nominal, transition float64) ([]Slot, Schedule, error) {
	if len(assets) == 0 {
		return nil, Schedule{}, fmt.Errorf("%w: no media assets", services.ErrInvalidTimelineInput)
	}
	if err := checkDuration("target duration", target); err != nil {
		return nil, Schedule{}, err
	}
	if math.IsNaN(transition) || math.IsInf(transition, 0) || transition < 0 {
		return nil, Schedule{}, fmt.Errorf("%w: transition duration %.3f invalid", services.ErrInvalidTimelineInput, transition)
	}
	if math.IsNaN(nominal) || math.IsInf(nominal, 0) {
		return nil, Schedule{}, fmt.Errorf("%w: item duration not finite", services.ErrInvalidTimelineInput)
	}

	nominal = math.Max(nominal, transition+MinSlotOverhang)
	count := SlotCount(target, nominal, transition)

	display := target
	if count > 1 {
		display = (target + float64(count-1)*transition) / float64(count)
	}

	slots := make([]Slot, count)
	for i := range slots {
		slots[i] = Slot{
			Asset:          assets[i%len(assets)],
			DisplaySeconds: display,
			Order:          i,
		}
	}

	return slots, Schedule{
		Count:             count,
		DisplaySeconds:    display,
		TransitionSeconds: transition,
		Offsets:           CrossfadeOffsets(count, display, transition),
		TotalSeconds:      target,
	}, nil
}

// SlotCount returns floor((target-transition)/(nominal-transition)) + 1,
// never less than one. nominal must exceed transition.
func SlotCount(target, nominal, transition float64) int {
	effective := nominal - transition
	if effective <= 0 {
		return 1
	}
	// Epsilon keeps exact multiples from falling one slot short.
	n := int(math.Floor((target-transition)/effective+1e-9)) + 1
	if n < 1 {
		return 1
	}
	return n
}

// CrossfadeOffsets returns the xfade offsets for count slots of equal display
// length: offset_1 = display-transition, each next one adds the same step.
func CrossfadeOffsets(count int, display, transition float64) []float64 {
	if count < 2 {
		return nil
	}
	step := display - transition
	offsets := make([]float64, count-1)
	offset := step
	for i := range offsets {
		offsets[i] = offset
		offset += step
	}
	return offsets
}

// NeedsLoop reports whether a video slot must loop its source to fill the slot.
func (s Slot) NeedsLoop() bool {
	return s.Asset.Kind == AssetVideo && s.Asset.DurationSeconds != nil && *s.Asset.DurationSeconds < s.DisplaySeconds
}
