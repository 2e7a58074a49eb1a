package chronos

import (
	"errors"
	"math"
)

const (
	MinBPM     = 30
	MaxBPM     = 300
	DefaultBPM = 120
)

var ErrInvalidSignature = errors.New("time signature needs positive beats and a note value that is a power of two")

type Metronome struct {
	Active    bool    `json:"active"`
	BPM       int     `json:"bpm"`
	Signature [2]int  `json:"signature"`
	Volume    float64 `json:"volume"`
}

func DefaultMetronome() Metronome {
	return Metronome{BPM: DefaultBPM, Signature: [2]int{4, 4}, Volume: 0.8}
}

func clampBPM(bpm float64) int {
	return int(math.Min(MaxBPM, math.Max(MinBPM, math.Round(bpm))))
}

func (e *Engine) Metronome() Metronome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metronome
}

// ToggleMetronome starts or stops the metronome and returns whether it is on.
func (e *Engine) ToggleMetronome() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metronome.Active = !e.metronome.Active
	return e.metronome.Active
}

// SetBPM rounds bpm and clamps it to [MinBPM, MaxBPM].
func (e *Engine) SetBPM(bpm float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metronome.BPM = clampBPM(bpm)
	return e.metronome.BPM
}

// AdjustBPM moves the tempo by delta within the allowed range.
func (e *Engine) AdjustBPM(delta float64) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metronome.BPM = clampBPM(float64(e.metronome.BPM) + delta)
	return e.metronome.BPM
}

func (e *Engine) SetSignature(beats, noteValue int) error {
	if beats <= 0 || noteValue <= 0 || noteValue&(noteValue-1) != 0 {
		return ErrInvalidSignature
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.metronome.Signature = [2]int{beats, noteValue}
	return nil
}

// SetVolume clamps v to [0, 1].
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metronome.Volume = math.Min(1, math.Max(0, v))
}
