// Package stt transcribes 16 kHz mono PCM with whisper.cpp.
//
// The whisper.cpp bindings need cgo and libwhisper; they are only compiled
// with the "whisper" build tag. Without it NewTranscriber returns
// ErrUnavailable.
package stt

import (
	"errors"
	"time"
)

var ErrUnavailable = errors.New("built without whisper support (use -tags whisper)")

type Options struct {
	Language      string // "auto", "en", "uk", ...
	TranslateToEn bool
	Threads       int    // <=0 => NumCPU()
	InitialPrompt string // optional prefix prompt
	BeamSize      int    // 0 = greedy
	Temperature   float32
	Offset        time.Duration
	Duration      time.Duration
}

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string // detected or forced
}
