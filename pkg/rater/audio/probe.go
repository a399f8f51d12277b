package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
)

var ErrNotWAV = errors.New("not a WAV/RIFF file")

// Info is display metadata for an item. It is informational only: items
// that cannot be probed are still rated.
type Info struct {
	Name       string `json:"name"`
	SizeBytes  int64  `json:"size_bytes"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	BitDepth   int    `json:"bit_depth,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
}

// Probe reads the WAV header from r.
func Probe(r io.ReadSeeker) (*Info, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrNotWAV
	}

	info := &Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}

	dur, err := dec.Duration()
	if err != nil {
		return info, fmt.Errorf("reading duration: %w", err)
	}
	info.DurationMs = dur.Milliseconds()
	return info, nil
}

func ProbeBytes(name string, data []byte) (*Info, error) {
	info, err := Probe(bytes.NewReader(data))
	if info == nil {
		info = &Info{}
	}
	info.Name = name
	info.SizeBytes = int64(len(data))
	return info, err
}

func ProbeFile(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}

	info, err := Probe(f)
	if info == nil {
		info = &Info{}
	}
	info.Name = filepath.Base(path)
	info.SizeBytes = st.Size()
	return info, err
}

// FormatDuration renders milliseconds as m:ss, or "?" when unknown.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "?"
	}
	sec := ms / 1000
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
