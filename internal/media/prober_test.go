package media

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func testProber() *Prober {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests
	return NewProber([]string{".mp3", ".flac", ".wav"}, logger)
}

func TestIsClipFile(t *testing.T) {
	p := testProber()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "mp3", path: "clips/morning.mp3", want: true},
		{name: "uppercase extension", path: "clips/MORNING.MP3", want: true},
		{name: "wav", path: "clips/jingle.wav", want: true},
		{name: "unsupported", path: "clips/notes.txt", want: false},
		{name: "no extension", path: "clips/README", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsClipFile(tt.path); got != tt.want {
				t.Errorf("IsClipFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestProbeMissingFile(t *testing.T) {
	p := testProber()
	if _, err := p.Probe("/nonexistent/clip.mp3"); err == nil {
		t.Error("Probe() expected error for missing file")
	}
}

// writeTestWAV writes a minimal valid PCM WAV file with the given number of
// sample frames at 8kHz mono 16-bit.
func writeTestWAV(t *testing.T, path string, sampleFrames int) {
	t.Helper()

	const (
		sampleRate = 8000
		numChans   = 1
		bitDepth   = 16
	)
	dataSize := sampleFrames * numChans * bitDepth / 8

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	f.WriteString("RIFF")
	binary.Write(f, binary.LittleEndian, uint32(36+dataSize))
	f.WriteString("WAVEfmt ")
	binary.Write(f, binary.LittleEndian, uint32(16))
	binary.Write(f, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(f, binary.LittleEndian, uint16(numChans))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate))
	binary.Write(f, binary.LittleEndian, uint32(sampleRate*numChans*bitDepth/8))
	binary.Write(f, binary.LittleEndian, uint16(numChans*bitDepth/8))
	binary.Write(f, binary.LittleEndian, uint16(bitDepth))
	f.WriteString("data")
	binary.Write(f, binary.LittleEndian, uint32(dataSize))
	f.Write(make([]byte, dataSize))
}

func TestProbeWAVDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")
	writeTestWAV(t, path, 8000*3) // 3 seconds at 8kHz

	p := testProber()
	info, err := p.Probe(path)
	if err != nil {
		t.Fatalf("Probe() unexpected error: %v", err)
	}

	if info.Duration != 3 {
		t.Errorf("duration = %d, want 3", info.Duration)
	}
	if info.Title != "tone" {
		t.Errorf("title fallback = %q, want filename stem", info.Title)
	}
	if info.FileSize == 0 {
		t.Error("file size not recorded")
	}

	// Second probe should come from the cache and agree.
	cached, err := p.Probe(path)
	if err != nil {
		t.Fatalf("cached Probe() unexpected error: %v", err)
	}
	if cached != info {
		t.Errorf("cached probe differs: %+v vs %+v", cached, info)
	}
}
