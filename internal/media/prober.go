// Package media probes locally hosted audio clips so the progress bar's
// total time is known before the client's own metadata event fires.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aircheck/internal/cache"
	"aircheck/pkg/models"

	"github.com/dhowden/tag"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/sirupsen/logrus"
	"github.com/tcolgate/mp3"
)

// Prober extracts duration and display metadata from clip files
type Prober struct {
	supportedFormats []string
	cache            *cache.ClipCache
	logger           *logrus.Logger
}

// NewProber creates a clip prober for the given file extensions
func NewProber(supportedFormats []string, logger *logrus.Logger) *Prober {
	return &Prober{
		supportedFormats: supportedFormats,
		cache:            cache.NewClipCache(),
		logger:           logger,
	}
}

// IsClipFile checks whether the path has a supported clip extension
func (p *Prober) IsClipFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range p.supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// Probe returns the clip's metadata, decoding the file on a cache miss
func (p *Prober) Probe(path string) (models.ClipInfo, error) {
	if info, ok := p.cache.GetClip(path); ok {
		return info, nil
	}

	startTime := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return models.ClipInfo{}, fmt.Errorf("failed to open clip: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return models.ClipInfo{}, fmt.Errorf("failed to stat clip: %w", err)
	}

	duration, err := p.calculateDuration(path)
	if err != nil {
		p.logger.WithError(err).WithField("clip", path).Warn("Failed to calculate clip duration, setting to 0")
		duration = 0
	}

	info := models.ClipInfo{
		Path:     path,
		Duration: duration,
		FileSize: stat.Size(),
	}

	// Display title/artist from embedded tags; the filename is the fallback.
	metadata, err := tag.ReadFrom(file)
	if err != nil || metadata.Title() == "" {
		info.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	} else {
		info.Title = metadata.Title()
	}
	if err == nil {
		info.Artist = metadata.Artist()
	}

	p.logger.WithFields(logrus.Fields{
		"clip":           path,
		"title":          info.Title,
		"duration":       info.Duration,
		"processingTime": time.Since(startTime),
	}).Debug("Probed clip")

	p.cache.SetClip(path, info)
	return info, nil
}

// calculateDuration calculates the duration of a clip in seconds
func (p *Prober) calculateDuration(path string) (int, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp3":
		return p.durationMP3(path)
	case ".flac":
		return p.durationFLAC(path)
	case ".wav":
		return p.durationWAV(path)
	default:
		return 0, fmt.Errorf("unsupported format: %s", ext)
	}
}

// MP3 duration by summing frame durations; estimate from file size only if
// no frame decodes at all.
func (p *Prober) durationMP3(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := mp3.NewDecoder(f)
	var total time.Duration
	var skipped int
	frames := 0
	for {
		var fr mp3.Frame
		if err := dec.Decode(&fr, &skipped); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if frames == 0 {
				return p.estimateFromFileSize(path, 192000) // assume 192 kbps
			}
			break // partial decode; use what we have
		}
		total += fr.Duration()
		frames++
	}
	return int(total.Seconds()), nil
}

// FLAC duration via STREAMINFO metadata block
func (p *Prober) durationFLAC(path string) (int, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return 0, err
	}
	si := stream.Info
	if si.NSamples > 0 && si.SampleRate > 0 {
		secs := float64(si.NSamples) / float64(si.SampleRate)
		return int(secs + 0.5), nil
	}
	return 0, fmt.Errorf("flac stream missing sample info")
}

// WAV duration from the header plus file size
func (p *Prober) durationWAV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("invalid wav file")
	}
	if dec.SampleRate == 0 || dec.BitDepth == 0 || dec.NumChans == 0 {
		return 0, fmt.Errorf("invalid wav header")
	}

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	headerSize := int64(44)
	pcmBytes := st.Size() - headerSize
	if pcmBytes < 0 {
		pcmBytes = 0
	}
	bytesPerSampleFrame := int64(dec.BitDepth/8) * int64(dec.NumChans)
	if bytesPerSampleFrame <= 0 {
		return 0, fmt.Errorf("invalid sample frame size")
	}
	sampleFrames := pcmBytes / bytesPerSampleFrame
	secs := float64(sampleFrames) / float64(dec.SampleRate)
	return int(secs + 0.5), nil
}

// estimateFromFileSize approximates duration from size at an assumed bitrate
func (p *Prober) estimateFromFileSize(path string, bitsPerSecond int64) (int, error) {
	st, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if bitsPerSecond <= 0 {
		return 0, fmt.Errorf("invalid bitrate")
	}
	return int(st.Size() * 8 / bitsPerSecond), nil
}
