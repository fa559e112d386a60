package gemini

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
)

// WriteWAV persists 24 kHz mono s16le PCM as a RIFF/WAVE file. The file is
// written beside path and renamed into place.
func WriteWAV(path string, pcm []byte) error {
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	byteRate := SampleRate * Channels * BytesPerSample
	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + len(pcm)),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		uint16(Channels),
		uint32(SampleRate),
		uint32(byteRate),
		uint16(Channels * BytesPerSample),
		uint16(BytesPerSample * 8),
		[4]byte{'d', 'a', 't', 'a'},
		uint32(len(pcm)),
	}
	for _, field := range header {
		if err := binary.Write(&buf, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("encode wav header: %w", err)
		}
	}
	buf.Write(pcm)

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close wav: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename wav: %w", err)
	}
	return nil
}
