// Package wavwriter records the console's mixed 8-bit samples to a 16-bit
// mono WAV file.
package wavwriter

import (
	"fmt"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const bitDepth = 16

type WavWriter struct {
	filename string
	file     *os.File
	enc      *wav.Encoder
	buffer   *audio.IntBuffer
	samples  int
}

// New creates filename and writes samples to it as they arrive.
func New(filename string, sampleRate int) (*WavWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("wavwriter: %w", err)
	}

	ww := &WavWriter{
		filename: filename,
		file:     f,
		enc:      wav.NewEncoder(f, sampleRate, bitDepth, 1, 1),
		buffer: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
	}
	log.Printf("wavwriter: writing audio to %s\n", filename)
	return ww, nil
}

// Write appends unsigned 8-bit samples, centred on 0x80.
func (ww *WavWriter) Write(samples []byte) error {
	if len(samples) == 0 {
		return nil
	}
	data := ww.buffer.Data[:0]
	for _, s := range samples {
		data = append(data, (int(s)-0x80)<<8)
	}
	ww.buffer.Data = data
	if err := ww.enc.Write(ww.buffer); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	ww.samples += len(samples)
	return nil
}

// Samples is the number of samples written so far.
func (ww *WavWriter) Samples() int {
	return ww.samples
}

// Close finishes the header and closes the file.
func (ww *WavWriter) Close() (rerr error) {
	defer func() {
		if err := ww.file.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()
	if err := ww.enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	return nil
}
