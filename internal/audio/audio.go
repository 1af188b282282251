package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const defaultVolume = 0.5

// Audio plays mono float samples received on Channel through the default
// output device. Missing samples are played as silence.
type Audio struct {
	stream         *portaudio.Stream
	SampleRate     float64
	Volume         float32
	outputChannels int
	Channel        chan float32
}

func NewAudio() *Audio {
	a := Audio{Volume: defaultVolume}
	a.Channel = make(chan float32, 44100)
	return &a
}

func (a *Audio) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	host, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: %w", err)
	}
	parameters := portaudio.HighLatencyParameters(nil, host.DefaultOutputDevice)
	stream, err := portaudio.OpenStream(parameters, a.Callback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: %w", err)
	}
	a.stream = stream
	a.SampleRate = parameters.SampleRate
	a.outputChannels = parameters.Output.Channels
	return nil
}

func (a *Audio) Stop() error {
	if a.stream == nil {
		return nil
	}
	err := a.stream.Close()
	a.stream = nil
	portaudio.Terminate()
	return err
}

func (a *Audio) Callback(out []float32) {
	var output float32
	for i := range out {
		if i%a.outputChannels == 0 {
			select {
			case sample := <-a.Channel:
				output = sample * a.Volume
			default:
				output = 0
			}
		}
		out[i] = output
	}
}
