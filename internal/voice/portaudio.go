package voice

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortHost is the PortAudio-backed Host used in production.
type PortHost struct {
	initialized bool
}

func NewPortHost() *PortHost { return &PortHost{} }

func (p *PortHost) Check() error {
	if p.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	p.initialized = true
	return nil
}

func (p *PortHost) Close() error {
	if !p.initialized {
		return nil
	}
	p.initialized = false
	return portaudio.Terminate()
}

func (p *PortHost) Devices() ([]Device, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}

	defaultIn, _ := portaudio.DefaultInputDevice()

	out := make([]Device, 0, len(infos))
	for i, info := range infos {
		out = append(out, Device{
			Index:             i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: int(info.DefaultSampleRate),
			Default:           defaultIn != nil && info.Name == defaultIn.Name,
		})
	}
	return out, nil
}

func (p *PortHost) deviceInfo(dev Device) (*portaudio.DeviceInfo, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if dev.Index < 0 || dev.Index >= len(infos) {
		return nil, fmt.Errorf("device index %d out of range", dev.Index)
	}
	return infos[dev.Index], nil
}

func (p *PortHost) TryOpen(dev Device, rate int) error {
	if err := p.Check(); err != nil {
		return err
	}
	info, err := p.deviceInfo(dev)
	if err != nil {
		return err
	}

	buf := make([]int16, rate/50) // one 20 ms frame
	stream, err := portaudio.OpenStream(inputParams(info, rate, len(buf)), buf)
	if err != nil {
		return err
	}
	return stream.Close()
}

func (p *PortHost) Open(dev Device, rate, frameSize int) (FrameReader, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	info, err := p.deviceInfo(dev)
	if err != nil {
		return nil, err
	}

	buf := make([]int16, frameSize)
	stream, err := portaudio.OpenStream(inputParams(info, rate, frameSize), buf)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start stream: %w", err)
	}
	return &portFrames{stream: stream, buf: buf}, nil
}

func inputParams(info *portaudio.DeviceInfo, rate, frames int) portaudio.StreamParameters {
	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: 1,
			Latency:  info.DefaultLowInputLatency,
		},
		SampleRate:      float64(rate),
		FramesPerBuffer: frames,
	}
}

type portFrames struct {
	stream *portaudio.Stream
	buf    []int16
}

func (f *portFrames) Read() ([]int16, error) {
	if err := f.stream.Read(); err != nil {
		return nil, err
	}
	frame := make([]int16, len(f.buf))
	copy(frame, f.buf)
	return frame, nil
}

func (f *portFrames) Close() error {
	f.stream.Stop()
	return f.stream.Close()
}
