// refs: ws.nesdev.org/wiki/Sound
package wonderswan

const (
	// SampleRate is the rate of the mixed output, one sample every
	// mixPeriod CPU cycles.
	SampleRate = CPUFrequency / mixPeriod

	mixPeriod   = 128
	sweepPeriod = 8192

	maxBufferedSamples = 1 << 16
)

type APU struct {
	ram []byte

	channels [4]SoundChannel
	noise    NoiseGenerator

	sweepValue  byte // 0x8C
	sweepTime   byte // 0x8D
	sweepTimer  int
	sweepSteps  int
	waveBase    byte // 0x8F
	control     byte // 0x90
	output      byte // 0x91
	voiceVolume byte // 0x94
	ports       [0x20]byte

	mixTimer int
	last     byte
	muted    bool
	buffer   []byte

	channel     chan float32
	cycle       uint64
	sampleRate  float64 // CPU cycles per host sample
	filterChain FilterChain
}

func NewAPU(ram []byte) *APU {
	apu := APU{ram: ram}
	apu.Reset()
	return &apu
}

func (apu *APU) Reset() {
	for i := range apu.channels {
		apu.channels[i].Reset()
	}
	apu.noise.Reset()
	apu.sweepValue, apu.sweepTime = 0, 0
	apu.sweepTimer, apu.sweepSteps = sweepPeriod, 0
	apu.waveBase, apu.control, apu.output, apu.voiceVolume = 0, 0, 0, 0
	apu.ports = [0x20]byte{}
	apu.mixTimer = mixPeriod
	apu.last = 0
	apu.buffer = apu.buffer[:0]
	apu.cycle = 0
}

func (apu *APU) SetMuted(muted bool) {
	apu.muted = muted
}

func (apu *APU) Muted() bool {
	return apu.muted
}

func (apu *APU) SetAudioChannel(channel chan float32) {
	apu.channel = channel
}

// SetSampleRate configures the host side of the output. A zero rate
// disables host samples.
func (apu *APU) SetSampleRate(sampleRate float64) {
	if sampleRate == 0 {
		apu.sampleRate = 0
		apu.filterChain = nil
		return
	}
	apu.sampleRate = CPUFrequency / sampleRate
	apu.filterChain = FilterChain{
		HighPassFilter(float32(sampleRate), 90),
		HighPassFilter(float32(sampleRate), 440),
		LowPassFilter(float32(sampleRate), 14000),
	}
}

// Samples drains the mixed 24 kHz samples produced since the last call.
func (apu *APU) Samples() []byte {
	out := make([]byte, len(apu.buffer))
	copy(out, apu.buffer)
	apu.buffer = apu.buffer[:0]
	return out
}

func (apu *APU) waveTable(ch int) []byte {
	base := int(apu.waveBase)<<6 + ch*16
	return apu.ram[base : base+16]
}

// Step advances the sound unit by cycles CPU cycles.
func (apu *APU) Step(cycles int) {
	for cycles > 0 {
		n := cycles
		if n > apu.mixTimer {
			n = apu.mixTimer
		}
		apu.run(n)
		cycles -= n
		apu.mixTimer -= n
		if apu.mixTimer == 0 {
			apu.mixTimer = mixPeriod
			apu.mix()
		}
		apu.hostSamples(n)
	}
}

func (apu *APU) run(cycles int) {
	for i := range apu.channels {
		ch := &apu.channels[i]
		steps := ch.Run(cycles)
		if apu.control&(1<<uint(i)) == 0 {
			continue
		}
		if i == 3 && apu.noiseMode() {
			for j := 0; j < steps; j++ {
				apu.noise.Clock()
			}
			continue
		}
		ch.Advance(apu.waveTable(i), steps)
	}

	if apu.control&0x40 != 0 && apu.control&0x04 != 0 {
		apu.sweepTimer -= cycles
		for apu.sweepTimer <= 0 {
			apu.sweepTimer += sweepPeriod
			apu.sweep()
		}
	}
}

// sweep runs once per 8192 cycles and changes channel 3's frequency every
// (0x8D & 0x1F) + 1 of those ticks.
func (apu *APU) sweep() {
	if apu.sweepSteps > 0 {
		apu.sweepSteps--
		return
	}
	apu.sweepSteps = int(apu.sweepTime & 0x1F)
	ch := &apu.channels[2]
	ch.freq = uint16(int(ch.freq)+int(int8(apu.sweepValue))) & 0x7FF
}

func (apu *APU) noiseMode() bool {
	return apu.control&0x80 != 0 && apu.noise.enabled()
}

func (apu *APU) voiceMode() bool {
	return apu.control&0x20 != 0
}

// mix produces one 8-bit output sample from the four channels.
func (apu *APU) mix() {
	left, right := 0, 0
	for i := range apu.channels {
		ch := &apu.channels[i]
		if apu.control&(1<<uint(i)) == 0 && !(i == 1 && apu.voiceMode()) {
			continue
		}
		switch {
		case i == 1 && apu.voiceMode():
			l, r := apu.voice()
			left += l
			right += r
		case i == 3 && apu.noiseMode():
			left += ch.left(apu.noise.Output())
			right += ch.right(apu.noise.Output())
		default:
			left += ch.left(ch.sample)
			right += ch.right(ch.sample)
		}
	}

	out := (left + right) >> ((apu.output >> 1) & 3)
	if out > 0xFF {
		out = 0xFF
	}
	apu.last = byte(out)

	if apu.muted {
		return
	}
	if len(apu.buffer) >= maxBufferedSamples {
		n := copy(apu.buffer, apu.buffer[len(apu.buffer)/2:])
		apu.buffer = apu.buffer[:n]
	}
	apu.buffer = append(apu.buffer, apu.last)
}

// voice scales the raw 8-bit sample in port 0x89 by port 0x94: bits 0/1
// full/half right, bits 2/3 full/half left.
func (apu *APU) voice() (int, int) {
	v := int(apu.channels[1].volume)
	left, right := 0, 0
	switch {
	case apu.voiceVolume&0x04 != 0:
		left = v
	case apu.voiceVolume&0x08 != 0:
		left = v >> 1
	}
	switch {
	case apu.voiceVolume&0x01 != 0:
		right = v
	case apu.voiceVolume&0x02 != 0:
		right = v >> 1
	}
	return left, right
}

// refs: github.com/fogleman/nes/nes/apu.go
func (apu *APU) hostSamples(cycles int) {
	if apu.sampleRate == 0 || apu.channel == nil {
		apu.cycle += uint64(cycles)
		return
	}
	cycle1 := apu.cycle
	apu.cycle += uint64(cycles)
	s1 := int(float64(cycle1) / apu.sampleRate)
	s2 := int(float64(apu.cycle) / apu.sampleRate)
	for i := s1; i < s2; i++ {
		apu.sendSample()
	}
}

func (apu *APU) sendSample() {
	if apu.muted {
		return
	}
	output := apu.filterChain.Step(float32(apu.last) / 255)
	select {
	case apu.channel <- output:
	default:
	}
}

func (apu *APU) ReadPort(port byte) byte {
	switch {
	case port < 0x88:
		ch := &apu.channels[(port-0x80)/2]
		if port&1 == 0 {
			return byte(ch.freq)
		}
		return byte(ch.freq >> 8)
	case port < 0x8C:
		return apu.channels[port-0x88].volume
	case port == 0x8C:
		return apu.sweepValue
	case port == 0x8D:
		return apu.sweepTime
	case port == 0x8E:
		return apu.noise.control
	case port == 0x8F:
		return apu.waveBase
	case port == 0x90:
		return apu.control
	case port == 0x91:
		// headphones never connected
		return apu.output &^ 0x80
	case port == 0x92:
		return byte(apu.noise.lfsr)
	case port == 0x93:
		return byte(apu.noise.lfsr>>8) & 0x7F
	case port == 0x94:
		return apu.voiceVolume
	}
	return apu.ports[port-0x80]
}

func (apu *APU) WritePort(port byte, value byte) {
	switch {
	case port < 0x88:
		ch := &apu.channels[(port-0x80)/2]
		if port&1 == 0 {
			ch.freq = ch.freq&0x700 | uint16(value)
		} else {
			ch.freq = ch.freq&0xFF | uint16(value&0x07)<<8
		}
	case port < 0x8C:
		apu.channels[port-0x88].volume = value
	case port == 0x8C:
		apu.sweepValue = value
	case port == 0x8D:
		apu.sweepTime = value & 0x1F
		apu.sweepSteps = int(apu.sweepTime)
	case port == 0x8E:
		apu.noise.setControl(value & 0x1F)
	case port == 0x8F:
		apu.waveBase = value
	case port == 0x90:
		apu.control = value
	case port == 0x91:
		apu.output = value & 0x0F
	case port == 0x94:
		apu.voiceVolume = value & 0x0F
	default:
		apu.ports[port-0x80] = value
	}
}
