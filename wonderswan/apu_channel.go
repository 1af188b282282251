package wonderswan

const waveSteps = 32

// SoundChannel is one of the four wavetable voices. Each divider expiry
// moves to the next of 32 4-bit samples.
type SoundChannel struct {
	freq   uint16 // 11-bit frequency register
	timer  int
	index  byte
	sample byte
	volume byte // high nibble left, low nibble right
}

func (ch *SoundChannel) Reset() {
	*ch = SoundChannel{}
}

func (ch *SoundChannel) period() int {
	return 2048 - int(ch.freq&0x7FF)
}

// Run advances the divider by cycles and returns how many times it expired.
func (ch *SoundChannel) Run(cycles int) int {
	ch.timer -= cycles
	expired := 0
	for ch.timer <= 0 {
		ch.timer += ch.period()
		expired++
	}
	return expired
}

// Advance moves the wave position by steps and latches the new sample from
// the channel's 16 byte table, low nibble first.
func (ch *SoundChannel) Advance(wave []byte, steps int) {
	if steps == 0 {
		return
	}
	ch.index = byte((int(ch.index) + steps) % waveSteps)
	v := wave[ch.index/2]
	if ch.index&1 != 0 {
		v >>= 4
	}
	ch.sample = v & 0x0F
}

func (ch *SoundChannel) left(sample byte) int {
	return int(sample) * int(ch.volume>>4)
}

func (ch *SoundChannel) right(sample byte) int {
	return int(sample) * int(ch.volume&0x0F)
}

var noiseTaps = [8]uint{14, 10, 13, 4, 8, 6, 9, 11}

// NoiseGenerator is the 15-bit LFSR channel 4 switches to in noise mode.
type NoiseGenerator struct {
	control byte // port 0x8E
	lfsr    uint16
}

func (n *NoiseGenerator) Reset() {
	*n = NoiseGenerator{}
}

func (n *NoiseGenerator) setControl(value byte) {
	if value&0x08 != 0 {
		n.lfsr = 0
	}
	n.control = value &^ 0x08
}

func (n *NoiseGenerator) enabled() bool {
	return n.control&0x10 != 0
}

// Clock shifts the register once.
func (n *NoiseGenerator) Clock() {
	tap := (n.lfsr >> noiseTaps[n.control&7]) & 1
	bit := (n.lfsr>>7)&1 ^ tap ^ 1
	n.lfsr = (n.lfsr<<1 | bit) & 0x7FFF
}

func (n *NoiseGenerator) Output() byte {
	if n.lfsr&1 != 0 {
		return 0x0F
	}
	return 0
}
