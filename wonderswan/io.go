// refs: ws.nesdev.org/wiki/I/O_port_map
package wonderswan

func (b *Bus) ReadPort(port uint16) byte {
	if port&0x0100 != 0 {
		return openBus
	}
	p := byte(port)
	if port > 0xFF && p > 0xB8 {
		return openBus
	}

	switch {
	case p < 0x40:
		// 0x00-0x3F
		return b.PPU.ReadPort(p)
	case p < 0x54:
		// 0x40-0x53
		return b.DMA.ReadPort(p)
	case p == 0x60:
		return b.PPU.ReadPort(p)
	case p >= 0x80 && p < 0xA0:
		// 0x80-0x9F
		return b.APU.ReadPort(p)
	case p == 0xA0:
		return b.systemControl()
	case p >= 0xA2 && p < 0xAC:
		// 0xA2-0xAB
		return b.Timer.ReadPort(p)
	case p == 0xB0 || p == 0xB2 || p == 0xB4 || p == 0xB6:
		return b.Interrupts.ReadPort(p)
	case p == 0xB3:
		// serial status, send buffer always empty
		return b.ports[p] | 0x04
	case p == 0xB5:
		return b.Keypad.Read()
	case p == 0xB7:
		b.ports[p] &= 0x10
		return b.ports[p]
	case p >= 0xBA && p <= 0xBE:
		if b.IEEPROM == nil {
			return openBus
		}
		return b.IEEPROM.ReadPort(p - 0xBA)
	case p >= 0xC0:
		// 0xC0-0xFF
		return b.Cartridge.ReadPort(p)
	}
	return b.ports[p]
}

func (b *Bus) WritePort(port uint16, value byte) {
	if port&0x0100 != 0 {
		return
	}
	p := byte(port)
	if port > 0xFF && p > 0xB8 {
		return
	}

	switch {
	case p < 0x40:
		b.PPU.WritePort(p, value)
	case p < 0x54:
		b.DMA.WritePort(p, value)
	case p == 0x60:
		if !b.colorHardware {
			value &^= 0xE0
		}
		b.PPU.WritePort(p, value)
	case p >= 0x80 && p < 0xA0:
		b.APU.WritePort(p, value)
	case p == 0xA0:
		// the boot ROM lock bit is already set and cannot be cleared
	case p >= 0xA2 && p < 0xAC:
		b.Timer.WritePort(p, value)
	case p == 0xB0 || p == 0xB2 || p == 0xB4 || p == 0xB6:
		b.Interrupts.WritePort(p, value)
	case p == 0xB5:
		b.Keypad.Write(value)
	case p == 0xB7:
		b.ports[p] = value & 0x10
	case p >= 0xBA && p <= 0xBE:
		if b.IEEPROM != nil {
			b.IEEPROM.WritePort(p-0xBA, value)
		}
	case p >= 0xC0:
		b.Cartridge.WritePort(p, value)
	default:
		b.ports[p] = value
	}
}

// systemControl is port 0xA0: boot ROM locked, hardware type and the
// cartridge bus width/speed bits taken from the ROM footer.
func (b *Bus) systemControl() byte {
	v := byte(0x01) | b.Cartridge.ROMInfo&0x0C
	if b.colorHardware {
		v |= 0x02
	}
	return v
}
