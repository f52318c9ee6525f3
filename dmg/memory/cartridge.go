package memory

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrInvalidCartridge is returned when an image cannot hold a cartridge header.
var ErrInvalidCartridge = errors.New("invalid cartridge")

const (
	titleAddress          = 0x134
	titleEnd              = 0x143
	cartridgeTypeAddress  = 0x147
	romSizeAddress        = 0x148
	ramSizeAddress        = 0x149
	versionNumberAddress  = 0x14C
	headerChecksumAddress = 0x14D
	globalChecksumAddress = 0x14E

	headerStart = 0x134
	headerEnd   = 0x14C
	minimumSize = 0x150
)

// CartridgeType is the mapper/feature byte at 0x147.
type CartridgeType uint8

var cartridgeTypeNames = map[CartridgeType]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
}

func (t CartridgeType) String() string {
	if name, ok := cartridgeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", uint8(t))
}

// Supported reports whether the cartridge runs fully without bank switching.
func (t CartridgeType) Supported() bool {
	return t == 0x00 || t == 0x08 || t == 0x09
}

// ramSizes maps the header RAM size code to bytes.
var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Cartridge is a loaded ROM image and its decoded header.
type Cartridge struct {
	Data []uint8

	Title          string
	Type           CartridgeType
	ROMSize        int // bytes, as declared by the header
	RAMSize        int // bytes, as declared by the header
	Version        uint8
	HeaderChecksum uint8
	GlobalChecksum uint16

	HeaderChecksumValid bool
	GlobalChecksumValid bool
}

// LoadCartridge reads and parses the ROM image at path.
func LoadCartridge(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cartridge %q: %w", path, err)
	}

	cart, err := ParseCartridge(data)
	if err != nil {
		return nil, fmt.Errorf("loading cartridge %q: %w", path, err)
	}

	return cart, nil
}

// ParseCartridge decodes the header of a ROM image. Checksum mismatches and
// unsupported mappers are logged, not rejected.
func ParseCartridge(data []uint8) (*Cartridge, error) {
	if len(data) < minimumSize {
		return nil, fmt.Errorf("%w: image is %d bytes, a header needs %d", ErrInvalidCartridge, len(data), minimumSize)
	}

	cart := &Cartridge{
		Data:           make([]uint8, len(data)),
		Title:          cleanTitle(data[titleAddress : titleEnd+1]),
		Type:           CartridgeType(data[cartridgeTypeAddress]),
		RAMSize:        ramSizes[data[ramSizeAddress]],
		Version:        data[versionNumberAddress],
		HeaderChecksum: data[headerChecksumAddress],
		GlobalChecksum: uint16(data[globalChecksumAddress])<<8 | uint16(data[globalChecksumAddress+1]),
	}
	copy(cart.Data, data)

	if code := data[romSizeAddress]; code <= 8 {
		cart.ROMSize = (32 * 1024) << code
	}

	cart.HeaderChecksumValid = headerChecksum(data) == cart.HeaderChecksum
	cart.GlobalChecksumValid = globalChecksum(data) == cart.GlobalChecksum

	if !cart.HeaderChecksumValid {
		slog.Warn("cartridge header checksum mismatch",
			"expected", fmt.Sprintf("0x%02X", cart.HeaderChecksum),
			"actual", fmt.Sprintf("0x%02X", headerChecksum(data)))
	}
	if !cart.GlobalChecksumValid {
		slog.Warn("cartridge global checksum mismatch",
			"expected", fmt.Sprintf("0x%04X", cart.GlobalChecksum),
			"actual", fmt.Sprintf("0x%04X", globalChecksum(data)))
	}
	if !cart.Type.Supported() {
		slog.Warn("unsupported cartridge type, running with ROM-only mapping", "type", cart.Type.String())
	}

	return cart, nil
}

// headerChecksum computes the checksum of 0x134-0x14C as the boot ROM does.
func headerChecksum(data []uint8) uint8 {
	var x uint8
	for _, b := range data[headerStart : headerEnd+1] {
		x = x - b - 1
	}
	return x
}

// globalChecksum sums every byte of the image except the checksum itself.
func globalChecksum(data []uint8) uint16 {
	var sum uint16
	for i, b := range data {
		if i == globalChecksumAddress || i == globalChecksumAddress+1 {
			continue
		}
		sum += uint16(b)
	}
	return sum
}

func (c *Cartridge) String() string {
	return fmt.Sprintf("%s (%s, ROM %dK, RAM %dK, v%d)",
		c.Title, c.Type, c.ROMSize/1024, c.RAMSize/1024, c.Version)
}
