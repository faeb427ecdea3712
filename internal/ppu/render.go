package ppu

import "sort"

// decodeTileRow expands one 2-byte tile row into 8 color indices (0-3).
// b0 is the byte at the tile row's base address (the bitplane holding
// each pixel's low bit), b1 is the byte at base+1 (each pixel's high
// bit) — the standard DMG tile format.
func decodeTileRow(b0, b1 byte) [8]byte {
	var out [8]byte
	for x := 0; x < 8; x++ {
		bit := uint(7 - x)
		lo := (b0 >> bit) & 1
		hi := (b1 >> bit) & 1
		out[x] = (hi << 1) | lo
	}
	return out
}

// tileDataAddr returns the address of BG/window tile tileNum: unsigned from
// 0x8000 when LCDC bit 4 is set, otherwise signed from 0x9000.
func (p *PPU) tileDataAddr(tileNum byte) uint16 {
	if p.lcdc&0x10 != 0 {
		return 0x8000 + uint16(tileNum)*16
	}
	return uint16(int32(0x9000) + int32(int8(tileNum))*16)
}

func (p *PPU) tileRow(tileNum byte, fineY byte) [8]byte {
	base := p.tileDataAddr(tileNum) + uint16(fineY&7)*2
	lo := p.vram[base-0x8000]
	hi := p.vram[base+1-0x8000]
	return decodeTileRow(lo, hi)
}

// spriteTileRow fetches one row of an OBJ tile. Unlike BG/window tiles,
// sprite tiles are always addressed unsigned from 0x8000 — LCDC bit 4
// only selects the BG/window addressing mode, never the OBJ one.
func (p *PPU) spriteTileRow(tileNum byte, fineY byte) [8]byte {
	base := 0x8000 + uint16(tileNum)*16 + uint16(fineY&7)*2
	lo := p.vram[base-0x8000]
	hi := p.vram[base+1-0x8000]
	return decodeTileRow(lo, hi)
}

// renderFrame rebuilds the whole visible 160x144 frame from VRAM/OAM as
// they stand at the HBlank->VBlank transition (spec's documented
// whole-tile-at-frame-boundary simplification — mid-frame scroll or
// palette changes are not observed).
func (p *PPU) renderFrame() {
	var bgRaw [screenW * screenH]byte // raw BG/window color index per visible pixel, for sprite priority

	if p.lcdc&0x01 != 0 {
		p.renderBackground(&bgRaw)
		if p.lcdc&0x20 != 0 {
			p.renderWindow(&bgRaw)
		}
	}

	for i, ci := range bgRaw {
		p.frame[i] = p.shade(p.bgp, ci)
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(&bgRaw)
	}

	p.paintRGBA()
}

// renderBackground fills the visible viewport from the scrolled 32x32
// background tile map.
func (p *PPU) renderBackground(out *[screenW * screenH]byte) {
	mapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}

	for y := 0; y < screenH; y++ {
		bgY := byte(y) + p.scy
		fineY := bgY & 7
		mapRow := uint16(bgY>>3) & 31
		for x := 0; x < screenW; x++ {
			bgX := byte(x) + p.scx
			mapCol := uint16(bgX>>3) & 31
			tileNum := p.vram[mapBase+mapRow*32+mapCol-0x8000]
			row := p.tileRow(tileNum, fineY)
			out[y*screenW+x] = row[bgX&7]
		}
	}
}

// renderWindow overlays the window layer starting at (WX-7, WY); its
// internal line counter only advances for rows actually drawn, so
// scrolling the window off-screen and back does not skip tile rows.
func (p *PPU) renderWindow(out *[screenW * screenH]byte) {
	if p.wx > 166 || p.wy > 143 {
		return
	}
	mapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		mapBase = 0x9C00
	}
	wxStart := int(p.wx) - 7

	for y := 0; y < screenH; y++ {
		if y < int(p.wy) {
			continue
		}
		winLine := p.windowLine
		fineY := byte(winLine) & 7
		mapRow := uint16(winLine>>3) & 31
		startX := wxStart
		if startX < 0 {
			startX = 0
		}
		for x := startX; x < screenW; x++ {
			winCol := uint16(x-wxStart) >> 3 & 31
			tileNum := p.vram[mapBase+mapRow*32+winCol-0x8000]
			row := p.tileRow(tileNum, fineY)
			out[y*screenW+x] = row[uint(x-wxStart)&7]
		}
		p.windowLine++
	}
}

type spriteEntry struct {
	y, x, tile, flags byte
	oamIndex          int
}

// renderSprites composes up to 40 OAM entries onto the visible frame,
// honoring 8x8/8x16 sizing, X/Y flip, OBP0/OBP1 palette selection, and
// the BG-priority flag (sprite shows only where the background's raw
// color index is 0).
func (p *PPU) renderSprites(bgRaw *[screenW * screenH]byte) {
	tall := p.lcdc&0x04 != 0
	height := 8
	if tall {
		height = 16
	}

	var sprites []spriteEntry
	for i := 0; i < 40; i++ {
		base := i * 4
		s := spriteEntry{
			y:        p.oam[base],
			x:        p.oam[base+1],
			tile:     p.oam[base+2],
			flags:    p.oam[base+3],
			oamIndex: i,
		}
		sprites = append(sprites, s)
	}

	// Lower X has priority; ties broken by lower OAM index. Paint lowest
	// priority first so the highest-priority sprite ends up on top.
	sort.SliceStable(sprites, func(a, b int) bool {
		if sprites[a].x != sprites[b].x {
			return sprites[a].x > sprites[b].x
		}
		return sprites[a].oamIndex > sprites[b].oamIndex
	})

	for _, s := range sprites {
		screenY := int(s.y) - 16
		screenX := int(s.x) - 8
		if screenY <= -height || screenY >= screenH || screenX <= -8 || screenX >= screenW {
			continue
		}

		tile := s.tile
		if tall {
			tile &^= 1
		}
		xflip := s.flags&0x20 != 0
		yflip := s.flags&0x40 != 0
		behindBG := s.flags&0x80 != 0
		obp := p.obp0
		if s.flags&0x10 != 0 {
			obp = p.obp1
		}

		for row := 0; row < height; row++ {
			py := screenY + row
			if py < 0 || py >= screenH {
				continue
			}
			srcRow := row
			if yflip {
				srcRow = height - 1 - row
			}
			t := tile
			fineY := byte(srcRow) & 7
			if tall && srcRow >= 8 {
				t |= 1
			}
			pixels := p.spriteTileRow(t, fineY)
			for col := 0; col < 8; col++ {
				px := screenX + col
				if px < 0 || px >= screenW {
					continue
				}
				srcCol := col
				if xflip {
					srcCol = 7 - col
				}
				ci := pixels[srcCol]
				if ci == 0 {
					continue // sprite color 0 is always transparent
				}
				idx := py*screenW + px
				if behindBG && bgRaw[idx] != 0 {
					continue
				}
				p.frame[idx] = p.shade(obp, ci)
			}
		}
	}
}

// shade maps a raw 2-bit color index through a palette register's four
// 2-bit fields to a displayed shade 0-3.
func (p *PPU) shade(palette byte, colorIndex byte) byte {
	return (palette >> (colorIndex * 2)) & 0x03
}

func (p *PPU) paintRGBA() {
	for i, s := range p.frame {
		c := p.palette[s&0x03]
		copy(p.frameRGBA[i*4:i*4+4], c[:])
	}
}
