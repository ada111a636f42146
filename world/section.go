package world

import (
	"encoding/binary"
	"fmt"

	ns "github.com/go-mclib/bot/net_structures"
)

// DecodeColumn decodes a LevelChunkWithLight packet's raw section blob
// (net_structures.ChunkData.Data) into a Column of global block-state ids.
// This implements the paletted-container wire format itself (single-valued,
// indirect-palette, direct-palette); it does not know what any state id
// *means*, classification is delegated to BlockQuery, since the block-state
// table is out of scope.
func DecodeColumn(data []byte) (*Column, error) {
	col := &Column{}
	offset := 0

	for secIdx := range col.Sections {
		if offset+2 > len(data) {
			// Trailing (topmost) sections may be omitted by some server
			// implementations; treat as all-air.
			break
		}
		// BlockCount (Short); unused for pathfinding, only advances offset.
		offset += 2

		blockStates, n, err := decodePalettedContainer(data[offset:], 4096, defaultBlockBitsPerEntry)
		if err != nil {
			return nil, fmt.Errorf("section %d block states: %w", secIdx, err)
		}
		offset += n

		_, n, err = decodePalettedContainer(data[offset:], 64, defaultBiomeBitsPerEntry)
		if err != nil {
			return nil, fmt.Errorf("section %d biomes: %w", secIdx, err)
		}
		offset += n

		if blockStates != nil {
			sec := &Section{}
			copy(sec.States[:], blockStates)
			col.Sections[secIdx] = sec
		}
	}

	return col, nil
}

const (
	// defaultBlockBitsPerEntry is the global-palette bit width assumed for
	// direct-palette sections when the embedder hasn't supplied a real
	// block-state table (log2 of ~16 bits covers every vanilla state id as
	// of 1.20; an embedder decoding against a specific data generator report
	// can override by re-deriving Column decode from DecodeColumn's inputs).
	defaultBlockBitsPerEntry = 15
	defaultBiomeBitsPerEntry = 6
)

// decodePalettedContainer reads one paletted container (§21w06a+ chunk
// format): a bits-per-entry byte, a palette (absent for direct, single id
// for size-0, VarInt-prefixed list for indirect), and a long-packed data
// array of entriesPerContainer values. Returns the decoded global ids (nil
// for the single-valued all-same case when that value is 0/air) and the
// number of bytes consumed.
func decodePalettedContainer(data []byte, entriesPerContainer int, directBits int) ([]int32, int, error) {
	if len(data) < 1 {
		return nil, 0, fmt.Errorf("truncated paletted container")
	}
	bitsPerEntry := int(data[0])
	offset := 1

	switch {
	case bitsPerEntry == 0:
		var single ns.VarInt
		n, err := single.FromBytes(ns.ByteArray(data[offset:]))
		if err != nil {
			return nil, 0, err
		}
		offset += n

		_, n, err = readLongArray(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n

		if single == 0 {
			return nil, offset, nil
		}
		ids := make([]int32, entriesPerContainer)
		for i := range ids {
			ids[i] = int32(single)
		}
		return ids, offset, nil

	case bitsPerEntry <= 8:
		var paletteLen ns.VarInt
		n, err := paletteLen.FromBytes(ns.ByteArray(data[offset:]))
		if err != nil {
			return nil, 0, err
		}
		offset += n
		if paletteLen < 0 || int(paletteLen) > entriesPerContainer {
			return nil, 0, fmt.Errorf("implausible palette length %d", paletteLen)
		}
		palette := make([]int32, paletteLen)
		for i := range palette {
			var v ns.VarInt
			n, err := v.FromBytes(ns.ByteArray(data[offset:]))
			if err != nil {
				return nil, 0, err
			}
			offset += n
			palette[i] = int32(v)
		}

		longs, n, err := readLongArray(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n

		indices := unpackLongs(longs, bitsPerEntry, entriesPerContainer)
		ids := make([]int32, entriesPerContainer)
		for i, idx := range indices {
			if int(idx) < 0 || int(idx) >= len(palette) {
				return nil, 0, fmt.Errorf("palette index %d out of range (len %d)", idx, len(palette))
			}
			ids[i] = palette[idx]
		}
		return ids, offset, nil

	default:
		longs, n, err := readLongArray(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n
		indices := unpackLongs(longs, directBits, entriesPerContainer)
		ids := make([]int32, entriesPerContainer)
		for i, idx := range indices {
			ids[i] = idx
		}
		return ids, offset, nil
	}
}

func readLongArray(data []byte) ([]uint64, int, error) {
	var length ns.VarInt
	n, err := length.FromBytes(ns.ByteArray(data))
	if err != nil {
		return nil, 0, err
	}
	offset := n
	if length < 0 {
		return nil, 0, fmt.Errorf("negative long-array length")
	}
	needed := int(length) * 8
	if len(data) < offset+needed {
		return nil, 0, fmt.Errorf("truncated long array (need %d more bytes)", offset+needed-len(data))
	}
	longs := make([]uint64, length)
	for i := range longs {
		longs[i] = binary.BigEndian.Uint64(data[offset : offset+8])
		offset += 8
	}
	return longs, offset, nil
}

// unpackLongs extracts entryCount fixed-width values from longs, bitsPerEntry
// bits each, with no value spanning a long boundary (vanilla's packing
// scheme since the 20w17a format change).
func unpackLongs(longs []uint64, bitsPerEntry, entryCount int) []int32 {
	out := make([]int32, entryCount)
	if bitsPerEntry <= 0 {
		return out
	}
	perLong := 64 / bitsPerEntry
	mask := uint64(1)<<uint(bitsPerEntry) - 1

	for i := 0; i < entryCount; i++ {
		longIdx := i / perLong
		if longIdx >= len(longs) {
			break
		}
		shift := uint(i%perLong) * uint(bitsPerEntry)
		out[i] = int32((longs[longIdx] >> shift) & mask)
	}
	return out
}
