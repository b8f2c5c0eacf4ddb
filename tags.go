package collision

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// EntityTag is a single-bit category. Tags may be OR-ed together to form a
// mask, but an owner reports exactly one bit.
type EntityTag uint32

const TagNone EntityTag = 0

const (
	TagPlayer EntityTag = 1 << iota
	TagEnemy
	TagFloor
	TagBuilding
	TagWall
	TagWire
	TagProjectile
	TagTrigger
	TagPickup
)

// NoTagBit is the bit index reported for a zero tag. It is out of range for
// every matrix row.
const NoTagBit uint32 = 32

var tagNames = map[EntityTag]string{
	TagPlayer:     "player",
	TagEnemy:      "enemy",
	TagFloor:      "floor",
	TagBuilding:   "building",
	TagWall:       "wall",
	TagWire:       "wire",
	TagProjectile: "projectile",
	TagTrigger:    "trigger",
	TagPickup:     "pickup",
}

// TagBitIndex returns the position of the lowest set bit of tag.
func TagBitIndex(tag EntityTag) uint32 {
	if tag == TagNone {
		return NoTagBit
	}
	return uint32(bits.TrailingZeros32(uint32(tag)))
}

func (t EntityTag) String() string {
	if t == TagNone {
		return "none"
	}
	if name, ok := tagNames[t]; ok {
		return name
	}
	var parts []string
	for rest := uint32(t); rest != 0; rest &= rest - 1 {
		bit := EntityTag(1) << bits.TrailingZeros32(rest)
		if name, ok := tagNames[bit]; ok {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("bit%d", TagBitIndex(bit)))
		}
	}
	return strings.Join(parts, "|")
}

func (t EntityTag) IsSingle() bool {
	return t != TagNone && t&(t-1) == 0
}

// ParseTag resolves a tag name as written in config files. Matching is case
// insensitive; "bitN" addresses any of the 32 bits directly.
func ParseTag(name string) (EntityTag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for tag, n := range tagNames {
		if n == name {
			return tag, nil
		}
	}
	if rest, ok := strings.CutPrefix(name, "bit"); ok {
		if idx, err := strconv.ParseUint(rest, 10, 8); err == nil && idx < uint64(NoTagBit) {
			return EntityTag(1) << idx, nil
		}
	}
	return TagNone, fmt.Errorf("unknown entity tag %q", name)
}
