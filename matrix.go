package collision

// CollisionMatrix is a symmetric tag compatibility table. Row i holds the mask
// of tags that collide with the tag whose single bit is i.
//
// It is a plain value so each snapshot can carry its own copy; the worker
// never reads the matrix owned by the main thread.
type CollisionMatrix struct {
	rows [NoTagBit]uint32
}

// RegisterDetectionTarget makes a and b collide with each other. Registration
// is symmetric, so each pair only needs to be registered once. Zero tags are
// ignored.
func (m *CollisionMatrix) RegisterDetectionTarget(a, b EntityTag) {
	bitA, bitB := TagBitIndex(a), TagBitIndex(b)
	if bitA == NoTagBit || bitB == NoTagBit {
		return
	}
	m.rows[bitA] |= uint32(b)
	m.rows[bitB] |= uint32(a)
}

// ShouldCollide reports whether the tag at bitIndexA collides with any tag in
// maskB.
func (m CollisionMatrix) ShouldCollide(bitIndexA uint32, maskB EntityTag) bool {
	if bitIndexA >= NoTagBit {
		return false
	}
	return m.rows[bitIndexA]&uint32(maskB) != 0
}

func (m CollisionMatrix) ShouldCollideTags(a, b EntityTag) bool {
	return m.ShouldCollide(TagBitIndex(a), b)
}

func (m CollisionMatrix) Row(bitIndex uint32) EntityTag {
	if bitIndex >= NoTagBit {
		return TagNone
	}
	return EntityTag(m.rows[bitIndex])
}

func (m *CollisionMatrix) ClearMatrix() {
	m.rows = [NoTagBit]uint32{}
}

func (m CollisionMatrix) Empty() bool {
	for _, r := range m.rows {
		if r != 0 {
			return false
		}
	}
	return true
}
