package ksz8863

import "fmt"

// Identity registers and the first global control register.
const (
	RegChipID0        Register = 0x00
	RegChipID1        Register = 0x01
	RegGlobalControl0 Register = 0x02
)

// ChipID is the 16-bit identity assembled from RegChipID0 (low byte)
// and RegChipID1 (high byte, bit 0 cleared).
type ChipID uint16

// Identity constants.
const (
	ChipIDMask      ChipID = 0xf0ff
	ChipIDSignature ChipID = 0x3088
	RevisionMask    ChipID = 0x0e00
	RevisionShift          = 9

	// startBit is bit 0 of RegChipID1, a control bit, not identity.
	startBit byte = 0x01
)

// Revision is the silicon revision of an identified chip.
type Revision uint8

// MakeChipID assembles a ChipID from the two identity registers.
func MakeChipID(id0, id1 byte) ChipID {
	return ChipID(id0) | ChipID(id1&^startBit)<<8
}

// Matches checks the identity against the KSZ8863 signature.
func (id ChipID) Matches() bool {
	return id&ChipIDMask == ChipIDSignature
}

// Revision extracts the revision field.
func (id ChipID) Revision() Revision {
	return Revision((id & RevisionMask) >> RevisionShift)
}

// String returns the hex form.
func (id ChipID) String() string {
	return fmt.Sprintf("0x%04x", uint16(id))
}

// ChipID returns the identity of a KSZ8863 with this revision.
func (r Revision) ChipID() ChipID {
	return ChipIDSignature | (ChipID(r)<<RevisionShift)&RevisionMask
}

// VerifyIdentity returns the revision if id is a KSZ8863, or a *NotFoundError.
func VerifyIdentity(id ChipID) (Revision, error) {
	if !id.Matches() {
		return 0, &NotFoundError{Identity: id}
	}
	return id.Revision(), nil
}
