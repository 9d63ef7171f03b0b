package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPressTargetDiscipline(t *testing.T) {
	r := &Router{}
	assert.Zero(t, r.PressTarget())

	// A press locks the target; motion and release route there no matter
	// what window X delivered them to (resolveLocked consults only the
	// lock while it's held).
	r.SetPressTarget(42)
	assert.EqualValues(t, 42, r.PressTarget())

	// A destroy of some other window leaves the lock alone.
	r.DropPressTargetIf(7)
	assert.EqualValues(t, 42, r.PressTarget())

	// The locked window dying clears it — every destroy path does this.
	r.DropPressTargetIf(42)
	assert.Zero(t, r.PressTarget())

	// Release clears unconditionally.
	r.SetPressTarget(43)
	r.ClearPressTarget()
	assert.Zero(t, r.PressTarget())
}

func TestStripLocks(t *testing.T) {
	// Caps lock (LockMask) and num lock (Mod2) disappear; real modifiers
	// survive.
	assert.Equal(t, uint16(0x40), StripLocks(0x40|0x02|0x10))
	assert.Equal(t, uint16(0), StripLocks(0x02))
	assert.Equal(t, uint16(0x41), StripLocks(0x41))
}
