package adm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstFree(t *testing.T) {
	tests := []struct {
		name     string
		occupied []uint32
		start    uint32
		want     uint32
	}{
		{name: "empty", occupied: nil, start: 0x1001, want: 0x1001},
		{name: "start free", occupied: []uint32{0x1002, 0x1003}, start: 0x1001, want: 0x1001},
		{name: "run", occupied: []uint32{0x1003, 0x1001, 0x1002}, start: 0x1001, want: 0x1004},
		{name: "hole", occupied: []uint32{0x1001, 0x1003}, start: 0x1001, want: 0x1002},
		{name: "duplicates", occupied: []uint32{5, 5, 6}, start: 5, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstFree(tt.occupied, tt.start))
		})
	}
}

func addAll(t *testing.T, d *Document, elements ...Element) {
	t.Helper()
	for _, e := range elements {
		_, err := d.Add(e)
		require.NoError(t, err)
	}
}

func TestAssignReusesHoles(t *testing.T) {
	d := NewDocument()
	a, b, c := NewObject("a"), NewObject("b"), NewObject("c")
	addAll(t, d, a, b, c)
	assert.Equal(t, uint32(0x1003), c.ID().Value)

	d.Remove(b)
	e := NewObject("e")
	addAll(t, d, e)
	assert.Equal(t, uint32(0x1002), e.ID().Value)
}

func TestAssignKeepsPresetAndSkipsClash(t *testing.T) {
	d := NewDocument()
	a := NewObject("a")
	addAll(t, d, a)

	preset := NewObject("preset")
	require.NoError(t, preset.SetID(ID{Value: 0x2000}))
	clash := NewObject("clash")
	require.NoError(t, clash.SetID(ID{Value: 0x1001}))
	low := NewObject("low")
	require.NoError(t, low.SetID(ID{Value: 5}))
	lowClash := NewObject("low clash")
	require.NoError(t, lowClash.SetID(ID{Value: 5}))
	addAll(t, d, preset, clash, low, lowClash)

	assert.Equal(t, uint32(0x2000), preset.ID().Value)
	assert.Equal(t, uint32(0x1002), clash.ID().Value)
	assert.Equal(t, "AO_0005", low.ID().String())
	assert.Equal(t, "AO_0006", lowClash.ID().String())

	uid := NewTrackUID()
	require.NoError(t, uid.SetID(ID{Value: 7}))
	addAll(t, d, uid)
	assert.Equal(t, "ATU_00000007", uid.ID().String())
	require.ErrorIs(t, a.SetID(ID{Value: 0x3000}), ErrStructuralViolation)
}

func TestAssignPartitionsByType(t *testing.T) {
	d := NewDocument()
	ds := NewPackFormat("ds", TypeDirectSpeakers)
	obj := NewPackFormat("obj", TypeObjects)
	obj2 := NewPackFormat("obj2", TypeObjects)
	addAll(t, d, ds, obj, obj2)

	assert.Equal(t, "AP_00011001", ds.ID().String())
	assert.Equal(t, "AP_00031001", obj.ID().String())
	assert.Equal(t, "AP_00031002", obj2.ID().String())
}

func TestAssignCommonDefinitions(t *testing.T) {
	d := NewDocument()
	common := NewPackFormat("stereo", TypeDirectSpeakers)
	require.NoError(t, common.SetID(ID{Value: 0x0002}))
	user := NewPackFormat("user", TypeDirectSpeakers)
	addAll(t, d, common, user)

	assert.Equal(t, "AP_00010002", common.ID().String())
	assert.Equal(t, "AP_00011001", user.ID().String())

	dup := NewPackFormat("dup", TypeDirectSpeakers)
	require.NoError(t, dup.SetID(ID{Value: 0x0002}))
	_, err := d.Add(dup)
	require.ErrorIs(t, err, ErrStructuralViolation)
	assert.Nil(t, dup.Document())
}

func TestAssignTrackFormatFollowsStreamFormat(t *testing.T) {
	d := NewDocument()
	other := NewStreamFormat("other", TypeObjects)
	sf := NewStreamFormat("sf", TypeObjects)
	addAll(t, d, other, sf)

	tf1 := NewTrackFormat("tf1", TypeObjects)
	tf2 := NewTrackFormat("tf2", TypeObjects)
	require.NoError(t, tf1.SetStreamFormat(sf))
	require.NoError(t, tf2.SetStreamFormat(sf))

	assert.Equal(t, "AS_00031002", sf.ID().String())
	assert.Equal(t, "AT_00031002_01", tf1.ID().String())
	assert.Equal(t, "AT_00031002_02", tf2.ID().String())

	orphan := NewTrackFormat("orphan", TypeObjects)
	addAll(t, d, orphan)
	assert.Equal(t, "AT_00031001_01", orphan.ID().String())
}

func TestAssignTrackUIDStartsAtOne(t *testing.T) {
	d := NewDocument()
	a, b := NewTrackUID(), NewTrackUID()
	addAll(t, d, a, b)
	assert.Equal(t, "ATU_00000001", a.ID().String())
	assert.Equal(t, "ATU_00000002", b.ID().String())
}
