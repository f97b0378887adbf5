package adm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chain struct {
	programme *Programme
	content   *Content
	object    *Object
	pack      *PackFormat
	channel   *ChannelFormat
	stream    *StreamFormat
	track     *TrackFormat
	uid       *TrackUID
}

// buildChain wires one complete Objects-type signal path into d.
func buildChain(t *testing.T, d *Document, blocks int) chain {
	t.Helper()
	c := chain{
		programme: NewProgramme("programme"),
		content:   NewContent("content"),
		object:    NewObject("object"),
		pack:      NewPackFormat("pack", TypeObjects),
		channel:   NewChannelFormat("channel", TypeObjects),
		stream:    NewStreamFormat("stream", TypeObjects),
		track:     NewTrackFormat("track", TypeObjects),
		uid:       NewTrackUID(),
	}
	for i := range blocks {
		require.NoError(t, c.channel.AddBlockFormat(NewBlockFormat(secs(float64(i+1)))))
	}
	_, err := d.Add(c.programme)
	require.NoError(t, err)
	require.NoError(t, c.programme.AddContent(c.content))
	require.NoError(t, c.content.AddObject(c.object))
	require.NoError(t, c.object.AddPackFormat(c.pack))
	require.NoError(t, c.pack.AddChannelFormat(c.channel))
	require.NoError(t, c.stream.SetChannelFormat(c.channel))
	require.NoError(t, c.track.SetStreamFormat(c.stream))
	require.NoError(t, c.stream.AddTrackFormat(c.track))
	require.NoError(t, c.uid.SetTrackFormat(c.track))
	require.NoError(t, c.uid.SetPackFormat(c.pack))
	require.NoError(t, c.object.AddTrackUID(c.uid))
	return c
}

func TestReassignRenumbersFamilies(t *testing.T) {
	d := NewDocument()
	silent := NewTrackUID()
	addAll(t, d, silent)

	decoy := NewObject("decoy")
	require.NoError(t, decoy.SetID(ID{Value: 0x4000}))
	addAll(t, d, decoy)

	common := NewPackFormat("mono", TypeDirectSpeakers)
	require.NoError(t, common.SetID(ID{Value: 0x0001}))
	addAll(t, d, common)

	c := buildChain(t, d, 3)
	// Shift the stream family away from its defaults before reassigning.
	d.Remove(c.channel)
	require.NoError(t, c.channel.SetID(ID{Value: 0x2222}))
	require.NoError(t, c.pack.AddChannelFormat(c.channel))
	require.NoError(t, c.stream.SetChannelFormat(c.channel))
	assert.Equal(t, uint32(0x2222), c.channel.ID().Value)

	Reassign(d)

	assert.Equal(t, "APR_1001", c.programme.ID().String())
	assert.Equal(t, "ACO_1001", c.content.ID().String())
	assert.Equal(t, "AO_1001", decoy.ID().String())
	assert.Equal(t, "AO_1002", c.object.ID().String())
	assert.Equal(t, "AP_00010001", common.ID().String())
	assert.Equal(t, "AP_00031001", c.pack.ID().String())
	assert.Equal(t, "AS_00031001", c.stream.ID().String())
	assert.Equal(t, "AC_00031001", c.channel.ID().String())
	assert.Equal(t, "AT_00031001_01", c.track.ID().String())
	assert.Equal(t, "ATU_00000001", silent.ID().String())
	assert.Equal(t, "ATU_00000002", c.uid.ID().String())

	for i, b := range c.channel.BlockFormats() {
		assert.Equal(t, uint32(i+1), b.Counter())
		assert.Equal(t, c.channel.ID().Value, b.ID().Value)
	}
	assert.Same(t, c.channel, d.Lookup(c.channel.ID()))
	assert.Same(t, c.object, d.Lookup(c.object.ID()))
}

func TestReassignDirectChannelFormat(t *testing.T) {
	d := NewDocument()
	c := buildChain(t, d, 1)

	direct := NewChannelFormat("direct", TypeObjects)
	require.NoError(t, direct.AddBlockFormat(NewBlockFormat(0)))
	uid := NewTrackUID()
	require.NoError(t, uid.SetChannelFormat(direct))
	require.NoError(t, uid.SetPackFormat(c.pack))
	require.NoError(t, c.object.AddTrackUID(uid))

	Reassign(d)

	assert.Equal(t, "AC_00031001", c.channel.ID().String())
	assert.Equal(t, "AC_00031002", direct.ID().String())
	assert.Equal(t, "AB_00031002_00000001", direct.BlockFormats()[0].ID().String())
	assert.Equal(t, "ATU_00000002", uid.ID().String())
}

func TestReassignIsDeterministic(t *testing.T) {
	d := NewDocument()
	buildChain(t, d, 2)
	buildChain(t, d, 2)

	Reassign(d)
	first := make([]string, 0, d.Len())
	for _, e := range d.All() {
		first = append(first, e.ID().String())
	}
	Reassign(d)
	second := make([]string, 0, d.Len())
	for _, e := range d.All() {
		second = append(second, e.ID().String())
	}
	assert.Equal(t, first, second)
	assert.ElementsMatch(t, []string{"AS_00031001", "AS_00031002"}, idStrings(d.StreamFormats()))
}

func idStrings[T Element](elements []T) []string {
	out := make([]string, 0, len(elements))
	for _, e := range elements {
		out = append(out, e.ID().String())
	}
	return out
}
