package adm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDStringAndParse(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		want string
	}{
		{name: "programme", id: ID{Kind: KindProgramme, Value: 0x1001}, want: "APR_1001"},
		{name: "content", id: ID{Kind: KindContent, Value: 0x100A}, want: "ACO_100A"},
		{name: "object", id: ID{Kind: KindObject, Value: 0x1001}, want: "AO_1001"},
		{name: "pack format", id: ID{Kind: KindPackFormat, Type: TypeObjects, Value: 0x1001}, want: "AP_00031001"},
		{name: "channel format", id: ID{Kind: KindChannelFormat, Type: TypeDirectSpeakers, Value: 0x0001}, want: "AC_00010001"},
		{name: "stream format", id: ID{Kind: KindStreamFormat, Type: TypeHOA, Value: 0x1002}, want: "AS_00041002"},
		{name: "track format", id: ID{Kind: KindTrackFormat, Type: TypeObjects, Value: 0x1001, Counter: 1}, want: "AT_00031001_01"},
		{name: "track uid", id: ID{Kind: KindTrackUID, Value: 1}, want: "ATU_00000001"},
		{name: "block format", id: ID{Kind: KindBlockFormat, Type: TypeObjects, Value: 0x1001, Counter: 0x1F}, want: "AB_00031001_0000001F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.String())
			parsed, err := ParseID(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.id, parsed)
		})
	}
}

func TestParseIDRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"AO1001",
		"XX_1001",
		"AO_10011",
		"AP_0003100",
		"AT_00031001",
		"AP_00031001_01",
		"AB_00031001_GG",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseID(raw)
			assert.Error(t, err)
		})
	}
}

func TestCommonDefinitionRange(t *testing.T) {
	assert.True(t, ID{Kind: KindPackFormat, Type: TypeDirectSpeakers, Value: 0x0FFF}.IsCommonDefinition())
	assert.False(t, ID{Kind: KindPackFormat, Type: TypeDirectSpeakers, Value: 0x1000}.IsCommonDefinition())
	assert.False(t, ID{Kind: KindPackFormat}.IsCommonDefinition())
	assert.False(t, ID{Kind: KindObject, Value: 1}.IsCommonDefinition())
}

func TestAttributesDefaults(t *testing.T) {
	o := NewObject("o")
	attrs := o.Attributes()

	assert.Equal(t, 10, o.Importance())
	assert.True(t, attrs.IsDefault(AttrImportance))
	assert.False(t, attrs.Has(AttrImportance))

	o.SetImportance(4)
	assert.Equal(t, 4, o.Importance())
	assert.False(t, attrs.IsDefault(AttrImportance))

	attrs.Unset(AttrImportance)
	assert.Equal(t, 10, o.Importance())

	_, ok := o.Duration()
	assert.False(t, ok)
	assert.False(t, attrs.IsDefault(AttrDuration))
}

func TestLanguageCanonicalized(t *testing.T) {
	p := NewProgramme("p")
	require.NoError(t, p.SetLanguage("en-us"))
	assert.Equal(t, "en-US", p.Language())

	assert.Error(t, p.SetLanguage("not a tag"))
	assert.Equal(t, "en-US", p.Language())
}
