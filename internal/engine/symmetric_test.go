package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdn-te/internal/model"
)

func TestExpandSymmetric(t *testing.T) {
	in := uint32(4)
	fwd := model.MatchPattern{SrcMAC: "00:00:00:00:00:01", DstMAC: "00:00:00:00:00:02", InPort: &in}
	wantPattern := model.MatchPattern{SrcMAC: "00:00:00:00:00:02", DstMAC: "00:00:00:00:00:01"}

	t.Run("pass-by reverses the forward path", func(t *testing.T) {
		obj := model.PassByPathObjective{MatchPattern: fwd, Switches: []model.SwitchID{"1", "2", "3"}, Symmetric: true}
		pattern, rev, err := expandSymmetric(obj, obj.Path())
		require.NoError(t, err)
		assert.Equal(t, wantPattern, pattern)
		assert.Equal(t, []string{"3", "2", "1"}, rev.(model.PassByPathObjective).Path())
	})

	t.Run("computed kinds swap endpoints", func(t *testing.T) {
		obj := model.MinLatencyObjective{MatchPattern: fwd, SrcSwitch: "1", DstSwitch: "3", Symmetric: true}
		pattern, rev, err := expandSymmetric(obj, []string{"1", "2", "3"})
		require.NoError(t, err)
		assert.Nil(t, pattern.InPort)
		assert.Equal(t, model.MinLatencyObjective{MatchPattern: wantPattern, SrcSwitch: "3", DstSwitch: "1"}, rev)

		wide := model.MaxBandwidthObjective{MatchPattern: fwd, SrcSwitch: "1", DstSwitch: "3", Symmetric: true}
		_, rev, err = expandSymmetric(wide, nil)
		require.NoError(t, err)
		assert.Equal(t, model.ModeMaxBandwidth, rev.Mode())
		assert.False(t, rev.IsSymmetric())
	})
}

func TestStaleRules(t *testing.T) {
	m := model.MatchPattern{DstMAC: "00:00:00:00:00:02"}
	a := model.Rule{SwitchID: "1", Match: m, Action: model.ForwardTo(1)}
	b := model.Rule{SwitchID: "2", Match: m, Action: model.ForwardTo(1)}
	aMoved := model.Rule{SwitchID: "1", Match: m, Action: model.ForwardTo(7)}

	assert.Equal(t, []model.Rule{b}, staleRules([]model.Rule{a, b}, []model.Rule{aMoved}))
	assert.Nil(t, staleRules(nil, []model.Rule{a}))
	assert.Nil(t, staleRules([]model.Rule{a}, []model.Rule{a}))

	// The switch stores one entry for both spellings of a MAC.
	upper := model.Rule{SwitchID: "1", Match: model.MatchPattern{DstMAC: "AA:00:00:00:00:02"}, Action: model.ForwardTo(1)}
	lower := model.Rule{SwitchID: "1", Match: model.MatchPattern{DstMAC: "aa:00:00:00:00:02"}, Action: model.ForwardTo(1)}
	assert.Nil(t, staleRules([]model.Rule{upper}, []model.Rule{lower}))
}

func TestOverwrittenAndUnionRules(t *testing.T) {
	m := model.MatchPattern{DstMAC: "00:00:00:00:00:02"}
	a := model.Rule{SwitchID: "1", Match: m, Action: model.ForwardTo(1)}
	aMoved := model.Rule{SwitchID: "1", Match: m, Action: model.ForwardTo(7)}
	b := model.Rule{SwitchID: "2", Match: m, Action: model.ForwardTo(1)}

	assert.Equal(t, []model.Rule{a}, overwrittenRules([]model.Rule{a, b}, []model.Rule{aMoved, b}))
	assert.Nil(t, overwrittenRules([]model.Rule{a}, []model.Rule{a}))

	assert.Equal(t, []model.Rule{a, b}, unionRules([]model.Rule{a}, []model.Rule{aMoved, b}))
	assert.Equal(t, []model.Rule{a}, unionRules([]model.Rule{a}, nil))
}
