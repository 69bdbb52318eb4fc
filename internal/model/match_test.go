package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPatternReverseSwapsDirectionAndDropsInPort(t *testing.T) {
	fwd := MatchPattern{SrcMAC: "00:00:00:00:00:01", DstMAC: "00:00:00:00:00:02"}
	fwd = fwd.WithInPort(3)

	rev := fwd.Reverse()
	assert.Equal(t, MatchPattern{SrcMAC: "00:00:00:00:00:02", DstMAC: "00:00:00:00:00:01"}, rev)
	assert.Nil(t, rev.InPort)
}

func TestMatchPatternReverseKeepsProtocols(t *testing.T) {
	raw := `{"src_ip":"10.0.0.1","dst_ip":"10.0.0.2/32","mac_proto":"ipv4","ip_proto":"tcp",
		"src_port":40000,"dst_port":"http"}`
	var fwd MatchPattern
	require.NoError(t, json.Unmarshal([]byte(raw), &fwd))

	rev := fwd.Reverse()
	assert.Equal(t, "10.0.0.2/32", rev.SrcIP)
	assert.Equal(t, "10.0.0.1", rev.DstIP)
	require.NotNil(t, rev.SrcPort)
	require.NotNil(t, rev.DstPort)
	assert.Equal(t, Port(80), *rev.SrcPort)
	assert.Equal(t, Port(40000), *rev.DstPort)
	assert.Equal(t, EtherType(0x0800), *rev.MACProto)
	assert.Equal(t, IPProto(6), *rev.IPProto)
}

func TestMatchPatternUnmarshalNullsAreWildcards(t *testing.T) {
	raw := `{"src_mac":null,"dst_mac":"00:00:00:00:00:02","mac_proto":null,"ip_proto":null,
		"src_ip":null,"dst_ip":null,"src_port":null,"dst_port":null,"in_port":null}`
	var m MatchPattern
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	assert.Equal(t, MatchPattern{DstMAC: "00:00:00:00:00:02"}, m)
	assert.Equal(t, "dst_mac=00:00:00:00:00:02", m.String())
	assert.Equal(t, "*", MatchPattern{}.String())
}

func TestMatchPatternUnmarshalRejectsUnknownNames(t *testing.T) {
	tests := []string{
		`{"mac_proto":"bogus"}`,
		`{"ip_proto":300}`,
		`{"dst_port":"not-a-service"}`,
		`{"src_port":-1}`,
	}
	for _, raw := range tests {
		var m MatchPattern
		assert.Error(t, json.Unmarshal([]byte(raw), &m), raw)
	}
}

func TestMatchPatternNumericStrings(t *testing.T) {
	var m MatchPattern
	require.NoError(t, json.Unmarshal([]byte(`{"mac_proto":"0x0806","ip_proto":"17"}`), &m))
	assert.Equal(t, EtherType(0x0806), *m.MACProto)
	assert.Equal(t, IPProto(17), *m.IPProto)
}

func TestMatchPatternValidate(t *testing.T) {
	assert.NoError(t, MatchPattern{SrcMAC: "00:00:00:00:00:01", DstIP: "10.0.0.0/8"}.Validate())

	err := MatchPattern{SrcMAC: "nope"}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	err = MatchPattern{DstIP: "300.1.1.1"}.Validate()
	assert.True(t, errors.Is(err, ErrValidation))

	tcp, icmp := IPProtoTCP, IPProto(1)
	arp, ipv6 := EtherType(0x0806), EtherTypeIPv6
	http := Port(80)
	assert.NoError(t, MatchPattern{IPProto: &tcp, DstPort: &http}.Validate())
	assert.NoError(t, MatchPattern{MACProto: &ipv6, DstIP: "2001:db8::1", IPProto: &tcp, SrcPort: &http}.Validate())

	invalid := map[string]MatchPattern{
		"port without ip_proto":     {DstPort: &http},
		"src port without ip_proto": {SrcMAC: "00:00:00:00:00:01", SrcPort: &http},
		"port with portless proto":  {IPProto: &icmp, DstPort: &http},
		"ip selector with arp":      {MACProto: &arp, DstIP: "10.0.0.1"},
		"ip_proto with arp":         {MACProto: &arp, IPProto: &tcp},
		"ipv4 address with ipv6":    {MACProto: &ipv6, SrcIP: "10.0.0.1"},
		"mixed address families":    {SrcIP: "10.0.0.1", DstIP: "2001:db8::1"},
	}
	for name, m := range invalid {
		err := m.Validate()
		assert.True(t, errors.Is(err, ErrValidation), "%s: got %v", name, err)
	}
}

func TestActionValidate(t *testing.T) {
	assert.NoError(t, ForwardTo(2).Validate())
	assert.NoError(t, Action{Type: Drop}.Validate())
	assert.Error(t, Action{Type: Forward}.Validate())
	assert.Error(t, Action{Type: "MIRROR"}.Validate())
}

func TestRuleKeyDistinguishesContent(t *testing.T) {
	a := Rule{SwitchID: "1", Match: MatchPattern{DstMAC: "00:00:00:00:00:02"}, Action: ForwardTo(2)}
	b := a
	b.Action = ForwardTo(3)
	assert.NotEqual(t, a.Key(), b.Key())

	c := Rule{SwitchID: "1", Match: MatchPattern{DstMAC: "00:00:00:00:00:02"}, Action: ForwardTo(2)}
	assert.Equal(t, a.Key(), c.Key())

	// Same flow-table entry regardless of action.
	assert.Equal(t, a.FlowKey(), b.FlowKey())
	c.SwitchID = "2"
	assert.NotEqual(t, a.FlowKey(), c.FlowKey())
}

func TestRuleKeysIgnoreSelectorSpelling(t *testing.T) {
	a := Rule{
		SwitchID: "1",
		Match:    MatchPattern{SrcMAC: "AA:BB:CC:00:00:01", DstMAC: "00:00:00:00:00:02", DstIP: "10.0.0.2/32"},
		Action:   ForwardTo(2),
	}
	b := Rule{
		SwitchID: "1",
		Match:    MatchPattern{SrcMAC: "aa:bb:cc:00:00:01", DstMAC: "00-00-00-00-00-02", DstIP: "10.0.0.2"},
		Action:   ForwardTo(2),
	}
	assert.Equal(t, a.FlowKey(), b.FlowKey())
	assert.Equal(t, a.Key(), b.Key())

	// The pattern itself keeps its spelling.
	assert.Contains(t, a.Match.String(), "AA:BB:CC:00:00:01")

	b.Match.DstIP = "10.0.0.0/24"
	assert.NotEqual(t, a.FlowKey(), b.FlowKey())
}
