package controller

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sdn-te/internal/model"
)

type recorded struct {
	path  string
	entry map[string]interface{}
}

func newRyuServer(t *testing.T, status func(n int32) int) (*httptest.Server, *[]recorded) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls int32
		got   []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		var entry map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&entry))
		mu.Lock()
		got = append(got, recorded{path: r.URL.Path, entry: entry})
		mu.Unlock()
		w.WriteHeader(status(n))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func proto(v model.IPProto) *model.IPProto  { return &v }
func et(v model.EtherType) *model.EtherType { return &v }
func pt(v model.Port) *model.Port           { return &v }

func TestRyuPushEncodesFlowEntries(t *testing.T) {
	srv, got := newRyuServer(t, func(int32) int { return http.StatusOK })
	c := NewRyuREST(srv.URL+"/", 0, quietLogger())

	rule := model.Rule{
		SwitchID: "1",
		Match: model.MatchPattern{
			SrcMAC:  "00:00:00:00:00:01",
			DstIP:   "10.0.0.2",
			SrcIP:   "10.0.0.0/24",
			IPProto: proto(6),
			DstPort: pt(80),
		}.WithInPort(3),
		Action: model.ForwardTo(2),
	}
	drop := model.Rule{SwitchID: "0x1a", Match: model.MatchPattern{MACProto: et(0x0806)}, Action: model.Action{Type: model.Drop}}

	require.NoError(t, c.Push(context.Background(), []model.Rule{rule, drop}))
	require.Len(t, *got, 2)

	first := (*got)[0]
	assert.Equal(t, "/stats/flowentry/add", first.path)
	assert.Equal(t, float64(1), first.entry["dpid"])
	assert.Equal(t, float64(DefaultPriority), first.entry["priority"])
	assert.Equal(t, map[string]interface{}{
		"dl_src":   "00:00:00:00:00:01",
		"dl_type":  float64(0x0800),
		"nw_src":   "10.0.0.0/24",
		"nw_dst":   "10.0.0.2",
		"nw_proto": float64(6),
		"tp_dst":   float64(80),
		"in_port":  float64(3),
	}, first.entry["match"])
	assert.Equal(t, []interface{}{map[string]interface{}{"type": "OUTPUT", "port": float64(2)}}, first.entry["actions"])

	second := (*got)[1]
	assert.Equal(t, float64(26), second.entry["dpid"])
	assert.Equal(t, []interface{}{}, second.entry["actions"])
	assert.Equal(t, float64(0x0806), second.entry["match"].(map[string]interface{})["dl_type"])
}

func TestRyuWithdrawUsesStrictDelete(t *testing.T) {
	srv, got := newRyuServer(t, func(int32) int { return http.StatusOK })
	c := NewRyuREST(srv.URL, 7, quietLogger())

	rule := model.Rule{SwitchID: "2", Match: model.MatchPattern{DstIP: "2001:db8::1"}, Action: model.ForwardTo(1)}
	require.NoError(t, c.Withdraw(context.Background(), []model.Rule{rule}))

	require.Len(t, *got, 1)
	assert.Equal(t, "/stats/flowentry/delete_strict", (*got)[0].path)
	assert.Equal(t, float64(7), (*got)[0].entry["priority"])
	match := (*got)[0].entry["match"].(map[string]interface{})
	assert.Equal(t, "2001:db8::1", match["ipv6_dst"])
	assert.Equal(t, float64(0x86dd), match["dl_type"])
}

func TestRyuIPv6MatchUsesOpenFlow13Names(t *testing.T) {
	srv, got := newRyuServer(t, func(int32) int { return http.StatusOK })
	c := NewRyuREST(srv.URL, 0, quietLogger())

	rule := model.Rule{
		SwitchID: "1",
		Match: model.MatchPattern{
			SrcIP:   "2001:db8::/64",
			DstIP:   "2001:db8::2",
			IPProto: proto(model.IPProtoUDP),
			SrcPort: pt(5353),
			DstPort: pt(53),
		},
		Action: model.ForwardTo(4),
	}
	require.NoError(t, c.Push(context.Background(), []model.Rule{rule}))
	require.Len(t, *got, 1)
	assert.Equal(t, map[string]interface{}{
		"dl_type":  float64(0x86dd),
		"ipv6_src": "2001:db8::/64",
		"ipv6_dst": "2001:db8::2",
		"ip_proto": float64(17),
		"udp_src":  float64(5353),
		"udp_dst":  float64(53),
	}, (*got)[0].entry["match"])
}

func TestRyuRejectsInconsistentMatches(t *testing.T) {
	srv, got := newRyuServer(t, func(int32) int { return http.StatusOK })
	c := NewRyuREST(srv.URL, 0, quietLogger())

	for _, m := range []model.MatchPattern{
		{DstPort: pt(80)},
		{IPProto: proto(1), DstPort: pt(80)},
		{MACProto: et(model.EtherTypeIPv6), DstIP: "10.0.0.1"},
	} {
		err := c.Push(context.Background(), []model.Rule{{SwitchID: "1", Match: m, Action: model.ForwardTo(1)}})
		assert.Error(t, err, m.String())
	}
	assert.Empty(t, *got)
}

func TestRyuRetriesServerErrors(t *testing.T) {
	srv, got := newRyuServer(t, func(n int32) int {
		if n < 3 {
			return http.StatusServiceUnavailable
		}
		return http.StatusOK
	})
	c := NewRyuREST(srv.URL, 0, quietLogger())

	rule := model.Rule{SwitchID: "1", Match: model.MatchPattern{}, Action: model.ForwardTo(1)}
	require.NoError(t, c.Push(context.Background(), []model.Rule{rule}))
	assert.Len(t, *got, 3)
}

func TestRyuDoesNotRetryClientErrors(t *testing.T) {
	srv, got := newRyuServer(t, func(int32) int { return http.StatusNotFound })
	c := NewRyuREST(srv.URL, 0, quietLogger())

	rule := model.Rule{SwitchID: "9", Action: model.ForwardTo(1)}
	err := c.Push(context.Background(), []model.Rule{rule, rule})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Len(t, *got, 1)
}

func TestRyuRejectsUnencodableRules(t *testing.T) {
	c := NewRyuREST("http://127.0.0.1:1", 0, quietLogger())

	err := c.Push(context.Background(), []model.Rule{{SwitchID: "s1", Action: model.ForwardTo(1)}})
	assert.True(t, errors.Is(err, ErrNonNumericDPID))

	err = c.Push(context.Background(), []model.Rule{{SwitchID: "1", Action: model.Action{Type: model.Forward}}})
	assert.Error(t, err)

	err = c.Push(context.Background(), []model.Rule{{SwitchID: "1", Match: model.MatchPattern{SrcIP: "bogus"}, Action: model.ForwardTo(1)}})
	assert.Error(t, err)
}

func TestDryRunTracksInstalledRules(t *testing.T) {
	d := NewDryRun(quietLogger())
	m := model.MatchPattern{DstMAC: "00:00:00:00:00:02"}
	a := model.Rule{SwitchID: "1", Match: m, Action: model.ForwardTo(2)}
	b := model.Rule{SwitchID: "2", Match: m, Action: model.ForwardTo(1)}
	aMoved := model.Rule{SwitchID: "1", Match: m, Action: model.ForwardTo(4)}

	ctx := context.Background()
	require.NoError(t, d.Push(ctx, []model.Rule{a, b}))
	require.NoError(t, d.Push(ctx, []model.Rule{aMoved}))
	assert.Equal(t, []model.Rule{aMoved, b}, d.Installed())

	require.NoError(t, d.Withdraw(ctx, []model.Rule{a}))
	require.NoError(t, d.Push(ctx, []model.Rule{a}))
	assert.Equal(t, []model.Rule{b, a}, d.Installed())

	pushes, withdraws := d.Calls()
	assert.Equal(t, 3, pushes)
	assert.Equal(t, 1, withdraws)
}
