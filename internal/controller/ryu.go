// Package controller implements the rule sinks the engine pushes to: a Ryu
// ofctl_rest client and a dry-run logger.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"sdn-te/internal/model"
	"sdn-te/internal/utils"
)

const (
	// DefaultPriority is the flow priority used when none is configured.
	DefaultPriority = 2

	addPath    = "/stats/flowentry/add"
	deletePath = "/stats/flowentry/delete_strict"
)

// ErrNonNumericDPID is returned for rules whose switch ID is not a datapath ID.
var ErrNonNumericDPID = errors.New("controller: switch id is not a numeric datapath id")

// RyuREST installs rules through the Ryu ofctl_rest application.
type RyuREST struct {
	BaseURL  string
	Priority int
	Client   *http.Client
	Logger   *slog.Logger
	// MaxTries bounds attempts per request; transport errors and 5xx
	// responses are retried with exponential backoff.
	MaxTries uint
}

// NewRyuREST returns a client for the ofctl_rest API at baseURL.
func NewRyuREST(baseURL string, priority int, logger *slog.Logger) *RyuREST {
	if priority <= 0 {
		priority = DefaultPriority
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RyuREST{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Priority: priority,
		Client:   &http.Client{Timeout: 10 * time.Second},
		Logger:   logger,
		MaxTries: 3,
	}
}

// Push adds every rule. It stops at the first rule that cannot be installed.
func (c *RyuREST) Push(ctx context.Context, rules []model.Rule) error {
	for i, r := range rules {
		if err := c.send(ctx, addPath, r); err != nil {
			return fmt.Errorf("rule %d (%s): %w", i, r, err)
		}
	}
	c.Logger.Debug("Rules pushed", "controller", c.BaseURL, "rules", len(rules))
	return nil
}

// Withdraw strictly deletes every rule, matching on match fields and priority.
func (c *RyuREST) Withdraw(ctx context.Context, rules []model.Rule) error {
	for i, r := range rules {
		if err := c.send(ctx, deletePath, r); err != nil {
			return fmt.Errorf("rule %d (%s): %w", i, r, err)
		}
	}
	c.Logger.Debug("Rules withdrawn", "controller", c.BaseURL, "rules", len(rules))
	return nil
}

func (c *RyuREST) send(ctx context.Context, path string, r model.Rule) error {
	entry, err := c.flowEntry(r)
	if err != nil {
		return err
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	op := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client().Do(req)
		if err != nil {
			return struct{}{}, err
		}
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		switch {
		case resp.StatusCode < 300:
			return struct{}{}, nil
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg))
		default:
			return struct{}{}, backoff.Permanent(fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(msg)))
		}
	}

	tries := c.MaxTries
	if tries == 0 {
		tries = 1
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	_, err = backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	return err
}

func (c *RyuREST) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// flowEntry is the ofctl_rest request body.
type flowEntry struct {
	DPID     uint64                 `json:"dpid"`
	Priority int                    `json:"priority"`
	Match    map[string]interface{} `json:"match"`
	Actions  []flowAction           `json:"actions"`
}

type flowAction struct {
	Type string `json:"type"`
	Port uint32 `json:"port"`
}

func (c *RyuREST) flowEntry(r model.Rule) (flowEntry, error) {
	dpid, err := parseDPID(r.SwitchID)
	if err != nil {
		return flowEntry{}, fmt.Errorf("%w: %q", ErrNonNumericDPID, r.SwitchID)
	}
	match, err := ofctlMatch(r.Match)
	if err != nil {
		return flowEntry{}, err
	}

	priority := c.Priority
	if priority <= 0 {
		priority = DefaultPriority
	}
	entry := flowEntry{DPID: dpid, Priority: priority, Match: match, Actions: []flowAction{}}
	switch r.Action.Type {
	case model.Forward:
		if r.Action.OutPort == nil {
			return flowEntry{}, fmt.Errorf("forward action without output port")
		}
		entry.Actions = append(entry.Actions, flowAction{Type: "OUTPUT", Port: *r.Action.OutPort})
	case model.Drop:
		// An empty action list drops.
	default:
		return flowEntry{}, fmt.Errorf("unsupported action %q", r.Action.Type)
	}
	return entry, nil
}

// parseDPID accepts decimal or 0x-prefixed hexadecimal datapath IDs.
func parseDPID(id string) (uint64, error) {
	id = strings.TrimSpace(id)
	if hex, ok := strings.CutPrefix(strings.ToLower(id), "0x"); ok {
		return strconv.ParseUint(hex, 16, 64)
	}
	return strconv.ParseUint(id, 10, 64)
}

// ofctlMatch converts a pattern to ofctl_rest match fields. Network-layer
// fields need dl_type, which is derived from the addresses when unset.
// IPv4 patterns use the OpenFlow 1.0 names every ofctl version accepts; IPv6
// only exists from OpenFlow 1.3 on, so IPv6 patterns use the 1.3 names
// throughout.
func ofctlMatch(m model.MatchPattern) (map[string]interface{}, error) {
	match := make(map[string]interface{})
	if m.SrcMAC != "" {
		match["dl_src"] = m.SrcMAC
	}
	if m.DstMAC != "" {
		match["dl_dst"] = m.DstMAC
	}
	if m.InPort != nil {
		match["in_port"] = *m.InPort
	}

	prefixes := make(map[string]*net.IPNet)
	v6 := m.MACProto != nil && *m.MACProto == model.EtherTypeIPv6
	for key, addr := range map[string]string{"src": m.SrcIP, "dst": m.DstIP} {
		if addr == "" {
			continue
		}
		prefix, err := utils.ParsePrefix(addr)
		if err != nil {
			return nil, fmt.Errorf("%s_ip: %w", key, err)
		}
		if prefix.IP.To4() == nil {
			v6 = true
		}
		prefixes[key] = prefix
	}
	for key, prefix := range prefixes {
		if v6 != (prefix.IP.To4() == nil) {
			return nil, fmt.Errorf("%s_ip %s: address family does not match the pattern", key, prefix)
		}
		if v6 {
			match["ipv6_"+key] = utils.PrefixString(prefix)
		} else {
			match["nw_"+key] = utils.PrefixString(prefix)
		}
	}

	netLayer := len(prefixes) > 0 || m.IPProto != nil
	switch {
	case m.MACProto != nil:
		match["dl_type"] = uint16(*m.MACProto)
	case v6:
		match["dl_type"] = uint16(model.EtherTypeIPv6)
	case netLayer:
		match["dl_type"] = uint16(model.EtherTypeIPv4)
	}

	if m.IPProto != nil {
		if v6 {
			match["ip_proto"] = uint8(*m.IPProto)
		} else {
			match["nw_proto"] = uint8(*m.IPProto)
		}
	}
	if m.SrcPort == nil && m.DstPort == nil {
		return match, nil
	}
	if m.IPProto == nil || !model.HasTransportPorts(*m.IPProto) {
		return nil, fmt.Errorf("transport ports without a TCP, UDP or SCTP ip_proto")
	}
	portField := "tp"
	if v6 {
		switch *m.IPProto {
		case model.IPProtoTCP:
			portField = "tcp"
		case model.IPProtoUDP:
			portField = "udp"
		case model.IPProtoSCTP:
			portField = "sctp"
		}
	}
	if m.SrcPort != nil {
		match[portField+"_src"] = uint16(*m.SrcPort)
	}
	if m.DstPort != nil {
		match[portField+"_dst"] = uint16(*m.DstPort)
	}
	return match, nil
}
