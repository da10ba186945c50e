// Package ids defines the typed identifiers used on the wire: node ids
// (n<decimal>), client ids (c<decimal>), message ids (plain numbers) and
// the peer id union that a message's src/dest field actually carries.
package ids

import (
	"fmt"
	"strconv"
	"strings"
)

// MessageID correlates a request to its reply. It is a plain JSON number
// on the wire, so no custom (un)marshaling is needed.
type MessageID = uint64

// NodeID is this process's or a peer's node identifier, serialized as
// "n<decimal>".
type NodeID uint64

func (n NodeID) String() string {
	return "n" + strconv.FormatUint(uint64(n), 10)
}

func (n NodeID) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NodeID) UnmarshalText(text []byte) error {
	s := string(text)
	rest, ok := strings.CutPrefix(s, "n")
	if !ok {
		return fmt.Errorf("ids: NodeID %q must start with 'n'", s)
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return fmt.Errorf("ids: NodeID %q: %w", s, err)
	}
	*n = NodeID(v)
	return nil
}

// ClientID is a Maelstrom client's identifier, serialized as "c<decimal>".
type ClientID uint64

func (c ClientID) String() string {
	return "c" + strconv.FormatUint(uint64(c), 10)
}

func (c ClientID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClientID) UnmarshalText(text []byte) error {
	s := string(text)
	rest, ok := strings.CutPrefix(s, "c")
	if !ok {
		return fmt.Errorf("ids: ClientID %q must start with 'c'", s)
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return fmt.Errorf("ids: ClientID %q: %w", s, err)
	}
	*c = ClientID(v)
	return nil
}

// PeerID is the src/dest field of an envelope. Most peers are nodes or
// clients following the n<decimal>/c<decimal> convention, but the
// Maelstrom harness also addresses well-known services (the
// sequentially-consistent store, "seq-kv") by a bare name that matches
// neither pattern. PeerID stays a thin, permissive wrapper around the
// raw string for that reason; AsNode/AsClient recover the typed form
// when the caller needs to discriminate.
type PeerID struct {
	raw string
}

// NodePeer wraps a NodeID as a PeerID.
func NodePeer(id NodeID) PeerID { return PeerID{raw: id.String()} }

// ClientPeer wraps a ClientID as a PeerID.
func ClientPeer(id ClientID) PeerID { return PeerID{raw: id.String()} }

// NamedPeer wraps an opaque service name (e.g. "seq-kv") as a PeerID.
func NamedPeer(name string) PeerID { return PeerID{raw: name} }

func (p PeerID) String() string { return p.raw }

func (p PeerID) IsZero() bool { return p.raw == "" }

// AsNode reports whether p follows the node naming convention and
// returns its NodeID if so.
func (p PeerID) AsNode() (NodeID, bool) {
	rest, ok := strings.CutPrefix(p.raw, "n")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return NodeID(v), true
}

// AsClient reports whether p follows the client naming convention and
// returns its ClientID if so.
func (p PeerID) AsClient() (ClientID, bool) {
	rest, ok := strings.CutPrefix(p.raw, "c")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return ClientID(v), true
}

func (p PeerID) Equal(other PeerID) bool { return p.raw == other.raw }

func (p PeerID) MarshalText() ([]byte, error) {
	return []byte(p.raw), nil
}

func (p *PeerID) UnmarshalText(text []byte) error {
	p.raw = string(text)
	return nil
}
