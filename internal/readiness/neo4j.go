package readiness

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// boltMagic is the Bolt protocol handshake preamble.
var boltMagic = []byte{0x60, 0x60, 0xB0, 0x17}

// boltVersions are the protocol versions proposed during the handshake, in
// preference order (5.0, 4.4, 4.3, 3.0).
var boltVersions = []uint32{
	0x00000005,
	0x00000404,
	0x00000304,
	0x00000003,
}

// Neo4jProber performs a Bolt version handshake against the server. Neo4j
// binds its Bolt port early in startup but rejects the handshake until the
// database is actually able to serve queries, which makes the handshake a
// usable query-capability signal.
type Neo4jProber struct {
	// Addr is the host:port of the Bolt endpoint.
	Addr string
	// DialTimeout bounds one connection attempt.
	DialTimeout time.Duration
}

// NewNeo4jProber constructs a prober for the given Bolt address.
func NewNeo4jProber(addr string) *Neo4jProber {
	return &Neo4jProber{Addr: addr, DialTimeout: 5 * time.Second}
}

// Probe dials the Bolt port and negotiates a protocol version. A zero version
// in the reply means the server refused every proposal.
func (p *Neo4jProber) Probe(ctx context.Context) error {
	dialer := net.Dialer{Timeout: p.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("dial bolt: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else if p.DialTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(p.DialTimeout))
	}

	var handshake bytes.Buffer
	handshake.Write(boltMagic)
	for _, v := range boltVersions {
		_ = binary.Write(&handshake, binary.BigEndian, v)
	}
	if _, err := conn.Write(handshake.Bytes()); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	var chosen uint32
	if err := binary.Read(io.LimitReader(conn, 4), binary.BigEndian, &chosen); err != nil {
		return fmt.Errorf("read handshake reply: %w", err)
	}
	if chosen == 0 {
		return fmt.Errorf("server refused all proposed bolt versions")
	}
	return nil
}
