package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// protocolICMP is the IANA protocol number for ICMP over IPv4
const protocolICMP = 1

var pingSeq uint32

// PingChecker sends one ICMP echo request and waits for the reply.
//
// It prefers an unprivileged datagram socket ("udp4"), which Linux allows
// when net.ipv4.ping_group_range covers the process group, and falls back
// to a raw socket.
type PingChecker struct {
	ID int
}

// NewPingChecker creates a ping checker using the process id as echo id
func NewPingChecker() *PingChecker {
	return &PingChecker{ID: os.Getpid() & 0xffff}
}

// Check implements Checker
func (c *PingChecker) Check(ctx context.Context, address string) error {
	ip, err := resolveIPv4(ctx, address)
	if err != nil {
		return err
	}

	conn, dst, err := listen(ip)
	if err != nil {
		return err
	}
	defer conn.Close()

	seq := int(atomic.AddUint32(&pingSeq, 1) & 0xffff)
	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   c.ID,
			Seq:  seq,
			Data: []byte("nodeboard"),
		},
	}
	payload, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("failed to build echo request: %w", err)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	if _, err := conn.WriteTo(payload, dst); err != nil {
		return fmt.Errorf("failed to send echo request: %w", err)
	}

	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			return fmt.Errorf("no echo reply from %s: %w", ip, err)
		}
		reply, err := icmp.ParseMessage(protocolICMP, buf[:n])
		if err != nil {
			continue
		}
		if reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		// Datagram sockets rewrite the echo id, so only the sequence is compared
		if echo, ok := reply.Body.(*icmp.Echo); ok && echo.Seq == seq {
			return nil
		}
	}
}

// listen opens an ICMP socket and returns the destination address in the
// form that socket expects.
func listen(ip net.IP) (*icmp.PacketConn, net.Addr, error) {
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err == nil {
		return conn, &net.UDPAddr{IP: ip}, nil
	}
	raw, rawErr := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if rawErr == nil {
		return raw, &net.IPAddr{IP: ip}, nil
	}
	return nil, nil, fmt.Errorf("cannot open ICMP socket: %w", errors.Join(err, rawErr))
}

func resolveIPv4(ctx context.Context, address string) (net.IP, error) {
	if ip := net.ParseIP(address); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("not an IPv4 address: %s", address)
	}
	addrs, err := net.DefaultResolver.LookupIP(ctx, "ip4", address)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no IPv4 address for %s", address)
	}
	return addrs[0], nil
}
