package probe

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultSIPPort is used when the address has no port
const DefaultSIPPort = 5060

// SIPChecker sends a SIP OPTIONS request over UDP. Any SIP/2.0 response,
// whatever its status code, means the endpoint is alive.
type SIPChecker struct {
	// FromUser is the user part of the From header
	FromUser string
}

// NewSIPChecker creates a SIP checker
func NewSIPChecker() *SIPChecker {
	return &SIPChecker{FromUser: "nodeboard"}
}

// Check implements Checker
func (c *SIPChecker) Check(ctx context.Context, address string) error {
	target := sipTarget(address)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", target)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	local := conn.LocalAddr().(*net.UDPAddr)
	if _, err := conn.Write(c.optionsRequest(target, local)); err != nil {
		return fmt.Errorf("failed to send OPTIONS: %w", err)
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("no SIP response from %s: %w", target, err)
	}
	if !bytes.HasPrefix(buf[:n], []byte("SIP/2.0 ")) {
		return fmt.Errorf("unexpected reply from %s", target)
	}
	return nil
}

func (c *SIPChecker) optionsRequest(target string, local *net.UDPAddr) []byte {
	branch := "z9hG4bK" + randomToken()
	tag := randomToken()
	callID := randomToken() + "@" + local.IP.String()
	host, _, _ := net.SplitHostPort(target)

	var b strings.Builder
	fmt.Fprintf(&b, "OPTIONS sip:%s SIP/2.0\r\n", host)
	fmt.Fprintf(&b, "Via: SIP/2.0/UDP %s;branch=%s;rport\r\n", local.String(), branch)
	b.WriteString("Max-Forwards: 70\r\n")
	fmt.Fprintf(&b, "To: <sip:%s>\r\n", host)
	fmt.Fprintf(&b, "From: <sip:%s@%s>;tag=%s\r\n", c.FromUser, local.IP.String(), tag)
	fmt.Fprintf(&b, "Call-ID: %s\r\n", callID)
	b.WriteString("CSeq: 1 OPTIONS\r\n")
	fmt.Fprintf(&b, "Contact: <sip:%s@%s>\r\n", c.FromUser, local.String())
	b.WriteString("Accept: application/sdp\r\n")
	b.WriteString("User-Agent: nodeboard-probe\r\n")
	b.WriteString("Content-Length: 0\r\n\r\n")
	return []byte(b.String())
}

// sipTarget strips an optional sip: scheme and adds the default port
func sipTarget(address string) string {
	address = strings.TrimPrefix(address, "sip:")
	if _, _, err := net.SplitHostPort(address); err == nil {
		return address
	}
	return net.JoinHostPort(strings.Trim(address, "[]"), strconv.Itoa(DefaultSIPPort))
}

func randomToken() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
