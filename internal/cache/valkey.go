package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ValkeyProvider implements Provider backed by a Valkey/Redis-compatible
// server. Connections are dialled per operation; the workload here is a
// handful of lookups per user turn, not a hot path worth pooling.
type ValkeyProvider struct {
	cfg ValkeyConfig
}

// ValkeyConfig holds connection parameters for the Valkey server.
type ValkeyConfig struct {
	Addr         string
	Username     string
	Password     string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TLS          bool
}

// NewValkeyProvider creates a Provider using the supplied configuration. It
// pings the target so misconfigured credentials fail at boot.
func NewValkeyProvider(cfg ValkeyConfig) (*ValkeyProvider, error) {
	if cfg.Addr == "" {
		return nil, errors.New("valkey addr is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 500 * time.Millisecond
	}

	provider := &ValkeyProvider{cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := provider.ping(ctx); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}
	return provider, nil
}

// Get fetches bytes by key, returning ErrCacheMiss when the key is absent.
func (p *ValkeyProvider) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := p.withConn(ctx, func(c *respConn) error {
		if err := c.writeCommand("GET", key); err != nil {
			return err
		}
		data, isNil, err := c.readBulk()
		if err != nil {
			return err
		}
		if isNil {
			return ErrCacheMiss
		}
		payload = data
		return nil
	})
	return payload, err
}

// Set stores bytes with the provided TTL.
func (p *ValkeyProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.withConn(ctx, func(c *respConn) error {
		args := []string{key, string(value)}
		if ttl > 0 {
			args = append(args, "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
		}
		if err := c.writeCommand("SET", args...); err != nil {
			return err
		}
		return c.expectOK()
	})
}

// Close is a no-op; connections are not pooled.
func (p *ValkeyProvider) Close() error { return nil }

func (p *ValkeyProvider) ping(ctx context.Context) error {
	return p.withConn(ctx, func(c *respConn) error {
		if err := c.writeCommand("PING"); err != nil {
			return err
		}
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if line != "+PONG" {
			return fmt.Errorf("unexpected ping reply %q", line)
		}
		return nil
	})
}

func (p *ValkeyProvider) withConn(ctx context.Context, fn func(*respConn) error) error {
	dialer := net.Dialer{Timeout: p.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.cfg.Addr)
	if err != nil {
		return err
	}
	if p.cfg.TLS {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: hostOnly(p.cfg.Addr)})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return err
		}
		conn = tlsConn
	}
	defer conn.Close()

	rc := &respConn{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		readTimeout:  p.cfg.ReadTimeout,
		writeTimeout: p.cfg.WriteTimeout,
	}

	if p.cfg.Password != "" {
		args := []string{p.cfg.Password}
		if p.cfg.Username != "" {
			args = []string{p.cfg.Username, p.cfg.Password}
		}
		if err := rc.writeCommand("AUTH", args...); err != nil {
			return err
		}
		if err := rc.expectOK(); err != nil {
			return fmt.Errorf("valkey auth: %w", err)
		}
	}

	return fn(rc)
}

type respConn struct {
	conn         net.Conn
	reader       *bufio.Reader
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *respConn) writeCommand(name string, args ...string) error {
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\r\n", len(args)+1)
	fmt.Fprintf(&b, "$%d\r\n%s\r\n", len(name), name)
	for _, arg := range args {
		fmt.Fprintf(&b, "$%d\r\n%s\r\n", len(arg), arg)
	}
	_, err := io.WriteString(c.conn, b.String())
	return err
}

func (c *respConn) readLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *respConn) expectOK() error {
	line, err := c.readLine()
	if err != nil {
		return err
	}
	if strings.HasPrefix(line, "-") {
		return fmt.Errorf("valkey error: %s", line[1:])
	}
	if line != "+OK" {
		return fmt.Errorf("unexpected reply %q", line)
	}
	return nil
}

// readBulk reads a bulk string reply. The second return is true for the nil
// reply ($-1).
func (c *respConn) readBulk() ([]byte, bool, error) {
	line, err := c.readLine()
	if err != nil {
		return nil, false, err
	}
	if strings.HasPrefix(line, "-") {
		return nil, false, fmt.Errorf("valkey error: %s", line[1:])
	}
	if !strings.HasPrefix(line, "$") {
		return nil, false, fmt.Errorf("unexpected reply %q", line)
	}
	size, err := strconv.Atoi(line[1:])
	if err != nil {
		return nil, false, fmt.Errorf("parse bulk length: %w", err)
	}
	if size < 0 {
		return nil, true, nil
	}
	buf := make([]byte, size+2)
	if _, err := io.ReadFull(c.reader, buf); err != nil {
		return nil, false, err
	}
	return buf[:size], false, nil
}

func hostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
