package dockerx

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/jefflester/minitrino-sub001/internal/model"
)

// defaultPingTimeout bounds the daemon liveness probe. Five seconds is
// generous enough for Docker Desktop on macOS, which responds slower than
// native Linux daemons.
const defaultPingTimeout = 5 * time.Second

// Client wraps the runtime SDK client. It is wrapped rather than embedded
// to control the exposed surface and to centralize socket detection.
type Client struct {
	inner *client.Client
}

// NewClient creates a runtime client. A non-empty host (typically the
// resolved DOCKER_HOST value) is used as-is; otherwise the platform's
// default socket locations are probed.
func NewClient(host string) (*Client, error) {
	if host == "" {
		detected, err := detectRuntimeHost()
		if err != nil {
			return nil, model.WrapSystemError(err, "container runtime socket not found")
		}
		host = detected
	}

	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapSystemError(err, "failed to create runtime client for host %q", host)
	}

	return &Client{inner: c}, nil
}

// detectRuntimeHost probes known socket paths for the current platform and
// returns the connection string for the first that exists. Existence is
// checked rather than connectivity; Ping verifies the daemon responds.
func detectRuntimeHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Docker Desktop symlinks /var/run/docker.sock; newer versions
		// place the socket under the user's home instead.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{
				"/var/run/docker.sock",
			})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// Named pipes don't support os.Stat; probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("runtime named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the host URI for the first socket path that
// exists, checked in preference order.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("runtime socket not found at any of: %v — is the container runtime running?", paths)
}

// Ping verifies the runtime daemon is reachable within defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapSystemError(err, "container runtime is not responding — is it running?")
	}
	return nil
}

// Close releases the client's resources. Safe to call multiple times.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the raw SDK client for operations not wrapped here.
// Callers should prefer Client methods when one exists.
func (c *Client) Inner() *client.Client {
	return c.inner
}
