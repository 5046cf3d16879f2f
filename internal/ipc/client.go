package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/capsulewm/internal/registry"
	"github.com/1broseidon/capsulewm/internal/runtimepath"
	"github.com/1broseidon/capsulewm/internal/wm"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the socket at path
func NewClientAt(path string) *Client {
	return &Client{
		socketPath: path,
		timeout:    10 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload interface{}, out interface{}) error {
	req := &Request{Command: command}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = data
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows returns every window the daemon manages
func (c *Client) ListWindows() ([]wm.WindowState, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// CreateWindow creates a window and returns its id
func (c *Client) CreateWindow(cfg wm.Config) (registry.ID, error) {
	var data CreateWindowData
	if err := c.call(CommandCreateWindow, cfg, &data); err != nil {
		return registry.ID{}, err
	}
	return data.ID, nil
}

// CloseWindow closes a window
func (c *Client) CloseWindow(id registry.ID) error {
	return c.call(CommandCloseWindow, WindowPayload{ID: id}, nil)
}

// FocusWindow focuses a window
func (c *Client) FocusWindow(id registry.ID) error {
	return c.call(CommandFocusWindow, WindowPayload{ID: id}, nil)
}

// MinimizeWindow minimizes a window
func (c *Client) MinimizeWindow(id registry.ID) error {
	return c.call(CommandMinimizeWindow, WindowPayload{ID: id}, nil)
}

// RestoreWindow restores a minimized, capsule or maximized window
func (c *Client) RestoreWindow(id registry.ID) error {
	return c.call(CommandRestoreWindow, WindowPayload{ID: id}, nil)
}

// MaximizeWindow toggles maximize
func (c *Client) MaximizeWindow(id registry.ID) error {
	return c.call(CommandMaximizeWindow, WindowPayload{ID: id}, nil)
}

// ToggleCapsule switches capsule mode
func (c *Client) ToggleCapsule(id registry.ID) error {
	return c.call(CommandToggleCapsule, WindowPayload{ID: id}, nil)
}

// SnapWindow snaps a window into a named zone
func (c *Client) SnapWindow(id registry.ID, zone string) error {
	return c.call(CommandSnapWindow, SnapWindowPayload{ID: id, Zone: zone}, nil)
}

// SetArea reserves pixels on each viewport side
func (c *Client) SetArea(insets wm.Insets) error {
	return c.call(CommandSetArea, insets, nil)
}

// CaptureWindow runs a manual capture and returns the encoded image
func (c *Client) CaptureWindow(id registry.ID) (*CaptureData, error) {
	var data CaptureData
	if err := c.call(CommandCaptureWindow, WindowPayload{ID: id}, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
