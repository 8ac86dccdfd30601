package rcon

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gorcon/rcon"
)

var (
	// ErrNotConfigured is returned while no RCON password is set.
	ErrNotConfigured = errors.New("rcon: no password configured")

	// ErrInvalidUsername is returned for names a Minecraft server would
	// never accept, before anything is sent over the wire.
	ErrInvalidUsername = errors.New("rcon: invalid minecraft username")

	usernameRegexp = regexp.MustCompile(`^[A-Za-z0-9_]{3,16}$`)
)

// Whitelister adds players to a Minecraft server whitelist.
type Whitelister interface {
	WhitelistAdd(ctx context.Context, username string) (string, error)
}

// RejectedError carries the server's verbatim response when a whitelist
// command was delivered but not accepted.
type RejectedError struct {
	Response string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rcon: whitelist command rejected: %v", e.Response)
}

// Client issues whitelist commands over the Minecraft RCON protocol.
// Each command uses a fresh short-lived connection; the Minecraft server
// closes idle RCON sessions aggressively, so pooling buys nothing.
type Client struct {
	addr     string
	password string
	timeout  time.Duration
}

func NewClient(addr, password string) *Client {
	return &Client{
		addr:     addr,
		password: password,
		timeout:  10 * time.Second,
	}
}

// WhitelistAdd runs `whitelist add <username>` and returns the server
// response. Responses reporting the player as added or already whitelisted
// both count as success, matching vanilla server wording.
func (c *Client) WhitelistAdd(ctx context.Context, username string) (string, error) {
	if c.password == "" {
		return "", ErrNotConfigured
	}

	if err := ValidateUsername(username); err != nil {
		return "", err
	}

	conn, err := rcon.Dial(c.addr, c.password, rcon.SetDialTimeout(c.timeout), rcon.SetDeadline(c.timeout))
	if err != nil {
		return "", fmt.Errorf("rcon: dial %v: %w", c.addr, err)
	}
	defer conn.Close()

	type result struct {
		response string
		err      error
	}

	done := make(chan result, 1)
	go func() {
		response, err := conn.Execute("whitelist add " + username)
		done <- result{response, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("rcon: execute whitelist add: %w", res.err)
		}

		if !Accepted(res.response) {
			return res.response, &RejectedError{Response: res.response}
		}

		return res.response, nil
	}
}

// ValidateUsername checks the Minecraft username format: 3-16 characters,
// letters, digits and underscores only.
func ValidateUsername(username string) error {
	if !usernameRegexp.MatchString(username) {
		return ErrInvalidUsername
	}

	return nil
}

// Accepted reports whether a `whitelist add` response means the player is on
// the whitelist now.
func Accepted(response string) bool {
	return strings.Contains(response, "Added") || strings.Contains(response, "already whitelisted")
}
