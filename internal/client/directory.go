package client

import (
	"context"

	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/presence"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
)

// Register creates an account. It needs no token.
func (c *Client) Register(ctx context.Context, req *pairchatv1.RegisterRequest) (*conversation.Profile, error) {
	resp, err := c.Auth.Register(ctx, req)
	if err != nil {
		return nil, FromStatus(err)
	}
	return &resp.Profile, nil
}

// Login returns a token and the caller's profile.
func (c *Client) Login(ctx context.Context, email, password string) (string, *conversation.Profile, error) {
	resp, err := c.Auth.Login(ctx, &pairchatv1.LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", nil, FromStatus(err)
	}
	return resp.Token, &resp.Profile, nil
}

// Logout marks the caller disconnected.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Auth.Logout(ctx, &pairchatv1.LogoutRequest{})
	return FromStatus(err)
}

// Contacts lists everyone but the caller, optionally filtered by name.
func (c *Client) Contacts(ctx context.Context, query string) ([]pairchatv1.Contact, error) {
	resp, err := c.Directory.ListContacts(ctx, &pairchatv1.ListContactsRequest{Query: query})
	if err != nil {
		return nil, FromStatus(err)
	}
	return resp.Contacts, nil
}

// Profile reads a participant; an empty id reads the caller.
func (c *Client) Profile(ctx context.Context, participant string) (*pairchatv1.Contact, error) {
	resp, err := c.Directory.GetProfile(ctx, &pairchatv1.GetProfileRequest{ParticipantID: participant})
	if err != nil {
		return nil, FromStatus(err)
	}
	return &resp.Contact, nil
}

// SetProfileImage records url as the caller's picture.
func (c *Client) SetProfileImage(ctx context.Context, url string) (*conversation.Profile, error) {
	resp, err := c.Directory.SetProfileImage(ctx, &pairchatv1.SetProfileImageRequest{URL: url})
	if err != nil {
		return nil, FromStatus(err)
	}
	return &resp.Profile, nil
}

// Attach keeps the caller connected until ctx ends, passing every presence
// change to fn.
func (c *Client) Attach(ctx context.Context, fn func(presence.Status) error) error {
	stream, err := c.Directory.Attach(ctx, &pairchatv1.AttachRequest{})
	if err != nil {
		return FromStatus(err)
	}
	return drain(ctx, stream, func(e *pairchatv1.PresenceEvent) error {
		return fn(e.Status)
	})
}

// WatchPresence passes the current status of participants, then every
// change among them, to fn.
func (c *Client) WatchPresence(ctx context.Context, participants []string, fn func(presence.Status) error) error {
	stream, err := c.Directory.WatchPresence(ctx, &pairchatv1.WatchPresenceRequest{ParticipantIDs: participants})
	if err != nil {
		return FromStatus(err)
	}
	return drain(ctx, stream, func(e *pairchatv1.PresenceEvent) error {
		return fn(e.Status)
	})
}

// Status reads the daemon status.
func (c *Client) Status(ctx context.Context) (*pairchatv1.GetStatusResponse, error) {
	resp, err := c.Health.GetStatus(ctx, &pairchatv1.GetStatusRequest{})
	return resp, FromStatus(err)
}
