package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matheus3301/pairchat/internal/compose"
	"github.com/matheus3301/pairchat/internal/presence"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"github.com/matheus3301/pairchat/internal/session"
)

func cmdRegister(ctx context.Context, a *cli, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation (defaults to -password)")
	image := fs.String("image", "", "profile picture to upload after registering")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *confirm == "" {
		*confirm = *password
	}

	c, err := a.dial()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	profile, err := c.Register(ctx, &pairchatv1.RegisterRequest{
		FullName:        *name,
		Email:           *email,
		Phone:           *phone,
		Password:        *password,
		ConfirmPassword: *confirm,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (%s)\n", profile.FullName, profile.ID)

	if *image == "" {
		return nil
	}
	token, _, err := c.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := session.SaveToken(a.session, token); err != nil {
		return err
	}
	return uploadProfileImage(ctx, a, profile.ID, *image)
}

func uploadProfileImage(ctx context.Context, a *cli, uid, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	c, err := a.dialStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	url, err := c.Upload(ctx, compose.ProfilesBucket, compose.ProfileObjectName(uid, time.Now()), "image/jpeg", f, false)
	if err != nil {
		// The account exists; only the picture is missing.
		return fmt.Errorf("profile image not uploaded: %w", err)
	}
	if _, err := c.SetProfileImage(ctx, url); err != nil {
		return err
	}
	fmt.Printf("Profile image: %s\n", url)
	return nil
}

func cmdLogin(ctx context.Context, a *cli, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	password := fs.String("password", "", "password (read from stdin when empty)")
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		return errUsage
	}
	if *password == "" {
		p, err := readLine(os.Stdin)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		*password = p
	}

	c, err := a.dial()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	token, profile, err := c.Login(ctx, fs.Arg(0), *password)
	if err != nil {
		return err
	}
	if err := session.SaveToken(a.session, token); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s) in session %q\n", profile.FullName, profile.ID, a.session)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func cmdLogout(ctx context.Context, a *cli, _ []string) error {
	c, err := a.dialSession()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	if err := c.Logout(ctx); err != nil {
		return err
	}
	if err := session.ClearToken(a.session); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context, a *cli, _ []string) error {
	c, err := a.dialSession()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	me, err := c.Profile(ctx, "")
	if err != nil {
		return err
	}
	if a.jsonOut {
		outputJSON(me)
		return nil
	}
	fmt.Printf("ID:    %s\n", me.Profile.ID)
	fmt.Printf("Name:  %s\n", me.Profile.FullName)
	fmt.Printf("Email: %s\n", me.Profile.Email)
	fmt.Printf("Phone: %s\n", me.Profile.Phone)
	if me.Profile.ProfileImageURL != "" {
		fmt.Printf("Image: %s\n", me.Profile.ProfileImageURL)
	}
	return nil
}

func cmdContacts(ctx context.Context, a *cli, args []string) error {
	c, err := a.dialSession()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	contacts, err := c.Contacts(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if a.jsonOut {
		outputJSON(contacts)
		return nil
	}
	if len(contacts) == 0 {
		fmt.Println("No contacts found.")
		return nil
	}
	for _, ct := range contacts {
		fmt.Printf("%s %-24s %-36s %s\n", presenceMark(ct.Presence), ct.Profile.FullName, ct.Profile.ID, lastActive(ct.Presence))
	}
	return nil
}

func presenceMark(s presence.Status) string {
	if s.Online() {
		return "●"
	}
	return "○"
}

func lastActive(s presence.Status) string {
	switch {
	case s.Online():
		return "online"
	case s.LastActive.IsZero():
		return "never seen"
	default:
		return "last seen " + s.LastActive.Local().Format("2006-01-02 15:04")
	}
}

func cmdStatus(ctx context.Context, a *cli, _ []string) error {
	c, err := a.dial()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	resp, err := c.Status(ctx)
	if err != nil {
		return err
	}
	if a.jsonOut {
		outputJSON(resp)
		return nil
	}
	fmt.Printf("State:     %s\n", resp.State)
	if resp.StatusMessage != "" {
		fmt.Printf("Reason:    %s\n", resp.StatusMessage)
	}
	fmt.Printf("Uptime:    %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).String())
	fmt.Printf("Logs:      %d (%d messages)\n", resp.LogCount, resp.MessageCount)
	fmt.Printf("Profiles:  %d (%d connected)\n", resp.ProfileCount, resp.Connected)
	fmt.Printf("Storage:   %s\n", resp.StorageURL)
	return nil
}

func cmdShare(ctx context.Context, a *cli, _ []string) error {
	c, err := a.dialSession()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	me, err := c.Profile(ctx, "")
	if err != nil {
		return err
	}
	qr, err := renderQR(me.Profile.ID)
	if err != nil {
		return err
	}
	fmt.Print(qr)
	fmt.Printf("\n  %s (%s)\n", me.Profile.FullName, me.Profile.ID)
	return nil
}
