package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/matheus3301/pairchat/internal/chat"
	"github.com/matheus3301/pairchat/internal/client"
	"github.com/matheus3301/pairchat/internal/compose"
	"github.com/matheus3301/pairchat/internal/conversation"
	"github.com/matheus3301/pairchat/internal/device"
	"github.com/matheus3301/pairchat/internal/outbox"
	"github.com/matheus3301/pairchat/internal/presence"
	"github.com/matheus3301/pairchat/internal/thread"
)

const threadWidth = 72

// peerSession is a logged-in connection bound to one conversation.
type peerSession struct {
	c      *client.Client
	self   conversation.Profile
	peer   conversation.Profile
	id     conversation.ID
	writer *outbox.TypingWriter
	typing *chat.Typing
	chat   *chat.Adapter
}

func openPeer(ctx context.Context, a *cli, peerID string, storage bool) (*peerSession, error) {
	var (
		c   *client.Client
		err error
	)
	if storage {
		c, err = a.dialStorage(ctx)
	} else {
		c, err = a.dialSession()
	}
	if err != nil {
		return nil, err
	}
	me, err := c.Profile(ctx, "")
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	peer, err := c.Profile(ctx, peerID)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("peer %s: %w", peerID, err)
	}

	writer := outbox.NewTypingWriter(c, a.logger)
	writer.Start(ctx)
	return &peerSession{
		c:      c,
		self:   me.Profile,
		peer:   peer.Profile,
		id:     conversation.NewID(me.Profile.ID, peer.Profile.ID),
		writer: writer,
		typing: chat.NewTyping(c, writer, a.logger),
		chat:   chat.NewAdapter(c, a.logger),
	}, nil
}

// Close flushes queued typing flags and closes the connection.
func (p *peerSession) Close() {
	p.writer.Stop()
	_ = p.c.Close()
}

func (p *peerSession) composer(a *cli, deps compose.Deps) *compose.Composer {
	deps.Chat = p.chat
	deps.Typing = p.typing
	deps.Blobs = p.c
	deps.Logger = a.logger
	return compose.New(p.self.ID, p.peer.ID, deps)
}

func cmdWatch(ctx context.Context, a *cli, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := openPeer(ctx, a, args[0], false)
	if err != nil {
		return err
	}
	defer p.Close()

	r := thread.Renderer{
		Self:  p.self.ID,
		Names: map[string]string{p.self.ID: "You", p.peer.ID: p.peer.FullName},
		Width: threadWidth,
	}
	if err := p.chat.EnsureLog(ctx, p.id); err != nil {
		return err
	}
	fmt.Printf("-- %s --\n", p.peer.FullName)

	var (
		mu      sync.Mutex
		printed int
	)
	messages := p.chat.Subscribe(ctx, p.id, func(msgs []conversation.Message) {
		mu.Lock()
		defer mu.Unlock()
		// Logs only grow; a shorter update is a reconnect placeholder.
		if len(msgs) <= printed {
			return
		}
		_ = r.Render(os.Stdout, msgs[printed:])
		printed = len(msgs)
	})
	defer messages.Close()

	typing := p.typing.SubscribeTyping(ctx, p.id, p.peer.ID, func(on bool) {
		mu.Lock()
		defer mu.Unlock()
		if on {
			fmt.Printf("   %s is typing...\n", p.peer.FullName)
		}
	})
	defer typing.Close()

	online := map[bool]string{true: "online", false: "offline"}
	go func() {
		_ = p.c.WatchPresence(ctx, []string{p.peer.ID}, func(s presence.Status) error {
			mu.Lock()
			defer mu.Unlock()
			fmt.Printf("   %s is %s\n", p.peer.FullName, online[s.Online()])
			return nil
		})
	}()
	// Watching keeps us connected for the peer.
	go func() {
		_ = p.c.Attach(ctx, func(presence.Status) error { return nil })
	}()

	<-ctx.Done()
	return nil
}

func cmdSend(ctx context.Context, a *cli, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	p, err := openPeer(ctx, a, args[0], false)
	if err != nil {
		return err
	}
	defer p.Close()

	comp := p.composer(a, compose.Deps{})
	comp.SetInput(strings.Join(args[1:], " "))
	return comp.SendText(ctx)
}

func cmdSendLocation(ctx context.Context, a *cli, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	fs := flag.NewFlagSet("send-location", flag.ContinueOnError)
	at := fs.String("at", "", "position as lat,lon")
	deny := fs.Bool("deny", false, "refuse the location permission")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	loc := device.Location{Granted: !*deny}
	if *at != "" {
		pos, err := device.ParsePosition(*at)
		if err != nil {
			return err
		}
		loc.Position = &pos
	}

	p, err := openPeer(ctx, a, args[0], false)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.composer(a, compose.Deps{Location: loc}).SendLocation(ctx)
}

func cmdSendFile(ctx context.Context, a *cli, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	fs := flag.NewFlagSet("send-file", flag.ContinueOnError)
	mimeType := fs.String("mime", "", "content type (guessed from the extension when empty)")
	if err := fs.Parse(args[2:]); err != nil {
		return errUsage
	}
	path := args[1]
	if *mimeType == "" {
		*mimeType = mimeFor(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	p, err := openPeer(ctx, a, args[0], true)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.composer(a, compose.Deps{}).SendFile(ctx, compose.PickedFile{
		Name:     filepath.Base(path),
		MimeType: *mimeType,
		Body:     f,
	})
}

func mimeFor(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		mediaType, _, err := mime.ParseMediaType(t)
		if err == nil {
			return mediaType
		}
	}
	return compose.DefaultMimeType
}

func cmdSendAudio(ctx context.Context, a *cli, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	fs := flag.NewFlagSet("send-audio", flag.ContinueOnError)
	deny := fs.Bool("deny", false, "refuse the microphone permission")
	if err := fs.Parse(args[2:]); err != nil {
		return errUsage
	}

	p, err := openPeer(ctx, a, args[0], true)
	if err != nil {
		return err
	}
	defer p.Close()

	comp := p.composer(a, compose.Deps{Audio: device.FileAudio{Granted: !*deny, Path: args[1]}})
	if _, err := comp.ToggleAudio(ctx); err != nil {
		return err
	}
	phase, err := comp.ToggleAudio(ctx)
	if err != nil {
		return err
	}
	a.logger.Sugar().Debugf("audio phase %s", phase)
	return nil
}

func cmdTyping(ctx context.Context, a *cli, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	var on bool
	switch args[1] {
	case "on":
		on = true
	case "off":
	default:
		return errUsage
	}

	p, err := openPeer(ctx, a, args[0], false)
	if err != nil {
		return err
	}
	defer p.Close()

	p.typing.SetTyping(p.id, p.self.ID, on)
	return nil
}
