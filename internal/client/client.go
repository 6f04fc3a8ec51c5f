// Package client talks to pairchatd: gRPC over the daemon's unix socket for
// documents, presence and accounts, and HTTP for blob uploads.
package client

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/matheus3301/pairchat/internal/auth"
	pairchatv1 "github.com/matheus3301/pairchat/internal/rpc/pairchatv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client wraps the gRPC connection to the daemon.
type Client struct {
	conn         *grpc.ClientConn
	Conversation pairchatv1.ConversationServiceClient
	Directory    pairchatv1.DirectoryServiceClient
	Auth         pairchatv1.AuthServiceClient
	Health       pairchatv1.HealthServiceClient

	token      string
	storageURL string
	http       *http.Client
}

// Options configures New.
type Options struct {
	// Token authenticates every call. Empty for anonymous calls such as
	// Register and Login.
	Token string
	// StorageURL is the daemon's HTTP address, used for uploads.
	StorageURL string
	// HTTPClient overrides the client used for uploads.
	HTTPClient *http.Client
}

// New dials the daemon's Unix domain socket and returns typed service clients.
func New(socketPath string, opts Options) (*Client, error) {
	return NewWithTarget("unix://"+socketPath, opts)
}

// NewWithTarget dials any gRPC target; extra dial options are appended.
func NewWithTarget(target string, opts Options, dialOpts ...grpc.DialOption) (*Client, error) {
	all := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(pairchatv1.CallOptions()...),
	}
	if opts.Token != "" {
		all = append(all, grpc.WithPerRPCCredentials(auth.TokenCredentials(opts.Token)))
	}
	conn, err := grpc.NewClient(target, append(all, dialOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		conn:         conn,
		Conversation: pairchatv1.NewConversationServiceClient(conn),
		Directory:    pairchatv1.NewDirectoryServiceClient(conn),
		Auth:         pairchatv1.NewAuthServiceClient(conn),
		Health:       pairchatv1.NewHealthServiceClient(conn),
		token:        opts.Token,
		storageURL:   strings.TrimRight(opts.StorageURL, "/"),
		http:         hc,
	}, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
