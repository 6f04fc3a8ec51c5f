package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/matheus3301/pairchat/internal/blob"
)

// ErrNoStorage is returned by Upload when no storage URL is configured.
var ErrNoStorage = errors.New("no storage url configured")

// Upload sends body to bucket/name on the daemon's HTTP server and returns
// the public URL of the stored object.
func (c *Client) Upload(ctx context.Context, bucket, name, contentType string, body io.Reader, upsert bool) (string, error) {
	if c.storageURL == "" {
		return "", ErrNoStorage
	}
	if err := blob.ValidateName(bucket, name); err != nil {
		return "", err
	}

	endpoint := c.storageURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + escapePath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if upsert {
		req.Header.Set("x-upsert", "true")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("upload %s/%s: %d %s", bucket, name, resp.StatusCode, body.Error)
	}
	return blob.PublicURL(c.storageURL, bucket, name), nil
}

func escapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
