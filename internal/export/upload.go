package export

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// HTTPUploader PUTs documents to a presigned object storage URL. The URL
// is the destination and, on success, the share link.
type HTTPUploader struct {
	URL    string
	Client *http.Client
}

func (u *HTTPUploader) Upload(ctx context.Context, data []byte, mime string) (string, error) {
	client := u.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.URL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mime)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload rejected with status %s", resp.Status)
	}
	return u.URL, nil
}
