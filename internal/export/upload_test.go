package export

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPUploaderPut(t *testing.T) {
	var (
		gotBody   []byte
		gotMethod string
		gotMime   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotMime = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	up := &HTTPUploader{URL: srv.URL + "/exports/run-3.md", Client: srv.Client()}
	url, err := up.Upload(context.Background(), []byte("# Billing launch\n"), "text/markdown")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/exports/run-3.md", url)
	require.Equal(t, http.MethodPut, gotMethod)
	require.Equal(t, "text/markdown", gotMime)
	require.Equal(t, "# Billing launch\n", string(gotBody))
}

func TestHTTPUploaderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "signature expired", http.StatusForbidden)
	}))
	defer srv.Close()

	up := &HTTPUploader{URL: srv.URL, Client: srv.Client()}
	_, err := up.Upload(context.Background(), []byte("doc"), "text/markdown")
	require.ErrorContains(t, err, "403")

	// A rejected upload still yields the document inline.
	res := Deliver(context.Background(), up, []byte("doc"), "text/markdown")
	require.Empty(t, res.URL)
	require.Equal(t, []byte("doc"), res.Inline)
}
