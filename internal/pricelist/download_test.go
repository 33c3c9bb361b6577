package pricelist_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/pricelist"
)

func TestDownloader_TwoStepFetchCarriesCookies(t *testing.T) {
	var sawCookie, sawReferer bool

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123"})
		w.Write([]byte("<html>front page</html>"))
	})
	mux.HandleFunc("/hinnasto.xlsx", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil && c.Value == "abc123" {
			sawCookie = true
		}
		if r.Header.Get("Referer") != "" {
			sawReferer = true
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write([]byte("PK\x03\x04fake-xlsx"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d, err := pricelist.NewDownloader(srv.URL, srv.URL+"/hinnasto.xlsx", "test-agent")
	require.NoError(t, err)

	data, err := d.Download(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, sawCookie, "spreadsheet request must carry session cookies")
	assert.True(t, sawReferer, "spreadsheet request must carry a referrer")
}

func TestDownloader_NonSpreadsheetContentTypeIsBlocked(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/hinnasto.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>access denied</html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d, err := pricelist.NewDownloader(srv.URL, srv.URL+"/hinnasto.xlsx", "test-agent")
	require.NoError(t, err)

	_, err = d.Download(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotBlocked)
}

func TestDownloader_ErrorStatusIsBlocked(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/hinnasto.xlsx", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d, err := pricelist.NewDownloader(srv.URL, srv.URL+"/hinnasto.xlsx", "test-agent")
	require.NoError(t, err)

	_, err = d.Download(context.Background())
	assert.ErrorIs(t, err, domain.ErrSnapshotBlocked)
}
