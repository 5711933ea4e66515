package iodownload

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances instantly on Sleep.
type fakeClock struct {
	now    time.Time
	sleeps int
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.sleeps++
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptWorkspace(t.TempDir()),
		config.OptGBIFAPIURL(apiURL),
		config.OptGBIFUser("user"),
		config.OptGBIFPassword("pass"),
		config.OptGBIFEmail("user@example.org"),
		config.OptGBIFPollInterval(20 * time.Second),
	})
	return cfg
}

func testDownloader(t *testing.T, ts *httptest.Server) (*Downloader, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	d := New(testConfig(t, ts.URL))
	d.client = ts.Client()
	d.archive = ts.Client()
	d.clock = clock
	return d, clock
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok, "error should be *gn.Error")
	return gnErr.Code
}

func TestCheckCredentials(t *testing.T) {
	cfg := config.New()
	d := New(cfg)
	err := d.checkCredentials()
	require.Error(t, err)
	assert.Equal(t, errcode.CredentialsError, errCode(t, err))
}

func TestSubmit(t *testing.T) {
	var gotAuth bool
	var gotBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			gotAuth = ok && user == "user" && pass == "pass"
			err := json.NewDecoder(r.Body).Decode(&gotBody)
			require.NoError(t, err)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte("0001234-240501120000000\n"))
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	key, err := d.Submit(context.Background(), []int{10, 20})
	require.NoError(t, err)
	assert.Equal(t, "0001234-240501120000000", key)
	assert.True(t, gotAuth, "request should carry basic auth")
	assert.Equal(t, "DWCA", gotBody["format"])
}

func TestSubmitRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(420)
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	_, err := d.Submit(context.Background(), []int{10})
	require.Error(t, err)
	assert.Equal(t, errcode.RateLimitError, errCode(t, err))
}

func TestSubmitRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	_, err := d.Submit(context.Background(), []int{10})
	require.Error(t, err)
	assert.Equal(t, errcode.SubmitDownloadError, errCode(t, err))
}

func TestAwait(t *testing.T) {
	statuses := []string{"PREPARING", "RUNNING", "SUCCEEDED"}
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			status := statuses[calls]
			calls++
			json.NewEncoder(w).Encode(map[string]string{"status": status})
		}))
	defer ts.Close()

	d, clock := testDownloader(t, ts)
	err := d.Await(context.Background(), "key-1")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, clock.sleeps,
		"should sleep between polls, not after the terminal one")
}

func TestAwaitFailed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "FAILED"})
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	err := d.Await(context.Background(), "key-1")
	require.Error(t, err)
	assert.Equal(t, errcode.DownloadFailedError, errCode(t, err))
}

func TestAwaitTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "RUNNING"})
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	d.cfg.Update([]config.Option{
		config.OptGBIFPollTimeout(time.Minute),
	})

	err := d.Await(context.Background(), "key-1")
	require.Error(t, err)
	assert.Equal(t, errcode.PollTimeoutError, errCode(t, err))
}

func TestFetch(t *testing.T) {
	payload := []byte("PK\x03\x04 fake archive bytes")
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Write(payload)
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	path, err := d.Fetch(context.Background(), "key-1")
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(path), d.cfg.RawDir())
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

// TestFetchOutlastsAPITimeout verifies that an archive whose transfer
// takes longer than the submit/status client timeout still downloads
// completely.
func TestFetchOutlastsAPITimeout(t *testing.T) {
	payload := []byte("PK\x03\x04 slow archive body, chunked write")
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			flusher, ok := w.(http.Flusher)
			require.True(t, ok)
			for _, b := range payload {
				w.Write([]byte{b})
				flusher.Flush()
				time.Sleep(10 * time.Millisecond)
			}
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	// the whole body streams for ~400ms, well past this bound on the
	// submit/status client; the archive client carries no timeout
	apiClient := *ts.Client()
	apiClient.Timeout = 100 * time.Millisecond
	d.client = &apiClient

	path, err := d.Fetch(context.Background(), "key-1")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

func TestFetchMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
	defer ts.Close()

	d, _ := testDownloader(t, ts)
	_, err := d.Fetch(context.Background(), "key-1")
	require.Error(t, err)
	assert.Equal(t, errcode.SaveArchiveError, errCode(t, err))
}
