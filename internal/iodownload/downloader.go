// Package iodownload drives GBIF occurrence downloads: it submits a
// download request built from the dataset's taxon keys, waits for GBIF
// to prepare the archive, and streams the resulting Darwin Core
// archive to the raw data directory.
package iodownload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/gbif"
)

// Clock abstracts time for the polling loop so tests do not wait for
// real intervals.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Downloader runs the download stage against the GBIF occurrence API.
type Downloader struct {
	cfg     *config.Config
	client  *http.Client
	archive *http.Client
	clock   Clock
}

// New creates a Downloader for the given configuration.
func New(cfg *config.Config) *Downloader {
	return &Downloader{
		cfg: cfg,
		// Covers the submit and status exchanges only. Client.Timeout
		// spans reading the whole response body, so the archive
		// transfer gets its own untimed client: multi-gigabyte
		// archives legitimately stream for longer than any fixed
		// bound. Cancellation of a fetch comes from ctx.
		client:  &http.Client{Timeout: 5 * time.Minute},
		archive: &http.Client{},
		clock:   systemClock{},
	}
}

// Run executes the full download stage and returns the path of the
// saved archive.
func (d *Downloader) Run(ctx context.Context, taxonKeys []int) (string, error) {
	if err := d.checkCredentials(); err != nil {
		return "", err
	}

	key, err := d.Submit(ctx, taxonKeys)
	if err != nil {
		return "", err
	}
	slog.Info("Submitted GBIF download request",
		"key", key, "taxa", len(taxonKeys))

	if err = d.Await(ctx, key); err != nil {
		return "", err
	}

	return d.Fetch(ctx, key)
}

func (d *Downloader) checkCredentials() error {
	g := d.cfg.GBIF
	if g.User == "" || g.Password == "" || g.Email == "" {
		return CredentialsError()
	}
	return nil
}

// Submit posts the download request and returns the download key GBIF
// assigned to it.
func (d *Downloader) Submit(
	ctx context.Context,
	taxonKeys []int,
) (string, error) {
	g := d.cfg.GBIF
	dr := gbif.NewDownloadRequest(
		g.User, g.Email, taxonKeys, g.Countries,
		d.cfg.Filter.MaxUncertaintyMeters, d.cfg.Filter.AllowedBasis,
	)
	body, err := json.Marshal(dr)
	if err != nil {
		return "", SubmitDownloadError(0, err)
	}

	url := gbif.SubmitURL(g.APIURL)
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewReader(body),
	)
	if err != nil {
		return "", SubmitDownloadError(0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.User, g.Password)

	resp, err := d.client.Do(req)
	if err != nil {
		return "", SubmitDownloadError(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == gbif.StatusRateLimited {
		return "", RateLimitError()
	}
	if resp.StatusCode != http.StatusCreated {
		return "", SubmitDownloadError(resp.StatusCode, nil)
	}

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", SubmitDownloadError(resp.StatusCode, err)
	}
	return strings.TrimSpace(string(bs)), nil
}

// Await polls the download status until GBIF reports a terminal state.
// It returns an error when the download finished badly, polling itself
// failed, or the configured poll timeout ran out. A zero timeout waits
// indefinitely.
func (d *Downloader) Await(ctx context.Context, key string) error {
	g := d.cfg.GBIF
	var deadline time.Time
	if g.PollTimeout > 0 {
		deadline = d.clock.Now().Add(g.PollTimeout)
	}

	for {
		status, err := d.status(ctx, key)
		if err != nil {
			return err
		}
		if status.Terminal() {
			if status.Bad() {
				return DownloadFailedError(key, string(status))
			}
			slog.Info("GBIF download is ready", "key", key)
			return nil
		}

		slog.Info("Waiting for GBIF download",
			"key", key, "status", string(status),
			"interval", g.PollInterval.String())

		if !deadline.IsZero() && !d.clock.Now().Before(deadline) {
			return PollTimeoutError(key, g.PollTimeout)
		}
		if err = ctx.Err(); err != nil {
			return PollStatusError(key, err)
		}
		d.clock.Sleep(g.PollInterval)
	}
}

func (d *Downloader) status(
	ctx context.Context,
	key string,
) (gbif.JobStatus, error) {
	url := gbif.StatusURL(d.cfg.GBIF.APIURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", PollStatusError(key, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", PollStatusError(key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", PollStatusError(key, nil)
	}

	var payload struct {
		Status gbif.JobStatus `json:"status"`
	}
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", PollStatusError(key, err)
	}
	return payload.Status, nil
}

// Fetch streams the prepared archive to the raw data directory and
// returns its path.
func (d *Downloader) Fetch(ctx context.Context, key string) (string, error) {
	url := gbif.ArchiveURL(d.cfg.GBIF.APIURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", SaveArchiveError(key, err)
	}

	resp, err := d.archive.Do(req)
	if err != nil {
		return "", SaveArchiveError(key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", SaveArchiveError(key, nil)
	}

	if err = os.MkdirAll(d.cfg.RawDir(), 0755); err != nil {
		return "", SaveArchiveError(key, err)
	}
	stamp := d.clock.Now().Format("20060102_150405")
	path := d.cfg.RawArchiveFile(stamp)

	out, err := os.Create(path)
	if err != nil {
		return "", SaveArchiveError(key, err)
	}
	defer out.Close()

	reader := io.Reader(resp.Body)
	if resp.ContentLength > 0 {
		bar := pb.Full.Start64(resp.ContentLength)
		bar.Set("prefix", "Downloading archive: ")
		bar.Set(pb.Bytes, true)
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		reader = bar.NewProxyReader(resp.Body)
	}

	written, err := io.Copy(out, reader)
	if err != nil {
		return "", SaveArchiveError(key, err)
	}

	slog.Info("Saved GBIF archive",
		"file", path, "bytes", humanize.Comma(written))
	return path, nil
}
