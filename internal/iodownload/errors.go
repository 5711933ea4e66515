package iodownload

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func CredentialsError() error {
	msg := "GBIF credentials are not set; provide " +
		"GNOCCUR_GBIF_USER, GNOCCUR_GBIF_PASSWORD and GNOCCUR_GBIF_EMAIL"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.CredentialsError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: missing GBIF credentials", fn),
	}
}

func SubmitDownloadError(status int, err error) error {
	msg := "Cannot submit GBIF download request"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("unexpected HTTP status %d", status)
	}
	return &gn.Error{
		Code: errcode.SubmitDownloadError,
		Msg:  msg,
		Err: fmt.Errorf("from %s: cannot submit download request: %w",
			fn, err),
	}
}

func RateLimitError() error {
	msg := "GBIF rate limit reached; wait for queued downloads to finish"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.RateLimitError,
		Msg:  msg,
		Err:  fmt.Errorf("from %s: download request rate-limited", fn),
	}
}

func PollStatusError(key string, err error) error {
	msg := "Cannot check status of GBIF download <em>%s</em>"
	vars := []any{key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("unexpected HTTP status")
	}
	return &gn.Error{
		Code: errcode.PollStatusError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot poll download %s: %w",
			fn, key, err),
	}
}

func DownloadFailedError(key, status string) error {
	msg := "GBIF download <em>%s</em> finished with status %s"
	vars := []any{key, status}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.DownloadFailedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: download %s ended as %s",
			fn, key, status),
	}
}

func PollTimeoutError(key string, timeout time.Duration) error {
	msg := "GBIF download <em>%s</em> was not ready after %s"
	vars := []any{key, timeout.String()}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.PollTimeoutError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: polling %s timed out after %s",
			fn, key, timeout),
	}
}

func SaveArchiveError(key string, err error) error {
	msg := "Cannot save archive of GBIF download <em>%s</em>"
	vars := []any{key}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("unexpected HTTP status")
	}
	return &gn.Error{
		Code: errcode.SaveArchiveError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot save archive %s: %w",
			fn, key, err),
	}
}
