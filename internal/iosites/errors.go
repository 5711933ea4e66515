package iosites

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func SitesSourceError(path string, err error) error {
	msg := "Cannot load site layer from <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SitesSourceError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot load site layer %s: %w",
			fn, path, err),
	}
}

func SitesNoCRSError(path string) error {
	msg := "Site layer <em>%s</em> has no coordinate reference system"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SitesNoCRSError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: undefined CRS in %s", fn, path),
	}
}

func SitesProjectionError(path string, srsID int) error {
	msg := "Cannot reproject site layer <em>%s</em> from SRS %d"
	vars := []any{path, srsID}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SitesProjectionError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: unsupported SRS %d in %s",
			fn, srsID, path),
	}
}
