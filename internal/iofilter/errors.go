package iofilter

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/config"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func OpenArchiveError(path string, err error) error {
	msg := "Cannot open archive <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.OpenArchiveError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open archive %s: %w",
			fn, path, err),
	}
}

func ArchiveMemberError(path string, err error) error {
	msg := "Archive <em>%s</em> has no usable %s"
	vars := []any{path, config.OccurrenceMember}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("member %s not found", config.OccurrenceMember)
	}
	return &gn.Error{
		Code: errcode.ArchiveMemberError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot use archive member: %w",
			fn, err),
	}
}

func ReadOccurrenceError(err error) error {
	msg := "Cannot read occurrence table"
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadOccurrenceError,
		Msg:  msg,
		Err: fmt.Errorf("from %s: cannot read occurrence table: %w",
			fn, err),
	}
}

func MissingColumnsError(missing []string) error {
	msg := "Occurrence table misses required columns: %s"
	vars := []any{strings.Join(missing, ", ")}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ReadOccurrenceError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: missing required columns %s",
			fn, strings.Join(missing, ", ")),
	}
}

func WriteFilteredError(path string, err error) error {
	msg := "Cannot write filtered table <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WriteFilteredError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write filtered table %s: %w",
			fn, path, err),
	}
}

func WriteReportError(path string, err error) error {
	msg := "Cannot write filtering report <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.WriteReportError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write report %s: %w",
			fn, path, err),
	}
}
