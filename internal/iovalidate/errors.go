package iovalidate

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func ValidationInputError(path string, err error) error {
	msg := "Cannot read filtered table <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.ValidationInputError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read filtered table %s: %w",
			fn, path, err),
	}
}

func AuditLogError(path string, err error) error {
	msg := "Cannot append to audit log <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.AuditLogError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot append to audit log %s: %w",
			fn, path, err),
	}
}
