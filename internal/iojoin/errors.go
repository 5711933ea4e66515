package iojoin

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func JoinInputError(path string, err error) error {
	msg := "Cannot read join input <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.JoinInputError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read join input %s: %w",
			fn, path, err),
	}
}

func JoinWriteError(path string, err error) error {
	msg := "Cannot write enriched layer <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.JoinWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write enriched layer %s: %w",
			fn, path, err),
	}
}
