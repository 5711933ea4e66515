package iometrics

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func MetricsInputError(path string, err error) error {
	msg := "Cannot read enriched layer <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetricsInputError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read enriched layer %s: %w",
			fn, path, err),
	}
}

func MetricsWriteError(path string, err error) error {
	msg := "Cannot write metrics table <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.MetricsWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write metrics table %s: %w",
			fn, path, err),
	}
}
