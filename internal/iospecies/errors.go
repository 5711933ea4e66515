package iospecies

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func SpeciesFileError(path string, err error) error {
	msg := "Cannot read species checklist <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SpeciesFileError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read species checklist %s: %w",
			fn, path, err),
	}
}

func SpeciesNoKeysError(path string) error {
	msg := "Species checklist <em>%s</em> yields no taxon keys"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.SpeciesNoKeysError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: no taxon keys in %s", fn, path),
	}
}
