package iogpkg

import (
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/errcode"
)

func GpkgOpenError(path string, err error) error {
	msg := "Cannot open GeoPackage <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.GpkgOpenError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot open GeoPackage %s: %w",
			fn, path, err),
	}
}

func GpkgLayerError(path, layer string, err error) error {
	msg := "Cannot read layer <em>%s</em>"
	vars := []any{layer}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	if err == nil {
		err = fmt.Errorf("layer %s not found in %s", layer, path)
	}
	return &gn.Error{
		Code: errcode.GpkgLayerError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot read layer %s: %w",
			fn, layer, err),
	}
}

func GpkgGeometryError(layer string, err error) error {
	msg := "Cannot decode geometry of layer <em>%s</em>"
	vars := []any{layer}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.GpkgGeometryError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: bad geometry in layer %s: %w",
			fn, layer, err),
	}
}

func GpkgWriteError(path string, err error) error {
	msg := "Cannot write GeoPackage <em>%s</em>"
	vars := []any{path}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.GpkgWriteError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: cannot write GeoPackage %s: %w",
			fn, path, err),
	}
}
