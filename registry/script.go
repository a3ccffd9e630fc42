package registry

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/hupe1980/fuzzyjoin/collate"
	"github.com/hupe1980/fuzzyjoin/config"
	"github.com/hupe1980/fuzzyjoin/distance"
	"github.com/hupe1980/fuzzyjoin/model"
)

// Script symbols looked up by LoadScript.
const (
	SymbolCollate  = "Collate"
	SymbolExclude  = "Exclude"
	SymbolDistance = "Distance"
)

// LoadScript interprets the Go source file at path and registers the
// functions it defines into the package registries. It returns the
// registered names.
func LoadScript(path string) ([]string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return loadSource(path, string(src), Collators, Excluders, Distances)
}

func loadSource(path, src string, collators *Registry[collate.Func], excluders *Registry[ExcludeFactory], distances *Registry[distance.Func]) ([]string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	pkg := f.Name.Name

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("compile script %s: %w", path, err)
	}

	var (
		collateFn  collate.Func
		excludeFn  ExcludeFactory
		distanceFn distance.Func
	)

	if v, err := i.Eval(pkg + "." + SymbolCollate); err == nil {
		fn, ok := v.Interface().(func(string) string)
		if !ok {
			return nil, signatureError(path, SymbolCollate, "func(string) string")
		}
		collateFn = fn
	}

	if v, err := i.Eval(pkg + "." + SymbolExclude); err == nil {
		fn, ok := v.Interface().(func(left, right map[string]string) bool)
		if !ok {
			return nil, signatureError(path, SymbolExclude, "func(left, right map[string]string) bool")
		}
		excludeFn = func(string, string) config.ExcludeFunc {
			return func(left, right model.Record) bool {
				return fn(left.Map(), right.Map())
			}
		}
	}

	if v, err := i.Eval(pkg + "." + SymbolDistance); err == nil {
		fn, ok := v.Interface().(func(a, b string) int)
		if !ok {
			return nil, signatureError(path, SymbolDistance, "func(a, b string) int")
		}
		distanceFn = fn
	}

	if collateFn == nil && excludeFn == nil && distanceFn == nil {
		return nil, &model.ConfigError{
			Field:  "plugin",
			Reason: fmt.Sprintf("%s defines none of %s, %s, %s", path, SymbolCollate, SymbolExclude, SymbolDistance),
		}
	}

	// Nothing is registered unless every symbol can be.
	collateName := pkg + "." + SymbolCollate
	excludeName := pkg + "." + SymbolExclude
	distanceName := pkg + "." + SymbolDistance
	for _, taken := range []struct {
		defined bool
		has     bool
		kind    string
		name    string
	}{
		{collateFn != nil, collators.Has(collateName), collators.Kind(), collateName},
		{excludeFn != nil, excluders.Has(excludeName), excluders.Kind(), excludeName},
		{distanceFn != nil, distances.Has(distanceName), distances.Kind(), distanceName},
	} {
		if taken.defined && taken.has {
			return nil, &model.ConfigError{Field: taken.kind, Reason: fmt.Sprintf("%q already registered", taken.name)}
		}
	}

	var names []string
	if collateFn != nil {
		if err := collators.Register(collateName, collateFn); err != nil {
			return nil, err
		}
		names = append(names, collateName)
	}
	if excludeFn != nil {
		if err := excluders.Register(excludeName, excludeFn); err != nil {
			return nil, err
		}
		names = append(names, excludeName)
	}
	if distanceFn != nil {
		if err := distances.Register(distanceName, distanceFn); err != nil {
			return nil, err
		}
		names = append(names, distanceName)
	}
	return names, nil
}

func signatureError(path, symbol, want string) error {
	return &model.ConfigError{
		Field:  "plugin",
		Reason: fmt.Sprintf("%s: %s must have signature %s", path, symbol, want),
	}
}
