// SPDX-License-Identifier: MIT

package module

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

//go:embed builtin/*.json
var builtinFS embed.FS

var specExtensions = []string{".json", ".yaml", ".yml"}

// Name is a parsed module reference such as "S_2", "C2@adem" or "S_2[2]".
type Name struct {
	Module  string
	Algebra string // empty means the caller's default
	Shift   int
}

// ParseModuleName splits "module[shift]@algebra"; both suffixes are optional.
func ParseModuleName(s string) (Name, error) {
	var n Name
	s = strings.TrimSpace(s)
	if base, alg, ok := strings.Cut(s, "@"); ok {
		s, n.Algebra = base, alg
	}
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return Name{}, fmt.Errorf("%w: module name %q: unbalanced shift", ErrInvalidSpec, s)
		}
		shift, err := strconv.Atoi(s[open+1 : len(s)-1])
		if err != nil {
			return Name{}, fmt.Errorf("%w: module name %q: shift: %w", ErrInvalidSpec, s, err)
		}
		s, n.Shift = s[:open], shift
	}
	if s == "" {
		return Name{}, fmt.Errorf("%w: empty module name", ErrInvalidSpec)
	}
	n.Module = s

	return n, nil
}

// String renders the name back in ParseModuleName syntax.
func (n Name) String() string {
	s := n.Module
	if n.Shift != 0 {
		s += "[" + strconv.Itoa(n.Shift) + "]"
	}
	if n.Algebra != "" {
		s += "@" + n.Algebra
	}

	return s
}

// Find resolves a module name to a Spec. A name that is a path to an existing
// file is loaded directly; otherwise <name>.json, .yaml and .yml are tried in
// each directory in order, then the built-in modules. The shift is applied to
// the result.
func Find(n Name, dirs ...string) (*Spec, error) {
	spec, err := find(n.Module, dirs)
	if err != nil {
		return nil, err
	}
	if n.Shift != 0 {
		spec = spec.Shift(n.Shift)
	}

	return spec, nil
}

func find(module string, dirs []string) (*Spec, error) {
	if st, err := os.Stat(module); err == nil && !st.IsDir() {
		return LoadSpec(module)
	}
	for _, dir := range dirs {
		for _, ext := range specExtensions {
			path := filepath.Join(dir, module+ext)
			if _, err := os.Stat(path); err == nil {
				return LoadSpec(path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}
	data, err := builtinFS.ReadFile("builtin/" + module + ".json")
	if err != nil {
		return nil, fmt.Errorf("%q: %w", module, ErrSpecNotFound)
	}

	return ParseSpec(data)
}

// Builtins lists the names of the embedded module specifications.
func Builtins() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(out)

	return out
}
