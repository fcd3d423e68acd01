// Package kicadsym converts KiCad symbol libraries (.kicad_sym) into
// component definitions. Parsed libraries are cached to per-file JSON
// sidecars keyed by the source file's mtime and size; the cache is a
// best-effort fast path and any unreadable cache entry is treated as a miss.
package kicadsym

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/circuitsmith/circuitsmith/pkg/circuit"
	"github.com/circuitsmith/circuitsmith/pkg/sexpr"
)

// cacheVersion is bumped whenever the cached component layout changes;
// a mismatch forces a re-parse.
const cacheVersion = 2

// Adapter discovers and parses symbol libraries from a set of search paths.
type Adapter struct {
	searchPaths []string
	cacheDir    string
}

// NewAdapter creates an adapter. cacheDir is created if missing; an empty
// cacheDir disables caching.
func NewAdapter(searchPaths []string, cacheDir string) *Adapter {
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			slog.Warn("kicadsym: cannot create cache directory, caching disabled",
				"dir", cacheDir, "error", err)
			cacheDir = ""
		}
	}
	return &Adapter{
		searchPaths: searchPaths,
		cacheDir:    cacheDir,
	}
}

// LoadComponents discovers all symbol libraries on the search paths and
// returns their component definitions. A library that fails to load is
// logged and skipped; it never stops the sweep.
func (a *Adapter) LoadComponents() []*circuit.ComponentDefinition {
	libraries := a.discoverLibraries()
	if len(libraries) == 0 {
		slog.Warn("kicadsym: no symbol libraries discovered", "paths", a.searchPaths)
		return nil
	}

	names := make([]string, 0, len(libraries))
	for name := range libraries {
		names = append(names, name)
	}
	sort.Strings(names)

	var components []*circuit.ComponentDefinition
	for _, name := range names {
		defs, err := a.loadLibrary(name, libraries[name])
		if err != nil {
			slog.Error("kicadsym: failed to load library", "path", libraries[name], "error", err)
			continue
		}
		components = append(components, defs...)
	}
	return components
}

// discoverLibraries returns a mapping of library names to their paths.
// Missing search paths are skipped.
func (a *Adapter) discoverLibraries() map[string]string {
	libraries := make(map[string]string)
	for _, base := range a.searchPaths {
		info, err := os.Stat(base)
		if err != nil {
			slog.Debug("kicadsym: skipping missing search path", "path", base)
			continue
		}

		if !info.IsDir() {
			if strings.HasSuffix(base, ".kicad_sym") {
				libraries[libraryName(base)] = base
			}
			continue
		}

		matches, err := filepath.Glob(filepath.Join(base, "*.kicad_sym"))
		if err != nil {
			continue
		}
		for _, match := range matches {
			libraries[libraryName(match)] = match
		}
	}
	return libraries
}

func libraryName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".kicad_sym")
}

// sourceSignature is the cheap identity of a source file. Intentionally
// mtime+size rather than a content hash: it is a fast-path heuristic and the
// observable invalidation behavior is part of the contract.
type sourceSignature struct {
	MTimeNS int64 `json:"mtime_ns"`
	Size    int64 `json:"size"`
}

type cachePayload struct {
	Version    int                            `json:"version"`
	Signature  sourceSignature                `json:"source_signature"`
	Components []*circuit.ComponentDefinition `json:"components"`
}

// loadLibrary parses one library, consulting the sidecar cache first.
func (a *Adapter) loadLibrary(name, path string) ([]*circuit.ComponentDefinition, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	sig := sourceSignature{
		MTimeNS: stat.ModTime().UnixNano(),
		Size:    stat.Size(),
	}

	cachePath := ""
	if a.cacheDir != "" {
		cachePath = filepath.Join(a.cacheDir, name+".json")
		if cached, ok := readCache(cachePath); ok &&
			cached.Version == cacheVersion && cached.Signature == sig {
			return cached.Components, nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defs, err := ParseLibrary(name, f)
	f.Close()
	if err != nil {
		return nil, err
	}

	if cachePath != "" {
		writeCache(cachePath, cachePayload{
			Version:    cacheVersion,
			Signature:  sig,
			Components: defs,
		})
	}
	return defs, nil
}

// readCache loads a cache sidecar. Any failure is a cache miss, never an
// error: the file may be absent, truncated by a concurrent writer, or from
// an older format.
func readCache(path string) (cachePayload, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cachePayload{}, false
	}
	var payload cachePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		slog.Warn("kicadsym: discarding corrupt symbol cache", "path", path)
		return cachePayload{}, false
	}
	return payload, true
}

func writeCache(path string, payload cachePayload) {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		slog.Warn("kicadsym: failed to write symbol cache", "path", path, "error", err)
	}
}

// ParseFile reads and parses a single symbol library file without caching.
func ParseFile(path string) ([]*circuit.ComponentDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ParseLibrary(libraryName(path), f)
}

// ParseLibrary parses a symbol library from a reader. Symbols appear as
// children of a (kicad_symbol_lib ...) root; bare top-level (symbol ...)
// nodes are accepted too. Malformed symbol nodes are skipped.
func ParseLibrary(library string, r io.Reader) ([]*circuit.ComponentDefinition, error) {
	nodes, err := sexpr.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}

	var defs []*circuit.ComponentDefinition
	for _, node := range nodes {
		name, err := sexpr.NodeName(node)
		if err != nil {
			continue
		}
		switch name {
		case "kicad_symbol_lib":
			for _, symNode := range sexpr.FindAllNodes(node, "symbol") {
				if def := symbolToComponent(library, symNode); def != nil {
					defs = append(defs, def)
				}
			}
		case "symbol":
			if list, ok := node.(*sexpr.List); ok {
				if def := symbolToComponent(library, list); def != nil {
					defs = append(defs, def)
				}
			}
		}
	}
	return defs, nil
}
