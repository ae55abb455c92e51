package kws

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
)

// LibraryEnv names an environment variable holding an explicit onnxruntime
// shared library path. It takes precedence over the bundled search.
const LibraryEnv = "KWS_ONNXRUNTIME_LIB"

// Bundled runtime layouts searched under each base directory, in order:
//
//	models/onnxruntime_<arch>.<ext>
//	lib/<os>_<arch>/<standard name>
const (
	ModelsDir     = "models"
	BundledLibDir = "lib"
)

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// runtimeLibNames returns the standard onnxruntime library filenames for
// goos. Linux releases ship a versioned .so, so that is tried first.
func runtimeLibNames(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"libonnxruntime.dylib"}
	case "windows":
		return []string{"onnxruntime.dll"}
	default:
		return []string{"libonnxruntime.so.1.23.2", "libonnxruntime.so"}
	}
}

// modelsDirLibName is the arch-tagged name used when the runtime sits next
// to the keyword model.
func modelsDirLibName(goos, goarch string) string {
	switch goos {
	case "darwin":
		return "onnxruntime_" + goarch + ".dylib"
	case "windows":
		return "onnxruntime.dll"
	default:
		return "onnxruntime_" + goarch + ".so"
	}
}

// candidateBaseDirs lists where a bundled runtime may live: next to where
// the node was started and next to its binary. Unresolvable entries are
// skipped and duplicates collapsed.
func candidateBaseDirs() []string {
	var dirs []string
	add := func(d string, err error) {
		if err != nil || d == "" || slices.Contains(dirs, d) {
			return
		}
		dirs = append(dirs, d)
	}
	add(os.Getwd())
	if exe, err := os.Executable(); err == nil {
		add(filepath.Dir(exe), nil)
	}
	return dirs
}

// resolveBundledLib returns the onnxruntime library to load, or "" to let
// onnxruntime_go use its default.
func resolveBundledLib(bases []string) string {
	if p := os.Getenv(LibraryEnv); p != "" && fileExists(p) {
		return p
	}
	return searchLib(bases, runtime.GOOS, runtime.GOARCH)
}

func searchLib(bases []string, goos, goarch string) string {
	var candidates []string
	for _, base := range bases {
		if base != "" {
			candidates = append(candidates, filepath.Join(base, ModelsDir, modelsDirLibName(goos, goarch)))
		}
	}
	for _, base := range bases {
		if base == "" {
			continue
		}
		for _, name := range runtimeLibNames(goos) {
			candidates = append(candidates, filepath.Join(base, BundledLibDir, goos+"_"+goarch, name))
		}
	}
	for _, p := range candidates {
		if fileExists(p) {
			return p
		}
	}
	return ""
}
