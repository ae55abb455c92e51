package kws

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSearchLib_ModelsDirFirst(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, BundledLibDir, "linux_arm64", "libonnxruntime.so"))
	touch(t, filepath.Join(base, ModelsDir, "onnxruntime_arm64.so"))

	got := searchLib([]string{base}, "linux", "arm64")
	if want := filepath.Join(base, ModelsDir, "onnxruntime_arm64.so"); got != want {
		t.Errorf("searchLib = %q, want %q", got, want)
	}
}

func TestSearchLib_VersionedSOPreferred(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, BundledLibDir, "linux_amd64")
	touch(t, filepath.Join(dir, "libonnxruntime.so"))
	touch(t, filepath.Join(dir, "libonnxruntime.so.1.23.2"))

	got := searchLib([]string{"", base}, "linux", "amd64")
	if want := filepath.Join(dir, "libonnxruntime.so.1.23.2"); got != want {
		t.Errorf("searchLib = %q, want %q", got, want)
	}
}

func TestSearchLib_SecondBase(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	touch(t, filepath.Join(second, BundledLibDir, "darwin_arm64", "libonnxruntime.dylib"))

	got := searchLib([]string{first, second}, "darwin", "arm64")
	if want := filepath.Join(second, BundledLibDir, "darwin_arm64", "libonnxruntime.dylib"); got != want {
		t.Errorf("searchLib = %q, want %q", got, want)
	}
}

func TestSearchLib_NothingFound(t *testing.T) {
	if got := searchLib([]string{t.TempDir()}, "windows", "amd64"); got != "" {
		t.Errorf("searchLib = %q, want empty", got)
	}
}

func TestResolveBundledLib_EnvOverride(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom.so")
	touch(t, p)
	t.Setenv(LibraryEnv, p)
	if got := resolveBundledLib(nil); got != p {
		t.Errorf("resolveBundledLib = %q, want %q", got, p)
	}
}

func TestCandidateBaseDirs_NoDuplicates(t *testing.T) {
	dirs := candidateBaseDirs()
	if len(dirs) == 0 {
		t.Fatal("no base directories")
	}
	seen := make(map[string]bool)
	for _, d := range dirs {
		if d == "" || seen[d] {
			t.Errorf("bad or duplicate base dir %q in %v", d, dirs)
		}
		seen[d] = true
	}
	if cwd, err := os.Getwd(); err == nil && dirs[0] != cwd {
		t.Errorf("first base = %q, want working dir %q", dirs[0], cwd)
	}
}
