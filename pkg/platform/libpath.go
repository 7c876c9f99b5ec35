package platform

import "runtime"

// LibraryPath names the environment variable the host's dynamic loader
// searches, and the separator between its entries.
type LibraryPath struct {
	VariableName string
	Separator    rune
}

// LibraryPathFor returns the search-path variable for goos.
func LibraryPathFor(goos string) LibraryPath {
	switch goos {
	case "darwin":
		return LibraryPath{VariableName: "DYLD_LIBRARY_PATH", Separator: ':'}
	case "windows":
		return LibraryPath{VariableName: "PATH", Separator: ';'}
	default:
		return LibraryPath{VariableName: "LD_LIBRARY_PATH", Separator: ':'}
	}
}

// CurrentLibraryPath returns the search-path variable for the running OS.
func CurrentLibraryPath() LibraryPath {
	return LibraryPathFor(runtime.GOOS)
}
