// Package buildid derives a 128-bit fingerprint of the running executable.
//
// The fingerprint is constant across every invocation of one compiled
// binary and differs between distinct binaries with overwhelming
// probability. The relative package uses it to reject dispatch references
// produced by an incompatible binary before attempting to resolve them.
package buildid

import (
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

var get = sync.OnceValue(compute)

// Get returns the fingerprint of the running executable. The first call
// hashes the binary; later calls return the cached value. Get never fails.
func Get() uuid.UUID { return get() }

func compute() uuid.UUID {
	if id, ok := hashExecutable(); ok {
		return id
	}
	// Reading the executable back can fail (binary deleted after exec,
	// exotic platforms). Fall back to toolchain identity plus argv[0]:
	// weaker, but still constant per binary.
	h := xxh3.New()
	_, _ = io.WriteString(h, runtime.Version())
	_, _ = io.WriteString(h, runtime.GOOS)
	_, _ = io.WriteString(h, runtime.GOARCH)
	if len(os.Args) > 0 {
		_, _ = io.WriteString(h, os.Args[0])
	}
	return uuid.UUID(h.Sum128().Bytes())
}

func hashExecutable() (uuid.UUID, bool) {
	path, err := os.Executable()
	if err != nil {
		return uuid.Nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		return uuid.Nil, false
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return uuid.Nil, false
	}
	return uuid.UUID(h.Sum128().Bytes()), true
}
