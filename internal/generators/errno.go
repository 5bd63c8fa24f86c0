package generators

import (
	"sort"
	"strings"

	"github.com/roach88/conform/internal/gen"
)

// Platforms in table column order.
var Platforms = [3]string{"linux", "darwin", "windows"}

const (
	linuxIdx = iota
	darwinIdx
	windowsIdx
)

// Codes holds an errno value per platform; zero means undefined there.
type Codes [3]int

var errnoLinux = map[int]string{
	1: "EPERM", 2: "ENOENT", 3: "ESRCH", 4: "EINTR", 5: "EIO", 6: "ENXIO", 7: "E2BIG",
	8: "ENOEXEC", 9: "EBADF", 10: "ECHILD", 11: "EAGAIN", 12: "ENOMEM", 13: "EACCES",
	14: "EFAULT", 16: "EBUSY", 17: "EEXIST", 18: "EXDEV", 19: "ENODEV", 20: "ENOTDIR",
	21: "EISDIR", 22: "EINVAL", 23: "ENFILE", 24: "EMFILE", 25: "ENOTTY", 27: "EFBIG",
	28: "ENOSPC", 29: "ESPIPE", 30: "EROFS", 31: "EMLINK", 32: "EPIPE", 33: "EDOM",
	34: "ERANGE", 35: "EDEADLOCK", 36: "ENAMETOOLONG", 38: "ENOSYS", 39: "ENOTEMPTY",
	40: "ELOOP", 88: "ENOTSOCK", 95: "ENOTSUP", 98: "EADDRINUSE", 104: "ECONNRESET",
	110: "ETIMEDOUT", 111: "ECONNREFUSED", 115: "EINPROGRESS",
}

var errnoDarwin = map[int]string{
	1: "EPERM", 2: "ENOENT", 3: "ESRCH", 4: "EINTR", 5: "EIO", 6: "ENXIO", 7: "E2BIG",
	8: "ENOEXEC", 9: "EBADF", 10: "ECHILD", 11: "EDEADLK", 12: "ENOMEM", 13: "EACCES",
	14: "EFAULT", 16: "EBUSY", 17: "EEXIST", 18: "EXDEV", 19: "ENODEV", 20: "ENOTDIR",
	21: "EISDIR", 22: "EINVAL", 23: "ENFILE", 24: "EMFILE", 25: "ENOTTY", 27: "EFBIG",
	28: "ENOSPC", 29: "ESPIPE", 30: "EROFS", 31: "EMLINK", 32: "EPIPE", 33: "EDOM",
	34: "ERANGE", 35: "EAGAIN", 36: "EINPROGRESS", 38: "ENOTSOCK", 45: "ENOTSUP",
	48: "EADDRINUSE", 54: "ECONNRESET", 60: "ETIMEDOUT", 61: "ECONNREFUSED", 62: "ELOOP",
	63: "ENAMETOOLONG", 66: "ENOTEMPTY", 78: "ENOSYS", 102: "EOPNOTSUPP",
}

var errnoWindows = map[int]string{
	1: "EPERM", 2: "ENOENT", 3: "ESRCH", 4: "EINTR", 5: "EIO", 6: "ENXIO", 7: "E2BIG",
	8: "ENOEXEC", 9: "EBADF", 10: "ECHILD", 11: "EAGAIN", 12: "ENOMEM", 13: "EACCES",
	14: "EFAULT", 16: "EBUSY", 17: "EEXIST", 18: "EXDEV", 19: "ENODEV", 20: "ENOTDIR",
	21: "EISDIR", 22: "EINVAL", 23: "ENFILE", 24: "EMFILE", 25: "ENOTTY", 27: "EFBIG",
	28: "ENOSPC", 29: "ESPIPE", 30: "EROFS", 31: "EMLINK", 32: "EPIPE", 33: "EDOM",
	34: "ERANGE", 36: "EDEADLOCK", 38: "ENAMETOOLONG", 40: "ENOSYS", 41: "ENOTEMPTY",
	129: "ENOTSUP", 10035: "WSAEWOULDBLOCK", 10036: "WSAEINPROGRESS", 10038: "WSAENOTSOCK",
	10048: "WSAEADDRINUSE", 10054: "WSAECONNRESET", 10060: "WSAETIMEDOUT",
	10061: "WSAECONNREFUSED", 10062: "WSAELOOP",
}

// ErrnoAliases maps alternative spellings to the name they stand for.
var ErrnoAliases = map[string]string{
	"EOPNOTSUPP":  "ENOTSUP",
	"EDEADLK":     "EDEADLOCK",
	"EWOULDBLOCK": "EAGAIN",
}

// ErrnoTable merges the per-platform tables. A Windows socket code
// WSAE<X> also defines E<X> on Windows when E<X> is a known name without a
// Windows value. Aliases then borrow their target's value on every
// platform where they have none.
func ErrnoTable() map[string]Codes {
	table := make(map[string]Codes)
	set := func(codes map[int]string, idx int) {
		for code, name := range codes {
			c := table[name]
			c[idx] = code
			table[name] = c
		}
	}
	set(errnoLinux, linuxIdx)
	set(errnoDarwin, darwinIdx)
	set(errnoWindows, windowsIdx)

	known := make(map[string]bool)
	for name := range table {
		known[name] = true
	}
	for alias := range ErrnoAliases {
		known[alias] = true
	}
	for code, name := range errnoWindows {
		if !strings.HasPrefix(name, "WSAE") {
			continue
		}
		short := name[3:]
		if known[short] && table[short][windowsIdx] == 0 {
			c := table[short]
			c[windowsIdx] = code
			table[short] = c
		}
	}

	for alias, target := range ErrnoAliases {
		c := table[alias]
		for idx := range Platforms {
			if c[idx] == 0 {
				c[idx] = table[target][idx]
			}
		}
		table[alias] = c
	}
	return table
}

// WriteErrno emits one property per errno name, sorted by name.
func WriteErrno(w *gen.CodeWriter) error {
	table := ErrnoTable()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := table[name]
		w.Write("public static int %s => Pick(linux: %d, darwin: %d, windows: %d);",
			name, c[linuxIdx], c[darwinIdx], c[windowsIdx])
	}
	w.WriteLine("")
	w.EnterBlock("private static int Pick(int linux, int darwin, int windows)")
	cond := w.Conditions()
	cond.Condition("if (RuntimeInformation.IsOSPlatform(OSPlatform.Windows))")
	w.WriteLine("return windows;")
	cond.Condition("if (RuntimeInformation.IsOSPlatform(OSPlatform.OSX))")
	w.WriteLine("return darwin;")
	cond.Close()
	w.WriteLine("return linux;")
	w.ExitBlock("")
	return nil
}
