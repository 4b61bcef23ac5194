package config

import (
	"bufio"
	"os"
	"strings"
)

// resolvConfPath is the host's stub resolver configuration.
const resolvConfPath = "/etc/resolv.conf"

// fallbackResolver is used when no nameserver can be read from the host.
const fallbackResolver = "8.8.8.8"

// DefaultResolver returns the first nameserver listed in /etc/resolv.conf,
// or 8.8.8.8 when the file is missing, unreadable, or lists none.
func DefaultResolver() string {
	return defaultResolverFrom(resolvConfPath)
}

func defaultResolverFrom(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return fallbackResolver
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// Strip comments before tokenizing.
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == "nameserver" {
			return fields[1]
		}
	}
	return fallbackResolver
}
