package config

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ResolvePort picks the listening port. A positional command-line value wins,
// then the PORT environment variable, then the configured server.port.
// Unusable values are logged and skipped in favour of the next source.
func ResolvePort(arg, env string, configured int, logger *zap.Logger) int {
	if logger == nil {
		logger = zap.NewNop()
	}

	port := configured
	if !validPort(port) {
		port = DefaultPort
	}

	if env = strings.TrimSpace(env); env != "" {
		if p, ok := parsePort(env); ok {
			port = p
		} else {
			logger.Warn("ignoring invalid PORT environment value", zap.String("value", env))
		}
	}

	if arg = strings.TrimSpace(arg); arg != "" {
		if p, ok := parsePort(arg); ok {
			return p
		}
		logger.Warn("invalid port argument, using fallback",
			zap.String("value", arg),
			zap.Int("port", port),
		)
	}

	return port
}

func parsePort(raw string) (int, bool) {
	p, err := strconv.Atoi(raw)
	if err != nil || !validPort(p) {
		return 0, false
	}
	return p, true
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
