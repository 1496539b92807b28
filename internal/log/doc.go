// Package log contains the Logger used by the whole module. The Logger is a wrapper around zap.SugaredLogger.
// A single Logger should be created by the caller and injected into the loader, compilers and builders through their options.
// Components that are not given one fall back to NewNop, so library use stays silent by default.
package log
