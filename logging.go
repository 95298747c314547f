package blog

import (
	"fmt"

	"github.com/goliatone/go-logger/glog"
)

// GlogAdapter exposes a glog.Logger through the printf style Logger
// used by the services.
type GlogAdapter struct {
	logger glog.Logger
}

var _ Logger = (*GlogAdapter)(nil)

// FromGlog wraps logger. A nil logger discards every message.
func FromGlog(logger glog.Logger) *GlogAdapter {
	return &GlogAdapter{logger: glog.Ensure(logger)}
}

// NamedLogger returns the logger registered under name in provider
func NamedLogger(provider glog.LoggerProvider, name string) Logger {
	if provider == nil {
		return FromGlog(nil)
	}
	return FromGlog(provider.GetLogger(name))
}

func (g *GlogAdapter) Debug(format string, args ...any) {
	g.logger.Debug(sprintf(format, args))
}

func (g *GlogAdapter) Info(format string, args ...any) {
	g.logger.Info(sprintf(format, args))
}

func (g *GlogAdapter) Warn(format string, args ...any) {
	g.logger.Warn(sprintf(format, args))
}

func (g *GlogAdapter) Error(format string, args ...any) {
	g.logger.Error(sprintf(format, args))
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
