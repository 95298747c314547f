package blog_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-logger/glog"
	"github.com/stretchr/testify/assert"

	blog "github.com/goliatone/go-blog"
)

type logCall struct {
	level   string
	message string
}

type captureLogger struct {
	calls []logCall
}

func (l *captureLogger) record(level, message string) {
	l.calls = append(l.calls, logCall{level: level, message: message})
}

func (l *captureLogger) Trace(message string, args ...any) { l.record("trace", message) }
func (l *captureLogger) Debug(message string, args ...any) { l.record("debug", message) }
func (l *captureLogger) Info(message string, args ...any)  { l.record("info", message) }
func (l *captureLogger) Warn(message string, args ...any)  { l.record("warn", message) }
func (l *captureLogger) Error(message string, args ...any) { l.record("error", message) }
func (l *captureLogger) Fatal(message string, args ...any) { l.record("fatal", message) }
func (l *captureLogger) WithContext(context.Context) glog.Logger {
	return l
}

type providerSpy struct {
	byName map[string]*captureLogger
}

func (p *providerSpy) GetLogger(name string) glog.Logger {
	if p.byName == nil {
		p.byName = map[string]*captureLogger{}
	}
	if _, ok := p.byName[name]; !ok {
		p.byName[name] = &captureLogger{}
	}
	return p.byName[name]
}

func TestGlogAdapterFormatsMessages(t *testing.T) {
	capture := &captureLogger{}
	logger := blog.FromGlog(capture)

	logger.Debug("loaded %d posts", 3)
	logger.Info("ready")
	logger.Warn("slow query %s", "posts")
	logger.Error("disk full")

	assert.Equal(t, []logCall{
		{level: "debug", message: "loaded 3 posts"},
		{level: "info", message: "ready"},
		{level: "warn", message: "slow query posts"},
		{level: "error", message: "disk full"},
	}, capture.calls)
}

func TestNamedLoggerRoutesByName(t *testing.T) {
	provider := &providerSpy{}

	blog.NamedLogger(provider, "posts").Info("created %s", "hello")
	blog.NamedLogger(provider, "auth").Warn("login failed")

	assert.Equal(t, []logCall{{level: "info", message: "created hello"}}, provider.byName["posts"].calls)
	assert.Equal(t, []logCall{{level: "warn", message: "login failed"}}, provider.byName["auth"].calls)

	assert.NotPanics(t, func() {
		blog.NamedLogger(nil, "posts").Error("dropped")
		blog.FromGlog(nil).Info("dropped")
	})
}

func TestNamedLoggerReachesServices(t *testing.T) {
	provider := &providerSpy{}
	env := newTestEnv(t)

	auth := blog.NewAuthService(env.repo.Users(), env.cfg).
		WithLogger(blog.NamedLogger(provider, "auth"))

	_, err := auth.VerifyToken("not.a.token")
	assert.Error(t, err)
	if assert.NotEmpty(t, provider.byName["auth"].calls) {
		assert.Equal(t, "debug", provider.byName["auth"].calls[0].level)
		assert.Contains(t, provider.byName["auth"].calls[0].message, "TokenService validate rejected token")
	}
}
