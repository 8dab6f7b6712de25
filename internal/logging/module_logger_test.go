package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-menus/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, serviceModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("noop")
}

func TestModuleLoggerAnnotatesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ServiceLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != serviceModule {
		t.Fatalf("expected module %s, got %v", serviceModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != serviceModule {
		t.Fatalf("expected module field %s, got %v", serviceModule, rec.fields)
	}
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = ModuleLogger(provider, "")
	if provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestWithMenuContextSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}
	WithMenuContext(rec, "menu-1", " ", "admin")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	got := rec.fields[0]
	if got["menu_id"] != "menu-1" || got["actor"] != "admin" {
		t.Fatalf("unexpected fields %v", got)
	}
	if _, ok := got["item_id"]; ok {
		t.Fatalf("expected blank item id to be skipped, got %v", got)
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r1"})
	ctx = ContextWithFields(ctx, map[string]any{"actor": "admin"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r1" || fields["actor"] != "admin" {
		t.Fatalf("expected merged fields, got %v", fields)
	}

	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "r1" {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
