package menuscmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-menus/internal/commands/fixtures"
	"github.com/goliatone/go-menus/internal/menus"
)

func TestRegisterMenuCommands(t *testing.T) {
	recorder := fixtures.NewRecorder()

	set, result, err := RegisterMenuCommands(menus.NewService(menus.NewMemoryStore()), nil, FeatureGates{}, recorder.Options(), CacheWithCronExpression("@every 30m"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	want := len(set.All())
	if len(recorder.Registered) != want || len(recorder.Subscribed) != want || len(result.Handlers) != want {
		t.Fatalf("expected %d handlers everywhere, got registry=%d dispatcher=%d result=%d",
			want, len(recorder.Registered), len(recorder.Subscribed), len(result.Handlers))
	}
	if diff := cmp.Diff([]string{"@every 30m"}, recorder.CronExpressions()); diff != "" {
		t.Fatalf("only the cache handler belongs on cron (-want +got):\n%s", diff)
	}

	result.Unsubscribe()
	if live := recorder.Live(); live != 0 {
		t.Fatalf("expected every subscription released, %d still live", live)
	}
}

func TestRegisterMenuCommandsJoinsErrors(t *testing.T) {
	recorder := fixtures.NewRecorder()
	recorder.DispatcherErr = errors.New("bus offline")
	recorder.CronErr = errors.New("scheduler offline")

	_, result, err := RegisterMenuCommands(menus.NewService(menus.NewMemoryStore()), nil, FeatureGates{}, recorder.Options())
	if !errors.Is(err, recorder.DispatcherErr) || !errors.Is(err, recorder.CronErr) {
		t.Fatalf("expected dispatcher and cron errors, got %v", err)
	}
	if len(result.Handlers) == 0 || len(result.Subscriptions) != 0 {
		t.Fatalf("handlers should still be returned without subscriptions")
	}
	if len(recorder.Registered) != len(result.Handlers) {
		t.Fatalf("registry should keep receiving handlers past failures")
	}
}

func TestHandlerSetSubscribeDispatches(t *testing.T) {
	ctx := context.Background()
	service := menus.NewService(menus.NewMemoryStore())
	set := NewHandlerSet(service, nil, FeatureGates{})

	subs := set.Subscribe(runner.WithMaxRetries(0))
	t.Cleanup(func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	})
	if len(subs) != len(set.All()) {
		t.Fatalf("expected one subscription per handler, got %d", len(subs))
	}

	if err := dispatcher.Dispatch(ctx, CreateMenuCommand{Name: "Dispatched", Location: menus.LocationFooter}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	menu, err := service.GetMenu(ctx, "dispatched", menus.LookupBySlug)
	if err != nil {
		t.Fatalf("get dispatched menu: %v", err)
	}
	if menu.Location != menus.LocationFooter {
		t.Fatalf("unexpected location %q", menu.Location)
	}
}
