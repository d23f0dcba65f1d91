package eventsvc

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	testutil "github.com/EsdrasCaleb/moodle-mod-msteams/tests"
)

func Test_Dispatcher_Emit(t *testing.T) {
	d := NewDispatcher(testutil.NopLogger{})
	ctx := context.Background()

	var got []string
	d.Subscribe("course_module_viewed", func(_ context.Context, evt core.Event) error {
		got = append(got, "first:"+evt.ObjectID)
		return nil
	})
	d.Subscribe("course_module_viewed", func(_ context.Context, evt core.Event) error {
		got = append(got, "second:"+evt.ObjectID)
		return nil
	})
	d.Subscribe("other", func(_ context.Context, evt core.Event) error {
		got = append(got, "other")
		return nil
	})

	d.Emit(ctx, core.Event{Name: "course_module_viewed", ObjectID: "i1"})

	want := []string{"first:i1", "second:i1"}
	if len(got) != len(want) {
		t.Fatalf("got %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func Test_Dispatcher_Emit_noSubscribers(t *testing.T) {
	d := NewDispatcher(testutil.NopLogger{})
	d.Emit(context.Background(), core.Event{Name: "unheard"}) // must not panic
}

func Test_Dispatcher_Emit_handlerErrorDoesNotStopFanOut(t *testing.T) {
	d := NewDispatcher(testutil.NopLogger{})

	var reached bool
	d.Subscribe("evt", func(context.Context, core.Event) error {
		return errors.New("boom")
	})
	d.Subscribe("evt", func(context.Context, core.Event) error {
		reached = true
		return nil
	})

	d.Emit(context.Background(), core.Event{Name: "evt"})

	if !reached {
		t.Error("second handler not reached after first errored")
	}
}
