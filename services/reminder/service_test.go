package remindersvc_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
	emailsvc "github.com/EsdrasCaleb/moodle-mod-msteams/services/email"
	remindersvc "github.com/EsdrasCaleb/moodle-mod-msteams/services/reminder"
	inmemdb "github.com/EsdrasCaleb/moodle-mod-msteams/storage/database/inmem"
	testutil "github.com/EsdrasCaleb/moodle-mod-msteams/tests"
)

var conf *core.Config

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Reminder.Email = "teacher@test.cd"
	core.ParseEmailTemplates(testutil.NopLogger{})
	os.Exit(m.Run())
}

type env struct {
	svc        *remindersvc.Service
	courseRepo course.Repository
	eventRepo  calendar.EventRepository
}

func setup(t *testing.T) *env {
	t.Helper()
	emailsvc.ClearSentMessages()

	db := inmemdb.NewDB()
	courseRepo := inmemdb.NewCourseRepository(db)
	eventRepo := inmemdb.NewEventRepository(db)
	return &env{
		svc:        remindersvc.NewService(conf, testutil.NopLogger{}, emailsvc.NewConsoleServiceMock(conf), eventRepo, courseRepo),
		courseRepo: courseRepo,
		eventRepo:  eventRepo,
	}
}

// seedDueActivity stores a course, a bound course-module and a completion
// event starting in `in` from now.
func (e *env) seedDueActivity(t *testing.T, name string, in time.Duration) calendar.Event {
	t.Helper()
	ctx := context.Background()

	crs := testutil.CreateCourse(t, e.courseRepo, "sync101", "Weekly Syncs 101")
	cm := testutil.CreateCourseModule(t, e.courseRepo, crs.ID, course.TrackingAutomatic, true, true)
	cm.InstanceID = "inst-" + name
	if _, err := e.courseRepo.UpdateCourseModule(ctx, cm); err != nil {
		t.Fatalf("UpdateCourseModule() error = %v", err)
	}

	evt, err := e.eventRepo.CreateEvent(ctx, calendar.Event{
		Name:       name,
		CourseID:   crs.ID,
		Module:     msteams.ModuleName,
		InstanceID: cm.InstanceID,
		EventType:  calendar.EventTypeExpectCompletion,
		TimeStart:  time.Now().Add(in).UTC(),
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	return evt
}

func Test_Service_Run(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	evt := e.seedDueActivity(t, "Weekly Sync", time.Hour)

	if err := e.svc.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0].Address != conf.Reminder.Email {
		t.Errorf("To = %q; want %q", msg.To[0].Address, conf.Reminder.Email)
	}
	if !strings.Contains(msg.TextContent, "Weekly Sync") {
		t.Errorf("TextContent = %q; want the activity name in it", msg.TextContent)
	}
	if !strings.Contains(msg.TextContent, "Weekly Syncs 101") {
		t.Errorf("TextContent = %q; want the course name in it", msg.TextContent)
	}

	// the event is marked notified, a second pass sends nothing
	refreshed, err := e.eventRepo.GetEventByID(ctx, evt.ID)
	if err != nil {
		t.Fatalf("GetEventByID() error = %v", err)
	}
	if !refreshed.Notified {
		t.Error("event not marked notified")
	}
	if err = e.svc.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Errorf("len(SentMessages) = %d; want still 1", len(emailsvc.SentMessages))
	}
}

func Test_Service_Run_outsideLeadTime(t *testing.T) {
	e := setup(t)
	e.seedDueActivity(t, "Too Far", conf.Reminder.LeadTime+time.Hour)
	e.seedDueActivity(t, "Overdue", -time.Hour)

	if err := e.svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
	}
}

func Test_Service_Run_noRecipient(t *testing.T) {
	e := setup(t)
	e.seedDueActivity(t, "Weekly Sync", time.Hour)

	addr := conf.Reminder.Email
	conf.Reminder.Email = ""
	defer func() { conf.Reminder.Email = addr }()

	if err := e.svc.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
	}
}

func Test_Service_Run_skipsOrphanedEvents(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	// an event whose course-module is gone must not block the rest
	if _, err := e.eventRepo.CreateEvent(ctx, calendar.Event{
		Name:       "Orphan",
		Module:     msteams.ModuleName,
		InstanceID: "gone",
		EventType:  calendar.EventTypeExpectCompletion,
		TimeStart:  time.Now().Add(time.Hour).UTC(),
	}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	e.seedDueActivity(t, "Healthy", time.Hour)

	if err := e.svc.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	if !strings.Contains(emailsvc.SentMessages[0].TextContent, "Healthy") {
		t.Errorf("TextContent = %q", emailsvc.SentMessages[0].TextContent)
	}
}
