package remindersvc

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/robfig/cron"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

// Service periodically emails a digest of activities whose expected
// completion date falls within the configured lead time. Each event is
// reminded at most once; rescheduling an activity re-arms it.
type Service struct {
	conf       *core.Config
	logger     core.Logger
	email      core.EmailService
	eventRepo  calendar.EventRepository
	courseRepo course.Repository

	cron *cron.Cron
}

type reminderItem struct {
	ActivityName string
	CourseName   string
	DueAt        time.Time
	ViewPath     string
}

func NewService(
	conf *core.Config,
	logger core.Logger,
	email core.EmailService,
	eventRepo calendar.EventRepository,
	courseRepo course.Repository,
) *Service {
	return &Service{
		conf:       conf,
		logger:     logger,
		email:      email,
		eventRepo:  eventRepo,
		courseRepo: courseRepo,
		cron:       cron.New(),
	}
}

// Start schedules the reminder job. It returns an error if the configured
// cron spec does not parse.
func (svc *Service) Start() error {
	err := svc.cron.AddFunc(svc.conf.Reminder.CronSpec, func() {
		if err := svc.Run(context.Background()); err != nil {
			svc.logger.Error(fmt.Sprintf("sending completion reminders: %v", err), err)
		}
	})
	if err != nil {
		return err
	}
	svc.cron.Start()
	return nil
}

func (svc *Service) Stop() {
	svc.cron.Stop()
}

// Run performs a single reminder pass.
func (svc *Service) Run(ctx context.Context) error {
	if svc.conf.Reminder.Email == "" {
		return nil
	}

	now := time.Now().UTC()
	events, err := svc.eventRepo.QueryDueEvents(ctx, now, now.Add(svc.conf.Reminder.LeadTime))
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	items := make([]reminderItem, 0, len(events))
	ids := make([]string, 0, len(events))
	for _, evt := range events {
		item, err := svc.buildItem(ctx, evt)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("skipping reminder for event %s: %v", evt.ID, err), err)
			continue
		}
		items = append(items, item)
		ids = append(ids, evt.ID)
	}
	if len(items) == 0 {
		return nil
	}

	svc.email.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: svc.conf.Reminder.Email}},
		Subject:      "Upcoming activity completions",
		TemplateName: "completion-reminder",
		TemplateData: items,
	})

	return svc.eventRepo.MarkEventsNotified(ctx, ids)
}

func (svc *Service) buildItem(ctx context.Context, evt calendar.Event) (reminderItem, error) {
	cm, err := svc.courseRepo.GetCourseModuleByInstance(ctx, evt.Module, evt.InstanceID)
	if err != nil {
		return reminderItem{}, err
	}
	crs, err := svc.courseRepo.GetCourseByID(ctx, cm.CourseID)
	if err != nil {
		return reminderItem{}, err
	}
	return reminderItem{
		ActivityName: evt.Name,
		CourseName:   crs.FullName,
		DueAt:        evt.TimeStart,
		ViewPath:     msteams.ViewPath(cm.ID),
	}, nil
}
