package msteams

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
)

// Service is the module's hook table: every method matches one extension
// point the host framework invokes by naming convention.
type Service struct {
	repo       Repository
	courseRepo course.Repository
	tracker    *course.Tracker
	scheduler  *calendar.Scheduler
	events     core.EventEmitter
	conf       *core.Config
}

func NewService(
	repo Repository,
	courseRepo course.Repository,
	tracker *course.Tracker,
	scheduler *calendar.Scheduler,
	events core.EventEmitter,
	conf *core.Config,
) *Service {
	return &Service{
		repo:       repo,
		courseRepo: courseRepo,
		tracker:    tracker,
		scheduler:  scheduler,
		events:     events,
		conf:       conf,
	}
}

// ViewPath is the path of the module's only user-facing page for a
// course-module; redirect=1 sends the browser straight to the external URL.
func ViewPath(cmID string) string {
	return "/msteams/view?id=" + cmID + "&redirect=1"
}

func (svc *Service) viewURL(cmID string) string {
	return svc.conf.FrontendBaseURL + ViewPath(cmID)
}

// AddInstance validates and stores a new instance, binds it to its
// course-module and schedules the completion-expected calendar event.
func (svc *Service) AddInstance(ctx context.Context, ni NewInstance) (Instance, error) {
	if err := ni.Validate(); err != nil {
		return Instance{}, err
	}

	cm, err := svc.courseRepo.GetCourseModuleByID(ctx, ni.CourseModuleID)
	if err != nil {
		return Instance{}, errors.Wrap(err, "finding course module")
	}

	inst := Instance{
		CourseID:           ni.CourseID,
		CourseModuleID:     ni.CourseModuleID,
		Name:               ni.Name,
		Intro:              ni.Intro,
		IntroFormat:        ni.IntroFormat,
		ExternalURL:        ni.ExternalURL,
		CompletionExpected: ni.CompletionExpected,
		TimeModified:       time.Now().UTC(),
	}
	inst, err = svc.repo.CreateInstance(ctx, inst)
	if err != nil {
		return Instance{}, errors.Wrap(err, "creating instance")
	}

	cm.InstanceID = inst.ID
	if _, err = svc.courseRepo.UpdateCourseModule(ctx, cm); err != nil {
		return Instance{}, errors.Wrap(err, "binding course module")
	}

	if err = svc.scheduler.UpdateCompletionDateEvent(
		ctx, ModuleName, inst.ID, inst.Name, inst.CourseID, inst.CompletionExpected,
	); err != nil {
		return Instance{}, errors.Wrap(err, "scheduling completion event")
	}
	return inst, nil
}

// UpdateInstance validates and stores changed fields and reschedules the
// completion-expected calendar event.
func (svc *Service) UpdateInstance(ctx context.Context, id string, ui UpdateInstance) (Instance, error) {
	orig, err := svc.repo.GetInstanceByID(ctx, id)
	if err != nil {
		return Instance{}, err
	}
	if err = ui.Validate(orig); err != nil {
		return Instance{}, err
	}

	inst := orig
	inst.Name = ui.Name
	inst.ExternalURL = ui.ExternalURL
	if ui.Intro != nil {
		inst.Intro = strings.TrimSpace(*ui.Intro)
	}
	if ui.IntroFormat != nil {
		inst.IntroFormat = *ui.IntroFormat
	}
	if ui.CompletionExpected != nil {
		inst.CompletionExpected = ui.CompletionExpected.UTC()
		if ui.CompletionExpected.IsZero() {
			inst.CompletionExpected = time.Time{}
		}
	}
	inst.TimeModified = time.Now().UTC()

	inst, err = svc.repo.UpdateInstance(ctx, inst)
	if err != nil {
		return Instance{}, errors.Wrap(err, "updating instance")
	}

	if err = svc.scheduler.UpdateCompletionDateEvent(
		ctx, ModuleName, inst.ID, inst.Name, inst.CourseID, inst.CompletionExpected,
	); err != nil {
		return Instance{}, errors.Wrap(err, "rescheduling completion event")
	}
	return inst, nil
}

// DeleteInstance removes the completion event, the completion records and the
// instance record itself. ErrNotFound when the id is unknown.
func (svc *Service) DeleteInstance(ctx context.Context, id string) error {
	inst, err := svc.repo.GetInstanceByID(ctx, id)
	if err != nil {
		return err
	}

	if err = svc.scheduler.UpdateCompletionDateEvent(
		ctx, ModuleName, inst.ID, inst.Name, inst.CourseID, time.Time{},
	); err != nil {
		return errors.Wrap(err, "removing completion event")
	}
	if err = svc.tracker.Reset(ctx, inst.CourseModuleID); err != nil {
		return err
	}

	cnt, err := svc.repo.DeleteInstancesByID(ctx, []string{id})
	if err != nil {
		return errors.Wrap(err, "deleting instance")
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

// CourseModuleInfo builds the course-listing metadata for a course-module:
// the display name, an icon derived from the external URL and an inline-open
// click handler pointing at the view page.
func (svc *Service) CourseModuleInfo(ctx context.Context, cm course.CourseModule) (*course.ModuleInfo, error) {
	inst, err := svc.repo.GetInstanceByCourseModule(ctx, cm.ID)
	if err != nil {
		return nil, err
	}

	info := &course.ModuleInfo{
		Name:    inst.Name,
		Icon:    IconURL(inst.ExternalURL),
		OnClick: fmt.Sprintf("window.open('%s'); return false;", svc.viewURL(cm.ID)),
	}
	if cm.ShowDescription {
		info.Content = inst.Intro
	}
	return info, nil
}

// ExportContents packages the external URL as a single exportable content
// item. An instance with an empty URL exports nothing.
func (svc *Service) ExportContents(ctx context.Context, cm course.CourseModule, baseURL string) ([]Content, error) {
	inst, err := svc.repo.GetInstanceByCourseModule(ctx, cm.ID)
	if err != nil {
		return nil, err
	}
	if inst.ExternalURL == "" {
		return nil, nil
	}

	fileURL := inst.ExternalURL
	if strings.HasPrefix(fileURL, "/") { // server-relative URLs resolve against the host
		fileURL = strings.TrimRight(baseURL, "/") + fileURL
	}
	return []Content{{
		Type:         "url",
		Filename:     inst.Name,
		FileURL:      fileURL,
		SortOrder:    0,
		TimeModified: inst.TimeModified,
	}}, nil
}

// View emits the course_module_viewed event with course and instance
// snapshots, then updates the user's completion state.
func (svc *Service) View(ctx context.Context, inst Instance, crs course.Course, cm course.CourseModule, userID string) error {
	svc.events.Emit(ctx, core.Event{
		Name:        core.EventCourseModuleViewed,
		ObjectTable: ModuleName,
		ObjectID:    inst.ID,
		CourseID:    crs.ID,
		UserID:      userID,
		Other: map[string]interface{}{
			"course_shortname": crs.ShortName,
			"course_fullname":  crs.FullName,
			"instance_name":    inst.Name,
			"external_url":     inst.ExternalURL,
			"course_module_id": cm.ID,
		},
		Time: time.Now().UTC(),
	})

	return svc.tracker.MarkViewed(ctx, cm, userID)
}

// CheckUpdatesSince delegates to the generic "configuration changed since"
// check on the instance's last-modified timestamp.
func (svc *Service) CheckUpdatesSince(ctx context.Context, cm course.CourseModule, from time.Time) (UpdateStatus, error) {
	inst, err := svc.repo.GetInstanceByCourseModule(ctx, cm.ID)
	if err != nil {
		return UpdateStatus{}, err
	}

	status := UpdateStatus{}
	if inst.TimeModified.After(from) {
		status.Configuration = ItemStatus{Updated: true, Timestamp: inst.TimeModified}
	}
	return status, nil
}

// CalendarEventAction resolves the action the calendar UI should expose for
// one of our events. Users who already completed the activity get none.
func (svc *Service) CalendarEventAction(ctx context.Context, evt calendar.Event, userID string) (*calendar.Action, error) {
	cm, err := svc.courseRepo.GetCourseModuleByInstance(ctx, ModuleName, evt.InstanceID)
	if err != nil {
		return nil, errors.Wrap(err, "finding course module")
	}

	state, err := svc.tracker.State(ctx, cm, userID)
	if err != nil {
		return nil, err
	}
	if state.IsComplete() {
		return nil, nil
	}

	return &calendar.Action{
		Name:       "View",
		URL:        svc.viewURL(cm.ID),
		ItemCount:  1,
		Actionable: cm.Visible,
	}, nil
}

// GetByID and friends expose the read path for the API layer.

func (svc *Service) GetByID(ctx context.Context, id string) (Instance, error) {
	return svc.repo.GetInstanceByID(ctx, id)
}

func (svc *Service) GetByCourseModule(ctx context.Context, cmID string) (Instance, error) {
	return svc.repo.GetInstanceByCourseModule(ctx, cmID)
}

func (svc *Service) QueryCourse(ctx context.Context, courseID string) ([]Instance, error) {
	return svc.repo.QueryCourseInstances(ctx, courseID, []core.DBOrdering{{Field: "name", Ascending: true}})
}
