package msteams

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

// ModuleName is the activity module type key the host discovers us by.
const ModuleName = "msteams"

var (
	// errors
	ErrNotFound = errors.New("msteams instance not found")
)

// Optional host features a module type may support. The host probes these
// through Supports before enabling the matching behavior.
const (
	FeatureGroups                = "groups"
	FeatureGroupings             = "groupings"
	FeatureModIntro              = "mod_intro"
	FeatureCompletionTracksViews = "completion_tracks_views"
	FeatureGradeHasGrade         = "grade_has_grade"
	FeatureGradeOutcomes         = "grade_outcomes"
	FeatureBackup                = "backup"
	FeatureShowDescription       = "show_description"
)

// ArchetypeResource marks this module as a static resource, not an assessed activity.
const ArchetypeResource = "resource"

var supportedFeatures = map[string]bool{
	FeatureGroups:                false,
	FeatureGroupings:             false,
	FeatureModIntro:              true,
	FeatureCompletionTracksViews: true,
	FeatureGradeHasGrade:         false,
	FeatureGradeOutcomes:         false,
	FeatureBackup:                true,
	FeatureShowDescription:       true,
}

// Icons shown in the course listing, picked per external URL.
const (
	IconTeams = "mod/msteams/pix/icon"
	IconLink  = "mod/msteams/pix/link"
)

// Instance is one "MS Teams link" activity. It always belongs to exactly one
// course-module; the host owns the read path (listing, rendering, export).
type Instance struct {
	ID                 string    `json:"id"`
	CourseID           string    `json:"course_id"`
	CourseModuleID     string    `json:"course_module_id"`
	Name               string    `json:"name"`
	Intro              string    `json:"intro"`
	IntroFormat        int       `json:"intro_format"`
	ExternalURL        string    `json:"external_url"`
	CompletionExpected time.Time `json:"completion_expected"` // UTC; zero = none
	TimeModified       time.Time `json:"time_modified"`       // UTC
}

// NewInstance contains information needed to create a new Instance.
type NewInstance struct {
	CourseID           string    `json:"course_id" validate:"required"`
	CourseModuleID     string    `json:"course_module_id" validate:"required"`
	Name               string    `json:"name" validate:"required"`
	Intro              string    `json:"intro"`
	IntroFormat        int       `json:"intro_format"`
	ExternalURL        string    `json:"external_url" validate:"required,weburl"`
	CompletionExpected time.Time `json:"completion_expected"`
}

func (ni *NewInstance) Validate() error {
	ni.Name = core.CleanString(ni.Name)
	ni.Intro = strings.TrimSpace(ni.Intro)
	ni.ExternalURL = core.FixURL(ni.ExternalURL)
	return core.Validate.Struct(ni)
}

// UpdateInstance defines what information may be provided to modify an
// existing Instance. Empty fields keep their current value.
type UpdateInstance struct {
	Name               string     `json:"name"`
	Intro              *string    `json:"intro"`
	IntroFormat        *int       `json:"intro_format"`
	ExternalURL        string     `json:"external_url" validate:"omitempty,weburl"`
	CompletionExpected *time.Time `json:"completion_expected"`
}

func (ui *UpdateInstance) Validate(orig Instance) error {
	name := core.CleanString(ui.Name)
	if name != "" {
		ui.Name = name
	} else {
		ui.Name = orig.Name
	}

	extURL := core.FixURL(ui.ExternalURL)
	if extURL != "" {
		ui.ExternalURL = extURL
	} else {
		ui.ExternalURL = orig.ExternalURL
	}

	return core.Validate.Struct(ui)
}

// Content is one exportable content item packaged for the host's
// backup/archival engine.
type Content struct {
	Type         string    `json:"type"`
	Filename     string    `json:"filename"`
	FileURL      string    `json:"fileurl"`
	SortOrder    int       `json:"sortorder"`
	TimeModified time.Time `json:"timemodified"`
}

// UpdateStatus reports what changed on a course-module since a timestamp.
type UpdateStatus struct {
	Configuration ItemStatus `json:"configuration"`
}

type ItemStatus struct {
	Updated   bool      `json:"updated"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type Repository interface {
	CreateInstance(ctx context.Context, inst Instance, exec ...core.DBExecutor) (Instance, error)
	GetInstanceByID(ctx context.Context, id string, exec ...core.DBExecutor) (Instance, error)
	GetInstanceByCourseModule(ctx context.Context, cmID string, exec ...core.DBExecutor) (Instance, error)
	QueryCourseInstances(ctx context.Context, courseID string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Instance, error)
	UpdateInstance(ctx context.Context, inst Instance, exec ...core.DBExecutor) (Instance, error)
	DeleteInstancesByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
}

// Supports answers the host's capability probe for a feature key. nil means
// the feature is unknown to this module.
func Supports(feature string) *bool {
	if val, ok := supportedFeatures[feature]; ok {
		return &val
	}
	return nil
}

// Archetype returns the module archetype the host uses to group module types.
func Archetype() string {
	return ArchetypeResource
}

// Features returns a copy of the full capability table.
func Features() map[string]bool {
	features := make(map[string]bool, len(supportedFeatures))
	for feature, supported := range supportedFeatures {
		features[feature] = supported
	}
	return features
}

// IconURL picks the course-listing icon for an external URL: links into
// Microsoft Teams get the branded icon, anything else the generic link icon.
func IconURL(extURL string) string {
	u, err := url.Parse(extURL)
	if err != nil {
		return IconLink
	}
	host := strings.ToLower(u.Hostname())
	if host == "teams.microsoft.com" ||
		strings.HasSuffix(host, ".teams.microsoft.com") ||
		host == "teams.live.com" ||
		strings.HasSuffix(host, ".teams.live.com") {
		return IconTeams
	}
	return IconLink
}
