package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
	testutil "github.com/EsdrasCaleb/moodle-mod-msteams/tests"
)

func seedModule(t *testing.T, completion int) (course.Course, course.CourseModule) {
	t.Helper()
	crs := testutil.CreateCourse(t, courseRepo, "sync101", "Weekly Syncs 101")
	cm := testutil.CreateCourseModule(t, courseRepo, crs.ID, completion, true, true)
	return crs, cm
}

func Test_instanceApi_authRequired(t *testing.T) {
	tests := []httpTest{
		{name: "features", method: http.MethodGet, path: "/v1/msteams/features"},
		{name: "create", method: http.MethodPost, path: "/v1/msteams"},
		{name: "retrieve", method: http.MethodGet, path: "/v1/msteams/lol"},
		{name: "view", method: http.MethodGet, path: "/msteams/view?id=lol"},
		{name: "module info", method: http.MethodGet, path: "/v1/course-modules/lol/info"},
		{name: "event action", method: http.MethodGet, path: "/v1/events/lol/action"},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusUnauthorized
		tt.wantData = marchallObj(t, errMissingToken)

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_instanceApi_features(t *testing.T) {
	tt := httpTest{
		method: http.MethodGet, path: "/v1/msteams/features", token: getToken(t, "u1"),
		wantCode: http.StatusOK,
		wantData: marchallObj(t, map[string]interface{}{
			"archetype": msteams.Archetype(),
			"features":  msteams.Features(),
		}),
	}
	req, rec := newAuthRequest(tt.method, tt.path, tt.token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_instanceApi_instanceCRUD(t *testing.T) {
	crs, cm := seedModule(t, course.TrackingNone)
	token := getToken(t, "author")

	// create
	body := marchallObj(t, msteams.NewInstance{
		CourseID:       crs.ID,
		CourseModuleID: cm.ID,
		Name:           "  Weekly Sync ",
		Intro:          "join us",
		ExternalURL:    "teams.microsoft.com/l/meetup-join/abc",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/msteams", token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code = %v; want %v: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var inst msteams.Instance
	if err := json.Unmarshal(rec.Body.Bytes(), &inst); err != nil {
		t.Fatalf("create: decoding response: %v", err)
	}
	if inst.Name != "Weekly Sync" {
		t.Errorf("create: Name = %q", inst.Name)
	}
	if inst.ExternalURL != "http://teams.microsoft.com/l/meetup-join/abc" {
		t.Errorf("create: ExternalURL = %q", inst.ExternalURL)
	}

	tests := []httpTest{
		{
			name: "retrieve", method: http.MethodGet, path: "/v1/msteams/" + inst.ID, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, inst),
		},
		{
			name: "query by course", method: http.MethodGet, path: "/v1/msteams?course_id=" + crs.ID, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, []msteams.Instance{inst}),
		},
		{
			name: "query requires course_id", method: http.MethodGet, path: "/v1/msteams", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"course_id": "this query parameter is required"}),
		},
		{
			name: "retrieve unknown", method: http.MethodGet, path: "/v1/msteams/lol", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "msteams instance not found"}),
		},
		{
			name: "create missing url", method: http.MethodPost, path: "/v1/msteams", token: token,
			body: marchallObj(t, msteams.NewInstance{CourseID: crs.ID, CourseModuleID: cm.ID, Name: "No URL"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"external_url": "this field is required"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// update
	body = marchallObj(t, msteams.UpdateInstance{Name: "Moved Sync"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/msteams/"+inst.ID, token, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: code = %v: %s", rec.Code, rec.Body.String())
	}
	var updated msteams.Instance
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("update: decoding response: %v", err)
	}
	if updated.Name != "Moved Sync" {
		t.Errorf("update: Name = %q", updated.Name)
	}
	if updated.ExternalURL != inst.ExternalURL {
		t.Errorf("update: ExternalURL = %q; want kept %q", updated.ExternalURL, inst.ExternalURL)
	}

	// destroy
	req, rec = newAuthRequest(http.MethodDelete, "/v1/msteams/"+inst.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("destroy: code = %v: %s", rec.Code, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/msteams/"+inst.ID, token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusNotFound,
		wantData: marchallObj(t, httpErr{Error: "msteams instance not found"}),
	}, rec)
}

func Test_instanceApi_view(t *testing.T) {
	crs, cm := seedModule(t, course.TrackingAutomatic)
	inst := testutil.CreateInstance(t, instSvc, crs.ID, cm.ID, "Weekly Sync", "https://example.com/room")
	token := getToken(t, "u1")

	t.Run("redirects and completes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/msteams/view?id="+cm.ID+"&redirect=1", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("code = %v; want %v: %s", rec.Code, http.StatusSeeOther, rec.Body.String())
		}
		if loc := rec.Header().Get("Location"); loc != inst.ExternalURL {
			t.Errorf("Location = %q; want %q", loc, inst.ExternalURL)
		}

		state, err := completionRepo.GetCompletionState(context.Background(), cm.ID, "u1")
		if err != nil {
			t.Fatalf("GetCompletionState() error = %v", err)
		}
		if state != course.CompletionComplete {
			t.Errorf("completion state = %v; want complete", state)
		}
	})

	t.Run("without redirect returns the instance", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodGet, path: "/msteams/view?id=" + cm.ID, token: token,
			wantCode: http.StatusOK, wantData: marchallObj(t, inst),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown course-module", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodGet, path: "/msteams/view?id=lol", token: token,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "course module not found"}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("missing id", func(t *testing.T) {
		tt := httpTest{
			method: http.MethodGet, path: "/msteams/view", token: token,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"id": "this query parameter is required"}),
		}
		req, rec := newAuthRequest(tt.method, tt.path, tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_instanceApi_moduleInfo(t *testing.T) {
	crs, cm := seedModule(t, course.TrackingNone)
	req, rec := newAuthRequest(http.MethodPost, "/v1/msteams", getToken(t, "author"), marchallObj(t, msteams.NewInstance{
		CourseID:       crs.ID,
		CourseModuleID: cm.ID,
		Name:           "Weekly Sync",
		Intro:          "join us",
		ExternalURL:    "https://teams.microsoft.com/l/meetup-join/abc",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: code = %v: %s", rec.Code, rec.Body.String())
	}

	tt := httpTest{
		method: http.MethodGet, path: "/v1/course-modules/" + cm.ID + "/info", token: getToken(t, "u1"),
		wantCode: http.StatusOK,
		wantData: marchallObj(t, course.ModuleInfo{
			Name:    "Weekly Sync",
			Icon:    msteams.IconTeams,
			OnClick: fmt.Sprintf("window.open('%s%s'); return false;", conf.FrontendBaseURL, msteams.ViewPath(cm.ID)),
			Content: "join us",
		}),
	}
	req, rec = newAuthRequest(tt.method, tt.path, tt.token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_instanceApi_moduleContents(t *testing.T) {
	crs, cm := seedModule(t, course.TrackingNone)
	inst := testutil.CreateInstance(t, instSvc, crs.ID, cm.ID, "Weekly Sync", "https://example.com/room")

	tt := httpTest{
		method: http.MethodGet, path: "/v1/course-modules/" + cm.ID + "/contents", token: getToken(t, "u1"),
		wantCode: http.StatusOK,
		wantData: marchallObj(t, []msteams.Content{{
			Type:         "url",
			Filename:     inst.Name,
			FileURL:      inst.ExternalURL,
			TimeModified: inst.TimeModified,
		}}),
	}
	req, rec := newAuthRequest(tt.method, tt.path, tt.token)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_instanceApi_moduleUpdates(t *testing.T) {
	crs, cm := seedModule(t, course.TrackingNone)
	testutil.CreateInstance(t, instSvc, crs.ID, cm.ID, "Weekly Sync", "https://example.com/room")
	token := getToken(t, "u1")

	path := func(since time.Time) string {
		return "/v1/course-modules/" + cm.ID + "/updates?since=" + url.QueryEscape(since.Format(time.RFC3339))
	}

	t.Run("updated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(time.Now().Add(-time.Hour)), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v: %s", rec.Code, rec.Body.String())
		}
		var status msteams.UpdateStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if !status.Configuration.Updated {
			t.Error("Configuration.Updated = false; want true")
		}
	})

	t.Run("not updated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path(time.Now().Add(time.Hour)), token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v: %s", rec.Code, rec.Body.String())
		}
		var status msteams.UpdateStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if status.Configuration.Updated {
			t.Error("Configuration.Updated = true; want false")
		}
	})

	t.Run("bad since", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"since": "must be a valid RFC 3339 timestamp"}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/course-modules/"+cm.ID+"/updates?since=lol", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}

func Test_instanceApi_eventAction(t *testing.T) {
	crs, cm := seedModule(t, course.TrackingAutomatic)
	expected := time.Now().Add(24 * time.Hour).UTC()
	inst := testutil.CreateInstance(t, instSvc, crs.ID, cm.ID, "Weekly Sync", "https://example.com/room", expected)

	evt, err := eventRepo.GetModuleEvent(context.Background(), msteams.ModuleName, inst.ID, calendar.EventTypeExpectCompletion)
	if err != nil {
		t.Fatalf("GetModuleEvent() error = %v", err)
	}
	token := getToken(t, "u9")

	t.Run("pending user gets a view action", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusOK,
			wantData: marchallObj(t, calendar.Action{
				Name:       "View",
				URL:        conf.FrontendBaseURL + msteams.ViewPath(cm.ID),
				ItemCount:  1,
				Actionable: true,
			}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID+"/action", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("completed user gets none", func(t *testing.T) {
		if err := completionRepo.SetCompletionState(context.Background(), cm.ID, "u9", course.CompletionComplete, time.Now().UTC()); err != nil {
			t.Fatalf("SetCompletionState() error = %v", err)
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/"+evt.ID+"/action", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("unknown event", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "calendar event not found"}),
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/events/lol/action", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})
}
