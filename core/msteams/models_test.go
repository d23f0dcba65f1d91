package msteams

import "testing"

func TestSupports(t *testing.T) {
	boolPtr := func(b bool) *bool { return &b }

	tests := []struct {
		feature string
		want    *bool
	}{
		{feature: FeatureGroups, want: boolPtr(false)},
		{feature: FeatureGroupings, want: boolPtr(false)},
		{feature: FeatureModIntro, want: boolPtr(true)},
		{feature: FeatureCompletionTracksViews, want: boolPtr(true)},
		{feature: FeatureGradeHasGrade, want: boolPtr(false)},
		{feature: FeatureGradeOutcomes, want: boolPtr(false)},
		{feature: FeatureBackup, want: boolPtr(true)},
		{feature: FeatureShowDescription, want: boolPtr(true)},
		{feature: "frankenstyle_nonsense", want: nil},
		{feature: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.feature, func(t *testing.T) {
			got := Supports(tt.feature)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Supports(%q) = %v; want %v", tt.feature, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Supports(%q) = %v; want %v", tt.feature, *got, *tt.want)
			}
		})
	}
}

func TestArchetype(t *testing.T) {
	if got := Archetype(); got != ArchetypeResource {
		t.Errorf("Archetype() = %q; want %q", got, ArchetypeResource)
	}
}

func TestFeatures_isACopy(t *testing.T) {
	features := Features()
	features[FeatureBackup] = false

	if got := Supports(FeatureBackup); got == nil || !*got {
		t.Error("mutating Features() must not affect Supports()")
	}
}

func TestIconURL(t *testing.T) {
	tests := []struct {
		name   string
		extURL string
		want   string
	}{
		{name: "teams meeting link", extURL: "https://teams.microsoft.com/l/meetup-join/abc", want: IconTeams},
		{name: "teams subdomain", extURL: "https://gov.teams.microsoft.com/l/x", want: IconTeams},
		{name: "teams live", extURL: "https://teams.live.com/meet/12345", want: IconTeams},
		{name: "case-insensitive host", extURL: "https://Teams.Microsoft.Com/l/x", want: IconTeams},
		{name: "lookalike host", extURL: "https://nonteams.microsoft.com.evil.io/x", want: IconLink},
		{name: "plain link", extURL: "https://example.com/room", want: IconLink},
		{name: "server-relative", extURL: "/local/page", want: IconLink},
		{name: "empty", extURL: "", want: IconLink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IconURL(tt.extURL); got != tt.want {
				t.Errorf("IconURL(%q) = %q; want %q", tt.extURL, got, tt.want)
			}
		})
	}
}

func TestNewInstance_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ni      NewInstance
		wantErr bool
		check   func(t *testing.T, ni NewInstance)
	}{
		{
			name: "normalizes fields",
			ni: NewInstance{
				CourseID:       "c1",
				CourseModuleID: "cm1",
				Name:           "  Weekly Sync ",
				Intro:          "  join us \n",
				ExternalURL:    "teams.microsoft.com/l/meetup-join/abc",
			},
			check: func(t *testing.T, ni NewInstance) {
				if ni.Name != "Weekly Sync" {
					t.Errorf("Name = %q", ni.Name)
				}
				if ni.Intro != "join us" {
					t.Errorf("Intro = %q", ni.Intro)
				}
				if ni.ExternalURL != "http://teams.microsoft.com/l/meetup-join/abc" {
					t.Errorf("ExternalURL = %q", ni.ExternalURL)
				}
			},
		},
		{
			name: "missing name",
			ni: NewInstance{
				CourseID:       "c1",
				CourseModuleID: "cm1",
				Name:           "   ",
				ExternalURL:    "https://example.com",
			},
			wantErr: true,
		},
		{
			name: "missing external url",
			ni: NewInstance{
				CourseID:       "c1",
				CourseModuleID: "cm1",
				Name:           "Weekly Sync",
			},
			wantErr: true,
		},
		{
			name: "url with spaces in path accepted once escaped",
			ni: NewInstance{
				CourseID:       "c1",
				CourseModuleID: "cm1",
				Name:           "Weekly Sync",
				ExternalURL:    "example.com/a b",
			},
			check: func(t *testing.T, ni NewInstance) {
				if ni.ExternalURL != "http://example.com/a%20b" {
					t.Errorf("ExternalURL = %q", ni.ExternalURL)
				}
			},
		},
		{
			name: "server-relative url accepted",
			ni: NewInstance{
				CourseID:       "c1",
				CourseModuleID: "cm1",
				Name:           "Local",
				ExternalURL:    "/local/page",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ni.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, tt.ni)
			}
		})
	}
}

func TestUpdateInstance_Validate(t *testing.T) {
	orig := Instance{
		Name:        "Weekly Sync",
		ExternalURL: "https://example.com/room",
	}

	t.Run("empty fields fall back to original", func(t *testing.T) {
		ui := UpdateInstance{}
		if err := ui.Validate(orig); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if ui.Name != orig.Name {
			t.Errorf("Name = %q; want %q", ui.Name, orig.Name)
		}
		if ui.ExternalURL != orig.ExternalURL {
			t.Errorf("ExternalURL = %q; want %q", ui.ExternalURL, orig.ExternalURL)
		}
	})

	t.Run("new url normalized", func(t *testing.T) {
		ui := UpdateInstance{ExternalURL: "teams.live.com/meet/1"}
		if err := ui.Validate(orig); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if ui.ExternalURL != "http://teams.live.com/meet/1" {
			t.Errorf("ExternalURL = %q", ui.ExternalURL)
		}
	})
}
