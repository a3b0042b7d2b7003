package match

import (
	"reflect"
	"testing"
)

func TestParseProfileRequirements(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		skills     []string
		wantMusts  []string
		wantProf   []string
		wantLangs  []string
	}{
		{
			name:      "mandatory clause restricted to known skills",
			text:      "Docker is required for this role\nFamiliarity with CI/CD pipelines",
			skills:    []string{"Docker", "Kubernetes"},
			wantMusts: []string{"docker"},
			wantProf:  []string{"Familiarity with CI/CD pipelines"},
		},
		{
			name:      "generic mandatory clause yields no must-haves",
			text:      "Must have 3 years experience; team player",
			skills:    []string{"React"},
			wantMusts: nil,
			wantProf:  []string{"team player"},
		},
		{
			name:      "no vocabulary keeps all clause keywords",
			text:      "Python mandatory",
			skills:    nil,
			wantMusts: []string{"mandatory", "python"},
		},
		{
			name:      "french mandatory marker",
			text:      "React obligatoire\nBonne communication",
			skills:    []string{"react.js"},
			wantMusts: []string{"react"},
			wantProf:  []string{"Bonne communication"},
		},
		{
			name:      "language detection over whole text",
			text:      "Anglais courant\nBonne maîtrise du français",
			wantProf:  []string{"Anglais courant", "Bonne maîtrise du français"},
			wantLangs: []string{"english", "french"},
		},
		{
			name:      "own language spelling",
			text:      "Deutsch und Italiano erforderlich",
			wantProf:  []string{"Deutsch und Italiano erforderlich"},
			wantLangs: []string{"german", "italian"},
		},
		{
			name: "bullets and empties discarded",
			text: "• React required;; \n - \n",
			skills: []string{"react"},
			wantMusts: []string{"react"},
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseProfileRequirements(tt.text, tt.skills)
			if !reflect.DeepEqual(got.MustHaves, tt.wantMusts) {
				t.Errorf("MustHaves = %v, want %v", got.MustHaves, tt.wantMusts)
			}
			if !reflect.DeepEqual(got.Profile, tt.wantProf) {
				t.Errorf("Profile = %v, want %v", got.Profile, tt.wantProf)
			}
			if !reflect.DeepEqual(got.Languages, tt.wantLangs) {
				t.Errorf("Languages = %v, want %v", got.Languages, tt.wantLangs)
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	text := "Python required; Docker obligatoire; anglais et espagnol"
	skills := []string{"python", "docker"}

	first := ParseProfileRequirements(text, skills)
	for i := 0; i < 10; i++ {
		again := ParseProfileRequirements(text, skills)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("parse not deterministic: %v vs %v", first, again)
		}
	}
}
