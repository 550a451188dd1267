package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		file      File
		wantPaths []string
	}{
		{
			name: "valid",
			file: File{
				DefaultProfile: "a",
				Profiles:       map[string]Profile{"a": {Host: "localhost", Prefix: "dev"}},
			},
		},
		{
			name: "missing default",
			file: File{
				DefaultProfile: "b",
				Profiles:       map[string]Profile{"a": {}},
			},
			wantPaths: []string{"defaultProfile"},
		},
		{
			name: "scheme in host",
			file: File{
				Profiles: map[string]Profile{"a": {Host: "http://localhost"}},
			},
			wantPaths: []string{"profiles.a.host"},
		},
		{
			name: "bad prefix",
			file: File{
				Profiles: map[string]Profile{"a": {Prefix: "a/b"}},
			},
			wantPaths: []string{"profiles.a.prefix"},
		},
		{
			name: "https on port 80",
			file: File{
				Profiles: map[string]Profile{"a": {Proto: "https", Port: 80}},
			},
			wantPaths: []string{"profiles.a.port"},
		},
		{
			name: "errors reported in profile order",
			file: File{
				Profiles: map[string]Profile{
					"z": {Host: "https://z"},
					"a": {Prefix: "a b"},
				},
			},
			wantPaths: []string{"profiles.a.prefix", "profiles.z.host"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.file)
			var paths []string
			for _, e := range errs {
				paths = append(paths, e.Path)
				assert.Contains(t, e.Error(), e.Path+": ")
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}
