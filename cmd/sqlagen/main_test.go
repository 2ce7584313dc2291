package main

import (
	"testing"

	"go.uber.org/zap"

	"sqlagen"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single item",
			input: "users",
			want:  []string{"users"},
		},
		{
			name:  "multiple items",
			input: "users,posts,comments",
			want:  []string{"users", "posts", "comments"},
		},
		{
			name:  "items with spaces",
			input: "users, posts, comments",
			want:  []string{"users", "posts", "comments"},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseList(tt.input)

			if len(got) != len(tt.want) {
				t.Errorf("parseList() returned %d items, want %d", len(got), len(tt.want))
				return
			}
			for i, item := range got {
				if item != tt.want[i] {
					t.Errorf("parseList() item[%d] = %s, want %s", i, item, tt.want[i])
				}
			}
		})
	}
}

func TestApplyGeneratorOptions(t *testing.T) {
	logger = zap.NewNop()

	tests := []struct {
		name              string
		input             string
		wantNoIndexes     bool
		wantNoConstraints bool
		wantNoComments    bool
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:          "single option",
			input:         "noindexes",
			wantNoIndexes: true,
		},
		{
			name:              "all options",
			input:             "noindexes,noconstraints,nocomments",
			wantNoIndexes:     true,
			wantNoConstraints: true,
			wantNoComments:    true,
		},
		{
			name:              "options with spaces",
			input:             "noconstraints, nocomments",
			wantNoConstraints: true,
			wantNoComments:    true,
		},
		{
			name:          "unknown option ignored",
			input:         "norelationships,noindexes",
			wantNoIndexes: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts sqlagen.Options
			applyGeneratorOptions(&opts, tt.input)

			if opts.NoIndexes != tt.wantNoIndexes {
				t.Errorf("NoIndexes = %v, want %v", opts.NoIndexes, tt.wantNoIndexes)
			}
			if opts.NoConstraints != tt.wantNoConstraints {
				t.Errorf("NoConstraints = %v, want %v", opts.NoConstraints, tt.wantNoConstraints)
			}
			if opts.NoComments != tt.wantNoComments {
				t.Errorf("NoComments = %v, want %v", opts.NoComments, tt.wantNoComments)
			}
		})
	}
}
