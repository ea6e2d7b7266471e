package langdetect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/scopelight/pkg/langdetect"
)

func TestTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		filename  string
		firstLine string
		expected  []string
	}{
		{
			name:     "by extension",
			filename: "main.go",
			expected: []string{"go"},
		},
		{
			name:      "by shebang",
			filename:  "run",
			firstLine: "#!/usr/bin/env python3",
			expected:  []string{"python"},
		},
		{
			name:     "by well known file name",
			filename: "Makefile",
			expected: []string{"makefile"},
		},
		{
			name:      "shebang ordered before extension",
			filename:  "script.py",
			firstLine: "#!/usr/bin/env ruby",
			expected:  []string{"ruby", "python"},
		},
		{
			name:      "duplicates collapse",
			filename:  "script.py",
			firstLine: "#!/usr/bin/env python",
			expected:  []string{"python"},
		},
		{
			name:     "shell aliases to bash",
			filename: "deploy.sh",
			expected: []string{"bash"},
		},
		{
			name:     "cpp alias",
			filename: "vec.cpp",
			expected: []string{"cpp"},
		},
		{
			name:     "no candidates",
			filename: "data.zzznope",
			expected: nil,
		},
		{
			name:     "generic text dropped",
			filename: "notes.txt",
			expected: nil,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			got := langdetect.Tags(testCase.filename, testCase.firstLine)
			assert.Equal(t, testCase.expected, got)
		})
	}
}
