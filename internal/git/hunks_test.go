package git

import "testing"

func TestNormalizeHunkHeaders(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "ReplaceWithoutContext",
			input: "@@ -5 +4 @@ 4\n-5\n+FIVE\n",
			want:  "@@ -5 +5 @@\n-5\n+FIVE\n",
		},
		{
			name:  "HeadingDropped",
			input: "@@ -4,3 +4,3 @@ 3\n 4\n-5\n+FIVE\n 6\n",
			want:  "@@ -4,3 +4,3 @@\n 4\n-5\n+FIVE\n 6\n",
		},
		{
			name: "OffsetCarriesAcrossHunks",
			input: "@@ -3,0 +3,2 @@\n+x\n+y\n" +
				"@@ -5 +6 @@\n-e\n" +
				"@@ -7 +7 @@\n-g\n+G\n",
			want: "@@ -2,0 +3,2 @@\n+x\n+y\n" +
				"@@ -5 +6,0 @@\n-e\n" +
				"@@ -7 +8 @@\n-g\n+G\n",
		},
		{
			name: "OffsetResetsPerFile",
			input: "diff --git a/a b/a\n--- a/a\n+++ b/a\n@@ -1,0 +1 @@\n+top\n" +
				"diff --git a/b b/b\n--- a/b\n+++ b/b\n@@ -4 +3 @@\n-x\n+y\n",
			want: "diff --git a/a b/a\n--- a/a\n+++ b/a\n@@ -0,0 +1 @@\n+top\n" +
				"diff --git a/b b/b\n--- a/b\n+++ b/b\n@@ -4 +4 @@\n-x\n+y\n",
		},
		{
			name:  "NewFile",
			input: "--- /dev/null\n+++ b/f\n@@ -0,0 +1,2 @@\n+a\n+b\n",
			want:  "--- /dev/null\n+++ b/f\n@@ -0,0 +1,2 @@\n+a\n+b\n",
		},
		{
			name:  "DeletedFile",
			input: "--- a/f\n+++ /dev/null\n@@ -1,2 +0,0 @@\n-a\n-b\n",
			want:  "--- a/f\n+++ /dev/null\n@@ -1,2 +0,0 @@\n-a\n-b\n",
		},
		{
			name:  "NoNewlineMarker",
			input: "@@ -3 +2 @@ x\n-c\n\\ No newline at end of file\n+C\n\\ No newline at end of file\n",
			want:  "@@ -3 +3 @@\n-c\n\\ No newline at end of file\n+C\n\\ No newline at end of file\n",
		},
		{
			name:  "NotAHunk",
			input: "@@ garbage\n+x\n",
			want:  "@@ garbage\n+x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeHunkHeaders(tt.input); got != tt.want {
				t.Errorf("normalizeHunkHeaders() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestHunkRange(t *testing.T) {
	tests := []struct {
		before, count int
		want          string
	}{
		{before: 4, count: 0, want: "4,0"},
		{before: 4, count: 1, want: "5"},
		{before: 4, count: 3, want: "5,3"},
		{before: 0, count: 0, want: "0,0"},
	}
	for _, tt := range tests {
		if got := hunkRange(tt.before, tt.count); got != tt.want {
			t.Errorf("hunkRange(%d, %d) = %q, want %q", tt.before, tt.count, got, tt.want)
		}
	}
}
