package main

import (
	"html/template"
	"strings"
	"testing"
)

func TestMarkup(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected template.HTML
	}{
		{
			name:     "single paragraph",
			input:    "Hello world",
			expected: "<p>Hello world</p>",
		},
		{
			name:     "two paragraphs",
			input:    "First paragraph\n\nSecond paragraph",
			expected: "<p>First paragraph</p>\n<p>Second paragraph</p>",
		},
		{
			name:     "line break within paragraph",
			input:    "Line one\nLine two",
			expected: "<p>Line one<br>Line two</p>",
		},
		{
			name:     "windows line endings",
			input:    "One\r\n\r\nTwo",
			expected: "<p>One</p>\n<p>Two</p>",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "formatting kept",
			input:    "<strong>Niners</strong> are <em>back</em>",
			expected: "<p><strong>Niners</strong> are <em>back</em></p>",
		},
		{
			name:     "script removed",
			input:    "Before<script>alert('xss')</script>After",
			expected: "<p>BeforeAfter</p>",
		},
		{
			name:     "event handler removed",
			input:    `<a href="https://example.com" onclick="steal()">link</a>`,
			expected: `<p><a href="https://example.com" rel="nofollow">link</a></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := markup(tt.input)
			if result != tt.expected {
				t.Errorf("markup(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	templates := loadTemplates()

	for _, page := range []string{"login.html", "admin.html", "section.html"} {
		if templates[page] == nil {
			t.Errorf("template %s not loaded", page)
		}
	}
}

func TestSectionTemplate_ImageOnlyWhenSet(t *testing.T) {
	templates := loadTemplates()

	var b strings.Builder
	err := templates["section.html"].ExecuteTemplate(&b, "base", map[string]any{
		"Title":   "The Dumps",
		"Section": "The Dumps",
		"Posts": []Post{
			{Title: "with", Content: "x", Image: "/images/1-abc-with.png"},
			{Title: "without", Content: "y"},
		},
	})
	if err != nil {
		t.Fatalf("executing template: %v", err)
	}

	if n := strings.Count(b.String(), "<img"); n != 1 {
		t.Errorf("expected exactly 1 image tag, got %d", n)
	}
}
