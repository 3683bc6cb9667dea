package source

import (
	"strings"
	"testing"
)

func TestIsRelativeLink(t *testing.T) {
	tests := []struct {
		dest string
		want bool
	}{
		{"image.png", true},
		{"./image.png", true},
		{"../images/image.png", true},
		{"/images/image.png", true},
		{"//cdn.example/image.png", false},
		{"https://example.com/image.png", false},
		{"mailto:someone@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			if got := isRelativeLink(tt.dest); got != tt.want {
				t.Errorf("isRelativeLink(%q) = %v, want %v", tt.dest, got, tt.want)
			}
		})
	}
}

func TestMarkdownRenderer_Render(t *testing.T) {
	renderer := NewMarkdownRenderer("https://raw.example/content/main")

	tests := []struct {
		name     string
		markdown string
		want     string
	}{
		{
			name:     "empty",
			markdown: "  \n",
			want:     "",
		},
		{
			name:     "relative image",
			markdown: "![ct](scan.png)",
			want:     "<p><img src=\"https://raw.example/content/main/images/scan.png\" alt=\"ct\" /></p>\n",
		},
		{
			name:     "absolute image untouched",
			markdown: "![ct](https://x/scan.png)",
			want:     "<p><img src=\"https://x/scan.png\" alt=\"ct\" /></p>\n",
		},
		{
			name:     "relative link",
			markdown: "[next](./002.md)",
			want:     "<p><a href=\"/articles/002\">next</a></p>\n",
		},
		{
			name:     "anchor link untouched",
			markdown: "[top](#dosing)",
			want:     "<p><a href=\"#dosing\">top</a></p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderer.Render(tt.markdown)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkdownRenderer_KeepsRawHTML(t *testing.T) {
	got, err := NewMarkdownRenderer("").Render("Before\n\n<img src=\"https://x/a.png\">\n")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(got, `<img src="https://x/a.png">`) {
		t.Errorf("Render() = %q, want raw img tag kept", got)
	}
}
