package normalize

import "testing"

func TestStripTags(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<b>Senior</b> Engineer", "Senior Engineer"},
		{"plain text", "plain text"},
		{"", ""},
		{"<p>Build <em>data</em> pipelines.</p><br/>", "Build data pipelines."},
		{"<div\nclass=\"x\">multi-line tag</div>", "multi-line tag"},
		{"Salary &amp; benefits", "Salary &amp; benefits"},
		{"a < b and c > d", "a  d"},
		{"<<b>b>text", "b>text"},
		{"unclosed <b tag", "unclosed <b tag"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := StripTags(tt.in)
			if got != tt.want {
				t.Errorf("StripTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := StripTags(got); again != got {
				t.Errorf("StripTags is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
