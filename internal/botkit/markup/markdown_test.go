package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeForMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "plain text", want: "plain text"},
		{in: "Wow! 3.5 km", want: "Wow\\! 3\\.5 km"},
		{in: "/article 12-b", want: "/article 12\\-b"},
		{in: "a_b*c", want: "a\\_b\\*c"},
		{in: `C:\path`, want: `C:\\path`},
		{in: "(x) [y] {z}", want: "\\(x\\) \\[y\\] \\{z\\}"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeForMarkdown(tt.in), tt.in)
	}
}
