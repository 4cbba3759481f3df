package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimToSentence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "complete", in: "Cats sleep a lot.", want: "Cats sleep a lot."},
		{name: "cut tail", in: "Cats sleep a lot. They also", want: "Cats sleep a lot."},
		{name: "exclamation", in: "Wow! A comet is com", want: "Wow!"},
		{name: "no sentence end", in: "just words", want: "just words"},
		{name: "spaces", in: "  Hi there?  ", want: "Hi there?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimToSentence(tt.in))
		})
	}
}

func TestOpenAISummarizer_Disabled(t *testing.T) {
	s := NewOpenAISummarizer("", "")
	assert.False(t, s.Enabled())

	out, err := s.Summarize(context.Background(), "Some long text")
	require.NoError(t, err)
	assert.Empty(t, out)
}
