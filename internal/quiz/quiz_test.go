package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

func sampleQuiz() model.Quiz {
	return model.Quiz{
		ArticleID: "1",
		Questions: []model.QuizQuestion{
			{Question: "Biggest planet?", Options: []string{"Mars", "Jupiter"}, Answer: "Jupiter", Explanation: "Jupiter is a gas giant."},
			{Question: "Fastest animal?", Options: []string{"Cheetah", "Snail", "Cow"}, Answer: "Cheetah"},
		},
	}
}

func TestSession(t *testing.T) {
	s := NewSession(sampleQuiz())

	q, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Biggest planet?", q.Question)
	assert.Equal(t, 1, s.Position())

	outcome, err := s.Answer("Jupiter")
	require.NoError(t, err)
	assert.True(t, outcome.Correct)
	assert.Equal(t, "Jupiter is a gas giant.", outcome.Explanation)

	outcome, err = s.AnswerIndex(2)
	require.NoError(t, err)
	assert.False(t, outcome.Correct)
	assert.Equal(t, "Cheetah", outcome.Answer)

	assert.True(t, s.Done())
	correct, total := s.Score()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 2, total)

	_, err = s.Answer("Jupiter")
	assert.ErrorIs(t, err, ErrFinished)
}

func TestSession_UnknownOption(t *testing.T) {
	s := NewSession(sampleQuiz())

	_, err := s.Answer("Pluto")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = s.AnswerIndex(3)
	assert.ErrorIs(t, err, ErrUnknownOption)

	// Неверный вариант не сдвигает вопрос
	assert.Equal(t, 1, s.Position())
	assert.False(t, s.Done())
}
