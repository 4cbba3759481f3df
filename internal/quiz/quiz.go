// Package quiz ведет прохождение викторины по статье: вопросы по одному и подсчет очков.
package quiz

import (
	"errors"
	"sync"

	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

var (
	ErrFinished      = errors.New("quiz is already finished")
	ErrUnknownOption = errors.New("no such option")
)

// Результат ответа на вопрос
type Outcome struct {
	Correct     bool
	Answer      string
	Explanation string
}

type Session struct {
	quiz model.Quiz

	mu      sync.Mutex
	current int
	correct int
}

func NewSession(q model.Quiz) *Session {
	return &Session{quiz: q}
}

func (s *Session) Quiz() model.Quiz {
	return s.quiz
}

// Текущий вопрос. false - вопросы кончились
func (s *Session) Current() (model.QuizQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= len(s.quiz.Questions) {
		return model.QuizQuestion{}, false
	}

	return s.quiz.Questions[s.current], true
}

// Номер текущего вопроса, с единицы
func (s *Session) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current + 1
}

// Ответ на текущий вопрос и переход к следующему
func (s *Session) Answer(option string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= len(s.quiz.Questions) {
		return Outcome{}, ErrFinished
	}

	question := s.quiz.Questions[s.current]
	if !lo.Contains(question.Options, option) {
		return Outcome{}, ErrUnknownOption
	}

	outcome := Outcome{
		Correct:     question.IsCorrect(option),
		Answer:      question.Answer,
		Explanation: question.Explanation,
	}
	if outcome.Correct {
		s.correct++
	}
	s.current++

	return outcome, nil
}

// Ответ по номеру варианта, с единицы
func (s *Session) AnswerIndex(n int) (Outcome, error) {
	question, ok := s.Current()
	if !ok {
		return Outcome{}, ErrFinished
	}
	if n < 1 || n > len(question.Options) {
		return Outcome{}, ErrUnknownOption
	}

	return s.Answer(question.Options[n-1])
}

func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current >= len(s.quiz.Questions)
}

func (s *Session) Score() (correct, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.correct, len(s.quiz.Questions)
}
