package api

import (
	"errors"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

// Конверт ответа: {success, ...данные}
type envelope interface {
	failure() error
}

type base struct {
	Success bool `json:"success"`
	// Некоторые ручки кладут сюда причину отказа
	Message string `json:"error,omitempty"`
}

func (b *base) failure() error {
	if b.Success {
		return nil
	}
	if b.Message != "" {
		return errors.New(b.Message)
	}
	return errors.New("success is false")
}

type articlesEnvelope struct {
	base
	Articles []model.Article `json:"articles" validate:"required,dive"`
	Total    int             `json:"total"`
}

type articleEnvelope struct {
	base
	Article *model.Article `json:"article" validate:"required"`
}

type quizEnvelope struct {
	base
	Quiz *model.Quiz `json:"quiz" validate:"required"`
}

type videosEnvelope struct {
	base
	Videos []model.Video `json:"videos" validate:"required,dive"`
	Total  int           `json:"total"`
}

type videoEnvelope struct {
	base
	Video *model.Video `json:"video" validate:"required"`
}

type searchEnvelope struct {
	base
	Articles []model.Article `json:"articles" validate:"dive"`
	Videos   []model.Video   `json:"videos" validate:"dive"`
	Total    int             `json:"total"`
}

// /health отдает просто статус, без success
type healthEnvelope struct {
	Status string `json:"status" validate:"required"`
}

func (h *healthEnvelope) failure() error {
	return nil
}
