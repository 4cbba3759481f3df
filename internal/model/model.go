package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Идентификатор статьи или видео.
// Сервер может прислать его как строкой, так и числом, внутри у нас всегда строка
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Статья, как ее отдает API
type Article struct {
	ID       ID     `json:"id" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	// Полный текст, может содержать html
	Content  string `json:"content"`
	Category string `json:"category"`
	Author   string `json:"author"`
	// Дата публикации, формат определяет сервер, поэтому храним как есть
	PublishedDate string `json:"published_date"`
	// Время чтения в минутах
	ReadTime int `json:"read_time"`

	IsBreaking bool `json:"is_breaking,omitempty"`
	IsTrending bool `json:"is_trending,omitempty"`
	IsHot      bool `json:"is_hot,omitempty"`

	Views    int `json:"views,omitempty"`
	Likes    int `json:"likes,omitempty"`
	Comments int `json:"comments,omitempty"`
}

// Статус обработки видео. Переходами управляет сервер, клиент только перезапрашивает
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
	VideoStatusFailed     VideoStatus = "failed"
)

// Финальный статус - дальше опрашивать видео смысла нет
func (s VideoStatus) IsFinal() bool {
	return s == VideoStatusReady || s == VideoStatusFailed
}

func (s VideoStatus) String() string {
	return string(s)
}

type Video struct {
	ID ID `json:"id" validate:"required"`
	// Статья, к которой привязано видео (если есть)
	ArticleID     ID          `json:"article_id,omitempty"`
	Title         string      `json:"title" validate:"required"`
	Description   string      `json:"description"`
	FilePath      string      `json:"file_path"`
	ThumbnailPath string      `json:"thumbnail_path"`
	// Длительность в секундах
	Duration   float64     `json:"duration"`
	Status     VideoStatus `json:"status" validate:"oneof=processing ready failed"`
	UploadDate string      `json:"upload_date"`
}

type QuizQuestion struct {
	Question    string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"min=2"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
}

// Проверка ответа - обычное сравнение строк с правильным вариантом
func (q QuizQuestion) IsCorrect(option string) bool {
	return q.Answer == option
}

type Quiz struct {
	ArticleID ID             `json:"article_id,omitempty"`
	Title     string         `json:"title,omitempty"`
	Questions []QuizQuestion `json:"questions" validate:"required,min=1,dive"`
}

type SearchResult struct {
	Articles []Article `json:"articles"`
	Videos   []Video   `json:"videos"`
	Total    int       `json:"total"`
}

type Health struct {
	Status string `json:"status"`
}

// Страница списка. Total - сколько всего элементов по мнению сервера
type Page[T any] struct {
	Items []T
	Total int
}
