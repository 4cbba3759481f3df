package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/samber/lo"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

// Учет статей, уже отправленных в канал
type PostedPostgresStorage struct {
	db *sqlx.DB
}

func NewPostedPostgresStorage(db *sqlx.DB) *PostedPostgresStorage {
	return &PostedPostgresStorage{db: db}
}

// Какие из переданных статей уже были отправлены
func (s *PostedPostgresStorage) PostedIDs(ctx context.Context, ids []model.ID) ([]model.ID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw := lo.Map(ids, func(id model.ID, _ int) string {
		return id.String()
	})

	var posted []string
	if err := conn.SelectContext(
		ctx,
		&posted,
		`SELECT article_id FROM posted_articles WHERE article_id = ANY($1)`,
		pq.Array(raw),
	); err != nil {
		return nil, err
	}

	return lo.Map(posted, func(id string, _ int) model.ID {
		return model.ID(id)
	}), nil
}

// Отмечаем статью как отправленную. Повторная отметка ничего не делает
func (s *PostedPostgresStorage) MarkPosted(ctx context.Context, id model.ID) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(
		ctx,
		`INSERT INTO posted_articles (article_id, posted_at) VALUES ($1, $2) ON CONFLICT (article_id) DO NOTHING`,
		id.String(),
		time.Now().UTC(),
	); err != nil {
		return err
	}

	return nil
}
