package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/kovalyov-valentin/kids-news-feed/internal/bookmarks"
	"github.com/kovalyov-valentin/kids-news-feed/internal/botkit"
	"github.com/kovalyov-valentin/kids-news-feed/internal/feed"
	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
	"github.com/kovalyov-valentin/kids-news-feed/internal/pager"
	"github.com/kovalyov-valentin/kids-news-feed/internal/quiz"
	"github.com/kovalyov-valentin/kids-news-feed/internal/search"
)

type SessionConfig struct {
	PageSize    int
	SearchDelay time.Duration
	SearchLimit int
}

// Состояние одного чата: лента, поиск, закладки и текущая викторина
type Session struct {
	ChatID    int64
	Articles  *pager.Pager[model.Article]
	Search    *search.Searcher
	Bookmarks *bookmarks.Store

	mu   sync.Mutex
	quiz *quiz.Session

	// Последнее обращение, под мьютексом Sessions
	lastSeen time.Time
}

func (s *Session) StartQuiz(q model.Quiz) *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quiz = quiz.NewSession(q)
	return s.quiz
}

// Текущая викторина, nil если ее не начинали
func (s *Session) Quiz() *quiz.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.quiz
}

func (s *Session) close() {
	s.Articles.Close()
	s.Search.Close()
}

// Сессии чатов, создаются при первом обращении и живут до Close или до вытеснения по простою
type Sessions struct {
	ctx    context.Context
	client feed.Client
	kv     bookmarks.KV
	api    botkit.API
	cfg    SessionConfig
	now    func() time.Time

	mu    sync.Mutex
	chats map[int64]*Session
}

func NewSessions(ctx context.Context, client feed.Client, kv bookmarks.KV, api botkit.API, cfg SessionConfig) *Sessions {
	return &Sessions{
		ctx:    ctx,
		client: client,
		kv:     kv,
		api:    api,
		cfg:    cfg,
		now:    time.Now,
		chats:  make(map[int64]*Session),
	}
}

func (s *Sessions) Get(chatID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.chats[chatID]; ok {
		session.lastSeen = s.now()
		return session
	}

	session := &Session{
		ChatID: chatID,
		Articles: feed.Articles(s.ctx, s.client, s.cfg.PageSize,
			pager.WithOnChange(func(st pager.State[model.Article]) {
				if !st.Loading && st.Error != "" {
					log.Printf("[ERROR] failed to load articles for chat %d: %s", chatID, st.Error)
				}
			}),
		),
		Bookmarks: bookmarks.New(s.kv, fmt.Sprintf("%s:%d", bookmarks.DefaultKey, chatID)),
		lastSeen:  s.now(),
	}
	// Результат поиска приходит после паузы в наборе, отправляем его отдельным сообщением
	session.Search = feed.Search(s.ctx, s.client, s.cfg.SearchDelay, s.cfg.SearchLimit,
		search.WithOnChange(func(st search.State) {
			s.pushSearch(chatID, st)
		}),
	)
	s.chats[chatID] = session

	return session
}

// Контекст, который живет дольше одной команды: для фоновых задач чата
func (s *Sessions) Context() context.Context {
	return s.ctx
}

func (s *Sessions) Client() feed.Client {
	return s.client
}

// Закрывает и удаляет сессии, к которым не обращались дольше idle. Возвращает число удаленных
func (s *Sessions) EvictIdle(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		now     = s.now()
		evicted int
	)
	for id, session := range s.chats {
		if now.Sub(session.lastSeen) < idle {
			continue
		}
		session.close()
		delete(s.chats, id)
		evicted++
	}

	return evicted
}

// Раз в interval вытесняет простаивающие сессии, пока не отменят ctx
func (s *Sessions) StartJanitor(ctx context.Context, interval, idle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.EvictIdle(idle); n > 0 {
				log.Printf("[INFO] evicted %d idle chat sessions", n)
			}
		}
	}
}

func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, session := range s.chats {
		session.close()
		delete(s.chats, id)
	}
}

func (s *Sessions) pushSearch(chatID int64, st search.State) {
	if st.Loading || strings.TrimSpace(st.Query.Text) == "" {
		return
	}

	if err := botkit.ReplyMarkdown(s.api, chatID, formatSearch(st)); err != nil {
		log.Printf("[ERROR] failed to send search results to chat %d: %v", chatID, err)
	}
}
