package mockapi

import (
	"fmt"

	"github.com/kovalyov-valentin/kids-news-feed/internal/model"
)

var sampleCategories = []string{"science", "animals", "space", "sports", "world"}

// Небольшой детерминированный каталог для локального запуска
func SampleCatalog() *Catalog {
	var (
		articles []model.Article
		videos   []model.Video
		quizzes  = make(map[model.ID]model.Quiz)
	)

	for i := 1; i <= 25; i++ {
		category := sampleCategories[i%len(sampleCategories)]
		id := model.ID(fmt.Sprintf("%d", i))

		articles = append(articles, model.Article{
			ID:            id,
			Title:         fmt.Sprintf("Story %d about %s", i, category),
			Headline:      fmt.Sprintf("Something new in %s", category),
			Summary:       fmt.Sprintf("A short summary of story %d.", i),
			Content:       fmt.Sprintf("<p>The full text of story %d. It is about %s.</p>", i, category),
			Category:      category,
			Author:        "Kids News Desk",
			PublishedDate: fmt.Sprintf("2024-05-%02d", i),
			ReadTime:      2 + i%4,
			IsBreaking:    i%7 == 0,
			IsTrending:    i%3 == 0,
			IsHot:         i%5 == 0,
			Views:         i * 10,
		})

		quizzes[id] = model.Quiz{
			ArticleID: id,
			Title:     fmt.Sprintf("Quiz for story %d", i),
			Questions: []model.QuizQuestion{
				{
					Question:    fmt.Sprintf("What is story %d about?", i),
					Options:     []string{category, "cooking", "cars"},
					Answer:      category,
					Explanation: fmt.Sprintf("Story %d is in the %s section.", i, category),
				},
				{
					Question:    "Who wrote it?",
					Options:     []string{"Kids News Desk", "A robot"},
					Answer:      "Kids News Desk",
					Explanation: "Every story here is written by the Kids News Desk.",
				},
			},
		}

		if i%4 == 0 {
			status := model.VideoStatusReady
			if i%8 == 0 {
				status = model.VideoStatusProcessing
			}

			videos = append(videos, model.Video{
				ID:            model.ID(fmt.Sprintf("v%d", i)),
				ArticleID:     id,
				Title:         fmt.Sprintf("Video for story %d", i),
				Description:   fmt.Sprintf("Watch what happened in %s.", category),
				FilePath:      fmt.Sprintf("/videos/v%d.mp4", i),
				ThumbnailPath: fmt.Sprintf("/thumbs/v%d.jpg", i),
				Duration:      float64(60 + i),
				Status:        status,
				UploadDate:    fmt.Sprintf("2024-05-%02d", i),
			})
		}
	}

	return NewCatalog(articles, videos, quizzes)
}
