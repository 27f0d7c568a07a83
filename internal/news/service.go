// Package news keeps the article window fresh for the news analysis stage.
package news

import (
	"context"

	"bitgyeol/internal/gateway/naver"
	"bitgyeol/internal/logger"
	"bitgyeol/internal/store/newsdb"
)

// searcher is the slice of the Naver client the service needs.
type searcher interface {
	Search(ctx context.Context, query string, display int) ([]naver.Item, error)
}

type Service struct {
	client   searcher
	store    *newsdb.Store
	keywords []string
	display  int
}

func NewService(client searcher, store *newsdb.Store, keywords []string, display int) *Service {
	if display <= 0 {
		display = 10
	}
	return &Service{client: client, store: store, keywords: keywords, display: display}
}

// CollectLatest searches every configured keyword and stores new articles.
// A failing keyword is logged and skipped; the stage still runs on whatever
// the store already holds, so this never fails the cycle.
func (s *Service) CollectLatest(ctx context.Context) int {
	total := 0
	for _, keyword := range s.keywords {
		items, err := s.client.Search(ctx, keyword, s.display)
		if err != nil {
			logger.Warnf("news search failed for %q: %v", keyword, err)
			continue
		}
		articles := make([]newsdb.Article, 0, len(items))
		for _, it := range items {
			articles = append(articles, newsdb.Article{
				Title:       it.Title,
				Description: it.Description,
				PublishedAt: it.PublishedAt,
			})
		}
		saved, err := s.store.Save(ctx, articles)
		if err != nil {
			logger.Warnf("saving news for %q failed: %v", keyword, err)
			continue
		}
		total += saved
	}
	logger.Infof("news collection done, %d new articles", total)
	return total
}

// Recent reads back the newest stored articles. An empty result is valid
// input for the analysis stage, not an error.
func (s *Service) Recent(ctx context.Context, limit int) ([]newsdb.Article, error) {
	return s.store.Recent(ctx, limit)
}
