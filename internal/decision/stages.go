package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/template"
	"time"

	"bitgyeol/internal/gateway/bithumb"
	"bitgyeol/internal/gateway/provider"
	"bitgyeol/internal/logger"
	"bitgyeol/internal/prompt"
	"bitgyeol/internal/store/newsdb"
)

// ErrMissingAnalysis means reconciliation was invoked before both analyses
// completed. The pipeline topology prevents this; the check is defensive.
var ErrMissingAnalysis = errors.New("reconciliation requires both news and price analyses")

// noNewsText is the pass-through input when the store has no recent articles.
// Empty news is valid input, not an error.
const noNewsText = "최근 뉴스가 없습니다."

const recentNewsLimit = 20

// Stage is one step of the pipeline. It reads from and appends to the run
// context, and mirrors its output to the audit store.
type Stage interface {
	Name() string
	Run(ctx context.Context, run *Context) error
}

// AuditStore is the durability mirror for stage outputs.
type AuditStore interface {
	SaveNewsAnalysis(ctx context.Context, ts time.Time, analysis string) error
	SavePriceAnalysis(ctx context.Context, ts time.Time, currentPrice float64, analysis string) error
	SaveFinalDecision(ctx context.Context, ts time.Time, currentPrice float64, decision string) error
}

// NewsFeed supplies the article window for the news stage.
type NewsFeed interface {
	CollectLatest(ctx context.Context) int
	Recent(ctx context.Context, limit int) ([]newsdb.Article, error)
}

type templateSource interface {
	Current() prompt.Templates
}

// NewsStage analyses recent news only, ignoring price entirely.
type NewsStage struct {
	Model   provider.ModelClient
	Feed    NewsFeed
	Prompts templateSource
	Audit   AuditStore
}

func (s *NewsStage) Name() string { return StageNewsAnalysis }

func (s *NewsStage) Run(ctx context.Context, run *Context) error {
	// Refresh the window first; a failed collection still leaves whatever
	// the store already holds.
	s.Feed.CollectLatest(ctx)

	articles, err := s.Feed.Recent(ctx, recentNewsLimit)
	if err != nil {
		return fmt.Errorf("%s: reading recent news failed: %w", s.Name(), err)
	}
	newsData := noNewsText
	if len(articles) > 0 {
		type newsEntry struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PubDate     string `json:"pub_date"`
		}
		entries := make([]newsEntry, 0, len(articles))
		for _, a := range articles {
			entries = append(entries, newsEntry{
				Title:       a.Title,
				Description: a.Description,
				PubDate:     a.PublishedAt.Format(time.RFC3339),
			})
		}
		b, merr := json.Marshal(entries)
		if merr != nil {
			return fmt.Errorf("%s: encoding news failed: %w", s.Name(), merr)
		}
		newsData = string(b)
	}

	promptText, err := render(s.Prompts.Current().NewsAnalysis, map[string]any{
		"NewsData": newsData,
	})
	if err != nil {
		return fmt.Errorf("%s: rendering prompt failed: %w", s.Name(), err)
	}

	response, err := s.Model.Invoke(ctx, promptText)
	if err != nil {
		return fmt.Errorf("%s: model call failed: %w", s.Name(), err)
	}
	ts := time.Now()
	logger.LogLLMExchange(s.Name(), "", promptText, response)

	if err := run.setResult(s.Name(), StageResult{Text: response, Timestamp: ts}); err != nil {
		return err
	}
	if err := s.Audit.SaveNewsAnalysis(ctx, ts, response); err != nil {
		return fmt.Errorf("%s: persisting analysis failed: %w", s.Name(), err)
	}
	return nil
}

// PriceStage analyses technical indicators and the order book.
type PriceStage struct {
	Model   provider.ModelClient
	Prompts templateSource
	Audit   AuditStore
}

func (s *PriceStage) Name() string { return StagePriceAnalysis }

func (s *PriceStage) Run(ctx context.Context, run *Context) error {
	snap, err := run.MarketData(ctx)
	if err != nil {
		return fmt.Errorf("%s: market snapshot unavailable: %w", s.Name(), err)
	}

	f30 := snap.Frame("30m")
	f24 := snap.Frame("24h")
	promptText, err := render(s.Prompts.Current().PriceAnalysis, map[string]any{
		"RSI":            num(f30.RSI),
		"StochK":         num(f30.StochK),
		"StochD":         num(f30.StochD),
		"MACD":           num(f30.MACD),
		"BollUpper":      num(f30.BollUpper),
		"BollMiddle":     num(f30.BollMiddle),
		"BollLower":      num(f30.BollLower),
		"MovingAverages": formatMAs(f24.MovingAverages),
		"Volume24H":      num(f24.Volume),
		"Bids":           formatLevels(snap.TopBids(5)),
		"Asks":           formatLevels(snap.TopAsks(5)),
	})
	if err != nil {
		return fmt.Errorf("%s: rendering prompt failed: %w", s.Name(), err)
	}

	response, err := s.Model.Invoke(ctx, promptText)
	if err != nil {
		return fmt.Errorf("%s: model call failed: %w", s.Name(), err)
	}
	ts := time.Now()
	logger.LogLLMExchange(s.Name(), "", promptText, response)

	if err := run.setResult(s.Name(), StageResult{Text: response, Timestamp: ts}); err != nil {
		return err
	}
	if err := s.Audit.SavePriceAnalysis(ctx, ts, snap.CurrentPrice, response); err != nil {
		return fmt.Errorf("%s: persisting analysis failed: %w", s.Name(), err)
	}
	return nil
}

// FinalStage reconciles the two analyses into the final decision. The news
// signal is weighted over the price signal per NewsWeight:PriceWeight; the
// weighting is carried by the prompt, not computed here.
type FinalStage struct {
	Model   provider.ModelClient
	Prompts templateSource
	Audit   AuditStore
}

func (s *FinalStage) Name() string { return StageFinalDecision }

func (s *FinalStage) Run(ctx context.Context, run *Context) error {
	newsRes, okNews := run.Result(StageNewsAnalysis)
	priceRes, okPrice := run.Result(StagePriceAnalysis)
	if !okNews || !okPrice {
		return fmt.Errorf("%s: %w", s.Name(), ErrMissingAnalysis)
	}

	snap, err := run.MarketData(ctx)
	if err != nil {
		return fmt.Errorf("%s: market snapshot unavailable: %w", s.Name(), err)
	}

	f30 := snap.Frame("30m")
	promptText, err := render(s.Prompts.Current().FinalDecision, map[string]any{
		"NewsWeight":    NewsWeight,
		"PriceWeight":   PriceWeight,
		"NewsAnalysis":  newsRes.Text,
		"PriceAnalysis": priceRes.Text,
		"CurrentPrice":  num(snap.CurrentPrice),
		"RSI":           num(f30.RSI),
		"MACD":          num(f30.MACD),
	})
	if err != nil {
		return fmt.Errorf("%s: rendering prompt failed: %w", s.Name(), err)
	}

	response, err := s.Model.Invoke(ctx, promptText)
	if err != nil {
		return fmt.Errorf("%s: model call failed: %w", s.Name(), err)
	}
	ts := time.Now()
	logger.LogLLMExchange(s.Name(), "", promptText, response)

	if err := run.setResult(s.Name(), StageResult{Text: response, Timestamp: ts}); err != nil {
		return err
	}
	if err := s.Audit.SaveFinalDecision(ctx, ts, snap.CurrentPrice, response); err != nil {
		return fmt.Errorf("%s: persisting decision failed: %w", s.Name(), err)
	}
	return nil
}

func render(tpl string, data map[string]any) (string, error) {
	t, err := template.New("prompt").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatMAs(mas map[int]float64) string {
	if len(mas) == 0 {
		return "-"
	}
	// Stable period order for the prompt.
	periods := []int{5, 10, 20, 50, 200}
	var buf bytes.Buffer
	for _, p := range periods {
		v, ok := mas[p]
		if !ok {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "MA%d=%s", p, num(v))
	}
	if buf.Len() == 0 {
		return "-"
	}
	return buf.String()
}

func formatLevels(levels []bithumb.OrderbookLevel) string {
	b, _ := json.Marshal(levels)
	return string(b)
}
