package decision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"bitgyeol/internal/gateway/bithumb"
	"bitgyeol/internal/market"
	"bitgyeol/internal/prompt"
	"bitgyeol/internal/store/newsdb"
)

type scriptedModel struct {
	response string
	err      error
	prompts  []string
}

func (m *scriptedModel) Invoke(ctx context.Context, p string) (string, error) {
	m.prompts = append(m.prompts, p)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

type stubFeed struct {
	articles []newsdb.Article
	err      error
	collects int
}

func (f *stubFeed) CollectLatest(ctx context.Context) int {
	f.collects++
	return len(f.articles)
}

func (f *stubFeed) Recent(ctx context.Context, limit int) ([]newsdb.Article, error) {
	return f.articles, f.err
}

type recordingAudit struct {
	newsTexts  []string
	priceTexts []string
	finalTexts []string
	prices     []float64
	err        error
}

func (a *recordingAudit) SaveNewsAnalysis(ctx context.Context, ts time.Time, analysis string) error {
	if a.err != nil {
		return a.err
	}
	a.newsTexts = append(a.newsTexts, analysis)
	return nil
}

func (a *recordingAudit) SavePriceAnalysis(ctx context.Context, ts time.Time, price float64, analysis string) error {
	if a.err != nil {
		return a.err
	}
	a.priceTexts = append(a.priceTexts, analysis)
	a.prices = append(a.prices, price)
	return nil
}

func (a *recordingAudit) SaveFinalDecision(ctx context.Context, ts time.Time, price float64, d string) error {
	if a.err != nil {
		return a.err
	}
	a.finalTexts = append(a.finalTexts, d)
	a.prices = append(a.prices, price)
	return nil
}

type defaultPrompts struct{}

func (defaultPrompts) Current() prompt.Templates { return prompt.Defaults() }

func testSnapshot() *market.Snapshot {
	return &market.Snapshot{
		Timestamp:    time.Now(),
		Market:       "BTC_KRW",
		CurrentPrice: 51_234_000,
		Orderbook: bithumb.Orderbook{
			Bids: []bithumb.OrderbookLevel{{Price: 51_233_000, Quantity: 0.4}},
			Asks: []bithumb.OrderbookLevel{{Price: 51_235_000, Quantity: 0.2}},
		},
		Frames: map[string]market.FrameAnalysis{
			"30m": {
				HasIndicators: true,
				RSI:           65.4321,
				StochK:        80.1,
				StochD:        75.2,
				MACD:          120.5,
				BollUpper:     52_000_000,
				BollMiddle:    51_000_000,
				BollLower:     50_000_000,
			},
			"24h": {
				ChangeRate:     -1.23,
				Volume:         3456.78,
				MovingAverages: map[int]float64{5: 51_100_000, 20: 50_900_000},
			},
		},
	}
}

func TestNewsStageEmptyStoreUsesPlaceholder(t *testing.T) {
	model := &scriptedModel{response: "투자 결정: 관망"}
	feed := &stubFeed{}
	audit := &recordingAudit{}
	stage := &NewsStage{Model: model, Feed: feed, Prompts: defaultPrompts{}, Audit: audit}
	run := NewContext(nil)

	err := stage.Run(context.Background(), run)
	assert.NoError(t, err)
	assert.Equal(t, 1, feed.collects)
	assert.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], noNewsText)

	res, ok := run.Result(StageNewsAnalysis)
	assert.True(t, ok)
	assert.Equal(t, "투자 결정: 관망", res.Text)
	assert.Equal(t, []string{"투자 결정: 관망"}, audit.newsTexts)
}

func TestNewsStageIncludesArticles(t *testing.T) {
	model := &scriptedModel{response: "투자 결정: 매수\n투자 비중: 40%"}
	feed := &stubFeed{articles: []newsdb.Article{
		{Title: "비트코인 급등", Description: "기관 매수세 유입", PublishedAt: time.Now()},
	}}
	audit := &recordingAudit{}
	stage := &NewsStage{Model: model, Feed: feed, Prompts: defaultPrompts{}, Audit: audit}
	run := NewContext(nil)

	err := stage.Run(context.Background(), run)
	assert.NoError(t, err)
	assert.Contains(t, model.prompts[0], "비트코인 급등")
	assert.NotContains(t, model.prompts[0], noNewsText)
}

func TestNewsStageModelFailureLeavesNoResult(t *testing.T) {
	boom := errors.New("rate limited")
	stage := &NewsStage{
		Model:   &scriptedModel{err: boom},
		Feed:    &stubFeed{},
		Prompts: defaultPrompts{},
		Audit:   &recordingAudit{},
	}
	run := NewContext(nil)

	err := stage.Run(context.Background(), run)
	assert.ErrorIs(t, err, boom)
	_, ok := run.Result(StageNewsAnalysis)
	assert.False(t, ok)
}

func TestNewsStageAuditFailureFailsStage(t *testing.T) {
	stage := &NewsStage{
		Model:   &scriptedModel{response: "관망"},
		Feed:    &stubFeed{},
		Prompts: defaultPrompts{},
		Audit:   &recordingAudit{err: errors.New("disk full")},
	}
	err := stage.Run(context.Background(), NewContext(nil))
	assert.Error(t, err)
}

func TestPriceStageRendersIndicators(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot()}
	model := &scriptedModel{response: "투자 결정: 매도\n투자 비중: 30%"}
	audit := &recordingAudit{}
	stage := &PriceStage{Model: model, Prompts: defaultPrompts{}, Audit: audit}
	run := NewContext(provider)

	err := stage.Run(context.Background(), run)
	assert.NoError(t, err)
	assert.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "65.43")
	assert.Contains(t, model.prompts[0], "MA5=51100000.00")
	assert.Contains(t, model.prompts[0], "51233000")

	res, ok := run.Result(StagePriceAnalysis)
	assert.True(t, ok)
	assert.Equal(t, model.response, res.Text)
	assert.Equal(t, []float64{51_234_000}, audit.prices)
}

func TestPriceStageFailsWithoutSnapshot(t *testing.T) {
	provider := &stubProvider{err: errors.New("exchange down")}
	audit := &recordingAudit{}
	stage := &PriceStage{Model: &scriptedModel{response: "x"}, Prompts: defaultPrompts{}, Audit: audit}
	run := NewContext(provider)

	err := stage.Run(context.Background(), run)
	assert.Error(t, err)
	assert.Empty(t, audit.priceTexts)
}

func TestFinalStageRequiresBothAnalyses(t *testing.T) {
	stage := &FinalStage{Model: &scriptedModel{}, Prompts: defaultPrompts{}, Audit: &recordingAudit{}}
	run := NewContext(&stubProvider{snap: testSnapshot()})

	err := stage.Run(context.Background(), run)
	assert.ErrorIs(t, err, ErrMissingAnalysis)

	assert.NoError(t, run.setResult(StageNewsAnalysis, StageResult{Text: "뉴스 분석"}))
	err = stage.Run(context.Background(), run)
	assert.ErrorIs(t, err, ErrMissingAnalysis)
}

func TestFinalStageCombinesAnalyses(t *testing.T) {
	provider := &stubProvider{snap: testSnapshot()}
	model := &scriptedModel{response: "최종 투자 결정: 매수\n투자 비중: 60%"}
	audit := &recordingAudit{}
	stage := &FinalStage{Model: model, Prompts: defaultPrompts{}, Audit: audit}
	run := NewContext(provider)
	assert.NoError(t, run.setResult(StageNewsAnalysis, StageResult{Text: "뉴스는 긍정적"}))
	assert.NoError(t, run.setResult(StagePriceAnalysis, StageResult{Text: "지표는 중립"}))

	err := stage.Run(context.Background(), run)
	assert.NoError(t, err)
	assert.Contains(t, model.prompts[0], "뉴스는 긍정적")
	assert.Contains(t, model.prompts[0], "지표는 중립")
	assert.Equal(t, []string{model.response}, audit.finalTexts)
	assert.Equal(t, 1, provider.calls)

	res, ok := run.Result(StageFinalDecision)
	assert.True(t, ok)
	assert.Equal(t, model.response, res.Text)
}
