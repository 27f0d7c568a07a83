// Package tradelog is the audit trail of the decision pipeline: every
// analysis, every final decision and every execution outcome lands here,
// append-only, keyed by millisecond timestamps.
package tradelog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TradeExecution is the persisted form of one Decision Record.
type TradeExecution struct {
	Timestamp   time.Time `json:"timestamp"`
	TradeType   string    `json:"trade_type"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price"`
	TotalAmount float64   `json:"total_amount"`
	OrderID     string    `json:"order_id"`
}

// FinalDecision is the read-back view of one reconciliation output.
type FinalDecision struct {
	Timestamp    time.Time `json:"timestamp"`
	CurrentPrice float64   `json:"current_price"`
	Decision     string    `json:"decision"`
}

// Store implements the append-only save operations over Gorm + SQLite.
type Store struct {
	db *gorm.DB
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("trade log path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&newsAnalysisModel{},
		&priceAnalysisModel{},
		&finalDecisionModel{},
		&tradeExecutionModel{},
	); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite + WAL: a little parallelism for the HTTP read path while the
	// writer stays single.
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) SaveNewsAnalysis(ctx context.Context, ts time.Time, analysis string) error {
	rec := newsAnalysisModel{Timestamp: ts.UnixMilli(), Analysis: analysis}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("saving news analysis failed: %w", err)
	}
	return nil
}

func (s *Store) SavePriceAnalysis(ctx context.Context, ts time.Time, currentPrice float64, analysis string) error {
	rec := priceAnalysisModel{Timestamp: ts.UnixMilli(), CurrentPrice: currentPrice, Analysis: analysis}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("saving price analysis failed: %w", err)
	}
	return nil
}

func (s *Store) SaveFinalDecision(ctx context.Context, ts time.Time, currentPrice float64, decision string) error {
	rec := finalDecisionModel{Timestamp: ts.UnixMilli(), CurrentPrice: currentPrice, Decision: decision}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("saving final decision failed: %w", err)
	}
	return nil
}

func (s *Store) SaveTradeExecution(ctx context.Context, exec TradeExecution) error {
	raw, err := json.Marshal(exec)
	if err != nil {
		return err
	}
	rec := tradeExecutionModel{
		Timestamp:   exec.Timestamp.UnixMilli(),
		TradeType:   exec.TradeType,
		Quantity:    exec.Quantity,
		Price:       exec.Price,
		TotalAmount: exec.TotalAmount,
		OrderID:     exec.OrderID,
		Raw:         raw,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("saving trade execution failed: %w", err)
	}
	return nil
}

// RecentTrades returns up to limit execution records, newest first.
func (s *Store) RecentTrades(ctx context.Context, limit int) ([]TradeExecution, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []tradeExecutionModel
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]TradeExecution, 0, len(rows))
	for _, r := range rows {
		out = append(out, TradeExecution{
			Timestamp:   time.UnixMilli(r.Timestamp),
			TradeType:   r.TradeType,
			Quantity:    r.Quantity,
			Price:       r.Price,
			TotalAmount: r.TotalAmount,
			OrderID:     r.OrderID,
		})
	}
	return out, nil
}

// RecentDecisions returns up to limit final decisions, newest first.
func (s *Store) RecentDecisions(ctx context.Context, limit int) ([]FinalDecision, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []finalDecisionModel
	if err := s.db.WithContext(ctx).
		Order("timestamp DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]FinalDecision, 0, len(rows))
	for _, r := range rows {
		out = append(out, FinalDecision{
			Timestamp:    time.UnixMilli(r.Timestamp),
			CurrentPrice: r.CurrentPrice,
			Decision:     r.Decision,
		})
	}
	return out, nil
}
