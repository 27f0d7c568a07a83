package tradelog

import "gorm.io/datatypes"

type newsAnalysisModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	Timestamp int64  `gorm:"column:timestamp;index"`
	Analysis  string `gorm:"column:analysis;type:text"`
}

func (newsAnalysisModel) TableName() string { return "news_analysis" }

type priceAnalysisModel struct {
	ID           int64   `gorm:"column:id;primaryKey"`
	Timestamp    int64   `gorm:"column:timestamp;index"`
	CurrentPrice float64 `gorm:"column:current_price"`
	Analysis     string  `gorm:"column:analysis;type:text"`
}

func (priceAnalysisModel) TableName() string { return "price_analysis" }

type finalDecisionModel struct {
	ID           int64   `gorm:"column:id;primaryKey"`
	Timestamp    int64   `gorm:"column:timestamp;index"`
	CurrentPrice float64 `gorm:"column:current_price"`
	Decision     string  `gorm:"column:decision;type:text"`
}

func (finalDecisionModel) TableName() string { return "final_decisions" }

type tradeExecutionModel struct {
	ID          int64          `gorm:"column:id;primaryKey"`
	Timestamp   int64          `gorm:"column:timestamp;index"`
	TradeType   string         `gorm:"column:trade_type"`
	Quantity    float64        `gorm:"column:quantity"`
	Price       float64        `gorm:"column:price"`
	TotalAmount float64        `gorm:"column:total_amount"`
	OrderID     string         `gorm:"column:order_id;uniqueIndex"`
	Raw         datatypes.JSON `gorm:"column:raw"`
}

func (tradeExecutionModel) TableName() string { return "trade_executions" }
