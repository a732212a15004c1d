package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeHoldingTime struct {
	// Holding times in milliseconds.
	Min int64 `yaml:"min_ms"`
	Max int64 `yaml:"max_ms"`
	Avg int64 `yaml:"avg_ms"`
}

type TradePnl struct {
	TotalPnL      float64 `yaml:"total_pnl"`
	MaximumLoss   float64 `yaml:"maximum_loss"`
	MaximumProfit float64 `yaml:"maximum_profit"`
	// NetPnL is TotalPnL minus commission.
	NetPnL float64 `yaml:"net_pnl"`
}

type TradeResult struct {
	NumberOfTrades        int     `yaml:"number_of_trades"`
	NumberOfWinningTrades int     `yaml:"number_of_winning_trades"`
	NumberOfLosingTrades  int     `yaml:"number_of_losing_trades"`
	NumberOfForcedCloses  int     `yaml:"number_of_forced_closes"`
	WinRate               float64 `yaml:"win_rate"`
	// MaxDrawdown is the largest peak-to-trough drop of cumulative realized pnl.
	MaxDrawdown float64 `yaml:"max_drawdown"`
}

type StrategyInfo struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

type TradeStats struct {
	// ID is the run id.
	ID               string           `yaml:"id" json:"id"`
	Timestamp        time.Time        `yaml:"timestamp" json:"timestamp"`
	Symbol           string           `yaml:"symbol"`
	EventsProcessed  int              `yaml:"events_processed"`
	TradeResult      TradeResult      `yaml:"trade_result"`
	TotalFees        float64          `yaml:"total_fees"`
	TradeHoldingTime TradeHoldingTime `yaml:"trade_holding_time"`
	TradePnl         TradePnl         `yaml:"trade_pnl"`
	TradesByRegime   map[Regime]int   `yaml:"trades_by_regime"`
	Strategy         StrategyInfo     `yaml:"strategy" json:"strategy"`
	TradesFilePath   string           `yaml:"trades_file_path" json:"trades_file_path"`
	MarksFilePath    string           `yaml:"marks_file_path" json:"marks_file_path"`
}

func WriteTradeStats(path string, stats []TradeStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal trade stats to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write trade stats to file: %w", err)
	}

	return nil
}
