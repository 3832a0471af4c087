package domain

import "time"

// Returns holds the outcome of a single buy-and-hold projection.
type Returns struct {
	CurrentValue     float64 `json:"currentValue"`
	Profit           float64 `json:"profit"`
	ProfitPercentage float64 `json:"profitPercentage"`
}

// ChartPoint is a sampled series point with the investment value at that time.
type ChartPoint struct {
	Timestamp  int64   `json:"timestamp"`
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
	Investment float64 `json:"investment"`
}

// DataWarning signals that the requested start predates available data.
type DataWarning struct {
	RequestedDate string `json:"requestedDate"`
	EarliestDate  string `json:"earliestDate"`
	CoinName      string `json:"coinName"`
}

// Period is one of the selectable lookback windows.
type Period struct {
	Value string
	Label string
	Days  int
}

// CalculationRequest is the input of one "Calculate" run.
type CalculationRequest struct {
	Symbol string
	Amount float64
	Period string
}

type InvestmentResult struct {
	Symbol           string        `json:"symbol"`
	InitialAmount    float64       `json:"initialAmount"`
	CurrentValue     float64       `json:"currentValue"`
	Profit           float64       `json:"profit"`
	ProfitPercentage float64       `json:"profitPercentage"`
	InitialPrice     float64       `json:"initialPrice"`
	FinalPrice       float64       `json:"finalPrice"`
	StartDate        string        `json:"startDate"`
	EndDate          string        `json:"endDate"`
	ChartData        []ChartPoint  `json:"chartData"`
	PeriodLabel      string        `json:"periodLabel"`
	Interval         Granularity   `json:"interval"`
	DataPoints       int           `json:"dataPoints"`
	IsSimulated      bool          `json:"isSimulated"`
	Reason           DegradeReason `json:"reason,omitempty"`
	Warning          *DataWarning  `json:"warning,omitempty"`
}

// CalculationRecord is the anonymous run log row stored per calculation.
type CalculationRecord struct {
	ID           string
	Symbol       string
	Period       string
	Amount       float64
	InitialPrice float64
	FinalPrice   float64
	CurrentValue float64
	Simulated    bool
	Reason       string
	DataPoints   int
	Warned       bool
	CreatedAt    time.Time
}

// DisplayDateLayout is the long date format used in results and warnings.
const DisplayDateLayout = "January 2, 2006"
