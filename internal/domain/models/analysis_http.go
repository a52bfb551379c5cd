package models

import "time"

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalysisRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"240" validate:"gte=1,lte=1440"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 1h"`
	Fresh  bool   `query:"fresh" json:"fresh"`
}

type RiskRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type ScanRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required"`
}

// WhaleTxPayload is the wire form of a whale transaction candidate.
type WhaleTxPayload struct {
	Hash        string  `json:"hash"`
	Symbol      string  `json:"symbol" validate:"required"`
	AmountUSD   float64 `json:"amount_usd" validate:"gte=0"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Destination string  `json:"destination"`
	Timestamp   int64   `json:"ts"` // unix seconds; zero means "now"
}

// ToTransaction converts the payload into the domain form.
func (p WhaleTxPayload) ToTransaction() WhaleTransaction {
	ts := time.Now().UTC()
	if p.Timestamp > 0 {
		ts = time.Unix(p.Timestamp, 0).UTC()
	}
	return WhaleTransaction{
		Hash:        p.Hash,
		Symbol:      p.Symbol,
		AmountUSD:   p.AmountUSD,
		From:        p.From,
		To:          p.To,
		Destination: p.Destination,
		Timestamp:   ts,
	}
}

type WhaleScanRequest struct {
	MinAmountUSD float64          `json:"min_amount_usd" default:"1000000" validate:"gte=0"`
	Transactions []WhaleTxPayload `json:"transactions" validate:"required,min=1,dive"`
}

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   int64  `query:"from" json:"from" validate:"gte=0"`
	To     int64  `query:"to" json:"to" validate:"gte=0"`
	TF     string `query:"tf" json:"tf" default:"1m" validate:"oneof=1m 5m 1h"`
	Limit  int    `query:"limit" json:"limit" default:"10000" validate:"gte=1,lte=50000"`
}

type SentimentRequest struct {
	Symbol string  `query:"symbol" json:"symbol" validate:"required"`
	Score  float64 `json:"score" validate:"gte=-1,lte=1"`
}
