package events

import "time"

type PairsGeneratedEvent struct {
	BatchID      string    `json:"batch_id"`
	RespondentID string    `json:"respondent_id"`
	Strategy     string    `json:"strategy"`
	Engine       string    `json:"engine"`
	Pairs        int       `json:"pairs"`
	Requested    int       `json:"requested"`
	Floor        int       `json:"floor"`
	Attempts     int       `json:"attempts"`
	Timestamp    time.Time `json:"timestamp"`
}

type PairsDegradedEvent struct {
	BatchID   string    `json:"batch_id"`
	Strategy  string    `json:"strategy"`
	Requested int       `json:"requested"`
	Found     int       `json:"found"`
	Timestamp time.Time `json:"timestamp"`
}

type StrategyUnsuitableEvent struct {
	Strategy     string    `json:"strategy"`
	RespondentID string    `json:"respondent_id"`
	Reference    []int     `json:"reference"`
	Requested    int       `json:"requested"`
	Found        int       `json:"found"`
	Floor        int       `json:"floor"`
	Attempts     int       `json:"attempts"`
	Timestamp    time.Time `json:"timestamp"`
}
