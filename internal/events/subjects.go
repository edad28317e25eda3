package events

import "time"

const (
	StreamName   = "PAIRGEN_EVENTS"
	StreamMaxAge = 30 * 24 * time.Hour
)

var StreamSubjects = []string{"survey.pairs.>", "survey.strategy.>"}

func SubjectPairsGenerated(batchID string) string { return "survey.pairs." + batchID + ".generated" }
func SubjectPairsDegraded(batchID string) string  { return "survey.pairs." + batchID + ".degraded" }

func SubjectStrategyUnsuitable(name string) string { return "survey.strategy." + name + ".unsuitable" }
