// sample_pairs.go prints the pairs a strategy would serve for a reference
// allocation, without starting the service.
//
// Usage:
//
//	go run scripts/sample_pairs.go -strategy l1_vs_leontief -reference 30,30,40 -count 5
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ariel-research/budget-survey-sub001/internal/config"
	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	name := flag.String("strategy", "l1_vs_leontief", "strategy name")
	refFlag := flag.String("reference", "30,30,40", "comma-separated reference allocation")
	count := flag.Int("count", 5, "number of pairs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := cfg.Logging.NewLogger(os.Stderr)

	var ref simplex.Vector
	for _, part := range strings.Split(*refFlag, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			log.Fatalf("parse reference %q: %v", *refFlag, err)
		}
		ref = append(ref, n)
	}

	opts := append(cfg.StrategyOptions(), strategy.WithLogger(logger))
	reg, err := strategy.BuildRegistry(cfg.Strategies, utility.DefaultRegistry(), simplex.NewCache(), opts...)
	if err != nil {
		log.Fatalf("build strategies: %v", err)
	}
	s, err := reg.Get(*name)
	if err != nil {
		log.Fatalf("%v", err)
	}

	res, err := s.GeneratePairs(context.Background(), ref, *count, len(ref))
	if err != nil {
		log.Fatalf("generate pairs: %v", err)
	}

	fmt.Printf("strategy=%s engine=%s floor=%d attempts=%d degraded=%v\n",
		res.Strategy, res.Engine, res.Floor, res.Attempts, res.Degraded)
	for i, p := range res.Pairs {
		fmt.Printf("%2d. %-20s %s\n", i+1, p.Options[0].Vector, p.Options[0].Label)
		fmt.Printf("    %-20s %s\n", p.Options[1].Vector, p.Options[1].Label)
	}
}
