package testqueries

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/ecliptiq/transits/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	sectTypeDivisor    = 3
)

// Daily motion bounds per transiting body, in degrees per day. The
// generated speeds stay inside plausible ephemeris ranges, retrograde
// included.
var transitSpeeds = map[string][2]float64{
	"Sun":     {0.95, 1.02},
	"Mercury": {-1.4, 2.2},
	"Venus":   {-0.6, 1.26},
	"Mars":    {-0.4, 0.8},
	"Jupiter": {-0.14, 0.24},
	"Saturn":  {-0.08, 0.13},
	"Uranus":  {-0.04, 0.07},
	"Neptune": {-0.03, 0.04},
	"Pluto":   {-0.03, 0.04},
}

// natalPoints are the points every generated natal chart carries.
var natalPoints = []string{
	"Sun", "Moon", "Mercury", "Venus", "Mars", "Jupiter",
	"Saturn", "Uranus", "Neptune", "Pluto",
	"North Node", "Ascendant", "Midheaven",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomLongitude returns a random ecliptic longitude in [0, 360).
func randomLongitude() float64 {
	return getRandomFloat() * 360.0
}

// generateQueries creates the specified number of queries with unique IDs.
func generateQueries(ctx context.Context, config *Config, stats *Stats) ([]Query, error) {
	logger.Get().Info(ctx, "generating queries with unique IDs", logger.Int("numQueries", config.NumQueries))

	queries := make([]Query, config.NumQueries)

	ids := make([]string, config.NumQueries)
	for i := 0; i < config.NumQueries; i++ {
		ids[i] = uuid.New().String()
	}

	type queryResult struct {
		index int
		query Query
		err   error
	}

	resultChan := make(chan queryResult, config.NumQueries)

	workerCount := minInt(config.Workers, config.NumQueries)
	queriesPerWorker := config.NumQueries / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * queriesPerWorker
		end := start + queriesPerWorker
		if worker == workerCount-1 {
			end = config.NumQueries
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					resultChan <- queryResult{index: i, err: ctx.Err()}
					return
				default:
					query := generateSingleQuery(ids[i], config.Mode)
					resultChan <- queryResult{index: i, query: query}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumQueries; i++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled during query generation: %w", ctx.Err())
		case result := <-resultChan:
			if result.err != nil {
				return nil, fmt.Errorf("failed to generate query %d: %w", result.index, result.err)
			}
			queries[result.index] = result.query
		}
	}

	stats.QueriesGenerated = len(queries)
	logger.Get().Info(ctx, "generated queries successfully", logger.Int("count", len(queries)))

	return queries, nil
}

// generateSingleQuery creates one query with a random transit sky and a
// random natal chart.
func generateSingleQuery(id, mode string) Query {
	transits := make(map[string]Position, len(transitSpeeds))
	for body, bounds := range transitSpeeds {
		speed := bounds[0] + getRandomFloat()*(bounds[1]-bounds[0])
		transits[body] = Position{Longitude: randomLongitude(), Speed: &speed}
	}
	// The nodes travel without speed data, exercising the unknown-motion
	// path on the service side.
	transits["North Node"] = Position{Longitude: randomLongitude()}

	natal := make(map[string]Position, len(natalPoints))
	for _, point := range natalPoints {
		natal[point] = Position{Longitude: randomLongitude()}
	}

	return Query{
		ID:       id,
		Sect:     randomSect(),
		Mode:     mode,
		Transits: transits,
		Natal:    natal,
	}
}

// randomSect picks diurnal, nocturnal, or auto with equal probability.
func randomSect() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(sectTypeDivisor))
	switch n.Int64() {
	case 0:
		return "diurnal"
	case 1:
		return "nocturnal"
	default:
		return "auto"
	}
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
