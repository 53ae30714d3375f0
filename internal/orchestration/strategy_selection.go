package orchestration

import (
	"github.com/agbru/pseries/internal/series"
)

// AllStrategies is the selection name that runs every concrete strategy.
const AllStrategies = "all"

// GetStrategiesToRun resolves a strategy selection: "all" gives the concrete
// strategies in their declaration order, any other name a single strategy.
func GetStrategiesToRun(name string) ([]series.Strategy, error) {
	if name == AllStrategies {
		return append([]series.Strategy(nil), series.Strategies...), nil
	}
	s, err := series.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	return []series.Strategy{s}, nil
}
