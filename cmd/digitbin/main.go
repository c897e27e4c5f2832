// Command digitbin runs a weighted sampling demonstration on a digit bin
// index: it populates a large population with Gaussian-distributed weights,
// draws from it with either the sequential (Wallenius) or the batched
// (Fisher) protocol, and reports how far the drawn mean weight sits above
// the population mean.
package main

import (
	"fmt"
	"os"
	"time"

	gorng "github.com/leesper/go_rng"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mathext/prng"

	digitbinindex "github.com/Roenbaeck/digit-bin-index"
)

var (
	precision  uint8
	population int
	draws      int
	seed       int64
	fisher     bool
)

var one = decimal.New(1, 0)

func main() {
	cmd := &cobra.Command{
		Use:          "digitbin",
		Short:        "Weighted sampling demonstration on a digit bin index",
		RunE:         run,
		SilenceUsage: true,
	}
	cmd.Flags().Uint8VarP(&precision, "precision", "p", 3, "decimal digits kept when binning weights")
	cmd.Flags().IntVarP(&population, "population", "n", 100000, "number of individuals to add")
	cmd.Flags().IntVarP(&draws, "draws", "d", 1000, "number of individuals to draw")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed (0 picks one from the clock)")
	cmd.Flags().BoolVarP(&fisher, "fisher", "f", false, "draw all at once (Fisher) instead of sequentially (Wallenius)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if population <= 0 || draws <= 0 {
		return fmt.Errorf("population and draws must be positive")
	}
	if draws > population {
		return fmt.Errorf("cannot draw %d individuals out of %d", draws, population)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	src := prng.NewMT19937()
	src.Seed(uint64(seed))
	idx, err := digitbinindex.New(digitbinindex.Precision(precision), digitbinindex.RandomSource(src))
	if err != nil {
		return err
	}

	logger.Info().
		Int("population", population).
		Uint8("precision", precision).
		Int64("seed", seed).
		Msg("populating index")

	gaussian := gorng.NewGaussianGenerator(seed)
	start := time.Now()
	accepted := 0
	for id := 0; accepted < population; id++ {
		weight := decimal.NewFromFloatWithExponent(gaussian.Gaussian(0.5, 0.15), -int32(precision))
		if weight.Sign() <= 0 || weight.GreaterThanOrEqual(one) {
			continue
		}
		if idx.Add(uint32(id), weight) {
			accepted++
		}
	}

	logger.Info().
		Dur("elapsed", time.Since(start)).
		Str("total_weight", idx.TotalWeight().String()).
		Msg("index populated")

	populationMean := idx.TotalWeight().Div(decimal.NewFromInt(int64(idx.Count())))

	protocol := "wallenius"
	if fisher {
		protocol = "fisher"
	}
	start = time.Now()
	var picks []digitbinindex.Pick
	if fisher {
		batch, ok, err := idx.SelectManyAndRemove(uint32(draws))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("cannot draw %d from %d individuals", draws, idx.Count())
		}
		picks = batch
	} else {
		for i := 0; i < draws; i++ {
			pick, ok, err := idx.SelectAndRemove()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			picks = append(picks, pick)
		}
	}

	logger.Info().
		Str("protocol", protocol).
		Int("draws", len(picks)).
		Dur("elapsed", time.Since(start)).
		Msg("draws finished")

	drawnSum := decimal.Zero
	for _, pick := range picks {
		drawnSum = drawnSum.Add(pick.Weight)
	}
	drawnMean := drawnSum.Div(decimal.NewFromInt(int64(len(picks))))

	fmt.Printf("population mean weight: %s\n", populationMean.StringFixed(int32(precision)+2))
	fmt.Printf("drawn mean weight:      %s\n", drawnMean.StringFixed(int32(precision)+2))
	fmt.Printf("remaining individuals:  %d (total weight %s)\n", idx.Count(), idx.TotalWeight())
	return nil
}
