package split

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"dsprep/internal/dataset"
	"dsprep/internal/logging"
)

// DefaultSeed reproduces the partitions of earlier runs when no seed is configured.
const DefaultSeed uint64 = 42

// fractionEpsilon decides when a fraction counts as exactly 0 or 1.
const fractionEpsilon = 1e-9

// Options configures a split. The test fraction is 1 - TrainPart - ValPart;
// callers validate that the three fractions are sane.
type Options struct {
	TrainPart float64
	ValPart   float64
	Seed      uint64
}

// TestPart returns the implied test fraction.
func (o Options) TestPart() float64 {
	return 1 - o.TrainPart - o.ValPart
}

// Result holds the three disjoint partitions.
type Result struct {
	Train      []dataset.Record
	Validation []dataset.Record
	Test       []dataset.Record
}

// Partition returns the records of p.
func (r Result) Partition(p dataset.Partition) []dataset.Record {
	switch p {
	case dataset.Train:
		return r.Train
	case dataset.Validation:
		return r.Validation
	case dataset.Test:
		return r.Test
	default:
		return nil
	}
}

// Len returns the number of records across all partitions.
func (r Result) Len() int {
	return len(r.Train) + len(r.Validation) + len(r.Test)
}

// Splitter partitions records so that every entity lands in exactly one
// partition.
type Splitter struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a splitter.
func New(opts Options, logger *slog.Logger) *Splitter {
	return &Splitter{opts: opts, logger: logging.NewComponentLogger(logger, "split")}
}

// Split divides records into train, validation and test. Records are put in
// canonical frame path order first, which also defines their Row. Records
// without an entity form a group of their own. The emitted records have their
// EntityID cleared and each partition is shuffled independently.
func (s *Splitter) Split(records []dataset.Record) Result {
	if len(records) == 0 {
		s.logger.Info("no records to split", logging.String(logging.FieldEventType, "split_empty"))
		return Result{}
	}

	sorted := canonicalOrder(records)
	keys := groupKeys(sorted)
	all := make([]int, len(sorted))
	for i := range all {
		all[i] = i
	}

	train, val, test := s.assign(all, keys)

	result := Result{
		Train:      s.emit(sorted, train, dataset.Train),
		Validation: s.emit(sorted, val, dataset.Validation),
		Test:       s.emit(sorted, test, dataset.Test),
	}
	s.logger.Info("records split",
		logging.Int("train", len(result.Train)),
		logging.Int("validation", len(result.Validation)),
		logging.Int("test", len(result.Test)),
		logging.Int("groups", countGroups(keys)),
		logging.Uint64("seed", s.opts.Seed),
		logging.String(logging.FieldEventType, "split_complete"),
	)
	return result
}

func (s *Splitter) assign(all []int, keys []string) (train, val, test []int) {
	trainPart, valPart, testPart := s.opts.TrainPart, s.opts.ValPart, s.opts.TestPart()
	switch {
	case isOne(testPart):
		return nil, nil, all
	case isOne(valPart):
		return nil, all, nil
	case isOne(trainPart):
		return all, nil, nil
	}

	train, rest := groupSplit(all, keys, trainPart, s.opts.Seed)
	remaining := valPart + testPart
	if remaining <= fractionEpsilon {
		return append(train, rest...), nil, nil
	}
	val, test = groupSplit(rest, keys, valPart/remaining, s.opts.Seed)
	return train, val, test
}

// emit copies the selected records, clears their entity and shuffles them
// with a stream dedicated to the partition.
func (s *Splitter) emit(sorted []dataset.Record, idx []int, p dataset.Partition) []dataset.Record {
	out := make([]dataset.Record, len(idx))
	for i, j := range idx {
		rec := sorted[j]
		rec.EntityID = ""
		out[i] = rec
	}
	rng := rand.New(rand.NewPCG(s.opts.Seed, uint64(p)+1))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// canonicalOrder sorts a copy of records by frame path, then dataset, and
// numbers them.
func canonicalOrder(records []dataset.Record) []dataset.Record {
	sorted := make([]dataset.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].FramePath != sorted[j].FramePath {
			return sorted[i].FramePath < sorted[j].FramePath
		}
		return sorted[i].Dataset < sorted[j].Dataset
	})
	for i := range sorted {
		sorted[i].Row = i
	}
	return sorted
}

// groupKeys derives the grouping key of every sorted record. Real entities
// and synthesized ones live in separate namespaces, and synthesized keys are
// numbered from len(records) upwards, so the two can never collide.
func groupKeys(sorted []dataset.Record) []string {
	keys := make([]string, len(sorted))
	for i, rec := range sorted {
		if rec.EntityID != "" {
			keys[i] = "entity:" + rec.EntityID
			continue
		}
		keys[i] = "row:" + strconv.Itoa(len(sorted)+i)
	}
	return keys
}

// groupSplit separates idx into two sides along group boundaries. Groups are
// visited in a seeded permutation and a group joins the first side whenever
// that brings the side's record count closer to fraction*len(idx). Both
// sides keep the ascending order of idx.
func groupSplit(idx []int, keys []string, fraction float64, seed uint64) (take, rest []int) {
	if fraction <= fractionEpsilon {
		return nil, idx
	}
	if isOne(fraction) {
		return idx, nil
	}

	var order []string
	members := make(map[string][]int)
	for _, i := range idx {
		k := keys[i]
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], i)
	}

	target := fraction * float64(len(idx))
	taken := 0
	chosen := make(map[string]bool, len(order))
	rng := rand.New(rand.NewPCG(seed, seed))
	for _, g := range rng.Perm(len(order)) {
		size := len(members[order[g]])
		if math.Abs(float64(taken+size)-target) < math.Abs(float64(taken)-target) {
			chosen[order[g]] = true
			taken += size
		}
	}

	for _, i := range idx {
		if chosen[keys[i]] {
			take = append(take, i)
		} else {
			rest = append(rest, i)
		}
	}
	return take, rest
}

func countGroups(keys []string) int {
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = struct{}{}
	}
	return len(seen)
}

func isOne(v float64) bool {
	return math.Abs(v-1) <= fractionEpsilon
}
