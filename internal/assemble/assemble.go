package assemble

import (
	"context"
	"log/slog"
	"slices"
	"sort"

	"dsprep/internal/classmap"
	"dsprep/internal/config"
	"dsprep/internal/dataset"
	"dsprep/internal/logging"
	"dsprep/internal/resolve"
	"dsprep/internal/scan"
	"dsprep/internal/services"
)

const stageName = "assemble"

// Source pairs a scanner with the mapper that interprets its tokens and the
// resolver that applies the dataset's admission policy.
type Source struct {
	Scanner  scan.Scanner
	Mapper   classmap.Mapper
	Resolver *resolve.Resolver
}

// DatasetStats counts frames per dataset.
type DatasetStats struct {
	Dataset string `json:"dataset"`
	Scanned int    `json:"scanned"`
	Kept    int    `json:"kept"`
	Dropped int    `json:"dropped"`
}

// Stats summarizes one Assemble call.
type Stats struct {
	Datasets []DatasetStats `json:"datasets"`
	Resolve  resolve.Stats  `json:"resolve"`
}

// Records returns the total number of kept frames.
func (s Stats) Records() int {
	total := 0
	for _, d := range s.Datasets {
		total += d.Kept
	}
	return total
}

// Assembler runs every source through its resolver.
type Assembler struct {
	logger *slog.Logger
}

// New builds an assembler.
func New(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logging.NewComponentLogger(logger, stageName)}
}

// Assemble scans each source in order, resolves every frame with the
// source's mapper and resolver and concatenates the records. Frames whose
// resolution is empty are dropped and counted. Resolver stats are summed
// once per distinct resolver.
func (a *Assembler) Assemble(ctx context.Context, sources []Source) ([]dataset.Record, Stats, error) {
	var (
		records   []dataset.Record
		stats     Stats
		resolvers []*resolve.Resolver
	)
	for _, src := range sources {
		if src.Resolver == nil {
			return nil, Stats{}, services.Wrap(services.ErrConfiguration, stageName, "resolve",
				"source "+src.Scanner.Name()+" has no resolver", nil)
		}
		if !slices.Contains(resolvers, src.Resolver) {
			resolvers = append(resolvers, src.Resolver)
		}

		frames, err := src.Scanner.Scan(ctx)
		if err != nil {
			return nil, Stats{}, err
		}

		ds := DatasetStats{Dataset: src.Scanner.Name(), Scanned: len(frames)}
		for _, frame := range frames {
			if err := ctx.Err(); err != nil {
				return nil, Stats{}, services.Wrap(services.ErrCanceled, stageName, "resolve", "assembly interrupted", err)
			}
			masks := src.Resolver.Resolve(frame.Labels, src.Mapper)
			if len(masks) == 0 {
				ds.Dropped++
				continue
			}
			ds.Kept++
			records = append(records, dataset.Record{
				EntityID:     frame.EntityID,
				Dataset:      frame.Dataset,
				FramePath:    frame.Path,
				ProposedName: frame.ProposedName,
				Masks:        masks,
			})
		}

		a.logger.Info("dataset assembled",
			logging.String(logging.FieldDataset, ds.Dataset),
			logging.Int("scanned", ds.Scanned),
			logging.Int("kept", ds.Kept),
			logging.Int("dropped", ds.Dropped),
		)
		stats.Datasets = append(stats.Datasets, ds)
	}
	for _, r := range resolvers {
		stats.Resolve = stats.Resolve.Add(r.Stats())
	}

	if len(records) == 0 {
		logging.WarnWithContext(a.logger, "no records assembled", "empty_input",
			logging.String(logging.FieldErrorHint, "check dataset paths, the class mapper and use_empty_masks"),
			logging.String(logging.FieldImpact, "output partitions will be empty"),
			logging.Alert(logging.AlertMissingData),
		)
	}
	return records, stats, nil
}

// ClassCounts returns how many records carry each class.
func ClassCounts(records []dataset.Record) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		for _, m := range r.Masks {
			counts[m.Class]++
		}
	}
	return counts
}

// SortedClasses returns the keys of counts in order.
func SortedClasses(counts map[string]int) []string {
	classes := make([]string, 0, len(counts))
	for c := range counts {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

// SourcesFromConfig builds the sources a configuration asks for. ERS uses
// the configured class mapper or the identity mapper and honors
// ers.use_empty_masks. HyperKvasir tokens are already canonical and its
// masks are taken as published, so empty ones are always admitted.
func SourcesFromConfig(cfg *config.Config, logger *slog.Logger) ([]Source, error) {
	var sources []Source
	mode := cfg.Dataset.TrainingType
	classification := mode.IsClassification()

	if cfg.ERS.Path != "" {
		var mapper classmap.Mapper = classmap.NewIdentity()
		if cfg.ERS.ClassMapperPath != "" {
			dict, err := classmap.LoadFile(cfg.ERS.ClassMapperPath)
			if err != nil {
				return nil, services.Wrap(services.ErrConfiguration, stageName, "load class mapper", "", err)
			}
			mapper = dict
		}
		sources = append(sources, Source{
			Scanner:  scan.NewERS(cfg.ERS.Path, cfg.ERS.UseSeq, logger),
			Mapper:   mapper,
			Resolver: resolve.New(mode, cfg.ERS.UseEmptyMasks, logger),
		})
	}
	if cfg.HyperKvasir.Path != "" {
		sources = append(sources, Source{
			Scanner:  scan.NewHyperKvasir(cfg.HyperKvasir.Path, classification, logger),
			Mapper:   classmap.NewIdentity(),
			Resolver: resolve.New(mode, true, logger),
		})
	}
	return sources, nil
}
