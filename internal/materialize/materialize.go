package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"dsprep/internal/config"
	"dsprep/internal/dataset"
	"dsprep/internal/fileutil"
	"dsprep/internal/imaging"
	"dsprep/internal/logging"
	"dsprep/internal/services"
	"dsprep/internal/split"
	"dsprep/internal/textutil"
)

const stageName = "materialize"

// Options controls how records become files.
type Options struct {
	Root               string
	TrainingType       dataset.TrainingType
	IgnoreDatasetType  bool
	IgnoreDatasetName  bool
	Strategy           fileutil.Strategy
	Naming             string
	ImgMode            imaging.Mode
	MaskMode           imaging.Mode
	InvertHealthyMasks bool
	Workers            int
	// Progress asks for a progress bar; it is only drawn when stderr is a
	// terminal.
	Progress bool
}

// OptionsFromConfig derives materializer options from a finalized config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	strategy, err := fileutil.ParseStrategy(cfg.Output.CopyStrategy)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, stageName, "options", "", err)
	}
	imgMode, err := imaging.ParseMode(cfg.Image.ImgMode)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, stageName, "options", "img_mode", err)
	}
	maskMode, err := imaging.ParseMode(cfg.Image.MaskMode)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, stageName, "options", "mask_mode", err)
	}
	return Options{
		Root:               cfg.Output.Path,
		TrainingType:       cfg.Dataset.TrainingType,
		IgnoreDatasetType:  cfg.Output.IgnoreDatasetType,
		IgnoreDatasetName:  cfg.Output.IgnoreDatasetName,
		Strategy:           strategy,
		Naming:             cfg.Output.Naming,
		ImgMode:            imgMode,
		MaskMode:           maskMode,
		InvertHealthyMasks: cfg.Image.InvertHealthyMasks,
		Workers:            cfg.Output.Workers,
	}, nil
}

// Entry is one (record, class) pair as written to disk. OutputMask is empty
// in classification. In binary segmentation every class of a record shares
// the same mask file.
type Entry struct {
	Partition   dataset.Partition
	Row         int
	Dataset     string
	Class       string
	SourceFrame string
	OutputFrame string
	OutputMask  string
}

// Stats counts what Materialize produced.
type Stats struct {
	Records   int           `json:"records"`
	Frames    int           `json:"frames"`
	Masks     int           `json:"masks"`
	Converted int           `json:"converted"`
	Bytes     int64         `json:"bytes"`
	Duration  time.Duration `json:"duration"`
}

// Result is the outcome of Materialize. Entries follow partition order and,
// within a partition, the shuffled record order.
type Result struct {
	Entries []Entry
	Stats   Stats
}

// Materializer writes split records to the output tree.
type Materializer struct {
	opts   Options
	paths  PathBuilder
	writer *imageWriter
	logger *slog.Logger
}

// New validates opts and builds a materializer.
func New(opts Options, logger *slog.Logger) (*Materializer, error) {
	if opts.Root == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "options", "output root is empty", nil)
	}
	if opts.TrainingType == dataset.TrainingUnknown {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "options", "training type is not set", nil)
	}
	if opts.Strategy == "" {
		opts.Strategy = fileutil.DefaultStrategy()
	}
	if opts.Naming == "" {
		opts.Naming = config.NamingIndex
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Materializer{
		opts: opts,
		paths: PathBuilder{
			Root:             opts.Root,
			IgnorePartition:  opts.IgnoreDatasetType,
			IgnoreDatasetDir: opts.IgnoreDatasetName,
		},
		writer: &imageWriter{
			Strategy: opts.Strategy,
			ImgMode:  opts.ImgMode,
			MaskMode: opts.MaskMode,
		},
		logger: logging.NewComponentLogger(logger, stageName),
	}, nil
}

type job struct {
	partition dataset.Partition
	record    dataset.Record
	name      string
}

type jobResult struct {
	entries   []Entry
	frames    int
	masks     int
	converted int
	bytes     int64
}

// Materialize writes every record of res. Records are written concurrently
// by a bounded pool; the first failure cancels the rest.
func (m *Materializer) Materialize(ctx context.Context, res split.Result) (Result, error) {
	start := time.Now()
	jobs := m.plan(res)
	if len(jobs) == 0 {
		m.logger.Info("nothing to materialize")
		return Result{Stats: Stats{Duration: time.Since(start)}}, nil
	}

	results := make([]jobResult, len(jobs))
	progress := m.newProgress(len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := m.writeRecord(jobs[i])
			if err != nil {
				return services.Wrap(services.ErrIO, stageName, "write record", jobs[i].record.FramePath, err)
			}
			results[i] = out
			progress.step()
			return nil
		})
	}
	err := g.Wait()
	progress.finish()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && !errors.Is(err, services.ErrIO) {
			return Result{}, services.Wrap(services.ErrCanceled, stageName, "write records", "materialization interrupted", err)
		}
		return Result{}, err
	}

	out := Result{Stats: Stats{Records: len(jobs)}}
	for _, r := range results {
		out.Entries = append(out.Entries, r.entries...)
		out.Stats.Frames += r.frames
		out.Stats.Masks += r.masks
		out.Stats.Converted += r.converted
		out.Stats.Bytes += r.bytes
	}
	out.Stats.Duration = time.Since(start)

	m.logger.Info("materialization complete",
		logging.Int("records", out.Stats.Records),
		logging.Int("frames", out.Stats.Frames),
		logging.Int("masks", out.Stats.Masks),
		logging.Int("converted", out.Stats.Converted),
		logging.Int64("bytes", out.Stats.Bytes),
		logging.Duration("duration", out.Stats.Duration),
	)
	return out, nil
}

// plan assigns output names in partition order. A name already taken in
// the same frame directory gets the record's row appended.
func (m *Materializer) plan(res split.Result) []job {
	jobs := make([]job, 0, res.Len())
	taken := make(map[string]struct{}, res.Len())
	for _, p := range dataset.Partitions() {
		for _, rec := range res.Partition(p) {
			name := m.baseName(rec)
			key := filepath.Join(m.paths.ImageDir(p, rec.Dataset, ""), name)
			if _, dup := taken[key]; dup {
				name = name + "_" + strconv.Itoa(rec.Row)
				key = filepath.Join(m.paths.ImageDir(p, rec.Dataset, ""), name)
				logging.WarnWithContext(m.logger, "output name collision", "name_collision",
					logging.String("frame", rec.FramePath),
					logging.String("renamed_to", name),
					logging.String(logging.FieldErrorHint, "use naming = \"index\" for collision-free names"),
				)
			}
			taken[key] = struct{}{}
			jobs = append(jobs, job{partition: p, record: rec, name: name})
		}
	}
	return jobs
}

func (m *Materializer) baseName(rec dataset.Record) string {
	if m.opts.Naming == config.NamingSource {
		if name := textutil.SanitizeFileName(rec.ProposedName); name != "" {
			return name
		}
		base := filepath.Base(rec.FramePath)
		return base[:len(base)-len(filepath.Ext(base))]
	}
	return strconv.Itoa(rec.Row)
}

func (m *Materializer) writeRecord(j job) (jobResult, error) {
	rec := j.record
	var out jobResult
	add := func(w written) {
		out.bytes += w.Bytes
		if w.Converted {
			out.converted++
		}
	}

	if m.opts.TrainingType.IsClassification() {
		for _, mask := range rec.Masks {
			dir := m.paths.ImageDir(j.partition, rec.Dataset, mask.Class)
			w, err := m.writeFrameTo(rec.FramePath, dir, j.name)
			if err != nil {
				return jobResult{}, err
			}
			add(w)
			out.frames++
			out.entries = append(out.entries, m.entry(j, mask.Class, w.Path, ""))
		}
		return out, nil
	}

	frameOut, err := m.writeFrameTo(rec.FramePath, m.paths.ImageDir(j.partition, rec.Dataset, ""), j.name)
	if err != nil {
		return jobResult{}, err
	}
	add(frameOut)
	out.frames++
	frame := &frameRef{path: rec.FramePath}

	if m.opts.TrainingType == dataset.BinarySegmentation {
		var reps []dataset.MaskRepresentation
		for _, mask := range rec.Masks {
			reps = append(reps, mask.Representations...)
		}
		w, err := m.writeMaskTo(reps, false, frame, m.paths.MaskDir(j.partition, rec.Dataset, ""), j.name)
		if err != nil {
			return jobResult{}, err
		}
		add(w)
		out.masks++
		for _, mask := range rec.Masks {
			out.entries = append(out.entries, m.entry(j, mask.Class, frameOut.Path, w.Path))
		}
		return out, nil
	}

	for _, mask := range rec.Masks {
		invert := m.opts.InvertHealthyMasks && mask.Healthy
		w, err := m.writeMaskTo(mask.Representations, invert, frame, m.paths.MaskDir(j.partition, rec.Dataset, mask.Class), j.name)
		if err != nil {
			return jobResult{}, err
		}
		add(w)
		out.masks++
		out.entries = append(out.entries, m.entry(j, mask.Class, frameOut.Path, w.Path))
	}
	return out, nil
}

func (m *Materializer) writeFrameTo(src, dir, name string) (written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return written{}, fmt.Errorf("create %s: %w", dir, err)
	}
	return m.writer.writeFrame(src, dir, name)
}

func (m *Materializer) writeMaskTo(reps []dataset.MaskRepresentation, invert bool, frame *frameRef, dir, name string) (written, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return written{}, fmt.Errorf("create %s: %w", dir, err)
	}
	return m.writer.writeMask(reps, invert, frame, dir, name)
}

func (m *Materializer) entry(j job, class, frame, mask string) Entry {
	return Entry{
		Partition:   j.partition,
		Row:         j.record.Row,
		Dataset:     j.record.Dataset,
		Class:       class,
		SourceFrame: j.record.FramePath,
		OutputFrame: frame,
		OutputMask:  mask,
	}
}

// progress reports record completion either on a terminal bar or as
// sampled log lines.
type progress struct {
	bar     *progressbar.ProgressBar
	sampler *logging.ProgressSampler
	logger  *slog.Logger
	total   int
	done    atomic.Int64
}

func (m *Materializer) newProgress(total int) *progress {
	p := &progress{
		sampler: logging.NewProgressSampler(0),
		logger:  m.logger,
		total:   total,
	}
	if m.opts.Progress && isatty.IsTerminal(os.Stderr.Fd()) {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("writing records"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	return p
}

func (p *progress) step() {
	done := int(p.done.Add(1))
	if p.bar != nil {
		_ = p.bar.Add(1)
		return
	}
	if p.sampler.ShouldLog(done, p.total) {
		p.logger.Info("materialization progress",
			logging.Int("done", done),
			logging.Int("total", p.total),
		)
	}
}

func (p *progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
