package main

import (
	"github.com/spf13/cobra"

	"dsprep/internal/config"
	"dsprep/internal/dataset"
)

// sourceFlags select the raw datasets and how they are resolved and split.
// They are shared by build and inspect.
type sourceFlags struct {
	trainingType    dataset.TrainingType
	ersPath         string
	ersUseSeq       bool
	ersUseEmpty     bool
	ersMapperPath   string
	hyperKvasirPath string
	trainSize       float64
	validationSize  float64
	testSize        float64
	seed            uint64
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Var(&f.trainingType, "training-type", "binary-seg, multilabel-seg or multilabel-classification")
	flags.StringVar(&f.ersPath, "ers-path", "", "Folder containing ERS patient directories")
	flags.BoolVar(&f.ersUseSeq, "ers-use-seq", false, "Use every ERS sequence directory instead of samples")
	flags.BoolVar(&f.ersUseEmpty, "ers-use-empty-masks", false, "Keep empty ERS mask files for non-healthy classes")
	flags.StringVar(&f.ersMapperPath, "ers-class-mapper-path", "", "YAML file mapping ERS tokens to classes")
	flags.StringVar(&f.hyperKvasirPath, "hyperkvasir-path", "", "Folder containing the HyperKvasir image folders")
	flags.Float64Var(&f.trainSize, "train-size", 0, "Fraction of records in train")
	flags.Float64Var(&f.validationSize, "validation-size", 0, "Fraction of records in validation")
	flags.Float64Var(&f.testSize, "test-size", 0, "Fraction of records in test")
	flags.Uint64Var(&f.seed, "seed", 0, "Seed of the partition shuffle")
}

// apply copies every flag the user set onto cfg. Split fractions given on
// the command line replace the configured set as a whole so that, for
// example, --train-size 1 alone means 1/0/0.
func (f *sourceFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("training-type") {
		cfg.Dataset.TrainingType = f.trainingType
	}
	if flags.Changed("ers-path") {
		cfg.ERS.Path = f.ersPath
	}
	if flags.Changed("ers-use-seq") {
		cfg.ERS.UseSeq = f.ersUseSeq
	}
	if flags.Changed("ers-use-empty-masks") {
		cfg.ERS.UseEmptyMasks = f.ersUseEmpty
	}
	if flags.Changed("ers-class-mapper-path") {
		cfg.ERS.ClassMapperPath = f.ersMapperPath
	}
	if flags.Changed("hyperkvasir-path") {
		cfg.HyperKvasir.Path = f.hyperKvasirPath
	}
	if flags.Changed("train-size") || flags.Changed("validation-size") || flags.Changed("test-size") {
		cfg.Split.TrainSize = changedFloat(cmd, "train-size", f.trainSize)
		cfg.Split.ValidationSize = changedFloat(cmd, "validation-size", f.validationSize)
		cfg.Split.TestSize = changedFloat(cmd, "test-size", f.testSize)
	}
	if flags.Changed("seed") {
		cfg.Split.Seed = f.seed
	}
}

func changedFloat(cmd *cobra.Command, name string, value float64) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

// outputFlags control the materialized tree. Only build uses them.
type outputFlags struct {
	outputPath    string
	force         bool
	copyStrategy  string
	imgMode       string
	maskMode      string
	ignoreType    bool
	ignoreName    bool
	naming        string
	workers       int
	noManifest    bool
	invertHealthy bool
}

func (f *outputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.outputPath, "output-path", "", "Destination directory of the dataset")
	flags.BoolVarP(&f.force, "force", "f", false, "Clear the output directory when it is not empty")
	flags.StringVar(&f.copyStrategy, "copy-strategy", "", "duplicate, symlink or hardlink")
	flags.StringVar(&f.imgMode, "img-mode", "", "Convert frames to L, RGB, RGBA or 1")
	flags.StringVar(&f.maskMode, "mask-mode", "", "Convert masks to L, RGB, RGBA or 1")
	flags.BoolVar(&f.ignoreType, "path-ignore-dataset-type", false, "Drop train/validation/test from output paths")
	flags.BoolVar(&f.ignoreName, "path-ignore-dataset-name", false, "Drop the source dataset name from output paths")
	flags.StringVar(&f.naming, "naming", "", "Output file names: index or source")
	flags.IntVar(&f.workers, "workers", 0, "Parallel writers (0 uses every CPU)")
	flags.BoolVar(&f.noManifest, "no-manifest", false, "Skip writing manifest.db")
	flags.BoolVar(&f.invertHealthy, "invert-healthy-masks", false, "Invert masks of healthy classes in multilabel-seg output")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-path") {
		cfg.Output.Path = f.outputPath
	}
	if flags.Changed("force") {
		cfg.Output.Force = f.force
	}
	if flags.Changed("copy-strategy") {
		cfg.Output.CopyStrategy = f.copyStrategy
	}
	if flags.Changed("img-mode") {
		cfg.Image.ImgMode = f.imgMode
	}
	if flags.Changed("mask-mode") {
		cfg.Image.MaskMode = f.maskMode
	}
	if flags.Changed("path-ignore-dataset-type") {
		cfg.Output.IgnoreDatasetType = f.ignoreType
	}
	if flags.Changed("path-ignore-dataset-name") {
		cfg.Output.IgnoreDatasetName = f.ignoreName
	}
	if flags.Changed("naming") {
		cfg.Output.Naming = f.naming
	}
	if flags.Changed("workers") {
		cfg.Output.Workers = f.workers
	}
	if flags.Changed("no-manifest") {
		cfg.Output.Manifest = !f.noManifest
	}
	if flags.Changed("invert-healthy-masks") {
		cfg.Image.InvertHealthyMasks = f.invertHealthy
	}
}
