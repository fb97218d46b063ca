package preflight

import (
	"context"
	"fmt"
	"strings"

	"dsprep/internal/config"
	"dsprep/internal/fileutil"
	"dsprep/internal/services"
)

// Result reports the outcome of a single preflight check. Advisory results
// are reported but never stop a run.
type Result struct {
	Name     string
	Passed   bool
	Advisory bool
	Detail   string
}

// RunAll executes the checks that apply to cfg: every configured source must
// be a readable directory, a configured class mapper must be a readable file
// and the output path must be creatable. Free space on the output volume is
// checked last as an advisory result.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.ERS.Path != "" {
		results = append(results, CheckReadableDirectory("ERS source", cfg.ERS.Path))
		if cfg.ERS.ClassMapperPath != "" {
			results = append(results, CheckReadableFile("ERS class mapper", cfg.ERS.ClassMapperPath))
		}
	}
	if cfg.HyperKvasir.Path != "" {
		results = append(results, CheckReadableDirectory("HyperKvasir source", cfg.HyperKvasir.Path))
	}
	if ctx.Err() != nil {
		return results
	}

	results = append(results, CheckWritableParent("Output directory", cfg.Output.Path))

	strategy, err := fileutil.ParseStrategy(cfg.Output.CopyStrategy)
	if err != nil {
		strategy = fileutil.DefaultStrategy()
	}
	results = append(results, CheckFreeSpace("Output free space", cfg.Output.Path, MinFreeBytes(strategy)))

	return results
}

// Failures converts the failed non-advisory results into a configuration
// error. It returns nil when every required check passed.
func Failures(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Passed || r.Advisory {
			continue
		}
		failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(failed, "; "), nil)
}
