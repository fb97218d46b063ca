package resolve

import (
	"log/slog"
	"slices"
	"sort"
	"strings"

	"dsprep/internal/classmap"
	"dsprep/internal/dataset"
	"dsprep/internal/logging"
)

// Stats counts what resolution discarded across every Resolve call.
type Stats struct {
	Frames          int `json:"frames"`
	Resolved        int `json:"resolved"`
	UnmappedTokens  int `json:"unmapped_tokens"`
	ConflictMasks   int `json:"conflict_masks"`
	RejectedEmpty   int `json:"rejected_empty"`
	CollapsedBinary int `json:"collapsed_binary"`
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Frames:          s.Frames + o.Frames,
		Resolved:        s.Resolved + o.Resolved,
		UnmappedTokens:  s.UnmappedTokens + o.UnmappedTokens,
		ConflictMasks:   s.ConflictMasks + o.ConflictMasks,
		RejectedEmpty:   s.RejectedEmpty + o.RejectedEmpty,
		CollapsedBinary: s.CollapsedBinary + o.CollapsedBinary,
	}
}

// Resolver turns the raw labels of one frame into canonical merged masks.
// A Resolver is not safe for concurrent use because it accumulates Stats.
type Resolver struct {
	Mode          dataset.TrainingType
	UseEmptyMasks bool
	Logger        *slog.Logger

	stats Stats
}

// New builds a resolver for the given training type.
func New(mode dataset.TrainingType, useEmptyMasks bool, logger *slog.Logger) *Resolver {
	return &Resolver{
		Mode:          mode,
		UseEmptyMasks: useEmptyMasks,
		Logger:        logging.NewComponentLogger(logger, "resolve"),
	}
}

// Stats returns the counters accumulated so far.
func (r *Resolver) Stats() Stats {
	return r.stats
}

type mappedLabel struct {
	label   dataset.RawLabel
	classes []string
}

// Resolve maps every raw label through mapper, drops mask files whose tokens
// disagree about their classes (outside classification), applies the empty
// mask admission policy, groups by class and collapses negative classes in
// binary segmentation. The result is sorted by class; an empty result means
// the frame carries no usable annotation.
func (r *Resolver) Resolve(labels []dataset.RawLabel, mapper classmap.Mapper) []dataset.MergedMask {
	r.stats.Frames++

	mapped := make([]mappedLabel, 0, len(labels))
	for _, label := range labels {
		classes := mapper.Map(label.Token)
		if len(classes) == 0 {
			r.stats.UnmappedTokens++
			if r.Logger != nil {
				r.Logger.Debug("token not mapped",
					logging.String("token", label.Token),
					logging.String("mask", label.MaskPath),
				)
			}
			continue
		}
		mapped = append(mapped, mappedLabel{label: label, classes: classes})
	}

	if !r.Mode.IsClassification() {
		mapped = r.dropAmbiguous(mapped)
	}

	groups := make(map[string][]string)
	for _, m := range mapped {
		for _, class := range m.classes {
			if !m.label.HasAnnotation() && !r.UseEmptyMasks && !mapper.IsHealthy(class) {
				r.stats.RejectedEmpty++
				continue
			}
			if !slices.Contains(groups[class], m.label.MaskPath) {
				groups[class] = append(groups[class], m.label.MaskPath)
			}
		}
	}
	if len(groups) == 0 {
		return nil
	}

	classes := make([]string, 0, len(groups))
	for class := range groups {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	out := make([]dataset.MergedMask, 0, len(classes))
	for _, class := range classes {
		merged := dataset.MergedMask{Class: class, Healthy: mapper.IsHealthy(class)}
		if r.Mode == dataset.BinarySegmentation && !mapper.IsPositive(class) {
			r.stats.CollapsedBinary++
			merged.Representations = []dataset.MaskRepresentation{dataset.OfColor(dataset.Black)}
		} else {
			merged.Representations = representations(groups[class])
		}
		out = append(out, merged)
	}
	r.stats.Resolved++
	return out
}

// dropAmbiguous removes every label whose mask file is reached through
// tokens with different class sets. Labels without a mask file never
// conflict.
func (r *Resolver) dropAmbiguous(mapped []mappedLabel) []mappedLabel {
	first := make(map[string][]string)
	conflicting := make(map[string]struct{})
	for _, m := range mapped {
		path := m.label.MaskPath
		if path == "" {
			continue
		}
		prev, ok := first[path]
		if !ok {
			first[path] = m.classes
			continue
		}
		if slices.Equal(prev, m.classes) {
			continue
		}
		if _, reported := conflicting[path]; !reported {
			conflicting[path] = struct{}{}
			r.stats.ConflictMasks++
			logging.WarnWithContext(r.Logger, "mask skipped; mapped to conflicting classes", "mask_conflict",
				logging.String("mask", path),
				logging.String("classes", strings.Join(prev, ",")),
				logging.String("conflicting_classes", strings.Join(m.classes, ",")),
				logging.String(logging.FieldErrorHint, "map the tokens of this mask to the same classes in the class mapper"),
				logging.String(logging.FieldImpact, "mask is excluded from every class of the frame"),
				logging.Alert(logging.AlertLabelConflict),
			)
		}
	}
	if len(conflicting) == 0 {
		return mapped
	}
	kept := mapped[:0:0]
	for _, m := range mapped {
		if _, drop := conflicting[m.label.MaskPath]; !drop {
			kept = append(kept, m)
		}
	}
	return kept
}

// representations converts grouped mask paths. A missing path annotates the
// whole frame and becomes a white solid mask.
func representations(paths []string) []dataset.MaskRepresentation {
	reps := make([]dataset.MaskRepresentation, 0, len(paths))
	for _, path := range paths {
		if path == "" {
			reps = append(reps, dataset.OfColor(dataset.White))
			continue
		}
		reps = append(reps, dataset.OfPath(path))
	}
	return reps
}
