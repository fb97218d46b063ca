// Package split divides resolved records into train, validation and test
// partitions without letting an entity (a patient) appear in more than one
// partition.
//
// The split is deterministic for a given seed: records are first put in
// canonical frame path order, entities are assigned in two seeded grouped
// stages (train against the rest, then validation against test) and each
// partition is shuffled on its own stream. Ratios are approximated by record
// count; entity grouping is exact. Fractions of 0 or 1 bypass the grouped
// stages entirely.
package split
