// Package classmap translates dataset-specific label tokens into canonical,
// output-facing class names.
//
// Two mappers satisfy the Mapper interface: Identity, used for sources whose
// tokens already are canonical, and Dict, loaded from a YAML mapping file.
// Tokens missing from a Dict map to nothing, which is how mapping files
// filter out classes a run does not want.
package classmap
