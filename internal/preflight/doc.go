// Package preflight checks the filesystem before a build touches anything:
// source directories must be readable, a class mapper file must exist and
// the output directory must be creatable. Free space on the output volume
// is reported as an advisory result.
//
// The build pipeline calls RunAll followed by Failures and stops on the
// returned configuration error. The "config validate" command prints the
// individual results.
package preflight
