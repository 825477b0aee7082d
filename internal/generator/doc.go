// Package generator instantiates the FMI project template: it copies the
// template tree into a staging directory, renames every path carrying the
// placeholder token to the model name, substitutes the $$...$$ markers, and
// finally swaps the staged tree into place, moving any previous project at
// the target to the trash.
package generator
