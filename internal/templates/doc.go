// Package templates holds the FMI_template project tree that fmigen
// instantiates, embedded into the binary, and resolves an alternative tree
// on disk when the user points fmigen at one.
//
// The template folder name doubles as the placeholder token: every file or
// directory name containing it, and every occurrence inside a file, is
// replaced with the model name during generation.
package templates
