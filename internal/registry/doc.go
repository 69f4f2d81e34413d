// Package registry collects rules and the named functions rule files refer
// to.
//
// Go code contributes filters, post-row hooks and folds through Modules;
// rule files are discovered with LoadDir and compiled against the
// registry, so a rule file can name any function a module registered.
package registry
