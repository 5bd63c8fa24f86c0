// Package gen drives code-generation phases.
//
// A phase has a name and a writer. The driver renders each writer into a
// CodeWriter and splices the result between the phase's markers in its
// target file, leaving the rest of the file alone. Targets are written
// atomically, only when their bytes change, so rerunning a phase on the
// same inputs leaves files byte-identical.
package gen
