// Package fuzztests houses Go fuzz harnesses for the impl-header pipeline
// (header text -> parser -> lowering -> pattern validation) and for the
// algebraic properties of matching and disjointness on whatever survives.
//
// Harnesses never write files; seeds come from a fixed list plus any
// testdata/*.toml manifests found in the repository.
package fuzztests
