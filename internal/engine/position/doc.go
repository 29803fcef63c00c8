// Package position is the single conversion boundary between byte offsets,
// which the transform package works in, and the line/column addressing used
// by editing surfaces.
//
// Lines are 0-indexed and split on '\n'. Columns are 0-indexed and measured
// in one of three units:
//
//   - UnitByte: UTF-8 code units, identical to offsets within the line.
//   - UnitUTF16: UTF-16 code units, the unit used by browser and LSP
//     surfaces.
//   - UnitGrapheme: user-perceived characters (grapheme clusters).
//
// A Converter is built once per buffer snapshot and is read-only afterwards.
package position
