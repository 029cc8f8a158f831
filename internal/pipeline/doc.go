// Package pipeline drives one extraction run: it pulls games from the
// archive one at a time, turns each into a record and appends it to the
// output file, reporting progress and a summary through the logger.
//
// Stages, in pull order:
//
//   - source.Open: envelope detection and decoding of the archive.
//   - pgn.Segmenter: game units, truncated ones dropped.
//   - pgn.ExtractPlies + timing.Aggregate: per-player time spent.
//   - output.Writer: one CSV row per game, flushed as it is written.
//
// Only one game is held in memory. Cancellation is checked between games,
// never mid-game, so an interrupted run leaves complete rows only.
package pipeline
