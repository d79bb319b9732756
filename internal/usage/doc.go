// Package usage computes directory sizes and turns them into ranked reports.
//
// It walks directory trees sequentially, skipping pseudo-filesystem roots such
// as /proc, and either sums everything below a directory or records every
// visited file and directory with its own size. Sizes are rendered with
// 1024-based units and ranked largest first.
package usage
