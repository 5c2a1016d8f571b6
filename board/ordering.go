// Package board holds the pure, in-memory side of the task board: the
// ordering engine used for optimistic drag-and-drop updates and the snapshot
// the synchronizer keeps between fetches. Nothing in this package does I/O.
package board

import "github.com/skhapre/dashboard-app/database"

// DropTarget identifies one end of a drag gesture: a column and an index
// within that column's list.
type DropTarget struct {
	Column database.Column
	Index  int
}

// SamePosition reports whether a drag ended exactly where it started. Such a
// drop is a no-op and must not trigger a persistence call.
func SamePosition(source, dest DropTarget) bool {
	return source.Column == dest.Column && source.Index == dest.Index
}

// ComputeMove removes the task at fromIndex in source and inserts it at
// toIndex in dest, then renumbers both lists so that position equals array
// index. When source and dest are the same column, pass the same slice twice;
// the returned source and dest will alias the single resulting list.
//
// toIndex past the end of the destination is clamped to append. Indices are a
// caller contract: fromIndex must address an existing task.
func ComputeMove(source, dest []database.Task, fromIndex, toIndex int) (newSource, newDest []database.Task) {
	// A same-column reorder is expressed by passing the identical slice for
	// source and dest.
	sameColumn := len(dest) > 0 && &source[0] == &dest[0]

	moved := source[fromIndex]

	newSource = make([]database.Task, 0, len(source)-1)
	newSource = append(newSource, source[:fromIndex]...)
	newSource = append(newSource, source[fromIndex+1:]...)

	base := dest
	if sameColumn {
		base = newSource
	}

	if toIndex > len(base) {
		toIndex = len(base)
	}

	newDest = make([]database.Task, 0, len(base)+1)
	newDest = append(newDest, base[:toIndex]...)
	newDest = append(newDest, moved)
	newDest = append(newDest, base[toIndex:]...)

	for i := range newDest {
		newDest[i].Position = i
	}

	if sameColumn {
		return newDest, newDest
	}

	for i := range newSource {
		newSource[i].Position = i
	}
	return newSource, newDest
}
