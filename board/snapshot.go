package board

import "github.com/skhapre/dashboard-app/database"

// ApplySnapshotMove produces a new board snapshot with the drag applied, as a
// single value to swap in for the old one. The untouched columns share their
// backing arrays with the input; the two affected columns are fresh lists.
//
// The second return is false when the drop changes nothing (same column, same
// index) and the input snapshot should be kept as-is.
func ApplySnapshotMove(snapshot database.Board, source, dest DropTarget) (database.Board, bool) {
	if SamePosition(source, dest) {
		return snapshot, false
	}

	sourceList := snapshot[source.Column]
	destList := snapshot[dest.Column]
	if source.Column == dest.Column {
		destList = sourceList
	}
	if source.Index < 0 || source.Index >= len(sourceList) {
		return snapshot, false
	}

	newSource, newDest := ComputeMove(sourceList, destList, source.Index, dest.Index)
	for i := range newDest {
		newDest[i].Column = dest.Column
	}

	next := make(database.Board, len(snapshot))
	for column, tasks := range snapshot {
		next[column] = tasks
	}
	next[source.Column] = newSource
	next[dest.Column] = newDest

	return next, true
}
