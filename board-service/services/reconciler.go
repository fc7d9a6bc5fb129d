package services

import (
	"taskboard/board-service/models"
)

// ResolveDrop translates a drag-and-drop gesture into the MoveTask commands
// that keep every affected column densely numbered from zero. overID is the
// drop target: either a column id (drop on the column itself) or a task id
// (drop on a sibling).
//
// Dropping a task on itself, on its own column, or on a task of another
// column yields no commands.
func ResolveDrop(state models.AppState, taskID, overID string) []MoveTaskCommand {
	task := state.FindTask(taskID)
	if task == nil || overID == taskID {
		return nil
	}

	if overID != task.ColumnID && state.FindColumn(overID) != nil {
		return crossColumnMoves(state, *task, overID)
	}

	return sameColumnMoves(state, *task, overID)
}

// crossColumnMoves appends the task to the end of the destination column and
// re-densifies the source column it left behind.
func crossColumnMoves(state models.AppState, task models.Task, destColumnID string) []MoveTaskCommand {
	moves := []MoveTaskCommand{{
		TaskID:   task.ID,
		ColumnID: destColumnID,
		Position: len(state.TasksInColumn(destColumnID)),
	}}

	position := 0
	for _, sibling := range state.TasksInColumn(task.ColumnID) {
		if sibling.ID == task.ID {
			continue
		}
		moves = append(moves, MoveTaskCommand{
			TaskID:   sibling.ID,
			ColumnID: sibling.ColumnID,
			Position: position,
		})
		position++
	}
	return moves
}

// sameColumnMoves reinserts the task at the dropped-on sibling's index and
// renumbers the whole column, guaranteeing density and uniqueness.
func sameColumnMoves(state models.AppState, task models.Task, overID string) []MoveTaskCommand {
	column := state.TasksInColumn(task.ColumnID)

	oldIndex, newIndex := -1, -1
	for i, t := range column {
		if t.ID == task.ID {
			oldIndex = i
		}
		if t.ID == overID {
			newIndex = i
		}
	}
	if oldIndex == -1 || newIndex == -1 {
		return nil
	}

	removed := make([]models.Task, 0, len(column)-1)
	removed = append(removed, column[:oldIndex]...)
	removed = append(removed, column[oldIndex+1:]...)

	reordered := make([]models.Task, 0, len(column))
	reordered = append(reordered, removed[:newIndex]...)
	reordered = append(reordered, task)
	reordered = append(reordered, removed[newIndex:]...)

	moves := make([]MoveTaskCommand, 0, len(reordered))
	for i, t := range reordered {
		moves = append(moves, MoveTaskCommand{
			TaskID:   t.ID,
			ColumnID: t.ColumnID,
			Position: i,
		})
	}
	return moves
}
