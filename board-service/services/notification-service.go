package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskboard/board-service/models"
)

// Notification fan-out derives notification records from assignment and
// invite events. It is best-effort by design: an id that matches no known
// user is skipped silently, and fan-out never fails the operation that
// triggered it.

// TaskAssignedNotifications builds one task_assigned notification per
// assignee that exists in the user list.
func TaskAssignedNotifications(users []models.User, assigneeIDs []string, taskTitle string, now time.Time) []models.Notification {
	var notifications []models.Notification
	for _, userID := range assigneeIDs {
		user := findUser(users, userID)
		if user == nil {
			continue
		}
		notifications = append(notifications, models.Notification{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      models.NotificationTaskAssigned,
			Title:     "New task assigned",
			Message:   fmt.Sprintf("%s was assigned the task %q", user.DisplayName(), taskTitle),
			CreatedAt: now,
		})
	}
	return notifications
}

// BoardInvitedNotifications builds one board_invited notification per
// invited user that exists in the user list.
func BoardInvitedNotifications(users []models.User, invitedIDs []string, boardName string, now time.Time) []models.Notification {
	var notifications []models.Notification
	for _, userID := range invitedIDs {
		user := findUser(users, userID)
		if user == nil {
			continue
		}
		notifications = append(notifications, models.Notification{
			ID:        uuid.New().String(),
			UserID:    userID,
			Type:      models.NotificationBoardInvited,
			Title:     "Board invitation",
			Message:   fmt.Sprintf("%s was invited to the board %q", user.DisplayName(), boardName),
			CreatedAt: now,
		})
	}
	return notifications
}

// NewlyAssigned returns the ids present in next but not in prev. Users who
// were already assigned and remain assigned are not re-notified.
func NewlyAssigned(prev, next []string) []string {
	seen := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		seen[id] = struct{}{}
	}
	var added []string
	for _, id := range next {
		if _, ok := seen[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}

func findUser(users []models.User, id string) *models.User {
	for i := range users {
		if users[i].ID == id {
			return &users[i]
		}
	}
	return nil
}
