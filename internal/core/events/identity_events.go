package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRegisteredEvent    = "user.registered"
	RoleAssignedEvent      = "role.assigned"
	PermissionGrantedEvent = "permission.granted"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewUserRegistered(userID int64, email string) BaseEvent {
	return newBase(UserRegisteredEvent, map[string]interface{}{
		"user_id": userID,
		"email":   email,
	})
}

func NewRoleAssigned(userID, roleID int64) BaseEvent {
	return newBase(RoleAssignedEvent, map[string]interface{}{
		"user_id": userID,
		"role_id": roleID,
	})
}

func NewPermissionGranted(roleID, permissionID int64) BaseEvent {
	return newBase(PermissionGrantedEvent, map[string]interface{}{
		"role_id":       roleID,
		"permission_id": permissionID,
	})
}
