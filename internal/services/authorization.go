package services

import "useradmin/internal/models"

// Action names an operation guarded by the authorization gate.
type Action string

const (
	ActionListUsers     Action = "users:list"
	ActionViewUser      Action = "users:view"
	ActionCreateUser    Action = "users:create"
	ActionUpdateUser    Action = "users:update"
	ActionDeleteUser    Action = "users:delete"
	ActionBlockUser     Action = "users:block"
	ActionViewProfile   Action = "profile:view"
	ActionResetAPIKey   Action = "apikey:reset"
	ActionResetPassword Action = "password:reset"
)

var requiredRoles = map[Action]string{
	ActionListUsers:     models.RoleAdmin,
	ActionViewUser:      models.RoleAdmin,
	ActionCreateUser:    models.RoleAdmin,
	ActionUpdateUser:    models.RoleAdmin,
	ActionDeleteUser:    models.RoleAdmin,
	ActionBlockUser:     models.RoleAdmin,
	ActionViewProfile:   models.RoleUser,
	ActionResetAPIKey:   models.RoleUser,
	ActionResetPassword: models.RoleUser,
}

// IsAuthorized is the single role policy of the API. Unknown actions and
// missing users are denied.
func IsAuthorized(user *models.User, action Action) bool {
	if user == nil {
		return false
	}
	role, ok := requiredRoles[action]
	if !ok {
		return false
	}
	return user.HasRole(role)
}
