package services

import "quizcraft/models"

// Actor is the authenticated caller of a service operation. A nil *Actor is an
// anonymous caller.
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// CanManage reports whether the actor may edit, publish or preview quiz.
func (a *Actor) CanManage(quiz *models.Quiz) bool {
	if a == nil || quiz == nil {
		return false
	}
	return a.IsAdmin() || quiz.OwnedBy(a.UserID)
}
