package model

import "time"

type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Name             string    `json:"name"`
	Role             string    `json:"role"` // admin / member / client
	PasswordHash     string    `json:"-"`
	AssignedProjects []string  `json:"assigned_projects,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// CanSeeProject reports whether the user may view the given project.
// Admins and members see everything; clients only their assigned projects.
func (u *User) CanSeeProject(projectID string) bool {
	if u.Role != "client" {
		return true
	}
	for _, id := range u.AssignedProjects {
		if id == projectID {
			return true
		}
	}
	return false
}
