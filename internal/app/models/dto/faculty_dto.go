package dto

// FacultyResponse is one entry of the faculty directory
type FacultyResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Title      string `json:"title" example:"Assistant Professor"`
	Department string `json:"department"`
	Email      string `json:"email"`
	IsHOD      bool   `json:"isHOD"`
}
