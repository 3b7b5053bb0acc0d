package models

import (
	"time"
)

// Role defines the user role type
type Role string

const (
	RoleStudent Role = "Student"
	RoleFaculty Role = "Faculty"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        string    `json:"id" db:"id" example:"7f8c9a2e-2b44-4c11-9a07-0d1f6a3b8c55"` // Unique identifier for the user
	Email     string    `json:"email" db:"email" example:"student@karunya.edu"`             // User's email address (unique)
	Password  string    `json:"-" db:"password"`                                            // bcrypt hash, excluded from JSON
	Name      string    `json:"name" db:"name" example:"Priya Sharma"`                      // Display name
	Role      Role      `json:"role" db:"role" example:"Student"`                           // Student or Faculty
	CreatedAt time.Time `json:"createdAt" db:"created_at"`                                  // Timestamp when the user was created
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`                                  // Timestamp when the user was last updated
}

// FacultyProfile defines the faculty model based on the 'faculty_profiles' table.
// IsHOD decides which approval queue the member works: the mentor queue or
// the department-head queue.
type FacultyProfile struct {
	ID         string `json:"id" db:"id"`
	UserID     string `json:"userId" db:"user_id"`
	Title      string `json:"title" db:"title" example:"Associate Professor"`
	Department string `json:"department" db:"department" example:"Computer Science"`
	IsHOD      bool   `json:"isHOD" db:"is_hod"`

	User *User `json:"user,omitempty"` // Relation, no db tag
}

// StudentProfile defines the student model based on the 'student_profiles' table
type StudentProfile struct {
	ID         string `json:"id" db:"id"`
	UserID     string `json:"userId" db:"user_id"`
	StudentID  string `json:"studentId" db:"student_id" example:"URK21CS1234"` // University register number
	Department string `json:"department" db:"department"`
	Year       int    `json:"year" db:"year" example:"3"`
	Section    string `json:"section" db:"section" example:"A"`
	MentorID   string `json:"mentorId,omitempty" db:"mentor_id"` // Assigned faculty mentor (user id)

	User *User `json:"user,omitempty"` // Relation, no db tag
}
