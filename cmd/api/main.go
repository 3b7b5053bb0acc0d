package main

import (
	"fmt"
	"os"

	"github.com/atomclub/attendance/internal/server"
)

// @title           Attendance Approval API
// @version         1.0
// @description     Physical attendance approval workflow for students, mentors and heads of department.

// @contact.name   AtomClub
// @contact.email  atomclub@karunya.edu

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	srv, err := server.NewServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize server: %v\n", err)
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
