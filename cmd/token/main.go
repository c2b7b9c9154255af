// Command token issues an access token for a staff member. Identity is
// managed outside this service; operators use this to provision devices
// and scripts.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/tablekit/backoffice/internal/domain/shared"
	"github.com/tablekit/backoffice/internal/infrastructure/auth"
	"github.com/tablekit/backoffice/internal/infrastructure/config"
)

func main() {
	var (
		staffID  string
		username string
		role     string
	)
	flag.StringVar(&staffID, "staff-id", "", "Staff member UUID (generated when empty)")
	flag.StringVar(&username, "username", "", "Staff username")
	flag.StringVar(&role, "role", string(shared.RoleStaff), "Role: staff, manager or admin")
	flag.Parse()

	if err := run(staffID, username, role); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(staffID, username, role string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	id := uuid.New()
	if staffID != "" {
		if id, err = uuid.Parse(staffID); err != nil {
			return fmt.Errorf("invalid staff id: %w", err)
		}
	}

	if !shared.Role(role).IsValid() {
		return fmt.Errorf("unknown role %q", role)
	}
	actor := shared.NewActor(id, username, shared.Role(role))
	if err := actor.Validate(); err != nil {
		return err
	}

	issued, err := auth.NewJWTService(cfg.JWT).GenerateToken(actor)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(issued)
}
