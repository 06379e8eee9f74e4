// Command seed loads a facility YAML file into the PostgreSQL roster store
// and can print a signed access token for local testing.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cmlabs-hris/labor-roster-go/internal/config"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/seed"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/labor-roster-go/migrations"
)

func main() {
	file := flag.String("file", "facility.yaml", "facility description to load")
	tokenRole := flag.String("token", "", "print an access token for this role (admin, supervisor, planner, viewer) and exit")
	tokenUser := flag.String("user", "local-dev", "user id placed in the printed token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	if *tokenRole != "" {
		if !validator.IsInSlice(*tokenRole, user.RoleValues) {
			fmt.Println("Unknown role:", *tokenRole)
			os.Exit(2)
		}
		role := user.Role(*tokenRole)
		token, _, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(user.Actor{
			UserID:  *tokenUser,
			Role:    role,
			IsAdmin: role == user.RoleAdmin,
		})
		if err != nil {
			fmt.Println("Error signing token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	in, err := os.Open(*file)
	if err != nil {
		fmt.Println("Error opening facility file:", err)
		os.Exit(1)
	}
	defer in.Close()

	facility, err := seed.Load(in)
	if err != nil {
		fmt.Println("Invalid facility file:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.PoolSize())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migrations.Apply(ctx, db.Pool); err != nil {
		fmt.Println("Error applying migrations:", err)
		os.Exit(1)
	}

	sum, err := seed.Apply(ctx, facility, seed.Repositories{
		Employees: postgresql.NewEmployeeRepository(db),
		Machines:  postgresql.NewMachineRepository(db),
		Crews:     postgresql.NewCrewRepository(db),
	})
	if err != nil {
		fmt.Println("Error seeding facility:", err)
		os.Exit(1)
	}

	fmt.Printf("Seeded %d employees, %d machines, %d crews (%d crews already present)\n",
		sum.Employees, sum.Machines, sum.Crews, sum.CrewsSkipped)
}
