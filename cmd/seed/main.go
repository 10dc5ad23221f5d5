package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// Seeds one operator per role and a small compounding catalog so the service
// is usable right after migration.
func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	seedUsers(db)
	seedCatalog(db)

	fmt.Println("Database seeded successfully")
}

func seedUsers(db *sql.DB) {
	password := getenvDefault("SEED_USER_PASSWORD", "Admix1234!")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := []struct {
		email string
		name  string
		role  string
	}{
		{"aux@admixflow.local", "Aux Operator", "AUXILIARY"},
		{"pharmacist@admixflow.local", "Lead Pharmacist", "PHARMACIST"},
		{"coordinator@admixflow.local", "Production Coordinator", "COORDINATOR"},
	}

	query := `
	INSERT INTO users (id, email, name, password_hash, role, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (email) DO UPDATE SET
	  password_hash = EXCLUDED.password_hash,
	  role = EXCLUDED.role,
	  updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	for _, u := range users {
		if _, err := db.Exec(query, uuid.NewString(), u.email, u.name, string(hash), u.role, now, now); err != nil {
			log.Fatalf("failed to seed user %s: %v", u.email, err)
		}
		fmt.Printf("Seeded user: email=%s role=%s\n", u.email, u.role)
	}
}

func seedCatalog(db *sql.DB) {
	exec := func(query string, args ...interface{}) {
		if _, err := db.Exec(query, args...); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
	}

	exec(`INSERT INTO medicines (id, name, concentration, presentations, enabled)
	      VALUES ('med-fluorouracil', 'Fluorouracil', '50mg/ml', '[{"volume": 20, "count": 1}]', TRUE)
	      ON CONFLICT (id) DO NOTHING`)
	exec(`INSERT INTO medicines (id, name, concentration, presentations, enabled)
	      VALUES ('med-heparin', 'Heparin', '5000UI/ml', '[{"volume": 5, "count": 10}]', TRUE)
	      ON CONFLICT (id) DO NOTHING`)

	exec(`INSERT INTO laboratories (id, name, enabled)
	      VALUES ('lab-accord', 'Accord Healthcare', TRUE)
	      ON CONFLICT (id) DO NOTHING`)

	exec(`INSERT INTO vehicles (id, name, compatible_lines)
	      VALUES ('veh-ns-100', 'Normal Saline 0.9% 100ml', '{ONCO,STERILE}')
	      ON CONFLICT (id) DO NOTHING`)
	exec(`INSERT INTO vehicles (id, name, compatible_lines)
	      VALUES ('veh-d5w-250', 'Dextrose 5% 250ml', '{STERILE}')
	      ON CONFLICT (id) DO NOTHING`)

	exec(`INSERT INTO containers (id, name)
	      VALUES ('con-eva-250', 'EVA Bag 250ml')
	      ON CONFLICT (id) DO NOTHING`)

	exec(`INSERT INTO stabilities (id, medicine_id, laboratory_id, vehicle_id, container_id, hours)
	      VALUES ('stab-1', 'med-fluorouracil', 'lab-accord', 'veh-ns-100', 'con-eva-250', 48)
	      ON CONFLICT (medicine_id, laboratory_id, vehicle_id, container_id) DO NOTHING`)
}

func getenvDefault(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}
