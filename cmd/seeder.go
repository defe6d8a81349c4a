package cmd

import (
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := db.Exec("DELETE FROM reimbursements").Error; err != nil {
				log.Fatalf("failed to clear reimbursements: %v", err)
			}
			if err := db.Exec("DELETE FROM users").Error; err != nil {
				log.Fatalf("failed to clear users: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), cfg.Security.BCryptCost)

		seedUser(db, "alice", string(hash), auth.RoleEmployee)
		seedUser(db, "bob", string(hash), auth.RoleManager)

		fmt.Println("Seeding complete; password for all seeded users is:", password)
	},
}

func seedUser(db *gorm.DB, username, passwordHash, role string) {
	var exists int
	row := db.Raw("SELECT 1 FROM users WHERE username = ?", username).Row()
	if err := row.Scan(&exists); err == nil {
		fmt.Printf("user %s already exists, skipping\n", username)
		return
	}

	if err := db.Exec(
		"INSERT INTO users (username, password_hash, role, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
		username, passwordHash, role,
	).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", username, err)
	}
	fmt.Printf("Seeded %s user: %s\n", role, username)
}
