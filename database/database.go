package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"backend_mycharlie/models"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// CreateDatabaseIfNotExists crée la base de données si elle n'existe pas encore
func CreateDatabaseIfNotExists() error {
	// Paramètres de connexion
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "mycharlie_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	// Connexion à PostgreSQL sans base cible (base postgres par défaut)
	adminDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=%s",
		host, port, user, password, sslmode)

	db, err := sql.Open("postgres", adminDSN)
	if err != nil {
		return fmt.Errorf("impossible de se connecter à PostgreSQL: %w", err)
	}
	defer db.Close()

	// Vérifie la connexion
	if err := db.Ping(); err != nil {
		return fmt.Errorf("impossible de vérifier la connexion PostgreSQL: %w", err)
	}

	// Vérifie si la base existe déjà
	var exists bool
	query := "SELECT EXISTS(SELECT datname FROM pg_catalog.pg_database WHERE datname = $1);"
	err = db.QueryRow(query, dbname).Scan(&exists)
	if err != nil {
		return fmt.Errorf("erreur lors de la vérification de la base de données: %w", err)
	}

	if exists {
		log.Printf("✅ La base de données '%s' existe déjà", dbname)
		return nil
	}

	// Crée la base de données
	createQuery := fmt.Sprintf("CREATE DATABASE %s;", dbname)
	_, err = db.Exec(createQuery)
	if err != nil {
		return fmt.Errorf("impossible de créer la base de données '%s': %w", dbname, err)
	}

	log.Printf("✅ Base de données '%s' créée avec succès", dbname)
	return nil
}

// ConnectDatabase initialise la connexion à PostgreSQL
func ConnectDatabase() error {
	// Variables d'environnement de connexion
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "")
	dbname := getEnv("DB_NAME", "mycharlie_db")
	sslmode := getEnv("DB_SSLMODE", "disable")

	// Construit le DSN (Data Source Name)
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	// Connexion à la base de données
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return fmt.Errorf("impossible de se connecter à la base de données: %w", err)
	}

	log.Println("✅ Connexion à PostgreSQL réussie")

	// Automigration des modèles globaux
	if err := autoMigrate(); err != nil {
		return fmt.Errorf("erreur d'automigration: %w", err)
	}

	return nil
}

// getEnv récupère une variable d'environnement ou retourne la valeur par défaut
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDB retourne l'instance de base de données
func GetDB() *gorm.DB {
	return DB
}

// autoMigrate exécute l'automigration des modèles du schéma public.
// Les modèles métier vivent dans les schémas par entreprise et sont
// migrés par le middleware tenant à la création du schéma.
func autoMigrate() error {
	err := DB.AutoMigrate(
		&models.Entreprise{},
	)

	if err != nil {
		return err
	}

	log.Println("✅ Automigration des modèles globaux réussie")
	return nil
}
