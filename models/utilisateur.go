package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Utilisateur représente un utilisateur d'une entreprise artisan
type Utilisateur struct {
	ID        uint           `json:"id" gorm:"primarykey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	// Identité
	Email      string `json:"email" gorm:"uniqueIndex;not null;type:varchar(100)"`
	MotDePasse string `json:"-" gorm:"not null;type:varchar(100)"` // Hash bcrypt, jamais exposé en JSON
	Nom        string `json:"nom" gorm:"not null;type:varchar(100)"`
	Prenom     string `json:"prenom" gorm:"type:varchar(100)"`

	// Rôle et statut
	Role     string `json:"role" gorm:"default:'artisan';type:varchar(20)"` // admin, artisan
	IsActive bool   `json:"is_active" gorm:"default:true"`

	// Multitenant
	EntrepriseID uuid.UUID `json:"entreprise_id" gorm:"type:uuid;not null;index"`

	// Dernière connexion
	DerniereConnexion *time.Time `json:"derniere_connexion"`
}

// TableName fixe le nom de la table pour le modèle Utilisateur
func (Utilisateur) TableName() string {
	return "utilisateurs"
}

// SetMotDePasse hashe et stocke le mot de passe
func (u *Utilisateur) SetMotDePasse(motDePasse string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(motDePasse), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.MotDePasse = string(hash)
	return nil
}

// VerifierMotDePasse compare un mot de passe en clair avec le hash stocké
func (u *Utilisateur) VerifierMotDePasse(motDePasse string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.MotDePasse), []byte(motDePasse)) == nil
}

// NomComplet retourne le nom complet de l'utilisateur
func (u *Utilisateur) NomComplet() string {
	if u.Prenom == "" {
		return u.Nom
	}
	return u.Prenom + " " + u.Nom
}
