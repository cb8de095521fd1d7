package api

import (
	"strconv"
	"time"

	"backend_mycharlie/middleware"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetRapportsVisite retourne les rapports de visite de l'entreprise courante
func GetRapportsVisite(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	query := tenantDB.Preload("Client").Where("entreprise_id = ?", middleware.GetEntrepriseID(c))

	if clientID, _ := strconv.Atoi(c.Query("client_id")); clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}

	var rapports []models.RapportVisite
	if err := query.Order("date_visite DESC").Find(&rapports).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture des rapports: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": rapports})
}

// GetRapportVisite retourne un rapport de visite
func GetRapportVisite(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de rapport invalide"})
		return
	}

	var rapport models.RapportVisite
	if err := tenantDB.Preload("Client").Preload("RendezVous").First(&rapport, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Rapport introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du rapport: " + err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": rapport})
}

// CreateRapportVisite crée un rapport de visite de chantier
func CreateRapportVisite(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var rapport models.RapportVisite
	if err := c.ShouldBindJSON(&rapport); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de rapport invalides: " + err.Error()})
		return
	}

	if rapport.ClientID == 0 {
		c.JSON(400, gin.H{"status": "error", "error": "Un rapport doit être rattaché à un client"})
		return
	}
	if rapport.DateVisite.IsZero() {
		rapport.DateVisite = time.Now()
	}
	rapport.EntrepriseID = middleware.GetEntrepriseID(c)

	if err := tenantDB.Create(&rapport).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de création du rapport: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": rapport})
}

// UpdateRapportVisite met à jour un rapport de visite
func UpdateRapportVisite(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de rapport invalide"})
		return
	}

	var rapport models.RapportVisite
	if err := tenantDB.First(&rapport, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Rapport introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du rapport: " + err.Error()})
		}
		return
	}

	var maj models.RapportVisite
	if err := c.ShouldBindJSON(&maj); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de rapport invalides: " + err.Error()})
		return
	}

	maj.ID = rapport.ID
	maj.EntrepriseID = rapport.EntrepriseID
	maj.CreatedAt = rapport.CreatedAt

	if err := tenantDB.Save(&maj).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de mise à jour du rapport: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": maj})
}

// DeleteRapportVisite supprime un rapport de visite
func DeleteRapportVisite(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de rapport invalide"})
		return
	}

	if err := tenantDB.Delete(&models.RapportVisite{}, id).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de suppression du rapport: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "Rapport supprimé"})
}
