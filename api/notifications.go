package api

import (
	"backend_mycharlie/middleware"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetParametresNotification retourne les paramètres d'envoi de l'entreprise
func GetParametresNotification(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var parametres models.ParametresNotification
	err := tenantDB.Where("entreprise_id = ?", middleware.GetEntrepriseID(c)).First(&parametres).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Paramètres de notification non configurés"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture des paramètres: " + err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": parametres})
}

// UpdateParametresNotification crée ou met à jour les paramètres d'envoi
func UpdateParametresNotification(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var maj models.ParametresNotification
	if err := c.ShouldBindJSON(&maj); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de paramètres invalides: " + err.Error()})
		return
	}

	entrepriseID := middleware.GetEntrepriseID(c)

	var parametres models.ParametresNotification
	err := tenantDB.Where("entreprise_id = ?", entrepriseID).First(&parametres).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture des paramètres: " + err.Error()})
		return
	}

	maj.EntrepriseID = entrepriseID
	if err == nil {
		maj.ID = parametres.ID
		maj.CreatedAt = parametres.CreatedAt
	}

	if err := tenantDB.Save(&maj).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur d'enregistrement des paramètres: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": maj})
}

// GetLogsNotification retourne le journal des notifications envoyées
func GetLogsNotification(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	query := tenantDB.Where("entreprise_id = ?", middleware.GetEntrepriseID(c))

	if canal := c.Query("canal"); canal != "" {
		query = query.Where("canal = ?", canal)
	}
	if statut := c.Query("statut"); statut != "" {
		query = query.Where("statut = ?", statut)
	}

	var logs []models.LogNotification
	if err := query.Order("created_at DESC").Limit(200).Find(&logs).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du journal: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": logs})
}
