package api

import (
	"strconv"

	"backend_mycharlie/middleware"
	"backend_mycharlie/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetClients retourne la liste des clients de l'entreprise courante
func GetClients(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	typeClient := c.Query("type")
	search := c.Query("search")

	entrepriseID := middleware.GetEntrepriseID(c)
	query := tenantDB.Model(&models.Client{}).Where("entreprise_id = ?", entrepriseID)

	if typeClient != "" {
		query = query.Where("type = ?", typeClient)
	}
	if search != "" {
		query = query.Where("nom ILIKE ? OR prenom ILIKE ? OR raison_sociale ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de comptage des clients: " + err.Error()})
		return
	}

	var clients []models.Client
	offset := (page - 1) * limit
	if err := query.Order("nom ASC").Offset(offset).Limit(limit).Find(&clients).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture des clients: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"status": "success",
		"data": gin.H{
			"items":       clients,
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetClient retourne un client avec ses devis et factures
func GetClient(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de client invalide"})
		return
	}

	var client models.Client
	if err := tenantDB.Preload("Devis").Preload("Factures").First(&client, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Client introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du client: " + err.Error()})
		}
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": client})
}

// CreateClient crée un nouveau client
func CreateClient(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	var client models.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de client invalides: " + err.Error()})
		return
	}

	if client.Nom == "" {
		c.JSON(400, gin.H{"status": "error", "error": "Le nom du client est obligatoire"})
		return
	}
	if client.Type == "" {
		client.Type = models.ClientParticulier
	}
	client.EntrepriseID = middleware.GetEntrepriseID(c)

	if err := tenantDB.Create(&client).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de création du client: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{"status": "success", "data": client})
}

// UpdateClient met à jour un client existant
func UpdateClient(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de client invalide"})
		return
	}

	var client models.Client
	if err := tenantDB.First(&client, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Client introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du client: " + err.Error()})
		}
		return
	}

	var maj models.Client
	if err := c.ShouldBindJSON(&maj); err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Données de client invalides: " + err.Error()})
		return
	}

	// Champs non modifiables par l'API
	maj.ID = client.ID
	maj.EntrepriseID = client.EntrepriseID
	maj.CreatedAt = client.CreatedAt

	if err := tenantDB.Save(&maj).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de mise à jour du client: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": maj})
}

// DeleteClient supprime un client sans document rattaché
func DeleteClient(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de client invalide"})
		return
	}

	var client models.Client
	if err := tenantDB.First(&client, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(404, gin.H{"status": "error", "error": "Client introuvable"})
		} else {
			c.JSON(500, gin.H{"status": "error", "error": "Erreur de lecture du client: " + err.Error()})
		}
		return
	}

	// Un client avec des devis ou factures ne peut pas être supprimé
	var nbDocuments int64
	tenantDB.Model(&models.Devis{}).Where("client_id = ?", client.ID).Count(&nbDocuments)
	if nbDocuments == 0 {
		tenantDB.Model(&models.Facture{}).Where("client_id = ?", client.ID).Count(&nbDocuments)
	}
	if nbDocuments > 0 {
		c.JSON(409, gin.H{"status": "error", "error": "Le client a des devis ou factures et ne peut pas être supprimé"})
		return
	}

	if err := tenantDB.Delete(&client).Error; err != nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de suppression du client: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "Client supprimé"})
}
