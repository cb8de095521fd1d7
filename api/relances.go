package api

import (
	"strconv"

	"backend_mycharlie/middleware"
	"backend_mycharlie/services"

	"github.com/gin-gonic/gin"
)

// GetRelances retourne les relances de l'entreprise courante
func GetRelances(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	statut := c.Query("statut")
	factureID, _ := strconv.Atoi(c.Query("facture_id"))

	relanceService := services.NewRelanceService(tenantDB)
	relances, err := relanceService.ListerRelances(middleware.GetEntrepriseID(c), statut, uint(factureID))
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": relances})
}

// AnnulerRelancesFacture annule les relances encore planifiées d'une facture
func AnnulerRelancesFacture(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	factureID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(400, gin.H{"status": "error", "error": "Identifiant de facture invalide"})
		return
	}

	relanceService := services.NewRelanceService(tenantDB)
	if err := relanceService.AnnulerRelances(uint(factureID)); err != nil {
		c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "message": "Relances annulées"})
}

// EnvoyerRelancesDues déclenche manuellement l'envoi des relances arrivées à
// échéance pour l'entreprise courante
func EnvoyerRelancesDues(c *gin.Context) {
	tenantDB := middleware.GetTenantDB(c)
	if tenantDB == nil {
		c.JSON(500, gin.H{"status": "error", "error": "Erreur de connexion à la base de données de l'entreprise"})
		return
	}

	relanceService := services.NewRelanceService(tenantDB)
	envoyees, err := relanceService.EnvoyerRelancesDues(middleware.GetEntrepriseID(c))
	if err != nil {
		c.JSON(500, gin.H{"status": "error", "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{"status": "success", "data": gin.H{"envoyees": envoyees}})
}
