package main

import (
	"log"

	"backend_mycharlie/api"
	"backend_mycharlie/config"
	"backend_mycharlie/database"
	"backend_mycharlie/middleware"
	"backend_mycharlie/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// initDB initialise la connexion à la base de données
func initDB() {
	log.Println("🔧 Initialisation de la base de données...")

	// Crée la base si elle n'existe pas encore
	if err := database.CreateDatabaseIfNotExists(); err != nil {
		log.Fatal("❌ Erreur lors de la création de la base de données:", err)
	}

	// Connexion à la base de données
	if err := database.ConnectDatabase(); err != nil {
		log.Fatal("❌ Erreur de connexion à la base de données:", err)
	}

	log.Println("✅ Base de données initialisée avec succès")
}

func main() {
	// Chargement de la configuration (.env inclus)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("❌ Erreur de chargement de la configuration:", err)
	}

	// Initialisation de la base de données
	initDB()

	// Redis est optionnel : le cache et le rate limiting se désactivent sans lui
	if err := database.InitRedis(); err != nil {
		log.Printf("⚠️  Redis indisponible, cache désactivé: %v", err)
	}

	// Configuration du routeur Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	corsConfig.AllowMethods = cfg.CORS.AllowedMethods
	corsConfig.AllowHeaders = cfg.CORS.AllowedHeaders
	corsConfig.AllowCredentials = cfg.CORS.AllowCredentials
	if len(cfg.CORS.AllowedOrigins) == 1 && cfg.CORS.AllowedOrigins[0] == "*" {
		corsConfig.AllowCredentials = false
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	r.Use(cors.New(corsConfig))

	// Middlewares d'authentification et de multitenance
	authMiddleware := middleware.NewAuthMiddleware()
	tenantMiddleware := middleware.NewTenantMiddleware(database.DB)

	// Routes publiques
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "success",
			"message":  "pong",
			"database": "connected",
		})
	})
	r.POST("/api/auth/login", middleware.AuthRateLimit(), api.Login)

	// Routes protégées : JWT puis bascule sur le schéma de l'entreprise
	protected := r.Group("/api")
	protected.Use(authMiddleware.RequireAuth())
	protected.Use(tenantMiddleware.SetTenant())
	protected.Use(middleware.ModerateRateLimit())
	{
		protected.GET("/auth/me", api.GetCurrentUtilisateur)

		// Clients
		protected.GET("/clients", api.GetClients)
		protected.GET("/clients/:id", api.GetClient)
		protected.POST("/clients", api.CreateClient)
		protected.PUT("/clients/:id", api.UpdateClient)
		protected.DELETE("/clients/:id", api.DeleteClient)

		// Devis
		protected.GET("/devis", api.GetDevisList)
		protected.GET("/devis/:id", api.GetDevis)
		protected.POST("/devis", api.CreateDevis)
		protected.PUT("/devis/:id", api.UpdateDevis)
		protected.PUT("/devis/:id/statut", api.ChangerStatutDevis)
		protected.DELETE("/devis/:id", api.DeleteDevis)
		protected.GET("/devis/:id/pdf", api.GetDevisPDF)

		// Factures issues d'un devis
		protected.POST("/devis/:id/factures/acompte", api.CreateFactureAcompte)
		protected.POST("/devis/:id/factures/intermediaire", api.CreateFactureIntermediaire)
		protected.POST("/devis/:id/factures/solde", api.CreateFactureSolde)

		// Factures
		protected.GET("/factures", api.GetFactures)
		protected.GET("/factures/:id", api.GetFacture)
		protected.POST("/factures", api.CreateFactureStandalone)
		protected.POST("/factures/:id/payer", api.PayerFacture)
		protected.GET("/factures/:id/pdf", api.GetFacturePDF)
		protected.POST("/factures/:id/relances/annuler", api.AnnulerRelancesFacture)

		// Plans de paiement
		protected.GET("/templates-paiement", api.GetTemplatesPaiement)
		protected.GET("/templates-paiement/:id", api.GetTemplatePaiement)
		protected.POST("/templates-paiement", api.CreateTemplatePaiement)
		protected.PUT("/templates-paiement/:id", api.UpdateTemplatePaiement)
		protected.DELETE("/templates-paiement/:id", api.DeleteTemplatePaiement)
		protected.POST("/templates-paiement/:id/equilibrer", api.EquilibrerTemplatePaiement)

		// Relances
		protected.GET("/relances", api.GetRelances)
		protected.POST("/relances/envoyer", api.EnvoyerRelancesDues)

		// Rendez-vous
		protected.GET("/rendez-vous", api.GetRendezVousList)
		protected.GET("/rendez-vous/:id", api.GetRendezVous)
		protected.POST("/rendez-vous", api.CreateRendezVous)
		protected.PUT("/rendez-vous/:id", api.UpdateRendezVous)
		protected.DELETE("/rendez-vous/:id", api.DeleteRendezVous)

		// Rapports de visite
		protected.GET("/rapports-visite", api.GetRapportsVisite)
		protected.GET("/rapports-visite/:id", api.GetRapportVisite)
		protected.POST("/rapports-visite", api.CreateRapportVisite)
		protected.PUT("/rapports-visite/:id", api.UpdateRapportVisite)
		protected.DELETE("/rapports-visite/:id", api.DeleteRapportVisite)

		// Notifications
		protected.GET("/notifications/parametres", api.GetParametresNotification)
		protected.PUT("/notifications/parametres", api.UpdateParametresNotification)
		protected.GET("/notifications/logs", api.GetLogsNotification)

		// Assistant IA
		protected.POST("/assistant/message", middleware.AssistantRateLimit(), api.EnvoyerMessageAssistant)
		protected.GET("/assistant/ping", api.PingAssistant)
	}

	// Tâches planifiées : retards à 02:00, relances à 08:00
	automationService := services.NewAutomationService(database.DB)
	if err := automationService.Start(); err != nil {
		log.Printf("⚠️  Automatisation non démarrée: %v", err)
	}
	defer automationService.Stop()

	log.Printf("🚀 Serveur démarré sur le port %s", cfg.App.Port)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatal("❌ Erreur de démarrage du serveur:", err)
	}
}
