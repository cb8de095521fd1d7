package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend_mycharlie/database"

	"github.com/gin-gonic/gin"
	redis "github.com/go-redis/redis/v8"
)

// RateLimitConfig configure la limitation de débit
type RateLimitConfig struct {
	Requests     int                       // Nombre de requêtes autorisées
	Window       time.Duration             // Fenêtre temporelle
	KeyGenerator func(*gin.Context) string // Générateur de clés
}

// DefaultKeyGenerator génère une clé à partir de l'adresse IP
func DefaultKeyGenerator(c *gin.Context) string {
	return c.ClientIP()
}

// UserKeyGenerator génère une clé à partir de l'utilisateur courant
func UserKeyGenerator(c *gin.Context) string {
	if claims := GetCurrentClaims(c); claims != nil {
		return fmt.Sprintf("user:%d", claims.UtilisateurID)
	}
	return c.ClientIP()
}

// RateLimit crée un middleware de limitation de débit
func RateLimit(config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := database.GetRedis()
		if redisClient == nil {
			// Si Redis est indisponible, on laisse passer
			c.Next()
			return
		}

		key := "rate_limit:" + config.KeyGenerator(c)

		// Compte les requêtes en cours
		current, err := redisClient.Get(database.Ctx, key).Int()
		if err != nil && err != redis.Nil {
			// En cas d'erreur Redis, on laisse passer
			c.Next()
			return
		}

		// Vérifie le dépassement du quota
		if current >= config.Requests {
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"status": "error",
				"error":  "Quota de requêtes dépassé",
				"message": fmt.Sprintf("Trop de requêtes. Limite: %d requêtes par %v",
					config.Requests, config.Window),
				"retry_after": config.Window.Seconds(),
			})
			c.Abort()
			return
		}

		// Incrémente le compteur
		pipe := redisClient.Pipeline()
		pipe.Incr(database.Ctx, key)
		if current == 0 {
			// Le TTL n'est posé que sur la première requête
			pipe.Expire(database.Ctx, key, config.Window)
		}
		_, err = pipe.Exec(database.Ctx)
		if err != nil {
			c.Next()
			return
		}

		// En-têtes d'information rate limit
		remaining := config.Requests - current - 1
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(config.Window).Unix(), 10))

		c.Next()
	}
}

// Configurations prédéfinies de limitation de débit

// ModerateRateLimit limitation modérée pour les API classiques
func ModerateRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Requests:     100,
		Window:       time.Minute,
		KeyGenerator: UserKeyGenerator,
	})
}

// AuthRateLimit limitation stricte pour l'authentification
func AuthRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Requests:     5,
		Window:       time.Minute,
		KeyGenerator: DefaultKeyGenerator,
	})
}

// AssistantRateLimit limitation pour le pont vers l'assistant IA
func AssistantRateLimit() gin.HandlerFunc {
	return RateLimit(RateLimitConfig{
		Requests:     20,
		Window:       time.Minute,
		KeyGenerator: UserKeyGenerator,
	})
}
