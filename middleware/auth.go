package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"backend_mycharlie/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthMiddleware vérifie l'authentification des utilisateurs
type AuthMiddleware struct{}

// NewAuthMiddleware crée une nouvelle instance d'AuthMiddleware
func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{}
}

// Claims représente le contenu signé du jeton JWT
type Claims struct {
	UtilisateurID uint   `json:"utilisateur_id"`
	EntrepriseID  string `json:"entreprise_id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken émet un jeton JWT signé pour un utilisateur
func GenerateToken(utilisateurID uint, entrepriseID uuid.UUID, email, role string) (string, error) {
	cfg := config.GetConfig()

	claims := &Claims{
		UtilisateurID: utilisateurID,
		EntrepriseID:  entrepriseID.String(),
		Email:         email,
		Role:          role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.JWT.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    cfg.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// RequireAuth middleware de vérification d'authentification
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Récupère le jeton depuis l'en-tête
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.GetHeader("authorization")
		}

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "En-tête Authorization requis",
			})
			c.Abort()
			return
		}

		// Extrait le jeton de l'en-tête
		var token string
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		} else if strings.HasPrefix(authHeader, "Token ") {
			token = strings.TrimPrefix(authHeader, "Token ")
		} else {
			token = authHeader
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Format d'autorisation invalide",
			})
			c.Abort()
			return
		}

		// Valide le jeton
		claims, err := am.validateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status": "error",
				"error":  "Jeton invalide ou expiré: " + err.Error(),
			})
			c.Abort()
			return
		}

		// Conserve les informations de l'utilisateur dans le contexte
		c.Set("claims", claims)
		c.Set("utilisateur_id", claims.UtilisateurID)
		c.Set("entreprise_id", claims.EntrepriseID)
		c.Set("role", claims.Role)
		c.Set("token", token)

		c.Next()
	}
}

// validateToken vérifie la signature et la validité du jeton JWT
func (am *AuthMiddleware) validateToken(tokenString string) (*Claims, error) {
	cfg := config.GetConfig()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", t.Header["alg"])
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("jeton invalide")
	}

	return claims, nil
}

// GetCurrentClaims retourne les claims JWT du contexte
func GetCurrentClaims(c *gin.Context) *Claims {
	if claims, exists := c.Get("claims"); exists {
		if cl, ok := claims.(*Claims); ok {
			return cl
		}
	}
	return nil
}

// GetCurrentToken retourne le jeton courant du contexte
func GetCurrentToken(c *gin.Context) string {
	if token, exists := c.Get("token"); exists {
		if tokenStr, ok := token.(string); ok {
			return tokenStr
		}
	}
	return ""
}
