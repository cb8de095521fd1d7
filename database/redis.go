package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var Redis *redis.Client
var RedisClient *redis.Client // Client exporté
var Ctx = context.Background()

// InitRedis initialise la connexion à Redis
func InitRedis() error {
	// Paramètres Redis depuis les variables d'environnement
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")
	dbStr := getEnv("REDIS_DB", "0")

	// Convertit le numéro de base en int
	db, err := strconv.Atoi(dbStr)
	if err != nil {
		db = 0
	}

	// Crée le client Redis
	Redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  300 * time.Second,
	})

	// Expose le client exporté
	RedisClient = Redis

	// Vérifie la connexion
	if err := Redis.Ping(Ctx).Err(); err != nil {
		return fmt.Errorf("impossible de se connecter à Redis: %w", err)
	}

	log.Println("✅ Connexion à Redis réussie")
	return nil
}

// GetRedis retourne l'instance du client Redis
func GetRedis() *redis.Client {
	return Redis
}

// CacheSet enregistre une valeur dans le cache avec un TTL
func CacheSet(key string, value interface{}, ttl time.Duration) error {
	return Redis.Set(Ctx, key, value, ttl).Err()
}

// CacheGet récupère une valeur du cache
func CacheGet(key string) (string, error) {
	return Redis.Get(Ctx, key).Result()
}

// CacheDel supprime une valeur du cache
func CacheDel(key string) error {
	return Redis.Del(Ctx, key).Err()
}

// CacheExists vérifie l'existence d'une clé dans le cache
func CacheExists(key string) (bool, error) {
	count, err := Redis.Exists(Ctx, key).Result()
	return count > 0, err
}

// CacheSetJSON enregistre un objet JSON dans le cache
func CacheSetJSON(key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erreur de sérialisation JSON: %w", err)
	}
	return CacheSet(key, string(jsonData), ttl)
}

// CacheGetJSON récupère un objet JSON du cache
func CacheGetJSON(key string, dest interface{}) error {
	jsonData, err := CacheGet(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return fmt.Errorf("erreur de désérialisation JSON: %w", err)
	}

	return nil
}

// CacheIncr incrémente un compteur
func CacheIncr(key string) (int64, error) {
	return Redis.Incr(Ctx, key).Result()
}

// CacheExpire fixe le TTL d'une clé
func CacheExpire(key string, ttl time.Duration) error {
	return Redis.Expire(Ctx, key, ttl).Err()
}

// CacheFlushDB vide la base Redis courante (pour les tests)
func CacheFlushDB() error {
	return Redis.FlushDB(Ctx).Err()
}

// GenerateCacheKey génère une clé de cache multitenant
func GenerateCacheKey(entrepriseID uuid.UUID, prefix string, suffix string) string {
	return fmt.Sprintf("entreprise:%s:%s:%s", entrepriseID, prefix, suffix)
}

// CacheTenantData met en cache des données d'une entreprise
func CacheTenantData(entrepriseID uuid.UUID, dataType string, data interface{}, ttl time.Duration) error {
	key := GenerateCacheKey(entrepriseID, "data", dataType)
	return CacheSetJSON(key, data, ttl)
}

// GetCachedTenantData récupère les données en cache d'une entreprise
func GetCachedTenantData(entrepriseID uuid.UUID, dataType string, dest interface{}) error {
	key := GenerateCacheKey(entrepriseID, "data", dataType)
	return CacheGetJSON(key, dest)
}

// ClearTenantCache vide tout le cache d'une entreprise
func ClearTenantCache(entrepriseID uuid.UUID) error {
	pattern := fmt.Sprintf("entreprise:%s:*", entrepriseID)
	keys, err := Redis.Keys(Ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return Redis.Del(Ctx, keys...).Err()
	}

	return nil
}

// RateLimitCheck vérifie le rate limit pour un client donné
func RateLimitCheck(identifier string, action string, limit int64, window time.Duration) (bool, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", identifier, action)

	pipe := Redis.Pipeline()
	incr := pipe.Incr(Ctx, key)
	pipe.Expire(Ctx, key, window)
	_, err := pipe.Exec(Ctx)

	if err != nil {
		return false, err
	}

	count, err := incr.Result()
	if err != nil {
		return false, err
	}

	return count <= limit, nil
}
