package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/invoice_validation_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* Redis */

// store instance under Type:key, obj should be a pointer
func StoreRedis[T any](obj any, key string) error {
	cacheKey := GetTypeName[T]() + ":" + fmt.Sprint(key)
	return config.SetRedisObject(cacheKey, &obj, GetCacheLifespan())
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](key string) (*T, error) {
	var result *T
	cacheKey := GetTypeName[T]() + ":" + fmt.Sprint(key)
	exists, err := config.GetRedisObject(cacheKey, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// remove an instance, Type:key
func RemoveRedisItem[T any](key string) error {
	cacheKey := GetTypeName[T]() + ":" + fmt.Sprint(key)
	return config.RemoveRedisKey(cacheKey)
}
