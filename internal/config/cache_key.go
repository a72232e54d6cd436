package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CompletedMocksKey returns the KV key holding a user's completed mock id set
func (r *CacheKeyStruct) CompletedMocksKey(userID string) string {
	return fmt.Sprintf("user:%s:completedMocks", userID)
}

// BestScoresKey returns the KV key holding a user's mockId -> best score map
func (r *CacheKeyStruct) BestScoresKey(userID string) string {
	return fmt.Sprintf("user:%s:bestScores", userID)
}

// SubjectsKey returns the KV key holding a user's syllabus checklist
func (r *CacheKeyStruct) SubjectsKey(userID string) string {
	return fmt.Sprintf("user:%s:subjects", userID)
}

// KVValueKey namespaces a persistence-service key inside Redis
func (r *CacheKeyStruct) KVValueKey(key string) string {
	return fmt.Sprintf("kv:%s", key)
}

var CacheKey = NewCacheKeyStruct()
