package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go-registration-portal/models"

	"github.com/redis/go-redis/v9"
)

type InMemoryProfileStore struct {
	Profiles map[string]models.StoredProfile
	mutex    sync.Mutex
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{
		Profiles: make(map[string]models.StoredProfile),
	}
}

type RedisProfileStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisProfileStore(client *redis.Client, namespace string) *RedisProfileStore {
	return &RedisProfileStore{client: client, namespace: namespace}
}

// Should be safe to use concurrently
type ProfileStore interface {
	// Store the profile under the given id.
	// Should not return an error when the profile already exists,
	// it should just update in that case.
	SaveProfile(id string, profile models.StoredProfile) error

	// Should retrieve the profile stored under the given id
	// and return an error in any case where it fails to do so.
	GetProfile(id string) (models.StoredProfile, error)

	// Should remove the profile and return an error if it fails to do so.
	// The profile not being there should also be considered an error.
	RemoveProfile(id string) error
}

// ------------------------------------------------------------------------------

func createProfileKey(namespace, id string) string {
	return fmt.Sprintf("%s:profile:%s", namespace, id)
}

func (s *RedisProfileStore) SaveProfile(id string, profile models.StoredProfile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	ctx := context.Background()
	return s.client.Set(ctx, createProfileKey(s.namespace, id), payload, 0).Err()
}

func (s *RedisProfileStore) GetProfile(id string) (models.StoredProfile, error) {
	ctx := context.Background()
	payload, err := s.client.Get(ctx, createProfileKey(s.namespace, id)).Result()
	if err != nil {
		return models.StoredProfile{}, err
	}

	var profile models.StoredProfile
	if err := json.Unmarshal([]byte(payload), &profile); err != nil {
		return models.StoredProfile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return profile, nil
}

func (s *RedisProfileStore) RemoveProfile(id string) error {
	ctx := context.Background()
	removed, err := s.client.Del(ctx, createProfileKey(s.namespace, id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("failed to remove profile for %s, because it wasn't there", id)
	}
	return nil
}

// ------------------------------------------------------------------------------

func (s *InMemoryProfileStore) SaveProfile(id string, profile models.StoredProfile) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.Profiles[id] = profile
	return nil
}

func (s *InMemoryProfileStore) GetProfile(id string) (models.StoredProfile, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if profile, ok := s.Profiles[id]; ok {
		return profile, nil
	}
	return models.StoredProfile{}, fmt.Errorf("failed to find profile for %s", id)
}

func (s *InMemoryProfileStore) RemoveProfile(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.Profiles[id]; ok {
		delete(s.Profiles, id)
		return nil
	}
	return fmt.Errorf("failed to remove profile for %s, because it wasn't there", id)
}
