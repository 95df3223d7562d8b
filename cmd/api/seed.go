package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"shareit/internal/api"
	"shareit/internal/dto"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
	Items []seedItem `yaml:"items"`
}

type seedUser struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type seedItem struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Available   bool   `yaml:"available"`
	OwnerEmail  string `yaml:"owner_email"`
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return &seed, nil
}

// seedFromFile fills an empty store from the seed file. A missing path or
// file is not an error; a store that already has users is left alone.
func seedFromFile(ctx context.Context, path string, svc api.Services, logger *zerolog.Logger) error {
	if path == "" {
		return nil
	}
	seed, err := loadSeed(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug().Str("seed_path", path).Msg("seed file not found, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	existing, err := svc.Users.ListUsers(ctx, &models.Page{From: 0, Size: 1})
	if err != nil {
		return fmt.Errorf("check existing users: %w", err)
	}
	if len(existing) > 0 {
		logger.Info().Msg("store is not empty, seed skipped")
		return nil
	}

	return applySeed(ctx, seed, svc, logger)
}

func applySeed(ctx context.Context, seed *seedFile, svc api.Services, logger *zerolog.Logger) error {
	owners := make(map[string]int64, len(seed.Users))
	for _, u := range seed.Users {
		req := dto.UserCreate{Name: u.Name, Email: u.Email}
		if err := dto.Validate(&req); err != nil {
			return fmt.Errorf("seed user %q: %w", u.Email, err)
		}
		created, err := svc.Users.CreateUser(ctx, req.Model())
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Email, err)
		}
		owners[created.Email] = created.ID
	}

	for _, it := range seed.Items {
		ownerID, ok := owners[it.OwnerEmail]
		if !ok {
			return fmt.Errorf("seed item %q: unknown owner %q", it.Name, it.OwnerEmail)
		}
		available := it.Available
		req := dto.ItemCreate{Name: it.Name, Description: it.Description, Available: &available}
		if err := dto.Validate(&req); err != nil {
			return fmt.Errorf("seed item %q: %w", it.Name, err)
		}
		if _, err := svc.Items.CreateItem(ctx, ownerID, req.Model()); err != nil {
			return fmt.Errorf("seed item %q: %w", it.Name, err)
		}
	}

	logger.Info().Int("users", len(seed.Users)).Int("items", len(seed.Items)).Msg("seed data loaded")
	return nil
}
