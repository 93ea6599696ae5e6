package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/graze-api/internal/filters"
	"github.com/Lixing-Zhang/graze-api/internal/models"
	"github.com/Lixing-Zhang/graze-api/internal/repository"
)

// Acknowledgements returned to the submitter. The created record is never echoed.
const (
	DataFlagAck     = "Thank you for your report. We will review it shortly."
	LocationFlagAck = "Thank you for reporting this location issue."
)

// DataFlagInput is a report against a menu item. MenuItemID may be nil for
// items missing from the catalog.
type DataFlagInput struct {
	MenuItemID  *int64
	FlagType    string
	UserComment string
	UserIP      string
}

// LocationFlagInput is a report against a location. LocationID is required.
type LocationFlagInput struct {
	LocationID  *int64
	FlagType    string
	UserComment string
	UserIP      string
}

// FlagService records user reports.
type FlagService struct {
	dishes    repository.DishRepository
	locations repository.LocationRepository
	flags     repository.FlagRepository
	newID     func() string
}

// NewFlagService creates a new flag service
func NewFlagService(dishes repository.DishRepository, locations repository.LocationRepository, flags repository.FlagRepository) *FlagService {
	return &FlagService{
		dishes:    dishes,
		locations: locations,
		flags:     flags,
		newID:     uuid.NewString,
	}
}

// SubmitDataFlag validates and stores a menu item report.
func (s *FlagService) SubmitDataFlag(ctx context.Context, in DataFlagInput) (string, error) {
	if err := validateFlagType(in.FlagType, models.DataFlagTypes); err != nil {
		return "", err
	}
	if in.MenuItemID != nil {
		exists, err := s.dishes.MenuItemExists(ctx, *in.MenuItemID)
		if err != nil {
			return "", fmt.Errorf("check menu item: %w", err)
		}
		if !exists {
			return "", filters.NewValidationError("menu_item", "menu_item %d does not exist", *in.MenuItemID)
		}
	}

	flag := &models.DataFlag{
		ID:          s.newID(),
		MenuItemID:  in.MenuItemID,
		FlagType:    in.FlagType,
		UserComment: strings.TrimSpace(in.UserComment),
		UserIP:      in.UserIP,
	}
	if err := s.flags.CreateDataFlag(ctx, flag); err != nil {
		return "", fmt.Errorf("create data flag: %w", err)
	}
	return DataFlagAck, nil
}

// SubmitLocationFlag validates and stores a location report.
func (s *FlagService) SubmitLocationFlag(ctx context.Context, in LocationFlagInput) (string, error) {
	if err := validateFlagType(in.FlagType, models.LocationFlagTypes); err != nil {
		return "", err
	}
	if in.LocationID == nil {
		return "", filters.NewValidationError("location", "location is required")
	}
	exists, err := s.locations.LocationExists(ctx, *in.LocationID)
	if err != nil {
		return "", fmt.Errorf("check location: %w", err)
	}
	if !exists {
		return "", filters.NewValidationError("location", "location %d does not exist", *in.LocationID)
	}

	flag := &models.LocationFlag{
		ID:          s.newID(),
		LocationID:  *in.LocationID,
		FlagType:    in.FlagType,
		UserComment: strings.TrimSpace(in.UserComment),
		UserIP:      in.UserIP,
	}
	if err := s.flags.CreateLocationFlag(ctx, flag); err != nil {
		return "", fmt.Errorf("create location flag: %w", err)
	}
	return LocationFlagAck, nil
}

// ResolveDataFlag marks a menu item report as resolved.
func (s *FlagService) ResolveDataFlag(ctx context.Context, id string) error {
	if err := s.flags.ResolveDataFlag(ctx, id); err != nil {
		return fmt.Errorf("resolve data flag %s: %w", id, err)
	}
	return nil
}

// ResolveLocationFlag marks a location report as resolved.
func (s *FlagService) ResolveLocationFlag(ctx context.Context, id string) error {
	if err := s.flags.ResolveLocationFlag(ctx, id); err != nil {
		return fmt.Errorf("resolve location flag %s: %w", id, err)
	}
	return nil
}

func validateFlagType(flagType string, allowed []string) error {
	if !slices.Contains(allowed, flagType) {
		return filters.NewValidationError("flag_type", "flag_type must be one of: %s", strings.Join(allowed, ", "))
	}
	return nil
}
