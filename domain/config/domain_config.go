package config

import (
	"fmt"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Topic and course constraints
	MinTitleLength       int
	MaxTitleLength       int
	MaxDescriptionLength int

	// Comment and reply constraints
	MaxTextLength int

	// Account constraints
	MinUsernameLength int
	MaxUsernameLength int
	MinPasswordLength int

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Time constraints
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MinTitleLength:       1,
		MaxTitleLength:       200,
		MaxDescriptionLength: 10000,

		MaxTextLength: 10000,

		MinUsernameLength: 3,
		MaxUsernameLength: 30,
		MinPasswordLength: 6,

		DefaultPageSize: 10,
		MaxPageSize:     100,

		TokenTTL:      168 * time.Hour,
		ResetTokenTTL: time.Hour,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Stricter passwords in production
	config.MinPasswordLength = 8

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MinPasswordLength = 1
	config.MinUsernameLength = 1

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinTitleLength < 1 || c.MaxTitleLength < c.MinTitleLength {
		return fmt.Errorf("invalid title length bounds %d..%d", c.MinTitleLength, c.MaxTitleLength)
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("invalid page size bounds: default %d, max %d", c.DefaultPageSize, c.MaxPageSize)
	}
	if c.TokenTTL <= 0 || c.ResetTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}
