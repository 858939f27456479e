package site

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"sitehost/internal/domain"
	"sitehost/internal/model"
)

var (
	// ErrNotFound is returned for a missing or not-owned site
	ErrNotFound = errors.New("site not found")
	// ErrSubdomainTaken is returned when the subdomain label is already used
	ErrSubdomainTaken = errors.New("subdomain already in use")
	// ErrInvalidSubdomain is returned for a malformed subdomain label
	ErrInvalidSubdomain = errors.New("invalid subdomain")
)

var subdomainRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// Service manages site records and their content directories
type Service struct {
	db         *gorm.DB
	storage    *Storage
	baseDomain string
	domains    *domain.Service
	logger     *logrus.Entry
}

// NewService creates a site service
func NewService(db *gorm.DB, storage *Storage, baseDomain string, domains *domain.Service) *Service {
	return &Service{
		db:         db,
		storage:    storage,
		baseDomain: baseDomain,
		domains:    domains,
		logger:     logrus.WithField("component", "site"),
	}
}

// List returns all sites of a user, most recent first
func (s *Service) List(ctx context.Context, userID int) ([]model.Site, error) {
	var sites []model.Site
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	return sites, nil
}

// Get returns a single site scoped to the user
func (s *Service) Get(ctx context.Context, userID, id int) (*model.Site, error) {
	var site model.Site
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query site: %w", err)
	}
	return &site, nil
}

// Create registers a site under a subdomain label. An empty label gets a
// generated one.
func (s *Service) Create(ctx context.Context, userID int, subdomain string) (*model.Site, error) {
	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if subdomain == "" {
		subdomain = "site-" + uuid.NewString()[:8]
	}
	if !subdomainRe.MatchString(subdomain) {
		return nil, ErrInvalidSubdomain
	}

	site := model.Site{
		UserID:    userID,
		Subdomain: subdomain,
		URL:       s.siteURL(subdomain),
	}
	if err := s.db.WithContext(ctx).Create(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubdomainTaken
		}
		return nil, fmt.Errorf("failed to persist site: %w", err)
	}

	if err := s.storage.EnsureDir(site.ID); err != nil {
		return nil, fmt.Errorf("failed to create content dir: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"site_id":   site.ID,
		"subdomain": subdomain,
	}).Info("site created")

	return &site, nil
}

// Rename changes the subdomain label of a site
func (s *Service) Rename(ctx context.Context, userID, id int, subdomain string) (*model.Site, error) {
	site, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	subdomain = strings.ToLower(strings.TrimSpace(subdomain))
	if !subdomainRe.MatchString(subdomain) {
		return nil, ErrInvalidSubdomain
	}

	updates := map[string]interface{}{
		"subdomain": subdomain,
		"url":       s.siteURL(subdomain),
	}
	if err := s.db.WithContext(ctx).Model(site).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubdomainTaken
		}
		return nil, fmt.Errorf("failed to rename site: %w", err)
	}

	site.Subdomain = subdomain
	site.URL = s.siteURL(subdomain)
	return site, nil
}

// Delete removes the site, its custom domains and its stored content.
// Provider-side cleanup of attached domains is best-effort.
func (s *Service) Delete(ctx context.Context, userID, id int) error {
	site, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.domains.DeleteForSite(ctx, userID, site.ID); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(&model.Site{}, site.ID).Error; err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	if err := s.storage.Remove(site.ID); err != nil {
		s.logger.WithField("site_id", site.ID).WithError(err).Warn("failed to remove site content")
	}

	return nil
}

// Storage returns the underlying content storage
func (s *Service) Storage() *Storage {
	return s.storage
}

// ResolveHost maps a request Host to the content directory of a site.
// Platform subdomains resolve by label; any other hostname must match an
// active custom domain.
func (s *Service) ResolveHost(ctx context.Context, host string) (string, error) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(host)

	if label, ok := strings.CutSuffix(host, "."+s.baseDomain); ok {
		var site model.Site
		err := s.db.WithContext(ctx).Where("subdomain = ?", label).First(&site).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("failed to resolve subdomain: %w", err)
		}
		return s.storage.Dir(site.ID), nil
	}

	siteID, err := s.domains.ActiveSiteID(ctx, host)
	if errors.Is(err, domain.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return s.storage.Dir(siteID), nil
}

func (s *Service) siteURL(subdomain string) string {
	return "https://" + subdomain + "." + s.baseDomain
}
