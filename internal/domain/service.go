package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sitehost/internal/edge"
	"sitehost/internal/hostname"
	"sitehost/internal/model"
)

var (
	// ErrNotFound is returned for a missing or not-owned domain record.
	// "not yours" and "does not exist" are deliberately indistinguishable.
	ErrNotFound = errors.New("domain not found")
	// ErrSiteNotFound is returned when the target site is missing or not owned
	ErrSiteNotFound = errors.New("site not found")
	// ErrConflict is returned when the hostname is already registered
	ErrConflict = errors.New("hostname already in use")
	// ErrNoProviderID is returned when a record has no provider-side hostname id
	ErrNoProviderID = errors.New("domain has no provider hostname mapping")
	// ErrInvalidHostname is returned when the hostname fails normalization
	ErrInvalidHostname = errors.New("invalid hostname")
)

// Service orchestrates the custom domain lifecycle: it keeps the local
// record in sync with the provider-side custom hostname. Local status and
// verification fields are a cache; the provider is the source of truth and
// staleness between refreshes is expected.
type Service struct {
	db     *gorm.DB
	edge   edge.Client
	logger *logrus.Entry
}

// NewService creates a domain lifecycle service
func NewService(db *gorm.DB, edgeClient edge.Client) *Service {
	return &Service{
		db:     db,
		edge:   edgeClient,
		logger: logrus.WithField("component", "domain"),
	}
}

// List returns all domains of a user, most recent first
func (s *Service) List(ctx context.Context, userID int) ([]model.Domain, error) {
	var domains []model.Domain
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&domains).Error; err != nil {
		return nil, fmt.Errorf("failed to query domains: %w", err)
	}
	return domains, nil
}

// Get returns a single domain scoped to the user
func (s *Service) Get(ctx context.Context, userID, id int) (*model.Domain, error) {
	var d model.Domain
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query domain: %w", err)
	}
	return &d, nil
}

// Create registers a hostname with the edge provider and persists the record.
// Remote-first: the provider hostname is created before the insert, so a
// provider failure persists nothing. If the insert fails after the provider
// call succeeded, a compensating provider delete is attempted; if that also
// fails the provider-side hostname is orphaned, which is logged and accepted.
// The reverse (local record without provider hostname) never happens.
func (s *Service) Create(ctx context.Context, userID, siteID int, rawHostname string) (*model.Domain, error) {
	name, err := hostname.Normalize(rawHostname)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHostname, err)
	}

	// site must exist and belong to the caller
	var site model.Site
	err = s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", siteID, userID).
		First(&site).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query site: %w", err)
	}

	// advisory fast-path; the unique index arbitrates races
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.Domain{}).
		Where("hostname = ?", name).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check hostname uniqueness: %w", err)
	}
	if count > 0 {
		return nil, ErrConflict
	}

	h, err := s.edge.CreateHostname(ctx, name)
	if err != nil {
		return nil, err
	}

	rawRecords, err := json.Marshal(h.ValidationRecords)
	if err != nil {
		rawRecords = []byte("[]")
	}

	d := model.Domain{
		UserID:             userID,
		SiteID:             siteID,
		Hostname:           name,
		ProviderHostnameID: h.ID,
		Status:             h.Status,
		VerificationMethod: string(h.Method),
		VerificationValue:  h.Value,
		ValidationRecords:  datatypes.JSON(rawRecords),
	}

	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		s.compensateCreate(ctx, name, h.ID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to persist domain: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"hostname":    name,
		"provider_id": h.ID,
		"status":      d.Status,
	}).Info("custom hostname registered")

	return &d, nil
}

// compensateCreate rolls back a provider-side hostname after a failed insert
func (s *Service) compensateCreate(ctx context.Context, name, providerID string) {
	if err := s.edge.DeleteHostname(ctx, providerID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"hostname":    name,
			"provider_id": providerID,
		}).WithError(err).Error("compensating provider delete failed; provider hostname orphaned")
	}
}

// Refresh overwrites the local status and verification fields with the
// latest provider truth. On provider failure the record is left unchanged
// (last-known-good).
func (s *Service) Refresh(ctx context.Context, userID, id int) (*model.Domain, error) {
	d, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if d.ProviderHostnameID == "" {
		return nil, ErrNoProviderID
	}

	h, err := s.edge.FetchStatus(ctx, d.ProviderHostnameID)
	if err != nil {
		return nil, err
	}

	rawRecords, err := json.Marshal(h.ValidationRecords)
	if err != nil {
		rawRecords = []byte("[]")
	}

	updates := map[string]interface{}{
		"status":              h.Status,
		"verification_method": string(h.Method),
		"verification_value":  h.Value,
		"validation_records":  datatypes.JSON(rawRecords),
	}
	if err := s.db.WithContext(ctx).Model(d).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update domain: %w", err)
	}

	d.Status = h.Status
	d.VerificationMethod = string(h.Method)
	d.VerificationValue = h.Value
	d.ValidationRecords = datatypes.JSON(rawRecords)

	return d, nil
}

// Delete removes the local record. Provider deregistration is attempted
// first but is best-effort: a provider failure is logged and swallowed, so
// the user can always remove a domain from their account. The orphaned
// provider hostname, if any, is the accepted trade-off.
func (s *Service) Delete(ctx context.Context, userID, id int) error {
	d, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	if d.ProviderHostnameID != "" {
		if err := s.edge.DeleteHostname(ctx, d.ProviderHostnameID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"hostname":    d.Hostname,
				"provider_id": d.ProviderHostnameID,
			}).WithError(err).Warn("provider deregistration failed; provider hostname orphaned")
		}
	}

	if err := s.db.WithContext(ctx).Delete(&model.Domain{}, d.ID).Error; err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	return nil
}

// DeleteForSite removes all domains of a site, used when the site itself is
// deleted. Same best-effort provider semantics as Delete.
func (s *Service) DeleteForSite(ctx context.Context, userID, siteID int) error {
	var domains []model.Domain
	if err := s.db.WithContext(ctx).
		Where("site_id = ? AND user_id = ?", siteID, userID).
		Find(&domains).Error; err != nil {
		return fmt.Errorf("failed to query site domains: %w", err)
	}

	for _, d := range domains {
		if err := s.Delete(ctx, userID, d.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// ActiveSiteID resolves a verified custom hostname to its site id, used by
// the serving path. Only active domains route traffic.
func (s *Service) ActiveSiteID(ctx context.Context, host string) (int, error) {
	var d model.Domain
	err := s.db.WithContext(ctx).
		Where("hostname = ? AND status = ?", host, model.DomainStatusActive).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query domain by hostname: %w", err)
	}
	return d.SiteID, nil
}
