package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sitehost/internal/domain"
	"sitehost/internal/edge"
	"sitehost/internal/model"
)

type stubEdge struct {
	deleteCalls []string
}

func (e *stubEdge) CreateHostname(ctx context.Context, hostname string) (*edge.Hostname, error) {
	return &edge.Hostname{ID: "cf-" + hostname, Hostname: hostname, Status: "pending", Method: edge.MethodCNAME, Value: "dv.provider.net"}, nil
}

func (e *stubEdge) FetchStatus(ctx context.Context, providerID string) (*edge.Hostname, error) {
	return &edge.Hostname{ID: providerID, Status: "active", Method: edge.MethodCNAME, Value: "dv.provider.net"}, nil
}

func (e *stubEdge) DeleteHostname(ctx context.Context, providerID string) error {
	e.deleteCalls = append(e.deleteCalls, providerID)
	return nil
}

func setupSiteService(t *testing.T) (*Service, *stubEdge, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Site{}, &model.Domain{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	user := model.User{Username: "alice", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	storage, err := NewStorage(filepath.Join(t.TempDir(), "sites"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	se := &stubEdge{}
	domains := domain.NewService(db, se)
	return NewService(db, storage, "sitehost.net", domains), se, db
}

const testUserID = 1

func TestCreateSite(t *testing.T) {
	svc, _, _ := setupSiteService(t)

	site, err := svc.Create(context.Background(), testUserID, "My-Blog")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if site.Subdomain != "my-blog" {
		t.Errorf("Expected lowercased subdomain my-blog, got %s", site.Subdomain)
	}
	if site.URL != "https://my-blog.sitehost.net" {
		t.Errorf("Unexpected URL: %s", site.URL)
	}

	if _, err := os.Stat(svc.Storage().Dir(site.ID)); err != nil {
		t.Errorf("Expected content dir to exist: %v", err)
	}
}

func TestCreateSite_GeneratedSubdomain(t *testing.T) {
	svc, _, _ := setupSiteService(t)

	site, err := svc.Create(context.Background(), testUserID, "")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !strings.HasPrefix(site.Subdomain, "site-") {
		t.Errorf("Expected generated subdomain, got %s", site.Subdomain)
	}
}

func TestCreateSite_InvalidSubdomain(t *testing.T) {
	svc, _, _ := setupSiteService(t)

	for _, label := range []string{"has space", "-leading", "trailing-", "UPPER_SCORE"} {
		if _, err := svc.Create(context.Background(), testUserID, label); !errors.Is(err, ErrInvalidSubdomain) {
			t.Errorf("Create(%q) expected ErrInvalidSubdomain, got %v", label, err)
		}
	}
}

func TestCreateSite_SubdomainTaken(t *testing.T) {
	svc, _, _ := setupSiteService(t)

	if _, err := svc.Create(context.Background(), testUserID, "blog"); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), testUserID, "blog"); !errors.Is(err, ErrSubdomainTaken) {
		t.Errorf("Expected ErrSubdomainTaken, got %v", err)
	}
}

func TestRenameSite(t *testing.T) {
	svc, _, _ := setupSiteService(t)

	site, err := svc.Create(context.Background(), testUserID, "old-name")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	renamed, err := svc.Rename(context.Background(), testUserID, site.ID, "new-name")
	if err != nil {
		t.Fatalf("Rename() failed: %v", err)
	}
	if renamed.Subdomain != "new-name" {
		t.Errorf("Expected subdomain new-name, got %s", renamed.Subdomain)
	}
	if renamed.URL != "https://new-name.sitehost.net" {
		t.Errorf("Unexpected URL after rename: %s", renamed.URL)
	}
}

func TestDeleteSite_CascadesDomains(t *testing.T) {
	svc, se, db := setupSiteService(t)

	site, err := svc.Create(context.Background(), testUserID, "blog")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	domains := domain.NewService(db, se)
	if _, err := domains.Create(context.Background(), testUserID, site.ID, "example.com"); err != nil {
		t.Fatalf("domain Create() failed: %v", err)
	}

	if err := svc.Delete(context.Background(), testUserID, site.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if len(se.deleteCalls) != 1 || se.deleteCalls[0] != "cf-example.com" {
		t.Errorf("Expected provider delete for attached domain, got %v", se.deleteCalls)
	}

	var count int64
	db.Model(&model.Domain{}).Count(&count)
	if count != 0 {
		t.Errorf("Expected domain records removed, got %d", count)
	}

	if _, err := os.Stat(svc.Storage().Dir(site.ID)); !os.IsNotExist(err) {
		t.Errorf("Expected content dir removed, stat err: %v", err)
	}
}

func TestResolveHost(t *testing.T) {
	svc, _, db := setupSiteService(t)

	site, err := svc.Create(context.Background(), testUserID, "blog")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	dir, err := svc.ResolveHost(context.Background(), "blog.sitehost.net:443")
	if err != nil {
		t.Fatalf("ResolveHost() failed: %v", err)
	}
	if dir != svc.Storage().Dir(site.ID) {
		t.Errorf("Expected dir %s, got %s", svc.Storage().Dir(site.ID), dir)
	}

	// unknown subdomain
	if _, err := svc.ResolveHost(context.Background(), "ghost.sitehost.net"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	// custom hostname only routes once active
	d := model.Domain{UserID: testUserID, SiteID: site.ID, Hostname: "example.com", ProviderHostnameID: "cf1", Status: "active"}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("failed to seed domain: %v", err)
	}

	dir, err = svc.ResolveHost(context.Background(), "Example.com")
	if err != nil {
		t.Fatalf("ResolveHost() for custom hostname failed: %v", err)
	}
	if dir != svc.Storage().Dir(site.ID) {
		t.Errorf("Expected dir %s, got %s", svc.Storage().Dir(site.ID), dir)
	}
}

func TestStorageSave_RejectsTraversal(t *testing.T) {
	storage, err := NewStorage(filepath.Join(t.TempDir(), "sites"))
	if err != nil {
		t.Fatalf("NewStorage() failed: %v", err)
	}
	if err := storage.EnsureDir(1); err != nil {
		t.Fatalf("EnsureDir() failed: %v", err)
	}

	// traversal segments are stripped; the file must land inside the site dir
	if err := storage.Save(1, "../../escape.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.Dir(1), "escape.txt")); err != nil {
		t.Errorf("Expected traversal-stripped file inside site dir: %v", err)
	}
	if _, err := os.Stat(filepath.Join(storage.root, "..", "escape.txt")); !os.IsNotExist(err) {
		t.Errorf("File escaped the content root")
	}

	if err := storage.Save(1, "assets/app.css", strings.NewReader("body{}")); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(storage.Dir(1), "assets", "app.css"))
	if err != nil || string(data) != "body{}" {
		t.Errorf("Expected saved file content, got %q, err %v", data, err)
	}
}
