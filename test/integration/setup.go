package integration

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/dataservice"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Data      dataservice.Service
}

// SetupTestDB starts a PostgreSQL container and migrates the documents table.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	logger := zerolog.Nop()
	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Data:      repository.NewDocumentRepository(pool, logger),
	}
}

// SeedStorefront stores a shopper, an admin, two products and a voucher.
func SeedStorefront(t *testing.T, data dataservice.Service) {
	t.Helper()

	ctx := context.Background()
	autoAccept := int64(400_000)

	docs := []struct {
		collection string
		doc        any
	}{
		{dataservice.Users, model.User{ID: "u-budi", Name: "Budi", Email: "budi@example.com", Role: model.RoleUser, Points: 150, Vouchers: []string{}, Wishlist: []string{}}},
		{dataservice.Users, model.User{ID: "u-admin", Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin, Vouchers: []string{}, Wishlist: []string{}}},
		{dataservice.Categories, model.Category{ID: "c-shoes", Name: "Shoes", Slug: "shoes"}},
		{dataservice.Products, model.Product{ID: "P001", Name: "Runner", Price: 450_000, Stock: 4, CategoryID: "c-shoes", AllowOffers: true, AutoAcceptPrice: &autoAccept}},
		{dataservice.Products, model.Product{ID: "P002", Name: "Socks", Price: 25_000, Stock: 50, CategoryID: "c-shoes"}},
		{dataservice.Vouchers, model.Voucher{ID: "V001", Code: "FREESHIP", Discount: 30_000, MinSpend: 300_000, PointCost: 100}},
	}
	for _, d := range docs {
		if _, err := data.Create(ctx, d.collection, d.doc); err != nil {
			t.Fatalf("failed to seed %s: %v", d.collection, err)
		}
	}
}

// CleanupDB removes every stored document.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM documents"); err != nil {
		t.Logf("failed to clean documents: %v", err)
	}
}
