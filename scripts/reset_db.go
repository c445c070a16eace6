// Сброс схемы и тестовые данные для локальной разработки.
// Запуск: DATABASE_URL=postgres://... go run scripts/reset_db.go

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

func main() {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	fmt.Println("Connecting to database...")
	fmt.Printf("Host: %s\n", extractHost(connStr))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	fmt.Println("Connected successfully!")

	commands := []string{
		// ЧАСТЬ 1: ОЧИСТКА
		"DROP TABLE IF EXISTS notification_preferences CASCADE",
		"DROP TABLE IF EXISTS notifications CASCADE",
		"DROP TABLE IF EXISTS properties CASCADE",
		"DROP TABLE IF EXISTS tenant_profiles CASCADE",

		// ЧАСТЬ 2: ТАБЛИЦЫ
		`CREATE TABLE IF NOT EXISTS tenant_profiles (
			tenant_profile_id       UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id                 UUID NOT NULL UNIQUE,
			min_budget              NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (min_budget >= 0),
			max_budget              NUMERIC(10, 2) NOT NULL DEFAULT 0 CHECK (max_budget >= min_budget),
			preferred_city          TEXT,
			preferred_province      TEXT,
			preferred_bedrooms      INTEGER,
			preferred_property_type TEXT,
			furnished_preference    BOOLEAN,
			has_pets                BOOLEAN NOT NULL DEFAULT FALSE,
			smokes                  BOOLEAN NOT NULL DEFAULT FALSE,
			is_looking_for_place    BOOLEAN NOT NULL DEFAULT TRUE,
			created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tenant_profiles_looking
			ON tenant_profiles (is_looking_for_place) WHERE is_looking_for_place`,

		`CREATE TABLE IF NOT EXISTS properties (
			property_id     UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_user_id   UUID NOT NULL,
			title           TEXT NOT NULL,
			rent_amount     NUMERIC(10, 2) NOT NULL CHECK (rent_amount >= 0),
			city            TEXT NOT NULL,
			province        TEXT NOT NULL DEFAULT '',
			bedrooms        INTEGER,
			property_type   TEXT,
			furnished       BOOLEAN,
			pets_allowed    BOOLEAN NOT NULL DEFAULT FALSE,
			smoking_allowed BOOLEAN NOT NULL DEFAULT FALSE,
			status          TEXT NOT NULL DEFAULT 'active'
				CHECK (status IN ('active', 'inactive', 'rented')),
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_status ON properties (status)`,

		`CREATE TABLE IF NOT EXISTS notifications (
			notification_id  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id          UUID NOT NULL,
			type             TEXT NOT NULL,
			title            TEXT NOT NULL,
			message          TEXT NOT NULL,
			related_match_id UUID,
			priority         TEXT NOT NULL DEFAULT 'medium'
				CHECK (priority IN ('low', 'medium', 'high')),
			is_read          BOOLEAN NOT NULL DEFAULT FALSE,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (user_id, related_match_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_unread
			ON notifications (user_id) WHERE NOT is_read`,

		`CREATE TABLE IF NOT EXISTS notification_preferences (
			user_id         UUID PRIMARY KEY,
			profile_matches BOOLEAN NOT NULL DEFAULT TRUE,
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for i, cmd := range commands {
		preview := strings.Join(strings.Fields(cmd), " ")
		if len(preview) > 60 {
			preview = preview[:60] + "..."
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(commands), preview)

		if _, err := conn.Exec(ctx, cmd); err != nil {
			log.Fatalf("Failed to execute command %d: %v", i+1, err)
		}
	}

	// ЧАСТЬ 3: ТЕСТОВЫЕ ДАННЫЕ
	fmt.Println("\nInserting test tenant profiles...")
	_, err = conn.Exec(ctx, `
		INSERT INTO tenant_profiles (tenant_profile_id, user_id, min_budget, max_budget, preferred_city, preferred_province, preferred_bedrooms, preferred_property_type, furnished_preference, has_pets, smokes)
		VALUES
			('0b7e3c1a-6a51-4c8e-9a43-1f0c1b2e7d01', '5f1d2c3b-1111-4a2b-8c3d-000000000001', 1000, 1500, 'Amsterdam', 'Noord-Holland', 2, 'apartment', TRUE, TRUE, FALSE),
			('0b7e3c1a-6a51-4c8e-9a43-1f0c1b2e7d02', '5f1d2c3b-1111-4a2b-8c3d-000000000002', 700, 1000, 'Utrecht', 'Utrecht', 1, 'studio', NULL, FALSE, FALSE),
			('0b7e3c1a-6a51-4c8e-9a43-1f0c1b2e7d03', '5f1d2c3b-1111-4a2b-8c3d-000000000003', 1200, 2000, NULL, 'Zuid-Holland', NULL, NULL, FALSE, FALSE, TRUE)
		ON CONFLICT (tenant_profile_id) DO NOTHING
	`)
	if err != nil {
		log.Printf("Warning inserting tenant profiles: %v", err)
	} else {
		fmt.Println("  Tenant profiles inserted OK")
	}

	fmt.Println("Inserting test properties...")
	_, err = conn.Exec(ctx, `
		INSERT INTO properties (property_id, owner_user_id, title, rent_amount, city, province, bedrooms, property_type, furnished, pets_allowed, smoking_allowed, status)
		VALUES
			('9c4a1e2f-2222-4b3c-9d4e-000000000001', '7a2b3c4d-3333-4c5d-8e6f-000000000001', 'Canal apartment', 1250, 'Amsterdam', 'Noord-Holland', 2, 'apartment', TRUE, TRUE, FALSE, 'active'),
			('9c4a1e2f-2222-4b3c-9d4e-000000000002', '7a2b3c4d-3333-4c5d-8e6f-000000000001', 'Studio near Centraal', 950, 'Utrecht', 'Utrecht', 1, 'studio', FALSE, FALSE, FALSE, 'active'),
			('9c4a1e2f-2222-4b3c-9d4e-000000000003', '7a2b3c4d-3333-4c5d-8e6f-000000000002', 'Family house', 1900, 'Rotterdam', 'Zuid-Holland', 4, 'house', FALSE, TRUE, TRUE, 'active'),
			('9c4a1e2f-2222-4b3c-9d4e-000000000004', '7a2b3c4d-3333-4c5d-8e6f-000000000002', 'Rented loft', 1400, 'Amsterdam', 'Noord-Holland', 1, 'apartment', TRUE, FALSE, FALSE, 'rented')
		ON CONFLICT (property_id) DO NOTHING
	`)
	if err != nil {
		log.Printf("Warning inserting properties: %v", err)
	} else {
		fmt.Println("  Properties inserted OK")
	}

	// ЧАСТЬ 4: ПРОВЕРКА
	fmt.Println("\n=== VERIFICATION ===")
	var tenantCount, propCount int
	_ = conn.QueryRow(ctx, "SELECT count(*) FROM tenant_profiles WHERE is_looking_for_place").Scan(&tenantCount)
	_ = conn.QueryRow(ctx, "SELECT count(*) FROM properties WHERE status = 'active'").Scan(&propCount)
	fmt.Printf("Tenants looking:   %d\n", tenantCount)
	fmt.Printf("Active properties: %d\n", propCount)

	fmt.Println("\n=== DATABASE RESET COMPLETE ===")
}

func extractHost(connStr string) string {
	parts := strings.Split(connStr, "@")
	if len(parts) > 1 {
		return strings.Split(parts[1], "/")[0]
	}
	return "unknown"
}
