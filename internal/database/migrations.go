package database

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS profiles (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				email VARCHAR(255) UNIQUE NOT NULL,
				display_name VARCHAR(255) NOT NULL,
				avatar_url TEXT,
				password_hash VARCHAR(255) NOT NULL,
				role VARCHAR(50) NOT NULL DEFAULT 'user',
				language VARCHAR(5) NOT NULL DEFAULT 'ar',
				is_private BOOLEAN NOT NULL DEFAULT false,
				is_shield_member BOOLEAN NOT NULL DEFAULT false,
				followers_count INT NOT NULL DEFAULT 0,
				following_count INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles(email);
			CREATE INDEX IF NOT EXISTS idx_profiles_followers ON profiles(followers_count DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS profiles;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS categories (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				name VARCHAR(255) NOT NULL,
				name_ar VARCHAR(255),
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS service_categories (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				name VARCHAR(255) NOT NULL,
				name_ar VARCHAR(255),
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS events (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				organizer_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
				category_id UUID REFERENCES categories(id) ON DELETE SET NULL,
				title VARCHAR(255) NOT NULL,
				title_ar VARCHAR(255),
				description TEXT,
				location TEXT,
				start_date TIMESTAMP NOT NULL,
				price NUMERIC(12,2) NOT NULL DEFAULT 0,
				max_attendees INT,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_events_status ON events(status, created_at DESC);

			CREATE TABLE IF NOT EXISTS services (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				provider_id UUID REFERENCES profiles(id) ON DELETE SET NULL,
				category_id UUID REFERENCES service_categories(id) ON DELETE SET NULL,
				name VARCHAR(255) NOT NULL,
				description TEXT,
				price NUMERIC(12,2) NOT NULL DEFAULT 0,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_services_status ON services(status, created_at DESC);

			CREATE TABLE IF NOT EXISTS provider_applications (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				user_id UUID REFERENCES profiles(id) ON DELETE CASCADE,
				business_name VARCHAR(255) NOT NULL,
				details TEXT,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS provider_applications;
			DROP TABLE IF EXISTS services;
			DROP TABLE IF EXISTS events;
			DROP TABLE IF EXISTS service_categories;
			DROP TABLE IF EXISTS categories;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS bookings (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings(user_id, status);

			CREATE TABLE IF NOT EXISTS service_bookings (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				service_id UUID NOT NULL REFERENCES services(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_service_bookings_user ON service_bookings(user_id, status);
		`,
		Down: `
			DROP TABLE IF EXISTS service_bookings;
			DROP TABLE IF EXISTS bookings;
		`,
	},
	{
		Version: 4,
		Up: `
			CREATE TABLE IF NOT EXISTS activity_logs (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				action VARCHAR(100) NOT NULL,
				entity_type VARCHAR(50) NOT NULL,
				entity_id UUID NOT NULL,
				actor_id UUID NOT NULL,
				details JSONB,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_activity_logs_entity ON activity_logs(entity_type, entity_id);
			CREATE INDEX IF NOT EXISTS idx_activity_logs_created ON activity_logs(created_at DESC);

			CREATE TABLE IF NOT EXISTS notifications (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				type VARCHAR(50) NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				data JSONB,
				read BOOLEAN NOT NULL DEFAULT false,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);

			CREATE TABLE IF NOT EXISTS entity_reports (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				entity_type VARCHAR(50) NOT NULL,
				entity_id UUID NOT NULL,
				reporter_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				reason VARCHAR(50) NOT NULL,
				description TEXT,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				admin_notes TEXT,
				reviewed_by UUID,
				reviewed_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_entity_reports_open
				ON entity_reports(reporter_id, entity_type, entity_id) WHERE status = 'pending';
		`,
		Down: `
			DROP TABLE IF EXISTS entity_reports;
			DROP TABLE IF EXISTS notifications;
			DROP TABLE IF EXISTS activity_logs;
		`,
	},
	{
		Version: 5,
		Up: `
			CREATE TABLE IF NOT EXISTS follows (
				follower_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				following_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (follower_id, following_id)
			);

			CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(following_id);

			CREATE TABLE IF NOT EXISTS follow_requests (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				requester_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				target_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_follow_requests_open
				ON follow_requests(requester_id, target_id) WHERE status = 'pending';

			CREATE TABLE IF NOT EXISTS friend_requests (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				sender_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				receiver_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				responded_at TIMESTAMP
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_friend_requests_open
				ON friend_requests(sender_id, receiver_id) WHERE status = 'pending';

			CREATE TABLE IF NOT EXISTS friendships (
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				friend_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, friend_id)
			);

			CREATE TABLE IF NOT EXISTS groups (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				name VARCHAR(255) NOT NULL,
				owner_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				current_members INT NOT NULL DEFAULT 1,
				max_members INT NOT NULL DEFAULT 50,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				CHECK (current_members <= max_members)
			);

			CREATE TABLE IF NOT EXISTS group_memberships (
				group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				role VARCHAR(50) NOT NULL DEFAULT 'member',
				joined_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (group_id, user_id)
			);

			CREATE INDEX IF NOT EXISTS idx_group_memberships_user ON group_memberships(user_id);
		`,
		Down: `
			DROP TABLE IF EXISTS group_memberships;
			DROP TABLE IF EXISTS groups;
			DROP TABLE IF EXISTS friendships;
			DROP TABLE IF EXISTS friend_requests;
			DROP TABLE IF EXISTS follow_requests;
			DROP TABLE IF EXISTS follows;
		`,
	},
	{
		Version: 6,
		Up: `
			CREATE TABLE IF NOT EXISTS badges (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				name VARCHAR(255) NOT NULL,
				name_ar VARCHAR(255) NOT NULL,
				description TEXT,
				requirement_type VARCHAR(50) NOT NULL,
				requirement_value INT NOT NULL CHECK (requirement_value > 0),
				points_reward INT NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS user_badges (
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				badge_id UUID NOT NULL REFERENCES badges(id) ON DELETE CASCADE,
				earned_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (user_id, badge_id)
			);

			CREATE TABLE IF NOT EXISTS referrals (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				referrer_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				referred_id UUID NOT NULL UNIQUE REFERENCES profiles(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS user_points (
				user_id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
				total_points INT NOT NULL DEFAULT 0,
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS user_points;
			DROP TABLE IF EXISTS referrals;
			DROP TABLE IF EXISTS user_badges;
			DROP TABLE IF EXISTS badges;
		`,
	},
	{
		Version: 7,
		Up: `
			CREATE TABLE IF NOT EXISTS user_wallets (
				user_id UUID PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
				balance NUMERIC(12,2) NOT NULL DEFAULT 0,
				pending_balance NUMERIC(12,2) NOT NULL DEFAULT 0,
				total_earned NUMERIC(12,2) NOT NULL DEFAULT 0,
				total_withdrawn NUMERIC(12,2) NOT NULL DEFAULT 0,
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS wallet_transactions (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				type VARCHAR(50) NOT NULL,
				amount NUMERIC(12,2) NOT NULL,
				status VARCHAR(50) NOT NULL DEFAULT 'pending',
				description TEXT,
				metadata JSONB,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_wallet_transactions_user ON wallet_transactions(user_id, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS wallet_transactions;
			DROP TABLE IF EXISTS user_wallets;
		`,
	},
	{
		Version: 8,
		Up: `
			CREATE TABLE IF NOT EXISTS direct_messages (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				sender_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				recipient_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				body TEXT NOT NULL,
				read_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_direct_messages_pair ON direct_messages(sender_id, recipient_id, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS direct_messages;
		`,
	},
	{
		Version: 9,
		Up: `
			CREATE TABLE IF NOT EXISTS system_logs (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				level VARCHAR(20) NOT NULL,
				message TEXT NOT NULL,
				details JSONB,
				user_id UUID,
				created_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS system_settings (
				key VARCHAR(100) PRIMARY KEY,
				value JSONB NOT NULL,
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS system_settings;
			DROP TABLE IF EXISTS system_logs;
		`,
	},
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB, log logrus.FieldLogger) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	// Get current version
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range sortedMigrations() {
		if migration.Version <= currentVersion {
			continue
		}

		log.WithField("version", migration.Version).Info("running migration")

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// RollbackLast reverts the most recently applied migration
func RollbackLast(db *sql.DB, log logrus.FieldLogger) error {
	currentVersion, err := getCurrentVersion(db)
	if err != nil {
		return err
	}
	if currentVersion == 0 {
		return fmt.Errorf("no migrations to roll back")
	}

	var target *Migration
	for _, m := range Migrations {
		if m.Version == currentVersion {
			m := m
			target = &m
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %d is applied but unknown", currentVersion)
	}

	log.WithField("version", target.Version).Info("rolling back migration")

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if _, err := tx.Exec(target.Down); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to roll back migration %d: %w", target.Version, err)
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", target.Version); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to unrecord migration %d: %w", target.Version, err)
	}
	return tx.Commit()
}

func sortedMigrations() []Migration {
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func getCurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
