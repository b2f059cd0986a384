package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID
func (f *TestDataFactory) CreateUser(t *testing.T, email, fullName string) string {
	uid := uuid.New().String()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, email, full_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		uid, email, fullName, "hashedpassword", "user")
	require.NoError(t, err)
	return uid
}

// CreateApplication создает заявку с выбранным статусом паспорта
func (f *TestDataFactory) CreateApplication(t *testing.T, userUID, passportStatus string) int {
	var id int
	err := f.storage.DB.QueryRow(`INSERT INTO applications (user_uid, passport_status)
		VALUES ($1, $2) RETURNING id`,
		userUID, passportStatus).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateCompleteApplication создает заявку со всеми заполненными шагами
func (f *TestDataFactory) CreateCompleteApplication(t *testing.T, userUID string) int {
	id := f.CreateApplication(t, userUID, "has_passport")
	_, err := f.storage.DB.Exec(`UPDATE applications
		SET phone_number = '+100200300', date_of_birth = '1992-04-15',
		    education_level = 'bachelor', occupation = 'engineer', marital_status = 'single',
		    cv_filename = 'cv.pdf', id_filename = 'id.pdf', cert_filename = 'cert.pdf'
		WHERE id = $1`, id)
	require.NoError(t, err)
	return id
}

// SetSubmitted отмечает заявку отправленной в заданный момент
func (f *TestDataFactory) SetSubmitted(t *testing.T, id int, at time.Time) {
	_, err := f.storage.DB.Exec(`UPDATE applications
		SET submitted = TRUE, submitted_at = $1 WHERE id = $2`, at, id)
	require.NoError(t, err)
}

// SetApproved отмечает заявку одобренной, lastReminder может быть nil
func (f *TestDataFactory) SetApproved(t *testing.T, id int, at time.Time, lastReminder *time.Time) {
	_, err := f.storage.DB.Exec(`UPDATE applications
		SET approved = TRUE, approved_at = $1, last_reminder_sent = $2 WHERE id = $3`,
		at, lastReminder, id)
	require.NoError(t, err)
}

// setupTestDatabase создает тестовую БД с контейнером PostgreSQL
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForAll(
			wait.ForListeningPort(nat.Port("5432/tcp")),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3*time.Minute)),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			err = storage.DB.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	// Создаем таблицы
	_, err = storage.DB.Exec(`
        DROP TABLE IF EXISTS applications CASCADE;
        DROP TABLE IF EXISTS users CASCADE;

        CREATE EXTENSION IF NOT EXISTS "pgcrypto";

        CREATE TABLE users (
            uid UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            email TEXT NOT NULL UNIQUE,
            full_name TEXT NOT NULL,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );

        CREATE TABLE applications (
            id SERIAL PRIMARY KEY,
            user_uid UUID NOT NULL UNIQUE REFERENCES users(uid) ON DELETE CASCADE,
            passport_status TEXT NOT NULL,
            phone_number TEXT,
            date_of_birth DATE,
            education_level TEXT,
            occupation TEXT,
            marital_status TEXT,
            cv_filename TEXT,
            id_filename TEXT,
            cert_filename TEXT,
            submitted BOOLEAN NOT NULL DEFAULT FALSE,
            submitted_at TIMESTAMPTZ,
            approved BOOLEAN NOT NULL DEFAULT FALSE,
            approved_at TIMESTAMPTZ,
            last_reminder_sent TIMESTAMPTZ
        );

        CREATE INDEX idx_applications_submitted ON applications(submitted, approved, submitted_at);
        CREATE INDEX idx_applications_reminder ON applications(approved, last_reminder_sent);
    `)
	require.NoError(t, err, "failed to create tables")

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if postgresContainer != nil {
			_ = postgresContainer.Terminate(ctx)
		}
	}

	return storage, cleanup
}

// uniqueEmail возвращает уникальную почту для изоляции тестовых данных
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.New().String()[:8])
}
