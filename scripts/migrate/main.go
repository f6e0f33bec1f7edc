// Command migrate applies the database schema. Statements are idempotent so
// the tool can run on every deploy.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		full_name TEXT NOT NULL,
		role TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked BOOLEAN NOT NULL DEFAULT FALSE,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id UUID,
		action TEXT NOT NULL,
		resource TEXT NOT NULL,
		resource_id TEXT,
		new_values JSONB,
		ip_address TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		teacher_id UUID NOT NULL REFERENCES users(id),
		price_cents BIGINT NOT NULL DEFAULT 0,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS course_modules (
		id UUID PRIMARY KEY,
		course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		position INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		id UUID PRIMARY KEY,
		module_id UUID NOT NULL REFERENCES course_modules(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		position INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS groups (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		course_id UUID NOT NULL REFERENCES courses(id),
		teacher_id UUID NOT NULL REFERENCES users(id),
		start_date DATE,
		end_date DATE,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_members (
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_rules (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		day_of_week INT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		teacher_id UUID REFERENCES users(id),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		teacher_id UUID NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ NOT NULL,
		location TEXT,
		is_attendance_required BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		rule_id UUID REFERENCES schedule_rules(id) ON DELETE SET NULL,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	// Slot uniqueness backs the expander's conflict detection: a concurrent
	// insert into the same teacher or location slot fails with 23505 and is
	// reported as a conflict rather than creating a double booking.
	`CREATE UNIQUE INDEX IF NOT EXISTS events_teacher_slot_key
		ON events (teacher_id, starts_at, ends_at) WHERE is_active`,
	`CREATE UNIQUE INDEX IF NOT EXISTS events_location_slot_key
		ON events (location, starts_at, ends_at) WHERE is_active AND location IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS quizzes (
		id UUID PRIMARY KEY,
		lesson_id UUID NOT NULL REFERENCES lessons(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		questions JSONB NOT NULL,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_submissions (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		student_id UUID NOT NULL REFERENCES users(id),
		answers JSONB NOT NULL,
		score INT NOT NULL,
		max_score INT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		UNIQUE (quiz_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		lesson_id UUID REFERENCES lessons(id) ON DELETE SET NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_at TIMESTAMPTZ,
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS assignment_submissions (
		id UUID PRIMARY KEY,
		assignment_id UUID NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		student_id UUID NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		grade INT,
		feedback TEXT,
		graded_by UUID,
		graded_at TIMESTAMPTZ,
		submitted_at TIMESTAMPTZ NOT NULL,
		UNIQUE (assignment_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		author_id UUID NOT NULL REFERENCES users(id),
		body TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS chat_messages_group_created_idx
		ON chat_messages (group_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		read_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_unread_idx
		ON notifications (user_id) WHERE read_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL REFERENCES users(id),
		course_id UUID NOT NULL REFERENCES courses(id),
		amount_cents BIGINT NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

func main() {
	var (
		dsn     string
		timeout time.Duration
	)
	flag.StringVar(&dsn, "dsn", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Per-statement timeout")
	flag.Parse()

	if dsn == "" {
		log.Fatal("missing -dsn flag or DATABASE_URL")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	for i, stmt := range statements {
		started := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		_, err := db.ExecContext(ctx, stmt)
		cancel()
		if err != nil {
			log.Fatalf("statement %d failed: %v", i+1, err)
		}
		fmt.Printf("applied statement %d/%d (%s)\n", i+1, len(statements), time.Since(started).Round(time.Millisecond))
	}

	fmt.Println("schema up to date")
}
