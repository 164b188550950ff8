// Package storage is the durable persistence boundary: chat history, saved
// jobs, and the profile/skill rows user context is formatted from.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

type Config struct {
	DSN          string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	MaxOpenConns int           `envconfig:"MAX_OPEN_CONNS" split_words:"true" default:"8"`
}

type ChatMessage struct {
	bun.BaseModel `bun:"table:chat_messages"`

	ID        string    `bun:"id,pk,default:gen_random_uuid()"`
	UserID    string    `bun:"user_id,notnull"`
	ThreadID  string    `bun:"thread_id,notnull"`
	Role      string    `bun:"role,notnull"`
	Content   string    `bun:"content,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:now()"`
}

type UserJob struct {
	bun.BaseModel `bun:"table:user_jobs"`

	ID          string    `bun:"id,pk,default:gen_random_uuid()"`
	UserID      string    `bun:"user_id,notnull"`
	JobTitle    string    `bun:"job_title,notnull"`
	Company     string    `bun:"company,notnull"`
	Location    string    `bun:"location"`
	MatchRating int       `bun:"match_rating,notnull"`
	Link        string    `bun:"link"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:now()"`
}

type Profile struct {
	bun.BaseModel `bun:"table:profiles"`

	ID          string `bun:"id,pk"`
	FullName    string `bun:"full_name"`
	LinkedinURL string `bun:"linkedin_url"`
}

type UserSkill struct {
	bun.BaseModel `bun:"table:user_skills"`

	ID          int64  `bun:"id,pk,autoincrement"`
	UserID      string `bun:"user_id,notnull"`
	SkillName   string `bun:"skill_name,notnull"`
	Proficiency string `bun:"proficiency_level"`
}

type UserResume struct {
	bun.BaseModel `bun:"table:user_resumes"`

	ID        string    `bun:"id,pk,default:gen_random_uuid()"`
	UserID    string    `bun:"user_id,notnull"`
	Profile   string    `bun:"profile"`
	Skills    string    `bun:"skills"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:now()"`
}

// Store implements contract.Gateway and contract.ContextProvider over
// Postgres. Writes are append-only; saved jobs are never updated in place.
type Store struct {
	db *bun.DB
}

var (
	_ contractx.Gateway         = (*Store)(nil)
	_ contractx.ContextProvider = (*Store)(nil)
)

func New(cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("storage: dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return &Store{db: bun.NewDB(sqldb, pgdialect.New())}, nil
}

func (s *Store) SaveMessage(ctx context.Context, userID, threadID string, role contractx.Role, content string) (string, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(threadID) == "" {
		return "", contractx.ErrMissingIdentity
	}

	row := &ChatMessage{
		UserID:   userID,
		ThreadID: threadID,
		Role:     string(role),
		Content:  content,
	}
	if _, err := s.db.NewInsert().
		Model(row).
		Returning("id").
		Exec(ctx); err != nil {
		return "", fmt.Errorf("insert chat message: %w", err)
	}
	return row.ID, nil
}

func (s *Store) SaveJob(ctx context.Context, userID string, job contractx.JobRecord) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", contractx.ErrMissingIdentity
	}

	row := &UserJob{
		UserID:      userID,
		JobTitle:    job.JobTitle,
		Company:     job.Company,
		Location:    job.Location,
		MatchRating: job.MatchRating,
		Link:        job.Link,
	}
	if _, err := s.db.NewInsert().
		Model(row).
		Returning("id").
		Exec(ctx); err != nil {
		return "", fmt.Errorf("insert user job: %w", err)
	}
	return row.ID, nil
}

// UserContext formats the per-turn context summary from profile and skill
// rows. Recomputed on every turn, never cached.
func (s *Store) UserContext(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", contractx.ErrMissingIdentity
	}

	var profile Profile
	err := s.db.NewSelect().
		Model(&profile).
		Where("id = ?", userID).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("select profile: %w", err)
	}

	var skills []UserSkill
	if err := s.db.NewSelect().
		Model(&skills).
		Where("user_id = ?", userID).
		Order("skill_name ASC").
		Scan(ctx); err != nil {
		return "", fmt.Errorf("select user skills: %w", err)
	}

	return FormatUserContext(profile, skills), nil
}

// FormatUserContext renders "Name: X. LinkedIn: Y. Skills: A (expert), ..."
// or the no-context sentinel when there is nothing to show.
func FormatUserContext(profile Profile, skills []UserSkill) string {
	var parts []string
	if profile.FullName != "" {
		parts = append(parts, "Name: "+profile.FullName)
	}
	if profile.LinkedinURL != "" {
		parts = append(parts, "LinkedIn: "+profile.LinkedinURL)
	}

	if len(skills) > 0 {
		entries := make([]string, 0, len(skills))
		for _, sk := range skills {
			proficiency := sk.Proficiency
			if proficiency == "" {
				proficiency = "Unknown"
			}
			entries = append(entries, fmt.Sprintf("%s (%s)", sk.SkillName, proficiency))
		}
		parts = append(parts, "Skills: "+strings.Join(entries, ", "))
	}

	if len(parts) == 0 {
		return contractx.NoUserContext
	}
	return strings.Join(parts, ". ") + "."
}

// JobsForUser returns previously saved jobs, newest first, for the lookup
// tools exposed to the tailor and job-search capabilities.
func (s *Store) JobsForUser(ctx context.Context, userID string, limit int) ([]UserJob, error) {
	if limit <= 0 {
		limit = 20
	}
	var jobs []UserJob
	if err := s.db.NewSelect().
		Model(&jobs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select user jobs: %w", err)
	}
	return jobs, nil
}

func (s *Store) ResumesForUser(ctx context.Context, userID string) ([]UserResume, error) {
	var resumes []UserResume
	if err := s.db.NewSelect().
		Model(&resumes).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("select user resumes: %w", err)
	}
	return resumes, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
