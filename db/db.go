// Package db stores the segment index and the sampled extraction list in
// sqlite files. Extraction workers query it by audio file.
package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/NINAnor/birdnetfs/segments"
)

type DB struct {
	*sql.DB
	log logrus.FieldLogger
}

// Open opens (creating if needed) the sqlite file at path and brings its
// schema up to date.
func Open(path string, log logrus.FieldLogger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db := &DB{DB: sqlDB, log: log}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Replace overwrites the table with segs. Row ids follow slice order.
func (db *DB) Replace(ctx context.Context, segs []segments.Segment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments`); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (rowid, audio, start, "end", species, confidence)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, s := range segs {
		if _, err := stmt.ExecContext(ctx, i, s.Audio, s.Start, s.End, s.Species, s.Confidence); err != nil {
			return fmt.Errorf("insert segment %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Segments returns every row in row id order.
func (db *DB) Segments(ctx context.Context) ([]segments.Segment, error) {
	return db.query(ctx, `
		SELECT rowid, audio, start, "end", species, confidence
		FROM segments ORDER BY rowid`)
}

// SegmentsForAudio returns the rows of one audio file in row id order.
func (db *DB) SegmentsForAudio(ctx context.Context, audio string) ([]segments.Segment, error) {
	return db.query(ctx, `
		SELECT rowid, audio, start, "end", species, confidence
		FROM segments WHERE audio = ? ORDER BY rowid`, audio)
}

// AudioFiles lists the distinct audio files referenced by the table.
func (db *DB) AudioFiles(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT audio FROM segments ORDER BY audio`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (db *DB) query(ctx context.Context, q string, args ...any) ([]segments.Segment, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []segments.Segment
	for rows.Next() {
		var s segments.Segment
		if err := rows.Scan(&s.RowID, &s.Audio, &s.Start, &s.End, &s.Species, &s.Confidence); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
