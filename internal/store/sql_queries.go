// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-journal-vault/models"
)

const (
	envelopesTable = "envelopes"
	profilesTable  = "key_profiles"

	upsertProfileSuffix = "ON CONFLICT (journal_id) DO UPDATE SET profile = excluded.profile, updated_at = excluded.updated_at"
)

var envelopeColumns = []string{"id", "journal_id", "payload", "created_at"}

func buildInsertEnvelopeQuery(b sq.StatementBuilderType, env models.StoredEnvelope) (string, []any, error) {
	query, args, err := b.Insert(envelopesTable).
		Columns(envelopeColumns...).
		Values(env.ID, env.JournalID, string(env.Payload), env.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectEnvelopeQuery(b sq.StatementBuilderType, journalID, id string) (string, []any, error) {
	query, args, err := b.Select(envelopeColumns...).
		From(envelopesTable).
		Where(sq.And{sq.Eq{"journal_id": journalID}, sq.Eq{"id": id}}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildListEnvelopesQuery(b sq.StatementBuilderType, journalID string) (string, []any, error) {
	query, args, err := b.Select(envelopeColumns...).
		From(envelopesTable).
		Where(sq.Eq{"journal_id": journalID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildDeleteEnvelopeQuery(b sq.StatementBuilderType, journalID, id string) (string, []any, error) {
	query, args, err := b.Delete(envelopesTable).
		Where(sq.And{sq.Eq{"journal_id": journalID}, sq.Eq{"id": id}}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildUpsertProfileQuery(b sq.StatementBuilderType, journalID string, profile []byte, updatedAt time.Time) (string, []any, error) {
	query, args, err := b.Insert(profilesTable).
		Columns("journal_id", "profile", "updated_at").
		Values(journalID, string(profile), updatedAt.UTC()).
		Suffix(upsertProfileSuffix).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}

func buildSelectProfileQuery(b sq.StatementBuilderType, journalID string) (string, []any, error) {
	query, args, err := b.Select("profile").
		From(profilesTable).
		Where(sq.Eq{"journal_id": journalID}).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	return query, args, nil
}
