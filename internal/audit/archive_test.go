package audit

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myimpact/internal/model"
)

func TestArchiveInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC)
	evt := NewEvent("evt-1", admin, model.EntityVerificationRequest, "vr-001", model.ActionConfirm, at, "Confirmed")
	evt.Seq = 1

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_events`)).
		WithArgs("evt-1", int64(1), "admin-001", "university_admin", "verification_request", "vr-001", "confirm", at, "Confirmed").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewArchive(db).Insert(context.Background(), evt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveInsertRequiresID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = NewArchive(db).Insert(context.Background(), model.AuditEvent{})
	require.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS audit_events`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewArchive(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2026, 3, 21, 10, 0, 0, 0, time.UTC)
	cols := []string{"event_id", "seq", "actor_id", "actor_role", "entity_type", "entity_id", "action", "occurred_at", "notes"}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM audit_events`)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("evt-2", int64(2), "admin-001", "university_admin", "settings", "settings", "edit", at, "University name changed").
			AddRow("evt-1", int64(1), "admin-001", "university_admin", "verification_request", "vr-001", "confirm", at, "Confirmed"))

	events, err := NewArchive(db).Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.EntitySettings, events[0].EntityType)
	assert.Equal(t, model.ActionEdit, events[0].Action)
	assert.Equal(t, int64(1), events[1].Seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}
