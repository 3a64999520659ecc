package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myimpact/internal/audit"
	"myimpact/internal/model"
	"myimpact/internal/store"
)

var admin = model.Actor{UserID: "admin-001", Name: "Admin User", Role: model.RoleUniversityAdmin}

func newService(t *testing.T) (*store.Memory, *Service) {
	t.Helper()
	m := store.NewMemory(store.DefaultSettings)
	svc := NewService(m, nil, nil)
	svc.newID = func() string { return "evt-settings" }
	return m, svc
}

func TestGetReturnsDefaults(t *testing.T) {
	_, svc := newService(t)
	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, store.DefaultSettings, got)
}

func TestUpdateAppendsOneEditEvent(t *testing.T) {
	m, svc := newService(t)

	got, err := svc.Update(context.Background(), admin, UpdateRequest{UniversityName: "Barnard College"})
	require.NoError(t, err)
	assert.Equal(t, "Barnard College", got.UniversityName)
	assert.Equal(t, "Test Pilot Dashboard", got.DashboardTitle, "empty title keeps the current one")

	stored, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	events, err := audit.NewLog(m).List(0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.ActionEdit, events[0].Action)
	assert.Equal(t, model.EntitySettings, events[0].EntityType)
	assert.Equal(t, EntityID, events[0].EntityID)
	assert.Equal(t, "admin-001", events[0].ActorID)
	assert.Equal(t, "University name changed to: Barnard College", events[0].Notes)
}

func TestUpdateChangesTitle(t *testing.T) {
	_, svc := newService(t)
	got, err := svc.Update(context.Background(), admin, UpdateRequest{UniversityName: "Columbia University", DashboardTitle: "Spring Pilot"})
	require.NoError(t, err)
	assert.Equal(t, "Spring Pilot", got.DashboardTitle)
}

func TestUpdateRejectsEmptyName(t *testing.T) {
	m, svc := newService(t)
	_, err := svc.Update(context.Background(), admin, UpdateRequest{UniversityName: "   "})
	require.ErrorIs(t, err, model.ErrInvalidArgument)
	assert.Zero(t, audit.NewLog(m).Len())

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, store.DefaultSettings, got)
}
