package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/autogestion/autogestion-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteActa(t *testing.T) {
	offering := &model.Offering{
		ID:          4,
		Kind:        model.OfferingFinalExam,
		SubjectName: "Análisis Matemático I",
		Label:       "1° Turno",
		ScheduledAt: time.Date(2026, 7, 14, 9, 0, 0, 0, time.UTC),
	}
	enrolledAt := time.Date(2026, 6, 30, 18, 5, 0, 0, time.UTC)
	rows := []model.OfferingEnrollment{
		{Enrollment: model.Enrollment{Status: model.EnrollmentPending, CreatedAt: enrolledAt}, Legajo: "10234", StudentName: "Gómez, Lucía"},
		{Enrollment: model.Enrollment{Status: model.EnrollmentApproved, CreatedAt: enrolledAt}, Legajo: "10877", StudentName: "Pérez, Juan"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteActa(&buf, offering, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ActaSheet}, f.GetSheetList())

	got, err := f.GetRows(ActaSheet)
	require.NoError(t, err)
	require.Len(t, got, 7)

	assert.Equal(t, []string{"Materia", "Análisis Matemático I"}, got[0])
	assert.Equal(t, []string{"Examen final", "1° Turno"}, got[1])
	assert.Equal(t, []string{"Fecha", "14/07/2026 09:00"}, got[2])
	assert.Empty(t, got[3])
	assert.Equal(t, actaHeaders, got[4])
	assert.Equal(t, []string{"10234", "Gómez, Lucía", "pendiente", "30/06/2026 18:05"}, got[5])
	assert.Equal(t, []string{"10877", "Pérez, Juan", "aprobada", "30/06/2026 18:05"}, got[6])
}

func TestWriteActa_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteActa(&buf, &model.Offering{Kind: model.OfferingCommission, Label: "Comisión A"}, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(ActaSheet)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "Comisión", got[1][0])
}
