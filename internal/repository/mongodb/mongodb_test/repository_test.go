package mongodb_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/mongodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var day = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func openRecord(t *testing.T, repo attendance.AttendanceRepository, employeeID string) attendance.Attendance {
	t.Helper()
	in := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)
	a, err := repo.Create(context.Background(), attendance.Attendance{
		EmployeeID:    employeeID,
		Date:          day,
		CheckInStatus: attendance.CheckInOnTime,
		TimeIn:        &in,
	})
	require.NoError(t, err)
	return a
}

func TestAttendanceCreateIsUniquePerDay(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	openRecord(t, repo, "emp-1")

	_, err := repo.Create(ctx, attendance.NonWorkingRecord("emp-1", day, false))
	assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)

	_, err = repo.Create(ctx, attendance.NonWorkingRecord("emp-1", day.AddDate(0, 0, 1), false))
	assert.NoError(t, err)
	_, err = repo.Create(ctx, attendance.NonWorkingRecord("emp-2", day, false))
	assert.NoError(t, err)
}

func TestAttendanceConcurrentCreate(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, attendance.NonWorkingRecord("emp-1", day, true))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else {
				assert.ErrorIs(t, err, attendance.ErrDuplicateAttendance)
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 7, conflicts)
}

func TestAttendanceCheckoutAndSweep(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	aliceRecord := openRecord(t, repo, "alice")
	bobRecord := openRecord(t, repo, "bob")
	absent, err := repo.Create(ctx, attendance.NonWorkingRecord("carol", day, false))
	require.NoError(t, err)

	openRecords, err := repo.ListOpenByDate(ctx, day)
	require.NoError(t, err)
	assert.Len(t, openRecords, 2)

	out := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	checkedOut := attendance.CheckOutCheckedOut
	aliceRecord.TimeOut, aliceRecord.CheckOutStatus = &out, &checkedOut

	ok, err := repo.CompleteCheckout(ctx, aliceRecord)
	require.NoError(t, err)
	assert.True(t, ok)

	later := out.Add(time.Hour)
	aliceRecord.TimeOut = &later
	ok, err = repo.CompleteCheckout(ctx, aliceRecord)
	require.NoError(t, err)
	assert.False(t, ok)

	changed, err := repo.MarkMissedCheckout(ctx, aliceRecord.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := repo.GetByID(ctx, aliceRecord.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TimeOut)
	assert.True(t, out.Equal(*stored.TimeOut))
	require.NotNil(t, stored.CheckOutStatus)
	assert.Equal(t, attendance.CheckOutCheckedOut, *stored.CheckOutStatus)

	changed, err = repo.MarkMissedCheckout(ctx, absent.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.MarkMissedCheckout(ctx, bobRecord.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkMissedCheckout(ctx, bobRecord.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err = repo.GetByID(ctx, bobRecord.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CheckOutStatus)
	assert.Equal(t, attendance.CheckOutMissed, *stored.CheckOutStatus)
	assert.Nil(t, stored.TimeOut)

	openRecords, err = repo.ListOpenByDate(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, openRecords)
}

func TestAttendanceMalformedDate(t *testing.T) {
	db := NewTestDatabase(t)
	ctx := context.Background()
	repo := mongodb.NewAttendanceRepository(db)

	res, err := db.Collection(database.CollectionAttendances).InsertOne(ctx, bson.M{
		"employee":        "emp-1",
		"date":            "01/05/2024",
		"check_in_status": string(attendance.CheckInOnTime),
	})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, res.InsertedID.(primitive.ObjectID).Hex())
	require.Error(t, err)
	assert.NotErrorIs(t, err, attendance.ErrAttendanceNotFound)
}
