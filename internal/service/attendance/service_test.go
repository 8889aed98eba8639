package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, topic notification.Topic, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, text)
	return nil
}

func (n *recordingNotifier) Stop() {}

type stubGeocoder struct {
	name string
	err  error
}

func (g stubGeocoder) Reverse(context.Context, float64, float64) (string, error) {
	return g.name, g.err
}

type fixture struct {
	svc         attendance.AttendanceService
	attendances attendance.AttendanceRepository
	notifier    *recordingNotifier
	hub         *sse.Hub
	now         time.Time
	user        employee.Employee
	remoteUser  employee.Employee
	qr          qrcode.QRCode
}

func newFixture(t *testing.T, geocoder stubGeocoder) *fixture {
	t.Helper()
	ctx := context.Background()
	loc := time.FixedZone("WIB", 7*60*60)

	store := memory.NewStore()
	attendances := memory.NewAttendanceRepository(store)
	employees := memory.NewEmployeeRepository(store)
	qrCodes := memory.NewQRCodeRepository(store)

	user, err := employees.Create(ctx, employee.Employee{Name: "Alice", Email: "alice@example.com", Role: employee.RoleUser})
	require.NoError(t, err)
	remote, err := employees.Create(ctx, employee.Employee{Name: "Rudi", Email: "rudi@example.com", Role: employee.RoleUser, IsAllowedRemoteCheckout: true})
	require.NoError(t, err)
	qr, err := qrCodes.Create(ctx, qrcode.QRCode{
		Location: "Head Office",
		AllowedNetworkRanges: []qrcode.NetworkRange{
			{WifiName: "Office-5G", IP: "192.168.1.0/24"},
			{WifiName: "Office-Guest", IP: "10.0.0.10-10.0.0.20"},
		},
	})
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 9, 5, 0, 0, loc)
	notifier := &recordingNotifier{}
	hub := sse.NewHub()

	svc := NewAttendanceService(attendances, employees, qrCodes, notifier, geocoder, hub, Config{
		Location: loc,
		Now:      func() time.Time { return now },
	})

	return &fixture{
		svc:         svc,
		attendances: attendances,
		notifier:    notifier,
		hub:         hub,
		now:         now,
		user:        user,
		remoteUser:  remote,
		qr:          qr,
	}
}

func (f *fixture) checkIn(employeeID, ip, status string) (attendance.AttendanceResponse, error) {
	timeIn := f.now
	req := attendance.CheckInRequest{
		EmployeeID: employeeID,
		QRCodeID:   f.qr.ID,
		Status:     status,
		TimeIn:     &timeIn,
		ClientIP:   ip,
	}
	if status == string(attendance.CheckInLate) {
		req.LateDuration = utils.StringPtr("5 minutes")
	}
	return f.svc.CheckIn(context.Background(), req)
}

func TestCheckIn(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	feed, cleanup := f.hub.Subscribe(f.user.ID)
	defer cleanup()

	resp, err := f.checkIn(f.user.ID, "192.168.1.42", "Late")
	require.NoError(t, err)

	assert.Equal(t, "2024-05-01", resp.Date)
	assert.Equal(t, "Late", resp.CheckInStatus)
	require.NotNil(t, resp.CheckInLateDuration)
	assert.Equal(t, "5 minutes", *resp.CheckInLateDuration)
	assert.Nil(t, resp.TimeOut)

	require.Len(t, f.notifier.messages, 1)
	msg := f.notifier.messages[0]
	assert.Contains(t, msg, "*Attendance Check In* 🟩")
	assert.Contains(t, msg, "👤 Employee: Alice (user)")
	assert.Contains(t, msg, "🔖 Status: Late 🔴")
	assert.Contains(t, msg, "⏲️ Late: 5 minutes")
	assert.Contains(t, msg, "📅 Date: 1 May 2024")
	assert.Contains(t, msg, "09:05:00 AM")

	require.Len(t, feed, 1)
	assert.Equal(t, "check_in", (<-feed).Event)
}

func TestCheckInOnTimeDropsLateDuration(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	timeIn := f.now

	resp, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID:   f.user.ID,
		QRCodeID:     f.qr.ID,
		Status:       "On Time",
		LateDuration: utils.StringPtr("3 minutes"),
		TimeIn:       &timeIn,
		ClientIP:     "10.0.0.15",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.CheckInLateDuration)
	assert.Contains(t, f.notifier.messages[0], "On Time 🟢")
}

func TestCheckInNetworkDenied(t *testing.T) {
	f := newFixture(t, stubGeocoder{})

	_, err := f.checkIn(f.user.ID, "172.16.0.9", "On Time")
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrNetworkDenied)

	var denied *attendance.NetworkDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, []string{"Office-5G", "Office-Guest"}, denied.WifiNames)
	assert.Equal(t, "Access denied. You must be connected to the correct Wi-Fi network (Office-5G, Office-Guest)!", err.Error())

	record, err := f.attendances.GetByEmployeeAndDate(context.Background(), f.user.ID, utils.CalendarDay(f.now, f.now.Location()))
	require.NoError(t, err)
	assert.Nil(t, record, "a denied check-in must not create a record")
	assert.Empty(t, f.notifier.messages)
}

func TestCheckInTwice(t *testing.T) {
	f := newFixture(t, stubGeocoder{})

	_, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	_, err = f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckInAfterBackfill(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	day := utils.CalendarDay(f.now, f.now.Location())

	_, err := f.attendances.Create(context.Background(), attendance.NonWorkingRecord(f.user.ID, day, false))
	require.NoError(t, err)

	_, err = f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestCheckInUnknownQRCode(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	timeIn := f.now

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: f.user.ID,
		QRCodeID:   "missing",
		Status:     "On Time",
		TimeIn:     &timeIn,
		ClientIP:   "192.168.1.2",
	})
	assert.ErrorIs(t, err, qrcode.ErrQRCodeNotFound)
}

func TestCheckInValidation(t *testing.T) {
	f := newFixture(t, stubGeocoder{})

	_, err := f.svc.CheckIn(context.Background(), attendance.CheckInRequest{
		EmployeeID: f.user.ID,
		QRCodeID:   f.qr.ID,
		Status:     "Late",
	})
	require.Error(t, err)

	var verrs interface{ ToMap() map[string]string }
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "time_in")
	assert.Contains(t, fields, "client_ip")
	assert.Contains(t, fields, "checkInLateDuration")
}

func TestCheckInSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	f.notifier.err = notification.ErrQueueFull

	_, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	assert.NoError(t, err)
}

func TestConcurrentCheckInCreatesOneRecord(t *testing.T) {
	f := newFixture(t, stubGeocoder{})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
	}
	assert.Equal(t, 1, succeeded)
}

func (f *fixture) checkOut(employeeID, ip string, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	req.EmployeeID = employeeID
	req.QRCodeID = f.qr.ID
	req.ClientIP = ip
	return f.svc.CheckOut(context.Background(), req)
}

func TestCheckOut(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	_, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	resp, err := f.checkOut(f.user.ID, "192.168.1.42", attendance.CheckOutRequest{
		Status:        "Early Check-out",
		EarlyDuration: utils.StringPtr("30 minutes"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.TimeOut, "time_out defaults to now")
	require.NotNil(t, resp.CheckOutStatus)
	assert.Equal(t, "Early Check-out", *resp.CheckOutStatus)
	assert.Equal(t, "30 minutes", *resp.CheckOutEarlyDuration)
	assert.False(t, resp.IsRemoteCheckout)

	require.Len(t, f.notifier.messages, 2)
	msg := f.notifier.messages[1]
	assert.Contains(t, msg, "*Attendance Check Out* 🟥")
	assert.Contains(t, msg, "Early Check-out 🔴")
	assert.Contains(t, msg, "⏲️ Early: 30 minutes")

	_, err = f.checkOut(f.user.ID, "192.168.1.42", attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOutDefaultsStatus(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	_, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	timeOut := f.now.Add(8 * time.Hour)
	resp, err := f.checkOut(f.user.ID, "192.168.1.42", attendance.CheckOutRequest{TimeOut: &timeOut})
	require.NoError(t, err)
	assert.Equal(t, "Checked Out", *resp.CheckOutStatus)
	assert.Equal(t, timeOut.Format(time.RFC3339), *resp.TimeOut)
}

func TestCheckOutAfterSweep(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	in, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	changed, err := f.attendances.MarkMissedCheckout(context.Background(), in.ID)
	require.NoError(t, err)
	require.True(t, changed)

	resp, err := f.checkOut(f.user.ID, "192.168.1.42", attendance.CheckOutRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Checked Out", *resp.CheckOutStatus)
	assert.NotNil(t, resp.TimeOut)
}

func TestCheckOutWithoutCheckIn(t *testing.T) {
	f := newFixture(t, stubGeocoder{})

	_, err := f.checkOut(f.user.ID, "192.168.1.42", attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	day := utils.CalendarDay(f.now, f.now.Location())
	_, err = f.attendances.Create(context.Background(), attendance.NonWorkingRecord(f.user.ID, day, true))
	require.NoError(t, err)

	_, err = f.checkOut(f.user.ID, "192.168.1.42", attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckOutNetworkDenied(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	_, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	_, err = f.checkOut(f.user.ID, "8.8.8.8", attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNetworkDenied)
}

func TestRemoteCheckOut(t *testing.T) {
	f := newFixture(t, stubGeocoder{name: "Jl. Sudirman, Jakarta"})
	_, err := f.checkIn(f.remoteUser.ID, "192.168.1.50", "On Time")
	require.NoError(t, err)

	lat, lon := -6.2, 106.8
	resp, err := f.checkOut(f.remoteUser.ID, "8.8.8.8", attendance.CheckOutRequest{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)

	assert.True(t, resp.IsRemoteCheckout)
	require.NotNil(t, resp.Location)
	assert.Equal(t, "Jl. Sudirman, Jakarta", *resp.Location)
	assert.Contains(t, f.notifier.messages[1], "(Remotely: Jl. Sudirman, Jakarta)")
}

func TestRemoteCheckOutGeocoderFailure(t *testing.T) {
	f := newFixture(t, stubGeocoder{err: errors.New("timeout")})
	_, err := f.checkIn(f.remoteUser.ID, "192.168.1.50", "On Time")
	require.NoError(t, err)

	lat, lon := -6.2, 106.8
	resp, err := f.checkOut(f.remoteUser.ID, "8.8.8.8", attendance.CheckOutRequest{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)

	assert.True(t, resp.IsRemoteCheckout)
	assert.Nil(t, resp.Location)
}

func TestGetToday(t *testing.T) {
	f := newFixture(t, stubGeocoder{})

	_, err := f.svc.GetToday(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	created, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	got, err := f.svc.GetToday(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListAndDeleteAttendance(t *testing.T) {
	f := newFixture(t, stubGeocoder{})
	created, err := f.checkIn(f.user.ID, "192.168.1.42", "On Time")
	require.NoError(t, err)

	date := "2024-05-01"
	list, err := f.svc.ListAttendance(context.Background(), attendance.ListAttendanceFilter{Date: &date})
	require.NoError(t, err)
	require.Len(t, list, 1)

	bad := "05/01/2024"
	_, err = f.svc.ListAttendance(context.Background(), attendance.ListAttendanceFilter{Date: &bad})
	assert.Error(t, err)

	require.NoError(t, f.svc.DeleteAttendance(context.Background(), created.ID))
	_, err = f.svc.GetAttendance(context.Background(), created.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}
