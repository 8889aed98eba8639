// Package memory keeps every repository in process memory. It backs
// DB_DRIVER=memory for local runs and the service tests, and honours the same
// uniqueness and conditional-update contracts as the database stores.
package memory

import (
	"sync"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/qrcode"
)

type Store struct {
	mu            sync.RWMutex
	attendances   map[string]attendance.Attendance
	attendanceKey map[string]string
	employees     map[string]employee.Employee
	qrCodes       map[string]qrcode.QRCode
	leaveRequests map[string]leave.LeaveRequest
}

func NewStore() *Store {
	return &Store{
		attendances:   make(map[string]attendance.Attendance),
		attendanceKey: make(map[string]string),
		employees:     make(map[string]employee.Employee),
		qrCodes:       make(map[string]qrcode.QRCode),
		leaveRequests: make(map[string]leave.LeaveRequest),
	}
}
