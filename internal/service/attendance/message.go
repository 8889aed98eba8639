package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/utils"
)

func statusMark(bad bool) string {
	if bad {
		return "🔴"
	}
	return "🟢"
}

func checkInMessage(a attendance.Attendance, emp employee.Employee, now time.Time, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("*Attendance Check In* 🟩\n")
	fmt.Fprintf(&b, "\n🆔 ID: `%s`\n", a.ID)
	fmt.Fprintf(&b, "\n👤 Employee: %s (%s)\n", emp.Name, emp.Role)
	fmt.Fprintf(&b, "\n💰 Time In: %s\n", utils.FormatClock(a.TimeIn, loc))
	fmt.Fprintf(&b, "\n📅 Date: %s\n", now.In(loc).Format(utils.ReportDateLayout))
	fmt.Fprintf(&b, "\n🔖 Status: %s %s", a.CheckInStatus, statusMark(a.CheckInStatus == attendance.CheckInLate))
	if a.CheckInLateDuration != nil {
		fmt.Fprintf(&b, "\n\n⏲️ Late: %s", *a.CheckInLateDuration)
	}
	return b.String()
}

func checkOutMessage(a attendance.Attendance, emp employee.Employee, now time.Time, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("*Attendance Check Out")
	if a.IsRemoteCheckout {
		location := "unknown location"
		if a.Location != nil {
			location = *a.Location
		}
		fmt.Fprintf(&b, " (Remotely: %s)", location)
	}
	b.WriteString("* 🟥\n")

	status := ""
	if a.CheckOutStatus != nil {
		status = string(*a.CheckOutStatus)
	}

	fmt.Fprintf(&b, "\n🆔 ID: `%s`\n", a.ID)
	fmt.Fprintf(&b, "\n👤 Employee: %s (%s)\n", emp.Name, emp.Role)
	fmt.Fprintf(&b, "\n💰 Time Out: %s\n", utils.FormatClock(a.TimeOut, loc))
	fmt.Fprintf(&b, "\n📅 Date: %s\n", now.In(loc).Format(utils.ReportDateLayout))
	fmt.Fprintf(&b, "\n🔖 Status: %s %s", status, statusMark(status == string(attendance.CheckOutEarly)))
	if a.CheckOutEarlyDuration != nil {
		fmt.Fprintf(&b, "\n\n⏲️ Early: %s", *a.CheckOutEarlyDuration)
	}
	return b.String()
}
