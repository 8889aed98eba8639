package http

import (
	"net"
	"net/http"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
)

// actingEmployee resolves whose record a request touches. Staff always act on
// themselves; managers and admins may name another employee.
func actingEmployee(r *http.Request, requested string) (string, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return "", auth.ErrInvalidToken
	}
	if requested == "" || requested == claims.EmployeeID {
		return claims.EmployeeID, nil
	}
	if isStaff(claims) {
		return "", auth.ErrEmployeeAccessRequired
	}
	return requested, nil
}

func isStaff(claims auth.Claims) bool {
	role := employee.Role(claims.Role)
	return role != employee.RoleAdmin && role != employee.RoleManager
}

// clientIP returns the request's peer address without the port. RemoteAddr is
// rewritten from X-Forwarded-For only when the router trusts the proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func queryPtr(r *http.Request, key string) *string {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	return &v
}
