// utils/validation.go
package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var ipPattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

// ValidateIP checks that an address is a dotted quad with each octet in
// 0-255. IPv6 and shorthand forms are deliberately rejected; the ping
// probe only ever targets LAN IPv4 addresses.
func ValidateIP(ip string) bool {
	if !ipPattern.MatchString(ip) {
		return false
	}
	for _, part := range strings.Split(ip, ".") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}
