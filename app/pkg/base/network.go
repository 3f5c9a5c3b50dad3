package base

import (
	"errors"
	"net"
)

// GetClientIp returns the first non-loopback IPv4 of the host. Used as the
// dispatch node id so a restarted node can reclaim its own in-flight jobs.
func GetClientIp() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}

	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}

	return "", errors.New("can not find the client ip address")
}
