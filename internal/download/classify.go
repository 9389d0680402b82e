package download

import (
	"fmt"
	"strings"
)

// curl exit codes worth a human-readable explanation. Anything else falls
// through to a generic message with the raw code.
var curlMessages = map[int]string{
	6:  "No internet connection - check your network",
	7:  "Server not responding - try again later",
	22: "File not found on server",
	23: "Disk full or write error - free up space",
	28: "Download too slow - connection timeout",
	35: "SSL/TLS connection failed",
	52: "Server returned empty response",
	56: "Network error during download - try again",
}

// classify turns a curl failure into an operator-facing message. The stderr
// text takes priority because a missing destination reports misleading exit
// codes.
func classify(exitCode int, stderr string) string {
	if strings.Contains(stderr, "Failed to open") || strings.Contains(stderr, "No such file") {
		return "Cannot create file - check drive permissions"
	}
	if msg, ok := curlMessages[exitCode]; ok {
		return msg
	}
	return fmt.Sprintf("Download failed (error %d)", exitCode)
}
