// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the object storage client.
var HTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}
