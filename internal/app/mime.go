package app

import (
	"log"
	"mime"
)

// Minimal container images ship without /etc/mime.types, which leaves the
// embedded stylesheet served as text/plain and browsers refusing to apply it.
func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("app: register %s mime type: %v", ext, err)
	}
}
