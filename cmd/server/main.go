package main

import (
	"log"

	transport "echo_microblog/internal/transport/http"
)

func main() {
	if err := transport.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
