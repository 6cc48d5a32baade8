package main

import (
	"context"
	"log"

	"github.com/societyos/laundry-api/internal/app/api"
)

func main() {
	if err := api.Run(context.Background()); err != nil {
		log.Fatalf("laundry API exited: %v", err)
	}
}
