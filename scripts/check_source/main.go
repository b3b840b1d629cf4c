// Dumps one search page of a single source as parsed raw listings. Useful
// for checking whether a site changed its markup before blaming the
// normalizer.
//
//	go run ./scripts/check_source -source arenda.az
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/emlakradar/api/internal/business/crawler"
	"github.com/emlakradar/api/internal/business/crawler/sources"
	"github.com/emlakradar/api/pkg/model"
)

func main() {
	name := flag.String("source", "", "source website name, e.g. arenda.az")
	baseURL := flag.String("base-url", "", "override the source base URL")
	page := flag.Int("page", 1, "search results page to fetch")
	detail := flag.Bool("detail", false, "also fetch the detail page of the first card")
	flag.Parse()

	if *name == "" {
		log.Fatal("-source is required")
	}

	reg, err := sources.Build([]model.SourceConfig{{
		Name:    *name,
		BaseURL: *baseURL,
		Enabled: true,
		Pages:   1,
	}}, 1)
	if err != nil {
		log.Fatalf("Failed to build source: %v", err)
	}
	defer reg.Close()

	runner := reg.Runners()[0]
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	url := runner.Source.PageURL(*page)
	fmt.Printf("Fetching %s\n", url)

	body, err := runner.Fetcher.Fetch(ctx, url)
	if err != nil {
		log.Fatalf("Fetch failed: %v", err)
	}
	raws, err := runner.Source.ParsePage(body)
	body.Close()
	if err != nil {
		log.Fatalf("ParsePage failed: %v", err)
	}

	fmt.Printf("Parsed %d cards\n\n", len(raws))
	if len(raws) == 0 {
		return
	}

	if *detail {
		if err := runner.Source.FetchDetail(ctx, runner.Fetcher, &raws[0]); err != nil {
			log.Printf("FetchDetail failed: %v", err)
		}
	}

	out, _ := json.MarshalIndent(raws, "", "  ")
	fmt.Println(string(out))

	fmt.Println("\nNormalized first card:")
	listing, err := crawler.Normalize(raws[0], time.Now())
	if err != nil {
		log.Fatalf("Normalize failed: %v", err)
	}
	normalized, _ := json.MarshalIndent(listing, "", "  ")
	fmt.Println(string(normalized))
}
