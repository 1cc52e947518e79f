// bmstub runs the stub backend standalone, so the terminal client can be
// exercised without the real ingestion service.
package main

import (
	"flag"
	"log"

	"github.com/vujjini/bm-assist/internal/domain"
	"github.com/vujjini/bm-assist/internal/stub"
)

var (
	addr     = flag.String("addr", ":8000", "Listen address")
	filesDir = flag.String("files", "", "Directory to serve /api/files from")
)

func main() {
	flag.Parse()

	srv := &stub.Server{
		Answer: "This is a canned answer from the stub backend.",
		Sources: []domain.Source{
			{Filename: "manual.pdf", PDFPath: "docs/manual.pdf"},
			{Filename: "inspection-notes.xlsx"},
		},
		FilesDir: *filesDir,
	}

	log.Printf("stub backend listening on %s", *addr)
	if err := srv.Router().Run(*addr); err != nil {
		log.Fatalf("stub backend failed: %v", err)
	}
}
