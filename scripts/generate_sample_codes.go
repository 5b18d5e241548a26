//go:build ignore

// Run with: go run scripts/generate_sample_codes.go
package main

import (
	"compress/gzip"
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// alphabet omits characters that are easy to misread (0/O, 1/I).
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateSampleCodes writes a ready-to-serve data directory:
//
//	data/data.txt          newline-delimited promo codes
//	data/params.json       {"codeChance": 0.1}
//	data/seed/codes.txt.gz the same codes, gzipped, for cmd/seed
func main() {
	dataDir := flag.String("dir", "data", "output directory")
	count := flag.Int("n", 20, "number of codes")
	length := flag.Int("len", 8, "code length")
	flag.Parse()

	if err := os.MkdirAll(filepath.Join(*dataDir, "seed"), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	codes := make([]string, 0, *count)
	for range *count {
		code, err := randomCode(*length)
		if err != nil {
			log.Fatalf("Failed to generate code: %v", err)
		}
		codes = append(codes, code)
	}

	queuePath := filepath.Join(*dataDir, "data.txt")
	if err := os.WriteFile(queuePath, []byte(strings.Join(codes, "\n")), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", queuePath, err)
	}
	fmt.Printf("Created %s with %d codes\n", queuePath, len(codes))

	paramsPath := filepath.Join(*dataDir, "params.json")
	if err := os.WriteFile(paramsPath, []byte("{\n  \"codeChance\": 0.1\n}"), 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", paramsPath, err)
	}
	fmt.Printf("Created %s\n", paramsPath)

	seedPath := filepath.Join(*dataDir, "seed", "codes.txt.gz")
	if err := createGzipFile(seedPath, codes); err != nil {
		log.Fatalf("Failed to create %s: %v", seedPath, err)
	}
	fmt.Printf("Created %s\n", seedPath)
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

func createGzipFile(filePath string, codes []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, code := range codes {
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", code); err != nil {
			return fmt.Errorf("failed to write code: %w", err)
		}
	}

	return nil
}
