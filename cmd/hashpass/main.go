// Package main prints a bcrypt hash for use as admin.password_hash.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cory-johannsen/hotel/internal/auth"
)

func main() {
	start := time.Now()

	password := flag.String("password", "", "admin password to hash; read from stdin when empty")
	verbose := flag.Bool("v", false, "report elapsed time on stderr")
	flag.Parse()

	pw := *password
	if pw == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("reading password from stdin: %v", err)
		}
		pw = strings.TrimRight(line, "\r\n")
	}
	if pw == "" {
		flag.Usage()
		os.Exit(1)
	}

	hash, err := auth.HashPassword(pw)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}
	fmt.Fprintln(os.Stdout, hash)
	if *verbose {
		fmt.Fprintf(os.Stderr, "hashed in %s\n", time.Since(start))
	}
}
